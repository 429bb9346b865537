package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// toastClosedMember is the fully qualified ToastClosed signal name.
const toastClosedMember = DBusInterface + ".ToastClosed"

// EmitToastClosed emits the ToastClosed signal for a toast whose close
// timer fired.
func (s *ToastServer) EmitToastClosed(id string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.conn.Emit(DBusPath, toastClosedMember, id); err != nil {
		return fmt.Errorf("failed to emit ToastClosed signal: %w", err)
	}

	s.logger.Debug("emitted ToastClosed signal", "toast_id", id)
	return nil
}

// Connection returns the underlying D-Bus connection.
func (s *ToastServer) Connection() *dbus.Conn {
	return s.conn
}

// closedID returns the toast ID carried by a ToastClosed signal.
func closedID(sig *dbus.Signal) (string, bool) {
	if sig == nil || sig.Name != toastClosedMember || sig.Path != DBusPath || len(sig.Body) != 1 {
		return "", false
	}
	id, ok := sig.Body[0].(string)
	return id, ok
}
