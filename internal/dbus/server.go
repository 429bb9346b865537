package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/easytoast/internal/daemon"
)

// showTimeout bounds how long a Show call waits for the UI loop.
const showTimeout = 5 * time.Second

// ErrAlreadyRunning is returned by Start when another process owns the
// bus name.
var ErrAlreadyRunning = errors.New("easytoast service already running")

// Service is what the server exposes on the bus. *daemon.Service
// implements it.
type Service interface {
	Show(ctx context.Context, req daemon.Request) (string, error)
	Status() daemon.Status
}

// ToastServer implements the io.github.jmylchreest.EasyToast interface.
type ToastServer struct {
	conn    *dbus.Conn
	service Service
	logger  *slog.Logger

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewToastServer creates a server that forwards calls to svc.
func NewToastServer(svc Service, logger *slog.Logger) *ToastServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToastServer{
		service:    svc,
		logger:     logger,
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *ToastServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start connects to the session bus and exports the toast service.
func (s *ToastServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: toastMethods(),
				Signals: toastSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: bus name %s is taken", ErrAlreadyRunning, DBusBusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus toast server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *ToastServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus toast server stopped")
	return nil
}

// Show creates and shows a toast.
// D-Bus method: Show(sssa{sv}) -> s
func (s *ToastServer) Show(preset, title, text string, options map[string]dbus.Variant) (string, *dbus.Error) {
	req, err := DecodeRequest(preset, title, text, options)
	if err != nil {
		s.logger.Debug("rejected Show call", "error", err)
		return "", dbus.MakeFailedError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), showTimeout)
	defer cancel()

	id, err := s.service.Show(ctx, req)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	s.logger.Debug("Show called", "preset", preset, "toast_id", id)
	return id, nil
}

// GetStatus returns the service start time as a unix timestamp and the
// number of toasts shown and currently open.
// D-Bus method: GetStatus() -> (xuu)
func (s *ToastServer) GetStatus() (int64, uint32, uint32, *dbus.Error) {
	st := s.service.Status()
	return st.StartedAt.Unix(), st.Shown, st.Active, nil
}

// GetServerInformation returns information about the toast server.
// D-Bus method: GetServerInformation() -> (sss)
func (s *ToastServer) GetServerInformation() (string, string, string, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, nil
}

func toastMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Show",
			Args: []introspect.Arg{
				{Name: "preset", Type: "s", Direction: "in"},
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "text", Type: "s", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "GetStatus",
			Args: []introspect.Arg{
				{Name: "started_unix", Type: "x", Direction: "out"},
				{Name: "shown", Type: "u", Direction: "out"},
				{Name: "active", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
			},
		},
	}
}

func toastSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "ToastClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
			},
		},
	}
}
