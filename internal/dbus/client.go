package dbus

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/easytoast/internal/daemon"
)

// Client calls a running easytoast service.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient opens a private session bus connection.
func NewClient() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping reports whether the service is running and returns its server
// information.
func (c *Client) Ping(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("easytoast service not reachable: %w", err)
	}
	return info, nil
}

// Show asks the service to show a toast and returns its ID.
func (c *Client) Show(ctx context.Context, req daemon.Request) (string, error) {
	preset, title, text, options := EncodeRequest(req)

	var id string
	err := c.obj.CallWithContext(ctx, DBusInterface+".Show", 0, preset, title, text, options).Store(&id)
	if err != nil {
		return "", fmt.Errorf("show failed: %w", err)
	}
	return id, nil
}

// ShowAndWait shows a toast and blocks until the service reports it
// closed.
func (c *Client) ShowAndWait(ctx context.Context, req daemon.Request) (string, error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("ToastClosed"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, match...); err != nil {
		return "", fmt.Errorf("failed to subscribe to ToastClosed: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(match...) }()

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	id, err := c.Show(ctx, req)
	if err != nil {
		return "", err
	}

	for {
		select {
		case sig := <-signals:
			if closed, ok := closedID(sig); ok && closed == id {
				return id, nil
			}
		case <-ctx.Done():
			return id, ctx.Err()
		}
	}
}

// Status returns the service status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var (
		started       int64
		shown, active uint32
	)
	err := c.obj.CallWithContext(ctx, DBusInterface+".GetStatus", 0).Store(&started, &shown, &active)
	if err != nil {
		return daemon.Status{}, fmt.Errorf("status failed: %w", err)
	}
	return daemon.Status{
		StartedAt: time.Unix(started, 0),
		Shown:     shown,
		Active:    active,
	}, nil
}
