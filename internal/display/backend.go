package display

import (
	"log/slog"
	"sync/atomic"
	"time"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Backend implements toast.Backend on top of a GTK application.
type Backend struct {
	app     *gtk.Application
	layout  *layout.Layout
	monitor int
	logger  *slog.Logger
	serial  atomic.Uint64
}

var _ toast.Backend = (*Backend)(nil)

// New creates a backend for app. monitor selects the output toasts are
// placed on: 0 is the first monitor, 1+ a specific one (1-indexed).
func New(app *gtk.Application, l *layout.Layout, monitor int, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if l == nil {
		l = layout.DefaultLayout()
	}
	return &Backend{
		app:     app,
		layout:  l,
		monitor: monitor,
		logger:  logger,
	}
}

// NewSurface creates a hidden toast window.
func (b *Backend) NewSurface() toast.Surface {
	return newSurface(b, b.serial.Add(1))
}

// Dispatch runs f on the GTK main loop.
func (b *Backend) Dispatch(f func()) {
	coreglib.IdleAdd(func() {
		f()
	})
}

// timer is a one-shot GLib timeout source.
type timer struct {
	handle  coreglib.SourceHandle
	settled bool
}

// AfterFunc schedules f on the GTK main loop after d.
func (b *Backend) AfterFunc(d time.Duration, f func()) toast.Timer {
	t := &timer{}
	t.handle = coreglib.TimeoutAdd(uint(d.Milliseconds()), func() bool {
		if t.settled {
			return false
		}
		t.settled = true
		f()
		return false
	})
	return t
}

// Stop removes the timeout source if it has not fired yet.
func (t *timer) Stop() bool {
	if t.settled {
		return false
	}
	t.settled = true
	coreglib.SourceRemove(t.handle)
	return true
}
