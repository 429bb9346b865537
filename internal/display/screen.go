package display

import (
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/easytoast/internal/geometry"
)

// WorkArea returns the size of the configured monitor. Layer-shell
// surfaces are positioned relative to their output, so the origin is
// always the monitor's top-left corner.
func (b *Backend) WorkArea() (geometry.Size, bool) {
	monitor := b.outputMonitor()
	if monitor == nil {
		return geometry.Size{}, false
	}

	rect := monitor.Geometry()
	if rect == nil || rect.Width() <= 0 || rect.Height() <= 0 {
		return geometry.Size{}, false
	}
	return geometry.Size{Width: rect.Width(), Height: rect.Height()}, true
}

// outputMonitor returns the configured monitor, the first one when the
// configured index is out of range, or nil when there is no display.
func (b *Backend) outputMonitor() *gdk.Monitor {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}

	index := uint(0)
	if b.monitor > 0 {
		index = uint(b.monitor - 1)
		if index >= monitors.NItems() {
			b.logger.Warn("configured monitor not available, using first",
				"configured", b.monitor,
				"available", monitors.NItems(),
			)
			index = 0
		}
	}

	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 doesn't export its own wrapMonitor; gdk.Monitor only embeds the
// object pointer, so the cast matches what the bindings do internally.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
