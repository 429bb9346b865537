package toast

import (
	"image/color"
	"time"

	"github.com/jmylchreest/easytoast/internal/geometry"
)

// Surface is the window a toast draws into. Implementations are driven
// from the UI loop only.
type Surface interface {
	SetIcon(icon Icon)
	SetTitle(title string)
	SetText(text string)
	SetTitleColor(c color.RGBA)
	SetTextColor(c color.RGBA)
	// SetBackColor paints the background and the title and message
	// regions with the same color.
	SetBackColor(c color.RGBA)

	// MessageRegion returns the laid-out message region: its offset,
	// rendered size for the current text, and its spacing.
	MessageRegion() geometry.Region

	Size() geometry.Size
	Resize(size geometry.Size)
	Move(pt geometry.Point)

	// Present makes the surface visible: undecorated, above other
	// windows, without a taskbar entry and at the last Move location.
	Present()
	Destroy()
}

// Screen answers questions about the primary display.
type Screen interface {
	// WorkArea returns the usable area of the primary display.
	// ok is false when no display information is available.
	WorkArea() (size geometry.Size, ok bool)
}

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped a
	// pending timer; stopping twice is a no-op.
	Stop() bool
}

// Scheduler runs callbacks on the UI loop after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Backend supplies everything a toast needs from a windowing toolkit.
type Backend interface {
	Screen
	Scheduler
	NewSurface() Surface
}
