package toast

import (
	"image/color"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/easytoast/internal/geometry"
)

// DefaultInterval is how long a toast stays visible unless configured.
const DefaultInterval = 5000 * time.Millisecond

// Default anchor margins in pixels.
const (
	DefaultMarginX = 10
	DefaultMarginY = 10
)

// State is a step in the toast lifecycle.
type State int

const (
	StateCreated State = iota
	StateShown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateShown:
		return "shown"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options is the full set of mutable toast properties.
type Options struct {
	Icon       Icon
	Title      string
	Text       string
	TitleColor color.RGBA
	TextColor  color.RGBA
	BackColor  color.RGBA
	Position   geometry.Position
	MarginX    int
	MarginY    int
	Interval   time.Duration
}

// DefaultOptions returns the properties of an unconfigured toast.
func DefaultOptions() Options {
	return Options{
		TitleColor: ColorBlack,
		TextColor:  ColorBlack,
		BackColor:  ColorControl,
		Position:   geometry.BottomRight,
		MarginX:    DefaultMarginX,
		MarginY:    DefaultMarginY,
		Interval:   DefaultInterval,
	}
}

// Notification is a single toast. All methods must be called from the UI
// loop that drives the backend; the close timer fires on that loop too.
type Notification struct {
	id       string
	backend  Backend
	surface  Surface
	logger   *slog.Logger
	opts     Options
	location geometry.Point
	state    State
	timer    Timer
	onClose  []func(*Notification)
}

// New creates a toast with default options.
func New(b Backend, logger *slog.Logger) *Notification {
	return NewWithOptions(b, DefaultOptions(), logger)
}

// NewPreset creates a toast with the palette of p applied to the defaults.
func NewPreset(b Backend, p Preset, logger *slog.Logger) *Notification {
	opts := DefaultOptions()
	opts.ApplyPreset(p)
	return NewWithOptions(b, opts, logger)
}

// NewInfo creates an info toast.
func NewInfo(b Backend, logger *slog.Logger) *Notification {
	return NewPreset(b, PresetInfo, logger)
}

// NewSuccess creates a success toast.
func NewSuccess(b Backend, logger *slog.Logger) *Notification {
	return NewPreset(b, PresetSuccess, logger)
}

// NewError creates an error toast.
func NewError(b Backend, logger *slog.Logger) *Notification {
	return NewPreset(b, PresetError, logger)
}

// NewWithOptions creates a toast, pushes opts to a new surface and lays
// it out once.
func NewWithOptions(b Backend, opts Options, logger *slog.Logger) *Notification {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	n := &Notification{
		id:      ulid.Make().String(),
		backend: b,
		surface: b.NewSurface(),
		opts:    opts,
	}
	n.logger = logger.With("toast_id", n.id)

	n.surface.SetIcon(opts.Icon)
	n.surface.SetTitle(opts.Title)
	n.surface.SetText(opts.Text)
	n.surface.SetTitleColor(opts.TitleColor)
	n.surface.SetTextColor(opts.TextColor)
	n.surface.SetBackColor(opts.BackColor)
	n.Relayout()

	return n
}

// ID returns the toast's unique identifier.
func (n *Notification) ID() string { return n.id }

// State returns the lifecycle state.
func (n *Notification) State() State { return n.state }

// Options returns a copy of the current properties.
func (n *Notification) Options() Options { return n.opts }

// Location returns the last computed top-left coordinate.
func (n *Notification) Location() geometry.Point { return n.location }

// Size returns the current surface size.
func (n *Notification) Size() geometry.Size {
	if n.state == StateClosed {
		return geometry.Size{}
	}
	return n.surface.Size()
}

// OnClose registers a callback run once after the toast closes.
func (n *Notification) OnClose(cb func(*Notification)) *Notification {
	n.onClose = append(n.onClose, cb)
	return n
}

// mutable reports whether properties can still be applied to the surface.
func (n *Notification) mutable(prop string) bool {
	if n.state == StateClosed {
		n.logger.Debug("ignoring property change on closed toast", "property", prop)
		return false
	}
	return true
}

func (n *Notification) Icon() Icon { return n.opts.Icon }

func (n *Notification) SetIcon(icon Icon) *Notification {
	if n.mutable("icon") {
		n.opts.Icon = icon
		n.surface.SetIcon(icon)
	}
	return n
}

func (n *Notification) Title() string { return n.opts.Title }

func (n *Notification) SetTitle(title string) *Notification {
	if n.mutable("title") {
		n.opts.Title = title
		n.surface.SetTitle(title)
	}
	return n
}

func (n *Notification) Text() string { return n.opts.Text }

// SetText replaces the message and grows the toast if the new text does
// not fit.
func (n *Notification) SetText(text string) *Notification {
	if n.mutable("text") {
		n.opts.Text = text
		n.surface.SetText(text)
		n.Relayout()
	}
	return n
}

func (n *Notification) TitleColor() color.RGBA { return n.opts.TitleColor }

func (n *Notification) SetTitleColor(c color.RGBA) *Notification {
	if n.mutable("title_color") {
		n.opts.TitleColor = c
		n.surface.SetTitleColor(c)
	}
	return n
}

func (n *Notification) TextColor() color.RGBA { return n.opts.TextColor }

func (n *Notification) SetTextColor(c color.RGBA) *Notification {
	if n.mutable("text_color") {
		n.opts.TextColor = c
		n.surface.SetTextColor(c)
	}
	return n
}

func (n *Notification) BackColor() color.RGBA { return n.opts.BackColor }

func (n *Notification) SetBackColor(c color.RGBA) *Notification {
	if n.mutable("back_color") {
		n.opts.BackColor = c
		n.surface.SetBackColor(c)
	}
	return n
}

func (n *Notification) Position() geometry.Position { return n.opts.Position }

func (n *Notification) SetPosition(pos geometry.Position) *Notification {
	if n.mutable("position") {
		n.opts.Position = pos
		n.reposition()
	}
	return n
}

func (n *Notification) MarginX() int { return n.opts.MarginX }

func (n *Notification) SetMarginX(px int) *Notification {
	if n.mutable("margin_x") {
		n.opts.MarginX = px
		n.reposition()
	}
	return n
}

func (n *Notification) MarginY() int { return n.opts.MarginY }

func (n *Notification) SetMarginY(px int) *Notification {
	if n.mutable("margin_y") {
		n.opts.MarginY = px
		n.reposition()
	}
	return n
}

func (n *Notification) Interval() time.Duration { return n.opts.Interval }

// SetInterval sets the auto-close delay. Non-positive values reset it to
// DefaultInterval. A toast that is already shown keeps its running timer.
func (n *Notification) SetInterval(d time.Duration) *Notification {
	if d <= 0 {
		d = DefaultInterval
	}
	if n.mutable("interval") {
		n.opts.Interval = d
	}
	return n
}

// Relayout grows the surface around the current message, then
// recomputes the on-screen location.
func (n *Notification) Relayout() {
	if n.state == StateClosed {
		return
	}
	n.resize()
	n.reposition()
}

// growPadder is implemented by surfaces whose unit is not a pixel.
type growPadder interface {
	GrowPadding() int
}

func (n *Notification) resize() {
	padding := geometry.GrowPadding
	if p, ok := n.surface.(growPadder); ok {
		padding = p.GrowPadding()
	}

	current := n.surface.Size()
	next := geometry.FitPadded(current, n.surface.MessageRegion(), padding)
	if next != current {
		n.surface.Resize(next)
		n.logger.Debug("toast resized", "width", next.Width, "height", next.Height)
	}
}

func (n *Notification) reposition() {
	work, ok := n.backend.WorkArea()
	if !ok {
		n.logger.Warn("no primary display information, placing toast at origin")
		n.location = geometry.Point{}
	} else {
		n.location = geometry.Locate(work, n.surface.Size(), n.opts.Position, n.opts.MarginX, n.opts.MarginY)
	}
	n.surface.Move(n.location)
}

// Notify shows the toast and starts its close timer. Calling Notify on a
// toast that is already shown or closed does nothing.
func (n *Notification) Notify() *Notification {
	if n.state != StateCreated {
		n.logger.Warn("notify called on toast that is not new", "state", n.state.String())
		return n
	}

	n.timer = n.backend.AfterFunc(n.opts.Interval, n.expire)
	n.state = StateShown
	n.Relayout()
	n.surface.Present()

	n.logger.Debug("toast shown",
		"position", n.opts.Position.String(),
		"x", n.location.X,
		"y", n.location.Y,
		"interval", n.opts.Interval,
	)
	return n
}

// expire is the timer callback and the only way out of StateShown.
func (n *Notification) expire() {
	if n.state != StateShown {
		return
	}

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.surface.Destroy()
	n.state = StateClosed
	n.logger.Debug("toast closed")

	callbacks := n.onClose
	n.onClose = nil
	for _, cb := range callbacks {
		cb(n)
	}
}
