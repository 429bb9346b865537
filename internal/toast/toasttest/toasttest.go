// Package toasttest provides an in-memory toast backend with a manual
// clock for tests.
package toasttest

import (
	"image/color"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Reference layout used by NewBackend.
var (
	ReferenceSize          = geometry.Size{Width: 330, Height: 80}
	ReferenceMessageOrigin = geometry.Point{X: 44, Y: 50}
	ReferenceMessageMargin = geometry.Spacing{Left: 12, Top: 3, Right: 12, Bottom: 3}
)

// Surface records everything a toast does to it. The message region is
// measured as CharWidth per rune of the longest line and LineHeight per
// line.
type Surface struct {
	Icon       toast.Icon
	Title      string
	Text       string
	TitleColor color.RGBA
	TextColor  color.RGBA
	BackColor  color.RGBA

	MessageOrigin geometry.Point
	MessageMargin geometry.Spacing
	CharWidth     int
	LineHeight    int

	Current   geometry.Size
	Location  geometry.Point
	Moves     []geometry.Point
	Resizes   []geometry.Size
	Presented int
	Destroyed int
}

var _ toast.Surface = (*Surface)(nil)

func (s *Surface) SetIcon(icon toast.Icon) { s.Icon = icon }
func (s *Surface) SetTitle(title string) { s.Title = title }
func (s *Surface) SetText(text string) { s.Text = text }
func (s *Surface) SetTitleColor(c color.RGBA) { s.TitleColor = c }
func (s *Surface) SetTextColor(c color.RGBA) { s.TextColor = c }
func (s *Surface) SetBackColor(c color.RGBA) { s.BackColor = c }
func (s *Surface) Size() geometry.Size { return s.Current }
func (s *Surface) Present() { s.Presented++ }
func (s *Surface) Destroy() { s.Destroyed++ }
func (s *Surface) Visible() bool { return s.Presented > 0 && s.Destroyed == 0 }
func (s *Surface) Resize(size geometry.Size) { s.Current = size; s.Resizes = append(s.Resizes, size) }
func (s *Surface) Move(pt geometry.Point) { s.Location = pt; s.Moves = append(s.Moves, pt) }

// MessageRegion implements toast.Surface.
func (s *Surface) MessageRegion() geometry.Region {
	lines := strings.Split(s.Text, "\n")
	widest := 0
	for _, line := range lines {
		widest = max(widest, utf8.RuneCountInString(line))
	}
	return geometry.Region{
		Origin: s.MessageOrigin,
		Size:   geometry.Size{Width: widest * s.CharWidth, Height: len(lines) * s.LineHeight},
		Margin: s.MessageMargin,
	}
}

// Screen is a primary display with a settable work area.
type Screen struct {
	Work       geometry.Size
	HasDisplay bool
}

// WorkArea implements toast.Screen.
func (s *Screen) WorkArea() (geometry.Size, bool) {
	return s.Work, s.HasDisplay
}

// Timer is a timer owned by a ManualScheduler.
type Timer struct {
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// Stop implements toast.Timer.
func (t *Timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fired reports whether the callback ran.
func (t *Timer) Fired() bool { return t.fired }

// Stopped reports whether the timer was cancelled before firing.
func (t *Timer) Stopped() bool { return t.stopped }

// Due returns the virtual time the timer fires at.
func (t *Timer) Due() time.Duration { return t.due }

// ManualScheduler is a virtual clock. Timers fire only inside Advance.
type ManualScheduler struct {
	Now    time.Duration
	Timers []*Timer
	Fires  int
}

// AfterFunc implements toast.Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) toast.Timer {
	t := &Timer{due: m.Now + d, seq: len(m.Timers), f: f}
	m.Timers = append(m.Timers, t)
	return t
}

// Pending returns the timers that have neither fired nor been stopped.
func (m *ManualScheduler) Pending() []*Timer {
	var out []*Timer
	for _, t := range m.Timers {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// Advance moves the clock forward by d, firing due timers in order.
func (m *ManualScheduler) Advance(d time.Duration) {
	target := m.Now + d
	for {
		due := m.Pending()
		sort.Slice(due, func(i, j int) bool {
			if due[i].due == due[j].due {
				return due[i].seq < due[j].seq
			}
			return due[i].due < due[j].due
		})
		if len(due) == 0 || due[0].due > target {
			break
		}
		next := due[0]
		m.Now = next.due
		next.fired = true
		m.Fires++
		next.f()
	}
	m.Now = target
}

// Backend is an in-memory toast.Backend.
type Backend struct {
	Screen
	ManualScheduler

	InitialSize   geometry.Size
	MessageOrigin geometry.Point
	MessageMargin geometry.Spacing
	CharWidth     int
	LineHeight    int

	Surfaces []*Surface
}

var _ toast.Backend = (*Backend)(nil)

// NewBackend returns a backend with a 1920x1080 work area and the
// reference 330x80 layout, 8px per character and 18px per line.
func NewBackend() *Backend {
	return &Backend{
		Screen:        Screen{Work: geometry.Size{Width: 1920, Height: 1080}, HasDisplay: true},
		InitialSize:   ReferenceSize,
		MessageOrigin: ReferenceMessageOrigin,
		MessageMargin: ReferenceMessageMargin,
		CharWidth:     8,
		LineHeight:    18,
	}
}

// NewSurface implements toast.Backend.
func (b *Backend) NewSurface() toast.Surface {
	s := &Surface{
		Current:       b.InitialSize,
		MessageOrigin: b.MessageOrigin,
		MessageMargin: b.MessageMargin,
		CharWidth:     b.CharWidth,
		LineHeight:    b.LineHeight,
	}
	b.Surfaces = append(b.Surfaces, s)
	return s
}

// Last returns the most recently created surface.
func (b *Backend) Last() *Surface {
	if len(b.Surfaces) == 0 {
		return nil
	}
	return b.Surfaces[len(b.Surfaces)-1]
}
