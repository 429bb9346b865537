// Package terminal draws toasts inside a terminal with Bubble Tea.
// Sizes and positions are in character cells.
package terminal

import (
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// DefaultMargin is the anchor margin in cells.
const DefaultMargin = 1

// Backend implements toast.Backend for a Bubble Tea program. Everything
// except the timer goroutines runs inside the program's Update.
type Backend struct {
	layout *layout.Layout
	logger *slog.Logger

	work     geometry.Size
	hasWork  bool
	surfaces []*Surface

	mu   sync.Mutex
	send func(tea.Msg)
}

var _ toast.Backend = (*Backend)(nil)

// NewBackend creates a backend laid out by l. A nil layout uses the
// bundled terminal template.
func NewBackend(l *layout.Layout, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if l == nil {
		if tmpl, ok := layout.GetEmbeddedTemplate(layout.TerminalTemplateName); ok {
			l = tmpl
		} else {
			l = layout.DefaultLayout()
		}
	}
	return &Backend{layout: l, logger: logger}
}

// Attach routes timer callbacks into p.
func (b *Backend) Attach(p *tea.Program) {
	b.setSender(p.Send)
}

func (b *Backend) setSender(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Backend) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()

	if send == nil {
		b.logger.Warn("dropping timer message, no program attached")
		return
	}
	send(msg)
}

// SetWorkArea records the terminal size.
func (b *Backend) SetWorkArea(size geometry.Size) {
	b.work = size
	b.hasWork = size.Width > 0 && size.Height > 0
}

// WorkArea returns the terminal size, unknown until the program has
// received its first window size.
func (b *Backend) WorkArea() (geometry.Size, bool) {
	return b.work, b.hasWork
}

// NewSurface creates a hidden surface.
func (b *Backend) NewSurface() toast.Surface {
	s := newSurface(b.layout)
	b.surfaces = append(b.surfaces, s)
	return s
}

// Visible returns the surfaces currently presented, oldest first.
func (b *Backend) Visible() []*Surface {
	var out []*Surface
	live := b.surfaces[:0]
	for _, s := range b.surfaces {
		if s.destroyed {
			continue
		}
		live = append(live, s)
		if s.visible {
			out = append(out, s)
		}
	}
	b.surfaces = live
	return out
}

// fireMsg delivers an expired timer to the program loop.
type fireMsg struct {
	timer *timer
}

type timer struct {
	t       *time.Timer
	f       func()
	settled bool
}

// AfterFunc runs f inside the program loop after d.
func (b *Backend) AfterFunc(d time.Duration, f func()) toast.Timer {
	tm := &timer{f: f}
	tm.t = time.AfterFunc(d, func() {
		b.post(fireMsg{timer: tm})
	})
	return tm
}

// Stop cancels the timer. Must be called from the program loop.
func (t *timer) Stop() bool {
	if t.settled {
		return false
	}
	t.settled = true
	t.t.Stop()
	return true
}

func (t *timer) fire() {
	if t.settled {
		return
	}
	t.settled = true
	t.f()
}
