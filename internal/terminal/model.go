package terminal

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// showMsg asks the model to present its toast.
type showMsg struct{}

// Model is the Bubble Tea model hosting a single toast.
type Model struct {
	backend *Backend
	toast   *toast.Notification
	keys    KeyMap
	help    help.Model
	closed  bool
}

// NewModel creates a model that shows n once the program starts.
func NewModel(b *Backend, n *toast.Notification) Model {
	return Model{
		backend: b,
		toast:   n,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init presents the toast.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return showMsg{} }
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case showMsg:
		m.toast.Notify()
		return m, nil

	case tea.WindowSizeMsg:
		m.backend.SetWorkArea(geometry.Size{Width: msg.Width, Height: msg.Height - 1})
		m.help.Width = msg.Width
		m.toast.Relayout()
		return m, nil

	case fireMsg:
		msg.timer.fire()
		if m.toast.State() == toast.StateClosed {
			m.closed = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.closed = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View draws every visible surface at its location above a help line.
func (m Model) View() string {
	if m.closed {
		return ""
	}
	work, _ := m.backend.WorkArea()
	return Compose(work, m.backend.Visible()) + "\n" + m.help.View(m.keys)
}

// Compose paints surfaces onto a canvas the size of the work area. With no
// known work area the canvas grows to fit the surfaces.
func Compose(work geometry.Size, surfaces []*Surface) string {
	height := work.Height
	for _, s := range surfaces {
		height = max(height, s.location.Y+s.size.Height)
	}

	rows := make([]string, height)
	for _, s := range surfaces {
		for i, line := range s.Render() {
			y := s.location.Y + i
			if y < 0 || y >= len(rows) {
				continue
			}
			x := max(s.location.X, 0)
			rows[y] = padTo(rows[y], x) + line
		}
	}
	return strings.Join(rows, "\n")
}

// padTo pads a row with spaces up to column x. Rows that already reach
// past x are left alone; toasts are never drawn side by side.
func padTo(row string, x int) string {
	if n := x - lipgloss.Width(row); n > 0 {
		return row + strings.Repeat(" ", n)
	}
	return row
}

// Run shows one toast in the terminal and returns once it closes or the
// user quits.
func Run(ctx context.Context, b *Backend, opts toast.Options, logger *slog.Logger) error {
	n := toast.NewWithOptions(b, opts, logger)

	p := tea.NewProgram(NewModel(b, n), tea.WithAltScreen(), tea.WithContext(ctx))
	b.Attach(p)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
