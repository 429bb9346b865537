package terminal

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/toast"
)

func terminalLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, ok := layout.GetEmbeddedTemplate(layout.TerminalTemplateName)
	require.True(t, ok)
	return l
}

func TestSurface_MessageRegion(t *testing.T) {
	s := newSurface(terminalLayout(t))
	s.SetText("hello\nwide world")

	r := s.MessageRegion()
	assert.Equal(t, geometry.Size{Width: 10, Height: 2}, r.Size)
	assert.Equal(t, geometry.Point{X: 4, Y: 3}, r.Origin)
	assert.Equal(t, 4+10+1+1, r.EffectiveRight())
	assert.Equal(t, 3+2, r.EffectiveBottom())

	s.SetText("")
	assert.Equal(t, geometry.Size{}, s.MessageRegion().Size)
}

func TestSurface_Lines(t *testing.T) {
	s := newSurface(terminalLayout(t))
	s.SetIcon(toast.IconCheck)
	s.SetTitle("Success!")
	s.SetText("saved")

	lines := s.Lines()
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Equal(t, 40, len([]rune(line)))
	}
	assert.Equal(t, " ✔  Success!", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "    saved", strings.TrimRight(lines[3], " "), "message starts at its origin, not its margin")
	assert.Empty(t, strings.TrimSpace(lines[0]))
}

func TestSurface_TitleClipped(t *testing.T) {
	s := newSurface(terminalLayout(t))
	s.SetTitle(strings.Repeat("x", 60))

	line := s.Lines()[1]
	assert.Equal(t, strings.Repeat("x", 34), strings.TrimSpace(line))
}

func TestToast_GrowsInCells(t *testing.T) {
	b := NewBackend(nil, nil)
	b.SetWorkArea(geometry.Size{Width: 120, Height: 40})

	opts := toast.DefaultOptions()
	opts.MarginX, opts.MarginY = DefaultMargin, DefaultMargin
	opts.Text = strings.Repeat("a", 50)
	n := toast.NewWithOptions(b, opts, nil)

	// 4 + 50 + 1 + 1, then two cells of padding.
	assert.Equal(t, geometry.Size{Width: 58, Height: 5}, n.Size())
	assert.Equal(t, geometry.Point{X: 120 - 58 - 1, Y: 40 - 5 - 1}, n.Location())
}

func TestCompose(t *testing.T) {
	s := newSurface(terminalLayout(t))
	s.SetTitle("Info")
	s.Move(geometry.Point{X: 3, Y: 2})
	s.Present()

	out := Compose(geometry.Size{Width: 60, Height: 10}, []*Surface{s})
	rows := strings.Split(out, "\n")
	require.Len(t, rows, 10)
	assert.Empty(t, rows[0])
	assert.True(t, strings.HasPrefix(rows[2], "   "))
	assert.Contains(t, rows[3], "Info")
	assert.Equal(t, "       Info", strings.TrimRight(rows[3], " "))
}

func TestCompose_UnknownWorkArea(t *testing.T) {
	s := newSurface(terminalLayout(t))
	s.Present()

	rows := strings.Split(Compose(geometry.Size{}, []*Surface{s}), "\n")
	assert.Len(t, rows, 5)
}

func TestBackend_VisibleDropsDestroyed(t *testing.T) {
	b := NewBackend(nil, nil)
	first := b.NewSurface().(*Surface)
	second := b.NewSurface().(*Surface)

	assert.Empty(t, b.Visible())

	first.Present()
	second.Present()
	assert.Equal(t, []*Surface{first, second}, b.Visible())

	first.Destroy()
	assert.Equal(t, []*Surface{second}, b.Visible())
}

func TestTimer_Stop(t *testing.T) {
	b := NewBackend(nil, nil)
	msgs := make(chan tea.Msg, 1)
	b.setSender(func(msg tea.Msg) { msgs <- msg })

	fired := false
	tm := b.AfterFunc(time.Hour, func() { fired = true })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	assert.False(t, fired)
}

func TestModel_Lifecycle(t *testing.T) {
	b := NewBackend(nil, nil)
	msgs := make(chan tea.Msg, 4)
	b.setSender(func(msg tea.Msg) { msgs <- msg })

	opts := toast.DefaultOptions()
	opts.ApplyPreset(toast.PresetInfo)
	opts.Text = "build finished"
	opts.MarginX, opts.MarginY = DefaultMargin, DefaultMargin
	opts.Interval = 20 * time.Millisecond
	n := toast.NewWithOptions(b, opts, nil)

	var m tea.Model = NewModel(b, n)
	m, _ = m.Update(m.Init()())
	assert.Equal(t, toast.StateShown, n.State())

	// The work area arrives after the toast was first placed at the origin.
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	assert.Equal(t, geometry.Point{X: 80 - 40 - 1, Y: 24 - 5 - 1}, n.Location())
	assert.Contains(t, m.View(), "build finished")

	var msg tea.Msg
	select {
	case msg = <-msgs:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}

	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, toast.StateClosed, n.State())
	assert.Empty(t, m.View())
}

func TestModel_QuitKey(t *testing.T) {
	b := NewBackend(nil, nil)
	n := toast.New(b, nil)

	m := NewModel(b, n)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestGlyph(t *testing.T) {
	assert.Empty(t, Glyph(toast.IconNone))
	assert.Equal(t, "ℹ", Glyph(toast.IconInfo))
	assert.Equal(t, "•", Glyph(toast.Icon("/tmp/custom.png")))
}

// The terminal backend must build on machines without GTK headers.
func TestBackend_DoesNotLinkGTK(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		f, err := parser.ParseFile(fset, name, src, parser.ImportsOnly)
		require.NoError(t, err)

		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotContains(t, path, "gotk4", name)
			assert.NotContains(t, path, "internal/theme", name)
			assert.NotContains(t, path, "internal/display", name)
		}
	}
}
