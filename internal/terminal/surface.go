package terminal

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Surface is a toast drawn as a block of cells.
type Surface struct {
	layout *layout.Layout

	icon     toast.Icon
	title    string
	text     string
	titleCol color.RGBA
	textCol  color.RGBA
	backCol  color.RGBA

	size      geometry.Size
	location  geometry.Point
	visible   bool
	destroyed bool
}

var _ toast.Surface = (*Surface)(nil)

func newSurface(l *layout.Layout) *Surface {
	return &Surface{layout: l, size: l.Size}
}

// Glyph returns the single-cell symbol drawn for an icon.
func Glyph(icon toast.Icon) string {
	switch icon {
	case toast.IconNone:
		return ""
	case toast.IconInfo:
		return "ℹ"
	case toast.IconCheck:
		return "✔"
	case toast.IconError:
		return "✖"
	default:
		return "•"
	}
}

func (s *Surface) SetIcon(icon toast.Icon)    { s.icon = icon }
func (s *Surface) SetTitle(title string)      { s.title = title }
func (s *Surface) SetText(text string)        { s.text = text }
func (s *Surface) SetTitleColor(c color.RGBA) { s.titleCol = c }
func (s *Surface) SetTextColor(c color.RGBA)  { s.textCol = c }
func (s *Surface) SetBackColor(c color.RGBA)  { s.backCol = c }

func (s *Surface) messageLines() []string {
	if s.text == "" {
		return nil
	}
	return strings.Split(s.text, "\n")
}

// MessageRegion measures the message in cells: the widest line by its
// display width and one row per line.
func (s *Surface) MessageRegion() geometry.Region {
	lines := s.messageLines()
	width := 0
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}
	return s.layout.MessageRegion(geometry.Size{Width: width, Height: len(lines)})
}

// GrowPadding returns the padding in cells used when the toast grows.
func (s *Surface) GrowPadding() int { return s.layout.GrowPadding }

func (s *Surface) Size() geometry.Size       { return s.size }
func (s *Surface) Resize(size geometry.Size) { s.size = size }
func (s *Surface) Move(pt geometry.Point)    { s.location = pt }
func (s *Surface) Present()                  { s.visible = true }

func (s *Surface) Destroy() {
	s.visible = false
	s.destroyed = true
}

// Location returns the last position set by Move.
func (s *Surface) Location() geometry.Point { return s.location }

// role tags a cell with the style it is drawn in.
type role uint8

const (
	roleBack role = iota
	roleTitle
	roleText
)

type cell struct {
	r    rune
	role role
}

// grid lays the toast out cell by cell.
type grid struct {
	width int
	rows  [][]cell
}

func newGrid(size geometry.Size) *grid {
	g := &grid{width: size.Width, rows: make([][]cell, size.Height)}
	for y := range g.rows {
		g.rows[y] = make([]cell, size.Width)
		for x := range g.rows[y] {
			g.rows[y][x] = cell{r: ' ', role: roleBack}
		}
	}
	return g
}

// write draws text from (x, y), clipped to limit cells (0 = to the edge).
func (g *grid) write(x, y int, text string, limit int, r role) {
	if y < 0 || y >= len(g.rows) {
		return
	}
	end := g.width
	if limit > 0 {
		end = min(end, x+limit)
	}
	for _, ch := range text {
		if x >= end {
			return
		}
		if x >= 0 {
			g.rows[y][x] = cell{r: ch, role: r}
		}
		x++
	}
}

func (s *Surface) grid() *grid {
	g := newGrid(s.size)
	l := s.layout

	if glyph := Glyph(s.icon); glyph != "" && l.Icon.Type != "" {
		at := l.Icon.DrawAt()
		g.write(at.X, at.Y, glyph, 1, roleTitle)
	}
	if s.title != "" && l.Title.Type != "" {
		at := l.Title.DrawAt()
		g.write(at.X, at.Y, s.title, l.Title.Size.Width, roleTitle)
	}

	at := l.Message.DrawAt()
	for i, line := range s.messageLines() {
		g.write(at.X, at.Y+i, line, 0, roleText)
	}
	return g
}

// Lines returns the toast as plain text rows.
func (s *Surface) Lines() []string {
	g := s.grid()
	out := make([]string, len(g.rows))
	for y, row := range g.rows {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.r)
		}
		out[y] = b.String()
	}
	return out
}

// Render returns the toast rows with colors applied.
func (s *Surface) Render() []string {
	back := lipgloss.Color(config.FormatColor(s.backCol))
	styles := map[role]lipgloss.Style{
		roleBack:  lipgloss.NewStyle().Background(back),
		roleTitle: lipgloss.NewStyle().Background(back).Foreground(lipgloss.Color(config.FormatColor(s.titleCol))).Bold(true),
		roleText:  lipgloss.NewStyle().Background(back).Foreground(lipgloss.Color(config.FormatColor(s.textCol))),
	}

	g := s.grid()
	out := make([]string, len(g.rows))
	for y, row := range g.rows {
		var b strings.Builder
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].role == row[start].role {
				run.WriteRune(row[end].r)
				end++
			}
			b.WriteString(styles[row[start].role].Render(run.String()))
			start = end
		}
		out[y] = b.String()
	}
	return out
}
