// Package geometry computes toast placement and sizing.
// Everything here is a pure function of its inputs so it can be
// tested without a display.
package geometry

import (
	"fmt"
	"strings"
)

// GrowPadding is added past the message region when a toast has to grow.
const GrowPadding = 20

// Point is a top-left coordinate in work area space.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width and height in pixels (or cells for terminal surfaces).
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Spacing is the outer spacing around a region.
type Spacing struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// Region is a laid-out child of a toast surface.
type Region struct {
	Origin Point
	Size   Size
	Margin Spacing
}

// EffectiveRight is the rightmost extent of the region including its spacing.
func (r Region) EffectiveRight() int {
	return r.Origin.X + r.Size.Width + r.Margin.Left + r.Margin.Right
}

// EffectiveBottom is the lowest extent of the region including its spacing.
func (r Region) EffectiveBottom() int {
	return r.Origin.Y + r.Size.Height + r.Margin.Top + r.Margin.Bottom
}

// Horizontal is the horizontal half of an anchor.
type Horizontal int

const (
	Left Horizontal = iota
	Center
	Right
)

// Vertical is the vertical half of an anchor.
type Vertical int

const (
	Top Vertical = iota
	Middle
	Bottom
)

// Position is one of the nine screen anchors.
type Position int

const (
	TopLeft Position = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

var positionNames = [...]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	MiddleLeft:   "middle-left",
	MiddleCenter: "middle-center",
	MiddleRight:  "middle-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

// ValidPositions returns all anchors in row-major order.
func ValidPositions() []Position {
	return []Position{
		TopLeft, TopCenter, TopRight,
		MiddleLeft, MiddleCenter, MiddleRight,
		BottomLeft, BottomCenter, BottomRight,
	}
}

// ParsePosition parses the kebab-case name of an anchor.
// CamelCase names ("BottomRight") are accepted too.
func ParsePosition(s string) (Position, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	for i, name := range positionNames {
		if norm == name || norm == strings.ReplaceAll(name, "-", "") {
			return Position(i), nil
		}
	}
	return 0, fmt.Errorf("invalid position %q, must be one of: %s", s, strings.Join(positionNames[:], ", "))
}

// String returns the kebab-case name.
func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("position(%d)", int(p))
	}
	return positionNames[p]
}

// Valid reports whether p is one of the nine anchors.
func (p Position) Valid() bool {
	return p >= TopLeft && p <= BottomRight
}

// Horizontal returns the column of the anchor.
func (p Position) Horizontal() Horizontal {
	return Horizontal(int(p) % 3)
}

// Vertical returns the row of the anchor.
func (p Position) Vertical() Vertical {
	return Vertical(int(p) / 3)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	pos, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// Locate returns the top-left coordinate of a window of size win anchored
// at pos inside a work area of size work.
func Locate(work, win Size, pos Position, marginX, marginY int) Point {
	var pt Point

	switch pos.Horizontal() {
	case Left:
		pt.X = marginX
	case Center:
		pt.X = (work.Width - win.Width) / 2
	case Right:
		pt.X = work.Width - win.Width - marginX
	}

	switch pos.Vertical() {
	case Top:
		pt.Y = marginY
	case Middle:
		pt.Y = (work.Height - win.Height) / 2
	case Bottom:
		pt.Y = work.Height - win.Height - marginY
	}

	return pt
}

// Fit grows client so the message region stays fully visible.
// The result is never smaller than client in either dimension.
func Fit(client Size, message Region) Size {
	return FitPadded(client, message, GrowPadding)
}

// FitPadded is Fit with a custom padding, for surfaces not measured in
// pixels.
func FitPadded(client Size, message Region, padding int) Size {
	if right := message.EffectiveRight(); right > client.Width {
		client.Width = right + padding
	}
	if bottom := message.EffectiveBottom(); bottom > client.Height {
		client.Height = bottom + padding
	}
	return client
}
