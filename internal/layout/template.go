// Package layout describes where the children of a toast sit inside it.
package layout

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/easytoast/internal/geometry"
)

// ElementType identifies a toast child.
type ElementType string

const (
	ElementTypeIcon    ElementType = "icon"
	ElementTypeTitle   ElementType = "title"
	ElementTypeMessage ElementType = "message"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"icon":    ElementTypeIcon,
	"title":   ElementTypeTitle,
	"message": ElementTypeMessage,
}

// Unit is the measure a layout is expressed in.
type Unit string

const (
	UnitPixel Unit = "px"
	UnitCell  Unit = "cell"
)

// Element is one placed child. A zero Size means "size to content".
type Element struct {
	Type   ElementType
	Origin geometry.Point
	Size   geometry.Size
	Margin geometry.Spacing
}

// DrawAt returns where the element is drawn in the client. Margins only
// widen the region the client must contain; they never shift the element.
func (e Element) DrawAt() geometry.Point {
	return e.Origin
}

// Layout is a parsed template: the minimum client size and the three
// children.
type Layout struct {
	Unit        Unit
	Size        geometry.Size
	GrowPadding int
	Icon        Element
	Title       Element
	Message     Element
}

// MessageRegion places a rendered message of the given size.
func (l *Layout) MessageRegion(rendered geometry.Size) geometry.Region {
	return geometry.Region{
		Origin: l.Message.Origin,
		Size:   rendered,
		Margin: l.Message.Margin,
	}
}

// ParseTemplate parses an XML layout template from a reader.
//
//	<toast width="330" height="80">
//	  <icon x="10" y="10" width="20" height="20" margin="10" />
//	  <title x="43" y="10" width="275" height="23" />
//	  <message x="44" y="50" margin="12,3,12,3" />
//	</toast>
//
// Margins are one value for all sides or four values in left, top,
// right, bottom order.
func ParseTemplate(r io.Reader) (*Layout, error) {
	decoder := xml.NewDecoder(r)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("template has no <toast> element")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "toast" {
			return nil, fmt.Errorf("unexpected root element <%s>, want <toast>", se.Name.Local)
		}

		l := &Layout{Unit: UnitPixel, GrowPadding: geometry.GrowPadding}
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "width":
				if l.Size.Width, err = parsePixelValue(attr.Value); err != nil {
					return nil, fmt.Errorf("toast width: %w", err)
				}
			case "height":
				if l.Size.Height, err = parsePixelValue(attr.Value); err != nil {
					return nil, fmt.Errorf("toast height: %w", err)
				}
			case "unit":
				switch Unit(attr.Value) {
				case UnitPixel, UnitCell:
					l.Unit = Unit(attr.Value)
				default:
					return nil, fmt.Errorf("unknown unit %q", attr.Value)
				}
			case "grow-padding":
				if l.GrowPadding, err = parsePixelValue(attr.Value); err != nil {
					return nil, fmt.Errorf("toast grow-padding: %w", err)
				}
			}
		}

		elements, err := parseElements(decoder)
		if err != nil {
			return nil, err
		}
		if err := l.assign(elements); err != nil {
			return nil, err
		}
		return l, nil
	}
}

func (l *Layout) assign(elements []Element) error {
	seen := make(map[ElementType]bool)
	for _, e := range elements {
		if seen[e.Type] {
			return fmt.Errorf("duplicate <%s> element", e.Type)
		}
		seen[e.Type] = true

		switch e.Type {
		case ElementTypeIcon:
			l.Icon = e
		case ElementTypeTitle:
			l.Title = e
		case ElementTypeMessage:
			l.Message = e
		}
	}
	if !seen[ElementTypeMessage] {
		return fmt.Errorf("template has no <message> element")
	}
	if l.Size.Width <= 0 || l.Size.Height <= 0 {
		return fmt.Errorf("toast size must be positive, got %dx%d", l.Size.Width, l.Size.Height)
	}
	return nil
}

// parsePixelValue parses a pixel value string (e.g., "300", "300px") to int.
func parsePixelValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// parseSpacing parses "n" or "left,top,right,bottom".
func parseSpacing(s string) (geometry.Spacing, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := parsePixelValue(p)
		if err != nil {
			return geometry.Spacing{}, fmt.Errorf("invalid margin %q: %w", s, err)
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return geometry.Spacing{Left: vals[0], Top: vals[0], Right: vals[0], Bottom: vals[0]}, nil
	case 4:
		return geometry.Spacing{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
	default:
		return geometry.Spacing{}, fmt.Errorf("invalid margin %q: want 1 or 4 values", s)
	}
}

// parseElements parses the children of <toast> up to its end tag.
func parseElements(decoder *xml.Decoder) ([]Element, error) {
	var elements []Element
	depth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				return nil, fmt.Errorf("<%s> cannot have children", elements[len(elements)-1].Type)
			}
			name := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[name]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", name)
			}

			elem := Element{Type: elemType}
			for _, attr := range t.Attr {
				if err := elem.setAttr(attr.Name.Local, attr.Value); err != nil {
					return nil, fmt.Errorf("<%s>: %w", name, err)
				}
			}
			elements = append(elements, elem)
			depth++

		case xml.EndElement:
			if depth == 0 {
				return elements, nil
			}
			depth--
		}
	}
}

func (e *Element) setAttr(name, value string) error {
	var err error
	switch name {
	case "x":
		e.Origin.X, err = parsePixelValue(value)
	case "y":
		e.Origin.Y, err = parsePixelValue(value)
	case "width":
		e.Size.Width, err = parsePixelValue(value)
	case "height":
		e.Size.Height, err = parsePixelValue(value)
	case "margin":
		e.Margin, err = parseSpacing(value)
	default:
		return fmt.Errorf("unknown attribute %q", name)
	}
	if err != nil {
		return fmt.Errorf("attribute %s: %w", name, err)
	}
	return nil
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*Layout, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseTemplate(f)
}

// Loader resolves layout templates by name.
type Loader struct {
	templatesDir string
}

// NewLoader creates a new template loader.
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// TemplatesDir returns the user's layout directory.
func TemplatesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "easytoast", "layouts"), nil
}

// Load loads a layout template by name.
// The user directory wins over the embedded templates.
func (l *Loader) Load(name string) (*Layout, error) {
	if name == "" {
		name = DefaultTemplateName
	}

	if l.templatesDir != "" {
		templatePath := filepath.Join(l.templatesDir, name+".xml")
		if _, err := os.Stat(templatePath); err == nil {
			return LoadTemplate(templatePath)
		}
	}

	if tmpl, found := GetEmbeddedTemplate(name); found {
		return tmpl, nil
	}

	return nil, fmt.Errorf("layout template not found: %s", name)
}

// DefaultLayout returns the reference 330x80 pixel layout.
func DefaultLayout() *Layout {
	return &Layout{
		Unit:        UnitPixel,
		Size:        geometry.Size{Width: 330, Height: 80},
		GrowPadding: geometry.GrowPadding,
		Icon: Element{
			Type:   ElementTypeIcon,
			Origin: geometry.Point{X: 10, Y: 10},
			Size:   geometry.Size{Width: 20, Height: 20},
			Margin: geometry.Spacing{Left: 10, Top: 10, Right: 10, Bottom: 10},
		},
		Title: Element{
			Type:   ElementTypeTitle,
			Origin: geometry.Point{X: 43, Y: 10},
			Size:   geometry.Size{Width: 275, Height: 23},
		},
		Message: Element{
			Type:   ElementTypeMessage,
			Origin: geometry.Point{X: 44, Y: 50},
			Margin: geometry.Spacing{Left: 12, Top: 3, Right: 12, Bottom: 3},
		},
	}
}
