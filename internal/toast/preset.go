package toast

import (
	"fmt"
	"image/color"
	"strings"
)

// Icon is an opaque image handle. The built-in values are resolved by each
// backend; any other value is treated as an icon name or file path.
type Icon string

const (
	IconNone  Icon = ""
	IconInfo  Icon = "info"
	IconCheck Icon = "check"
	IconError Icon = "error"
)

// Builtin reports whether the icon is one of the bundled icons.
func (i Icon) Builtin() bool {
	switch i {
	case IconInfo, IconCheck, IconError:
		return true
	default:
		return false
	}
}

// Named colors used by the presets and defaults.
var (
	ColorBlack       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	ColorWhite       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorLightYellow = color.RGBA{R: 255, G: 255, B: 224, A: 255}
	ColorLimeGreen   = color.RGBA{R: 50, G: 205, B: 50, A: 255}
	ColorSalmon      = color.RGBA{R: 250, G: 128, B: 114, A: 255}
	ColorControl     = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// Preset is a named bundle of icon, colors and title.
type Preset int

const (
	PresetNone Preset = iota
	PresetInfo
	PresetSuccess
	PresetError
)

var presetNames = map[Preset]string{
	PresetNone:    "none",
	PresetInfo:    "info",
	PresetSuccess: "success",
	PresetError:   "error",
}

// Palette is what a preset applies at construction time.
type Palette struct {
	Icon       Icon       `json:"icon" yaml:"icon"`
	Title      string     `json:"title" yaml:"title"`
	TitleColor color.RGBA `json:"title_color" yaml:"title_color"`
	TextColor  color.RGBA `json:"text_color" yaml:"text_color"`
	BackColor  color.RGBA `json:"back_color" yaml:"back_color"`
}

var palettes = map[Preset]Palette{
	PresetInfo: {
		Icon:       IconInfo,
		Title:      "Info",
		TitleColor: ColorBlack,
		TextColor:  ColorBlack,
		BackColor:  ColorLightYellow,
	},
	PresetSuccess: {
		Icon:       IconCheck,
		Title:      "Success!",
		TitleColor: ColorWhite,
		TextColor:  ColorWhite,
		BackColor:  ColorLimeGreen,
	},
	PresetError: {
		Icon:       IconError,
		Title:      "Error!",
		TitleColor: ColorWhite,
		TextColor:  ColorWhite,
		BackColor:  ColorSalmon,
	},
}

// Presets returns the presets that carry a palette, in display order.
func Presets() []Preset {
	return []Preset{PresetInfo, PresetSuccess, PresetError}
}

// ParsePreset parses a preset name. The empty string is PresetNone.
func ParsePreset(s string) (Preset, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return PresetNone, nil
	}
	for p, name := range presetNames {
		if name == norm {
			return p, nil
		}
	}
	return PresetNone, fmt.Errorf("unknown preset %q, must be one of: none, info, success, error", s)
}

func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("preset(%d)", int(p))
}

// Palette returns the built-in palette for the preset.
func (p Preset) Palette() (Palette, bool) {
	pal, ok := palettes[p]
	return pal, ok
}

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(text []byte) error {
	v, err := ParsePreset(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ApplyPalette copies icon, title and colors onto the options.
func (o *Options) ApplyPalette(pal Palette) {
	o.Icon = pal.Icon
	o.Title = pal.Title
	o.TitleColor = pal.TitleColor
	o.TextColor = pal.TextColor
	o.BackColor = pal.BackColor
}

// ApplyPreset applies the built-in palette of p. PresetNone leaves the
// options untouched.
func (o *Options) ApplyPreset(p Preset) {
	if pal, ok := p.Palette(); ok {
		o.ApplyPalette(pal)
	}
}
