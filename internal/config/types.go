package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1500ms", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML and YAML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1500ms' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// namedColors are the color names accepted besides hex notation.
var namedColors = map[string]color.RGBA{
	"black":       toast.ColorBlack,
	"white":       toast.ColorWhite,
	"lightyellow": toast.ColorLightYellow,
	"limegreen":   toast.ColorLimeGreen,
	"salmon":      toast.ColorSalmon,
	"control":     toast.ColorControl,
}

// ParseColor parses "#rrggbb", "#rgb" or one of the named colors.
func ParseColor(s string) (color.RGBA, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	if c, ok := namedColors[norm]; ok {
		return c, nil
	}

	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// FormatColor formats c as #rrggbb. Alpha is ignored.
func FormatColor(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("position", func(fl validator.FieldLevel) bool {
			_, err := geometry.ParsePosition(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("color", func(fl validator.FieldLevel) bool {
			_, err := ParseColor(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Timeout.Interval < 0 {
		return fmt.Errorf("timeout.interval must not be negative, got %s", c.Timeout.Interval.Duration())
	}
	return nil
}
