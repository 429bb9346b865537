package daemon

import (
	"fmt"
	"image/color"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Request describes one toast. Empty fields keep the value from the
// configuration and preset.
type Request struct {
	Preset     toast.Preset    `json:"preset,omitempty"`
	Title      string          `json:"title,omitempty"`
	Text       string          `json:"text,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	TitleColor string          `json:"title_color,omitempty"`
	TextColor  string          `json:"text_color,omitempty"`
	BackColor  string          `json:"back_color,omitempty"`
	Position   string          `json:"position,omitempty"`
	MarginX    *int            `json:"margin_x,omitempty"`
	MarginY    *int            `json:"margin_y,omitempty"`
	Interval   config.Duration `json:"interval,omitempty"`
}

// ResolveOptions builds toast options for req: configuration defaults,
// then the preset, then the request's own fields.
func ResolveOptions(cfg *config.Config, req Request) (toast.Options, error) {
	opts, err := cfg.Options(req.Preset)
	if err != nil {
		return opts, err
	}
	if err := req.Apply(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Apply overlays the request on opts. Invalid colors or positions are
// reported with the offending field.
func (r Request) Apply(opts *toast.Options) error {
	if r.Title != "" {
		opts.Title = r.Title
	}
	if r.Text != "" {
		opts.Text = r.Text
	}
	if r.Icon != "" {
		opts.Icon = toast.Icon(r.Icon)
	}

	for _, f := range []struct {
		name  string
		value string
		dst   *color.RGBA
	}{
		{"title_color", r.TitleColor, &opts.TitleColor},
		{"text_color", r.TextColor, &opts.TextColor},
		{"back_color", r.BackColor, &opts.BackColor},
	} {
		if f.value == "" {
			continue
		}
		c, err := config.ParseColor(f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = c
	}

	if r.Position != "" {
		pos, err := geometry.ParsePosition(r.Position)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		opts.Position = pos
	}
	if r.MarginX != nil {
		opts.MarginX = *r.MarginX
	}
	if r.MarginY != nil {
		opts.MarginY = *r.MarginY
	}
	if d := r.Interval.Duration(); d > 0 {
		opts.Interval = d
	} else if d < 0 {
		return fmt.Errorf("interval: must not be negative, got %s", d)
	}
	return nil
}
