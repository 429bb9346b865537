// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// Default configuration values.
const (
	DefaultPosition = "bottom-right"
	DefaultLayout   = "default"
	DefaultBackend  = BackendAuto
	DefaultTheme    = "default"
	DefaultVolume   = 80

	DefaultHistoryEntries = 500
)

// Backend selects the toolkit a toast is drawn with.
type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendGTK      Backend = "gtk"
	BackendTerminal Backend = "terminal"
)

// ValidBackends returns all valid backend values.
func ValidBackends() []Backend {
	return []Backend{BackendAuto, BackendGTK, BackendTerminal}
}

// Config represents the easytoast configuration.
type Config struct {
	Display DisplayConfig `toml:"display" yaml:"display"`
	Timeout TimeoutConfig `toml:"timeout" yaml:"timeout"`
	Presets PresetsConfig `toml:"presets" yaml:"presets"`
	Audio   AudioConfig   `toml:"audio" yaml:"audio"`
	Theme   ThemeConfig   `toml:"theme" yaml:"theme"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	History HistoryConfig `toml:"history" yaml:"history"`
}

// DisplayConfig contains placement settings.
type DisplayConfig struct {
	Position string `toml:"position" yaml:"position" validate:"position"` // "bottom-right", "top-center", etc.
	MarginX  int    `toml:"margin_x" yaml:"margin_x"`                      // Pixels from the anchored edge
	MarginY  int    `toml:"margin_y" yaml:"margin_y"`                      // Pixels from the anchored edge
	Layout   string `toml:"layout" yaml:"layout"`                          // Layout template name
	Backend  string `toml:"backend" yaml:"backend" validate:"oneof=auto gtk terminal"`
	Monitor  int    `toml:"monitor" yaml:"monitor" validate:"gte=0"` // 0 = primary, 1+ = specific monitor
}

// TimeoutConfig contains the auto-close delay.
type TimeoutConfig struct {
	Interval Duration `toml:"interval" yaml:"interval"` // e.g. "5s" or 5000
}

// PresetsConfig holds per-preset overrides.
type PresetsConfig struct {
	Info    PresetConfig `toml:"info" yaml:"info"`
	Success PresetConfig `toml:"success" yaml:"success"`
	Error   PresetConfig `toml:"error" yaml:"error"`
}

// PresetConfig overrides parts of a built-in palette. Empty fields keep
// the built-in value.
type PresetConfig struct {
	Title      string `toml:"title,omitempty" yaml:"title,omitempty"`
	Icon       string `toml:"icon,omitempty" yaml:"icon,omitempty"`
	TitleColor string `toml:"title_color,omitempty" yaml:"title_color,omitempty" validate:"omitempty,color"`
	TextColor  string `toml:"text_color,omitempty" yaml:"text_color,omitempty" validate:"omitempty,color"`
	BackColor  string `toml:"back_color,omitempty" yaml:"back_color,omitempty" validate:"omitempty,color"`
}

// AudioConfig contains sound settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled" yaml:"enabled"`
	Volume  int         `toml:"volume" yaml:"volume" validate:"gte=0,lte=100"`
	Sounds  SoundConfig `toml:"sounds" yaml:"sounds"`
}

// SoundConfig contains per-preset sound file paths.
type SoundConfig struct {
	Info    string `toml:"info" yaml:"info"`
	Success string `toml:"success" yaml:"success"`
	Error   string `toml:"error" yaml:"error"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name string `toml:"name" yaml:"name"` // Theme name without .css extension
}

// ServerConfig contains daemon ingress settings.
type ServerConfig struct {
	HTTPListen string `toml:"http_listen" yaml:"http_listen" validate:"omitempty,hostname_port"` // Empty disables HTTP
}

// HistoryConfig controls the log of closed toasts kept by the daemon.
type HistoryConfig struct {
	Enabled    bool   `toml:"enabled" yaml:"enabled"`
	MaxEntries int    `toml:"max_entries" yaml:"max_entries" validate:"gte=0"` // 0 = unlimited
	Path       string `toml:"path,omitempty" yaml:"path,omitempty"`            // Defaults to $XDG_DATA_HOME/easytoast/history.jsonl
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Position: DefaultPosition,
			MarginX:  toast.DefaultMarginX,
			MarginY:  toast.DefaultMarginY,
			Layout:   DefaultLayout,
			Backend:  string(DefaultBackend),
			Monitor:  0,
		},
		Timeout: TimeoutConfig{
			Interval: Duration(toast.DefaultInterval),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Theme: ThemeConfig{
			Name: DefaultTheme,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: DefaultHistoryEntries,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "easytoast", "easytoast.toml")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Marshal encodes the configuration as TOML, or YAML when asYAML is set.
func (c *Config) Marshal(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(c)
	}
	return toml.Marshal(c)
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal(isYAML(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Position returns the configured anchor. Invalid values fall back to
// bottom-right; LoadConfig rejects them earlier.
func (c *Config) Position() geometry.Position {
	pos, err := geometry.ParsePosition(c.Display.Position)
	if err != nil {
		return geometry.BottomRight
	}
	return pos
}

// BaseOptions returns toast options with the configured placement and
// interval and no preset applied.
func (c *Config) BaseOptions() toast.Options {
	opts := toast.DefaultOptions()
	opts.Position = c.Position()
	opts.MarginX = c.Display.MarginX
	opts.MarginY = c.Display.MarginY
	if d := c.Timeout.Interval.Duration(); d > 0 {
		opts.Interval = d
	}
	return opts
}

// Options returns BaseOptions with the (possibly overridden) palette of
// preset applied.
func (c *Config) Options(preset toast.Preset) (toast.Options, error) {
	opts := c.BaseOptions()
	if preset == toast.PresetNone {
		return opts, nil
	}
	pal, err := c.Palette(preset)
	if err != nil {
		return opts, err
	}
	opts.ApplyPalette(pal)
	return opts, nil
}

// preset returns the override block for p.
func (c *Config) preset(p toast.Preset) PresetConfig {
	switch p {
	case toast.PresetInfo:
		return c.Presets.Info
	case toast.PresetSuccess:
		return c.Presets.Success
	case toast.PresetError:
		return c.Presets.Error
	default:
		return PresetConfig{}
	}
}

// Palette returns the built-in palette of p with config overrides applied.
func (c *Config) Palette(p toast.Preset) (toast.Palette, error) {
	pal, ok := p.Palette()
	if !ok {
		return toast.Palette{}, fmt.Errorf("preset %s has no palette", p)
	}

	o := c.preset(p)
	if o.Title != "" {
		pal.Title = o.Title
	}
	if o.Icon != "" {
		pal.Icon = toast.Icon(expandPath(o.Icon))
	}

	for _, f := range []struct {
		value string
		dst   *color.RGBA
	}{
		{o.TitleColor, &pal.TitleColor},
		{o.TextColor, &pal.TextColor},
		{o.BackColor, &pal.BackColor},
	} {
		if f.value == "" {
			continue
		}
		col, err := ParseColor(f.value)
		if err != nil {
			return pal, fmt.Errorf("preset %s: %w", p, err)
		}
		*f.dst = col
	}

	return pal, nil
}

// SoundFor returns the sound file path for preset p, with ~ expanded.
func (c *Config) SoundFor(p toast.Preset) string {
	var path string
	switch p {
	case toast.PresetInfo:
		path = c.Audio.Sounds.Info
	case toast.PresetSuccess:
		path = c.Audio.Sounds.Success
	case toast.PresetError:
		path = c.Audio.Sounds.Error
	}
	return expandPath(path)
}

// HistoryPath returns the configured history file with ~ expanded, or ""
// to use the default location.
func (c *Config) HistoryPath() string {
	return expandPath(c.History.Path)
}

// Interval returns the configured auto-close delay.
func (c *Config) Interval() time.Duration {
	return c.Timeout.Interval.Duration()
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
