package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/toast"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "bottom-right", cfg.Display.Position)
	assert.Equal(t, 10, cfg.Display.MarginX)
	assert.Equal(t, 10, cfg.Display.MarginY)
	assert.Equal(t, "default", cfg.Display.Layout)
	assert.Equal(t, "auto", cfg.Display.Backend)
	assert.Equal(t, 5*time.Second, cfg.Interval())
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	assert.Equal(t, "default", cfg.Theme.Name)
	assert.Empty(t, cfg.Server.HTTPListen)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 500, cfg.History.MaxEntries)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/easytoast.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "easytoast.toml")

	content := `
[display]
position = "top-left"
margin_x = 4
margin_y = 6
backend = "terminal"

[timeout]
interval = "3s"

[presets.success]
title = "Done"
back_color = "#008000"

[audio]
enabled = true
volume = 50

[audio.sounds]
error = "/usr/share/sounds/error.wav"

[theme]
name = "minimal"

[server]
http_listen = "127.0.0.1:7878"

[history]
max_entries = 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, geometry.TopLeft, cfg.Position())
	assert.Equal(t, 4, cfg.Display.MarginX)
	assert.Equal(t, 6, cfg.Display.MarginY)
	assert.Equal(t, "terminal", cfg.Display.Backend)
	assert.Equal(t, 3*time.Second, cfg.Interval())
	assert.Equal(t, "Done", cfg.Presets.Success.Title)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 50, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/error.wav", cfg.SoundFor(toast.PresetError))
	assert.Empty(t, cfg.SoundFor(toast.PresetInfo))
	assert.Equal(t, "minimal", cfg.Theme.Name)
	assert.Equal(t, "127.0.0.1:7878", cfg.Server.HTTPListen)
	assert.Equal(t, 20, cfg.History.MaxEntries)
	assert.True(t, cfg.History.Enabled, "unset keys keep their default")
	// Untouched sections keep defaults.
	assert.Equal(t, "default", cfg.Display.Layout)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "easytoast.yaml")

	content := `
display:
  position: middle-center
timeout:
  interval: 1500ms
presets:
  error:
    title: Oops
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, geometry.MiddleCenter, cfg.Position())
	assert.Equal(t, 1500*time.Millisecond, cfg.Interval())
	assert.Equal(t, "Oops", cfg.Presets.Error.Title)
	assert.Equal(t, 10, cfg.Display.MarginX)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[display\nposition = "},
		{"bad position", "[display]\nposition = \"upper-left\""},
		{"bad backend", "[display]\nbackend = \"x11\""},
		{"bad volume", "[audio]\nvolume = 101"},
		{"bad color", "[presets.info]\nback_color = \"not-a-color\""},
		{"bad duration", "[timeout]\ninterval = \"soon\""},
		{"negative duration", "[timeout]\ninterval = \"-1s\""},
		{"bad listen address", "[server]\nhttp_listen = \"nowhere\""},
		{"negative history size", "[history]\nmax_entries = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "easytoast.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"easytoast.toml", "easytoast.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "subdir", name)

			cfg := DefaultConfig()
			cfg.Display.Position = "top-center"
			cfg.Timeout.Interval = Duration(2500 * time.Millisecond)
			cfg.Presets.Info.TitleColor = "#112233"

			require.NoError(t, cfg.Save(path))

			_, err := os.Stat(path)
			require.NoError(t, err)
			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Position = "top-right"
	cfg.Display.MarginX = 3
	cfg.Timeout.Interval = Duration(time.Second)
	cfg.Presets.Error.Title = "Failed"
	cfg.Presets.Error.BackColor = "#000"

	opts, err := cfg.Options(toast.PresetError)
	require.NoError(t, err)
	assert.Equal(t, geometry.TopRight, opts.Position)
	assert.Equal(t, 3, opts.MarginX)
	assert.Equal(t, time.Second, opts.Interval)
	assert.Equal(t, "Failed", opts.Title)
	assert.Equal(t, toast.IconError, opts.Icon)
	assert.Equal(t, toast.ColorWhite, opts.TitleColor)
	assert.Equal(t, color.RGBA{A: 0xff}, opts.BackColor)

	plain, err := cfg.Options(toast.PresetNone)
	require.NoError(t, err)
	assert.Empty(t, plain.Title)
	assert.Equal(t, toast.ColorControl, plain.BackColor)
}

func TestConfig_BaseOptionsZeroInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout.Interval = 0
	assert.Equal(t, toast.DefaultInterval, cfg.BaseOptions().Interval)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#ffffe0", want: toast.ColorLightYellow},
		{in: "32cd32", want: toast.ColorLimeGreen},
		{in: "#fff", want: toast.ColorWhite},
		{in: "Salmon", want: toast.ColorSalmon},
		{in: "lime-green", want: toast.ColorLimeGreen},
		{in: "LightYellow", want: toast.ColorLightYellow},
		{in: "chartreuse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "#ffffe0", FormatColor(toast.ColorLightYellow))
	assert.Equal(t, "#000000", FormatColor(color.RGBA{}))
	assert.Equal(t, "#010203", FormatColor(color.RGBA{R: 1, G: 2, B: 3}))

	for _, c := range []color.RGBA{toast.ColorSalmon, toast.ColorLimeGreen, toast.ColorControl} {
		got, err := ParseColor(FormatColor(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("5000")))
	assert.Equal(t, 5*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("1m")))
	assert.Equal(t, time.Minute, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("five")))

	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/easytoast/easytoast.toml", ConfigPath())
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, ConfigPath(), filepath.Join("easytoast", "easytoast.toml"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sounds/ding.wav"), expandPath("~/sounds/ding.wav"))
	assert.Equal(t, "/abs/ding.wav", expandPath("/abs/ding.wav"))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "easytoast.toml")
	require.NoError(t, DefaultConfig().Save(path))

	changed := make(chan *Config, 16)
	w, err := NewWatcher(path, func(c *Config) { changed <- c }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("[display]\nposition = \"top-left\"\n"), 0644))

	// A write can surface as several events; wait for the final content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Position() == geometry.TopLeft {
				return
			}
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}

func TestWatcher_IgnoresFileMovedAway(t *testing.T) {
	path := filepath.Join(t.TempDir(), "easytoast.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nposition = \"top-left\"\n"), 0644))

	changed := make(chan *Config, 16)
	w, err := NewWatcher(path, func(c *Config) { changed <- c }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.Rename(path, path+"~"))

	select {
	case cfg := <-changed:
		t.Fatalf("unexpected reload with position %s", cfg.Position())
	case <-time.After(300 * time.Millisecond):
	}

	// Putting the file back reloads the real content.
	require.NoError(t, os.Rename(path+"~", path))
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			assert.Equal(t, geometry.TopLeft, cfg.Position())
			return
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}
