package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/daemon"
	"github.com/jmylchreest/easytoast/internal/toast"
)

const (
	// DBusInterface is the toast interface name.
	DBusInterface = "io.github.jmylchreest.EasyToast"
	// DBusPath is the toast object path.
	DBusPath = "/io/github/jmylchreest/EasyToast"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.EasyToast"
)

// Keys of the Show options dictionary.
const (
	OptionIcon       = "icon"
	OptionTitleColor = "title_color"
	OptionTextColor  = "text_color"
	OptionBackColor  = "back_color"
	OptionPosition   = "position"
	OptionMarginX    = "margin_x"
	OptionMarginY    = "margin_y"
	// OptionInterval is milliseconds as an integer, or a duration string
	// such as "3s".
	OptionInterval = "interval"
)

// ServerInfo contains information about the toast server.
type ServerInfo struct {
	Name    string // "easytoast"
	Vendor  string // "jmylchreest"
	Version string // Build version
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:    "easytoast",
		Vendor:  "jmylchreest",
		Version: "0.0.1", // Will be replaced by build-time version
	}
}

// EncodeRequest splits a request into the arguments of the Show method.
func EncodeRequest(req daemon.Request) (preset, title, text string, options map[string]dbus.Variant) {
	options = make(map[string]dbus.Variant)
	for key, value := range map[string]string{
		OptionIcon:       req.Icon,
		OptionTitleColor: req.TitleColor,
		OptionTextColor:  req.TextColor,
		OptionBackColor:  req.BackColor,
		OptionPosition:   req.Position,
	} {
		if value != "" {
			options[key] = dbus.MakeVariant(value)
		}
	}
	if req.MarginX != nil {
		options[OptionMarginX] = dbus.MakeVariant(int32(*req.MarginX))
	}
	if req.MarginY != nil {
		options[OptionMarginY] = dbus.MakeVariant(int32(*req.MarginY))
	}
	if d := req.Interval.Duration(); d != 0 {
		options[OptionInterval] = dbus.MakeVariant(d.Milliseconds())
	}

	if req.Preset != toast.PresetNone {
		preset = req.Preset.String()
	}
	return preset, req.Title, req.Text, options
}

// DecodeRequest builds a request from the arguments of the Show method.
// Unknown option keys are ignored so newer clients work with older servers.
func DecodeRequest(preset, title, text string, options map[string]dbus.Variant) (daemon.Request, error) {
	p, err := toast.ParsePreset(preset)
	if err != nil {
		return daemon.Request{}, err
	}
	req := daemon.Request{Preset: p, Title: title, Text: text}

	for key, dst := range map[string]*string{
		OptionIcon:       &req.Icon,
		OptionTitleColor: &req.TitleColor,
		OptionTextColor:  &req.TextColor,
		OptionBackColor:  &req.BackColor,
		OptionPosition:   &req.Position,
	} {
		v, ok := options[key]
		if !ok {
			continue
		}
		s, ok := v.Value().(string)
		if !ok {
			return daemon.Request{}, fmt.Errorf("option %s: expected string, got %s", key, v.Signature())
		}
		*dst = s
	}

	for key, dst := range map[string]**int{
		OptionMarginX: &req.MarginX,
		OptionMarginY: &req.MarginY,
	} {
		v, ok := options[key]
		if !ok {
			continue
		}
		n, ok := integer(v)
		if !ok {
			return daemon.Request{}, fmt.Errorf("option %s: expected integer, got %s", key, v.Signature())
		}
		m := int(n)
		*dst = &m
	}

	if v, ok := options[OptionInterval]; ok {
		d, err := interval(v)
		if err != nil {
			return daemon.Request{}, fmt.Errorf("option %s: %w", OptionInterval, err)
		}
		req.Interval = config.Duration(d)
	}

	return req, nil
}

// integer extracts any D-Bus integer type.
func integer(v dbus.Variant) (int64, bool) {
	switch val := v.Value().(type) {
	case byte:
		return int64(val), true
	case int16:
		return int64(val), true
	case uint16:
		return int64(val), true
	case int32:
		return int64(val), true
	case uint32:
		return int64(val), true
	case int64:
		return val, true
	case uint64:
		return int64(val), true
	}
	return 0, false
}

func interval(v dbus.Variant) (time.Duration, error) {
	if s, ok := v.Value().(string); ok {
		var d config.Duration
		if err := d.UnmarshalText([]byte(s)); err != nil {
			return 0, err
		}
		return d.Duration(), nil
	}
	if ms, ok := integer(v); ok {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("expected milliseconds or duration string, got %s", v.Signature())
}
