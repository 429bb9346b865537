package dbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/daemon"
	"github.com/jmylchreest/easytoast/internal/toast"
)

func intPtr(v int) *int { return &v }

func TestEncodeDecodeRequest(t *testing.T) {
	req := daemon.Request{
		Preset:     toast.PresetError,
		Title:      "Build",
		Text:       "failed\nsee log",
		Icon:       "/usr/share/icons/x.png",
		TitleColor: "white",
		TextColor:  "#eeeeee",
		BackColor:  "#8b0000",
		Position:   "top-center",
		MarginX:    intPtr(0),
		MarginY:    intPtr(24),
		Interval:   config.Duration(1500 * time.Millisecond),
	}

	preset, title, text, options := EncodeRequest(req)
	assert.Equal(t, "error", preset)
	assert.Equal(t, "Build", title)
	assert.Equal(t, int32(0), options[OptionMarginX].Value())
	assert.Equal(t, int64(1500), options[OptionInterval].Value())

	got, err := DecodeRequest(preset, title, text, options)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestEncodeRequest_OmitsUnset(t *testing.T) {
	preset, _, _, options := EncodeRequest(daemon.Request{Text: "hi"})
	assert.Empty(t, preset)
	assert.Empty(t, options)
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		options map[string]dbus.Variant
		want    daemon.Request
		wantErr string
	}{
		{
			name:   "empty preset",
			preset: "",
			want:   daemon.Request{},
		},
		{
			name:   "interval string",
			preset: "info",
			options: map[string]dbus.Variant{
				OptionInterval: dbus.MakeVariant("3s"),
			},
			want: daemon.Request{Preset: toast.PresetInfo, Interval: config.Duration(3 * time.Second)},
		},
		{
			name: "unsigned margin",
			options: map[string]dbus.Variant{
				OptionMarginY: dbus.MakeVariant(uint32(7)),
			},
			want: daemon.Request{MarginY: intPtr(7)},
		},
		{
			name: "unknown key ignored",
			options: map[string]dbus.Variant{
				"urgency": dbus.MakeVariant(byte(2)),
			},
			want: daemon.Request{},
		},
		{
			name:    "unknown preset",
			preset:  "warning",
			wantErr: "unknown preset",
		},
		{
			name: "color not a string",
			options: map[string]dbus.Variant{
				OptionBackColor: dbus.MakeVariant(int32(1)),
			},
			wantErr: "back_color",
		},
		{
			name: "margin not an integer",
			options: map[string]dbus.Variant{
				OptionMarginX: dbus.MakeVariant("10"),
			},
			wantErr: "margin_x",
		},
		{
			name: "bad interval",
			options: map[string]dbus.Variant{
				OptionInterval: dbus.MakeVariant("soon"),
			},
			wantErr: "interval",
		},
		{
			name: "interval wrong type",
			options: map[string]dbus.Variant{
				OptionInterval: dbus.MakeVariant(true),
			},
			wantErr: "interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest(tt.preset, "", "", tt.options)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeService struct {
	requests []daemon.Request
	err      error
	status   daemon.Status
}

func (f *fakeService) Show(_ context.Context, req daemon.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return "01TOAST", nil
}

func (f *fakeService) Status() daemon.Status { return f.status }

func TestToastServer_Show(t *testing.T) {
	svc := &fakeService{}
	s := NewToastServer(svc, nil)

	id, dbusErr := s.Show("success", "", "saved", map[string]dbus.Variant{
		OptionPosition: dbus.MakeVariant("top-right"),
	})
	require.Nil(t, dbusErr)
	assert.Equal(t, "01TOAST", id)
	require.Len(t, svc.requests, 1)
	assert.Equal(t, toast.PresetSuccess, svc.requests[0].Preset)
	assert.Equal(t, "top-right", svc.requests[0].Position)

	_, dbusErr = s.Show("bogus", "", "", nil)
	require.NotNil(t, dbusErr)
	assert.Len(t, svc.requests, 1, "invalid calls never reach the service")

	svc.err = errors.New("invalid color")
	_, dbusErr = s.Show("", "", "", nil)
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", dbusErr.Name)
}

func TestToastServer_Status(t *testing.T) {
	started := time.Unix(1700000000, 0)
	s := NewToastServer(&fakeService{status: daemon.Status{StartedAt: started, Shown: 4, Active: 1}}, nil)

	unix, shown, active, dbusErr := s.GetStatus()
	require.Nil(t, dbusErr)
	assert.Equal(t, int64(1700000000), unix)
	assert.Equal(t, uint32(4), shown)
	assert.Equal(t, uint32(1), active)

	name, vendor, version, dbusErr := s.GetServerInformation()
	require.Nil(t, dbusErr)
	assert.Equal(t, "easytoast", name)
	assert.Equal(t, "jmylchreest", vendor)
	assert.NotEmpty(t, version)

	s.SetServerInfo(ServerInfo{Name: "easytoast", Vendor: "jmylchreest", Version: "1.2.3"})
	_, _, version, _ = s.GetServerInformation()
	assert.Equal(t, "1.2.3", version)
}

func TestEmitToastClosed_NotConnected(t *testing.T) {
	s := NewToastServer(&fakeService{}, nil)
	assert.Error(t, s.EmitToastClosed("x"))
}

func TestClosedID(t *testing.T) {
	id, ok := closedID(&dbus.Signal{Path: DBusPath, Name: toastClosedMember, Body: []any{"abc"}})
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = closedID(&dbus.Signal{Path: DBusPath, Name: "org.other.Signal", Body: []any{"abc"}})
	assert.False(t, ok)
	_, ok = closedID(&dbus.Signal{Path: DBusPath, Name: toastClosedMember})
	assert.False(t, ok)
	_, ok = closedID(nil)
	assert.False(t, ok)
}
