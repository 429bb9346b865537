package daemon

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/store"
	"github.com/jmylchreest/easytoast/internal/toast"
	"github.com/jmylchreest/easytoast/internal/toast/toasttest"
)

type fakeSounds struct {
	played []toast.Preset
	err    error
}

func (f *fakeSounds) PlayForPreset(p toast.Preset) error {
	f.played = append(f.played, p)
	return f.err
}

func intPtr(v int) *int { return &v }

func TestService_ShowAppliesPrecedence(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Display.Position = "top-left"
	cfg.Presets.Success.Title = "Deployed"

	b := toasttest.NewBackend()
	svc := NewService(cfg, b, Inline, nil)

	id, err := svc.Show(context.Background(), Request{
		Preset:    toast.PresetSuccess,
		Text:      "v1.2",
		BackColor: "#000080",
		MarginX:   intPtr(5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s := b.Last()
	require.NotNil(t, s)
	assert.Equal(t, "Deployed", s.Title)
	assert.Equal(t, "v1.2", s.Text)
	assert.Equal(t, toast.IconCheck, s.Icon)
	assert.Equal(t, toast.ColorWhite, s.TitleColor)
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 128, A: 255}, s.BackColor)
	assert.Equal(t, geometry.Point{X: 5, Y: 10}, s.Location)
	assert.Equal(t, 1, s.Presented)
}

func TestService_Lifecycle(t *testing.T) {
	b := toasttest.NewBackend()
	svc := NewService(nil, b, nil, nil)

	var closed []string
	svc.OnClosed(func(id string) { closed = append(closed, id) })

	id, err := svc.Show(context.Background(), Request{Preset: toast.PresetInfo, Text: "hello"})
	require.NoError(t, err)

	st := svc.Status()
	assert.Equal(t, uint32(1), st.Shown)
	assert.Equal(t, uint32(1), st.Active)
	assert.False(t, st.StartedAt.IsZero())

	state, ok := svc.Registry().Get(id)
	require.True(t, ok)
	assert.Equal(t, ToastStatusActive, state.Status)
	assert.Equal(t, toast.PresetInfo, state.Preset)

	b.Advance(toast.DefaultInterval)

	assert.Equal(t, []string{id}, closed)
	assert.Equal(t, 1, b.Last().Destroyed)
	st = svc.Status()
	assert.Equal(t, uint32(1), st.Shown)
	assert.Equal(t, uint32(0), st.Active)

	state, ok = svc.Registry().Get(id)
	require.True(t, ok)
	assert.Equal(t, ToastStatusClosed, state.Status)
}

func TestService_IndependentToasts(t *testing.T) {
	b := toasttest.NewBackend()
	svc := NewService(nil, b, nil, nil)

	first, err := svc.Show(context.Background(), Request{Text: "one", Interval: config.Duration(time.Second)})
	require.NoError(t, err)
	second, err := svc.Show(context.Background(), Request{Text: "two"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Both land on the same anchor; nothing is stacked.
	require.Len(t, b.Surfaces, 2)
	assert.Equal(t, b.Surfaces[0].Location, b.Surfaces[1].Location)

	b.Advance(time.Second)
	assert.Equal(t, uint32(1), svc.Status().Active)
	b.Advance(toast.DefaultInterval)
	assert.Equal(t, uint32(0), svc.Status().Active)
}

func TestService_InvalidRequest(t *testing.T) {
	b := toasttest.NewBackend()
	svc := NewService(nil, b, nil, nil)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"color", Request{BackColor: "not-a-color"}, "back_color"},
		{"position", Request{Position: "middle"}, "position"},
		{"interval", Request{Interval: config.Duration(-time.Second)}, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Show(context.Background(), tt.req)
			assert.ErrorContains(t, err, tt.want)
		})
	}
	assert.Empty(t, b.Surfaces)
	assert.Equal(t, uint32(0), svc.Status().Shown)
}

func TestService_ContextCancelled(t *testing.T) {
	b := toasttest.NewBackend()
	stalled := func(func()) {}
	svc := NewService(nil, b, stalled, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Show(ctx, Request{Text: "never"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_CancelledBeforeDispatchIsDropped(t *testing.T) {
	b := toasttest.NewBackend()
	var queue []func()
	queued := func(f func()) { queue = append(queue, f) }
	svc := NewService(nil, b, queued, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Show(ctx, Request{Text: "late"})
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, queue, 1)
	for _, f := range queue {
		f()
	}
	assert.Empty(t, b.Surfaces)
	assert.Equal(t, uint32(0), svc.Status().Shown)
}

func TestService_CancelledAfterDispatchStillReportsID(t *testing.T) {
	b := toasttest.NewBackend()
	sounds := &fakeSounds{}
	ctx, cancel := context.WithCancel(context.Background())

	// The UI loop picks the request up just as the caller gives up.
	racing := func(f func()) {
		cancel()
		f()
	}
	svc := NewService(nil, b, racing, nil)
	svc.SetSoundPlayer(sounds)

	id, err := svc.Show(ctx, Request{Preset: toast.PresetInfo, Text: "shown"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, b.Surfaces, 1)
	assert.Equal(t, []toast.Preset{toast.PresetInfo}, sounds.played)
}

func TestService_PlaysPresetSound(t *testing.T) {
	sounds := &fakeSounds{}
	svc := NewService(nil, toasttest.NewBackend(), nil, nil)
	svc.SetSoundPlayer(sounds)

	_, err := svc.Show(context.Background(), Request{Preset: toast.PresetError})
	require.NoError(t, err)
	_, err = svc.Show(context.Background(), Request{Text: "plain"})
	require.NoError(t, err)

	assert.Equal(t, []toast.Preset{toast.PresetError}, sounds.played)

	// A broken speaker never fails the request.
	sounds.err = errors.New("no device")
	_, err = svc.Show(context.Background(), Request{Preset: toast.PresetSuccess})
	assert.NoError(t, err)
}

func TestService_RecordsHistory(t *testing.T) {
	b := toasttest.NewBackend()
	svc := NewService(nil, b, nil, nil)
	history := store.NewStore(nil, 0)
	svc.SetHistory(history)

	id, err := svc.Show(context.Background(), Request{Preset: toast.PresetError, Text: "disk full"})
	require.NoError(t, err)
	assert.Zero(t, history.Count(), "open toasts are not recorded")

	b.Advance(toast.DefaultInterval)

	rec, ok := history.Get(id)
	require.True(t, ok)
	assert.Equal(t, "error", rec.Preset)
	assert.Equal(t, "Error!", rec.Title)
	assert.Equal(t, "disk full", rec.Text)
	assert.False(t, rec.ClosedAt.Before(rec.ShownAt))

	// A closed store only costs a warning.
	require.NoError(t, history.Close())
	_, err = svc.Show(context.Background(), Request{Text: "after close"})
	require.NoError(t, err)
	b.Advance(toast.DefaultInterval)
	assert.Equal(t, 1, history.Count())
}

func TestService_UpdateConfig(t *testing.T) {
	b := toasttest.NewBackend()
	svc := NewService(nil, b, nil, nil)

	cfg := config.DefaultConfig()
	cfg.Timeout.Interval = config.Duration(2 * time.Second)
	svc.UpdateConfig(cfg)
	assert.Same(t, cfg, svc.Config())

	_, err := svc.Show(context.Background(), Request{Text: "short"})
	require.NoError(t, err)

	pending := b.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 2*time.Second, pending[0].Due())
}

func TestRequest_ApplyKeepsUnsetFields(t *testing.T) {
	opts := toast.DefaultOptions()
	opts.ApplyPreset(toast.PresetInfo)
	want := opts

	require.NoError(t, Request{}.Apply(&opts))
	assert.Equal(t, want, opts)

	require.NoError(t, Request{
		Title:    "Heads up",
		Icon:     "/tmp/icon.png",
		Position: "middle-center",
		MarginY:  intPtr(0),
		Interval: config.Duration(750 * time.Millisecond),
	}.Apply(&opts))
	assert.Equal(t, "Heads up", opts.Title)
	assert.Equal(t, toast.Icon("/tmp/icon.png"), opts.Icon)
	assert.Equal(t, geometry.MiddleCenter, opts.Position)
	assert.Equal(t, 0, opts.MarginY)
	assert.Equal(t, 750*time.Millisecond, opts.Interval)
}
