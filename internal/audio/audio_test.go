package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/toast"
)

type fakeSink struct {
	played    []string
	preloaded []string
	volume    float64
	cleared   int
	closed    bool
	playErr   error
}

func (f *fakeSink) Play(path string) error {
	f.played = append(f.played, path)
	return f.playErr
}

func (f *fakeSink) Preload(path string) error {
	f.preloaded = append(f.preloaded, path)
	return nil
}

func (f *fakeSink) SetVolume(v float64) { f.volume = v }
func (f *fakeSink) ClearCache()         { f.cleared++ }
func (f *fakeSink) Close()              { f.closed = true }

// writeWAV writes n frames of silence.
func writeWAV(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(n), format))
	return path
}

func TestDecode_WAV(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ding.wav", 2205)

	buffer, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 2205, buffer.Len())
	assert.Equal(t, beep.SampleRate(22050), buffer.Format().SampleRate)
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Decode(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	flac := filepath.Join(dir, "ding.flac")
	require.NoError(t, os.WriteFile(flac, []byte("fLaC"), 0644))
	_, err = Decode(flac)
	assert.ErrorContains(t, err, "unsupported audio format")

	bogus := filepath.Join(dir, "bogus.wav")
	require.NoError(t, os.WriteFile(bogus, []byte("not a wav"), 0644))
	_, err = Decode(bogus)
	assert.Error(t, err)
}

func TestPlayer_PreloadCaches(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "ding.wav", 100)

	p := NewPlayer(nil)
	assert.False(t, p.Cached(path))
	require.NoError(t, p.Preload(path))
	assert.True(t, p.Cached(path))

	p.ClearCache()
	assert.False(t, p.Cached(path))

	require.NoError(t, p.Preload(""))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
	p.SetVolume(0.25)
	assert.Equal(t, 0.25, p.Volume())
}

func TestVolumeExponent(t *testing.T) {
	assert.Equal(t, 0.0, volumeExponent(1))
	assert.Equal(t, -1.0, volumeExponent(0.5))
	assert.Equal(t, -100.0, volumeExponent(0))
}

func TestManager_PlayForPreset(t *testing.T) {
	dir := t.TempDir()
	errorSound := writeWAV(t, dir, "error.wav", 10)

	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Volume = 40
	cfg.Audio.Sounds.Error = errorSound
	cfg.Audio.Sounds.Info = filepath.Join(dir, "missing.wav")

	sink := &fakeSink{}
	m := newManager(cfg, sink, nil)
	assert.InDelta(t, 0.4, sink.volume, 1e-9)

	path, ok := m.SoundFor(toast.PresetError)
	assert.True(t, ok)
	assert.Equal(t, errorSound, path)

	_, ok = m.SoundFor(toast.PresetInfo)
	assert.False(t, ok, "missing files are skipped")

	require.NoError(t, m.PlayForPreset(toast.PresetError))
	require.NoError(t, m.PlayForPreset(toast.PresetInfo))
	require.NoError(t, m.PlayForPreset(toast.PresetNone))
	assert.Equal(t, []string{errorSound}, sink.played)

	m.Start()
	assert.Equal(t, []string{errorSound}, sink.preloaded)

	m.Stop()
	assert.True(t, sink.closed)
}

func TestManager_Disabled(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Audio.Sounds.Success = writeWAV(t, dir, "ok.wav", 10)

	sink := &fakeSink{}
	m := newManager(cfg, sink, nil)
	require.NoError(t, m.PlayForPreset(toast.PresetSuccess))
	m.Start()
	assert.Empty(t, sink.played)
	assert.Empty(t, sink.preloaded)
}

func TestManager_UpdateConfig(t *testing.T) {
	dir := t.TempDir()
	sound := writeWAV(t, dir, "info.wav", 10)

	sink := &fakeSink{}
	m := newManager(config.DefaultConfig(), sink, nil)

	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Sounds.Info = sound
	m.UpdateConfig(cfg)

	assert.Equal(t, 1, sink.cleared)
	assert.Equal(t, []string{sound}, sink.preloaded)

	sink.playErr = errors.New("no speaker")
	assert.Error(t, m.PlayForPreset(toast.PresetInfo))
}
