package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// sink is the playback side of a Player.
type sink interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// Manager maps presets to sound files and plays them.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  sink
	enabled bool
	sounds  map[toast.Preset]string
}

// NewManager creates a manager for cfg's [audio] section.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return newManager(cfg, NewPlayer(logger), logger)
}

func newManager(cfg *config.Config, player sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		player: player,
	}
	m.apply(cfg)
	return m
}

// apply loads volume and per-preset sounds from cfg. Missing files are
// logged and skipped.
func (m *Manager) apply(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sounds := make(map[toast.Preset]string)
	for _, p := range toast.Presets() {
		path := cfg.SoundFor(p)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "preset", p.String(), "path", path)
			continue
		}
		sounds[p] = path
	}

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()
}

// Start decodes every configured sound up front.
func (m *Manager) Start() {
	m.mu.RLock()
	enabled := m.enabled
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	m.mu.RUnlock()

	if !enabled {
		return
	}
	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
	m.logger.Info("audio manager started", "sounds", len(paths))
}

// Stop releases the speaker.
func (m *Manager) Stop() {
	m.player.Close()
}

// SoundFor returns the sound configured for preset p.
func (m *Manager) SoundFor(p toast.Preset) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[p]
	return path, ok
}

// PlayForPreset plays the sound configured for p, if audio is enabled and
// one is configured.
func (m *Manager) PlayForPreset(p toast.Preset) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[p]
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig swaps in a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.player.ClearCache()
	m.apply(cfg)
	m.Start()
}
