package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/store"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// closedRetention is how long closed toasts stay queryable by ID.
const closedRetention = 10 * time.Minute

// Dispatcher runs f on the UI loop that drives the backend.
type Dispatcher func(f func())

// Inline runs f on the calling goroutine. It suits backends that are not
// bound to a toolkit thread, such as test doubles.
func Inline(f func()) { f() }

// SoundPlayer plays the sound configured for a preset.
type SoundPlayer interface {
	PlayForPreset(p toast.Preset) error
}

// HistoryRecorder keeps a record of every closed toast.
type HistoryRecorder interface {
	Add(r store.Record) error
}

// Status summarizes the service for clients.
type Status struct {
	StartedAt time.Time `json:"started_at"`
	Shown     uint32    `json:"shown"`
	Active    uint32    `json:"active"`
}

// Service shows toasts on behalf of transports. Every request becomes an
// independent toast; nothing is queued or stacked.
type Service struct {
	backend  toast.Backend
	dispatch Dispatcher
	registry *Registry
	logger   *slog.Logger
	started  time.Time

	mu       sync.RWMutex
	cfg      *config.Config
	sounds   SoundPlayer
	history  HistoryRecorder
	onClosed []func(id string)
}

// NewService creates a service that builds toasts on b. Construction and
// every toast callback run through dispatch.
func NewService(cfg *config.Config, b toast.Backend, dispatch Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if dispatch == nil {
		dispatch = Inline
	}
	return &Service{
		backend:  b,
		dispatch: dispatch,
		registry: NewRegistry(),
		logger:   logger,
		started:  time.Now(),
		cfg:      cfg,
	}
}

// SetSoundPlayer sets the player used when a preset toast is shown.
func (s *Service) SetSoundPlayer(p SoundPlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds = p
}

// SetHistory sets where closed toasts are recorded. nil disables history.
func (s *Service) SetHistory(h HistoryRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// OnClosed registers a callback that receives the ID of every toast that
// closes. Callbacks run on the UI loop.
func (s *Service) OnClosed(cb func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClosed = append(s.onClosed, cb)
}

// UpdateConfig swaps the configuration used for new toasts. Open toasts
// keep the options they were created with.
func (s *Service) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Registry returns the registry of toasts shown by the service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Active returns the toasts currently on screen, oldest first.
func (s *Service) Active() []ToastState {
	return s.registry.Active()
}

// Options resolves a request against the current configuration.
func (s *Service) Options(req Request) (toast.Options, error) {
	return ResolveOptions(s.Config(), req)
}

// Show builds and shows a toast, returning its ID once it is on screen.
// A request whose context ends before the UI loop picks it up is dropped
// and never shown. Once picked up, it completes regardless of ctx.
func (s *Service) Show(ctx context.Context, req Request) (string, error) {
	opts, err := s.Options(req)
	if err != nil {
		return "", err
	}

	// claim is won by either the UI loop (showing) or the caller (abandoning).
	const (
		pending int32 = iota
		showing
		abandoned
	)
	var claim atomic.Int32

	ids := make(chan string, 1)
	s.dispatch(func() {
		if !claim.CompareAndSwap(pending, showing) {
			s.logger.Debug("dropping abandoned toast request", "preset", req.Preset.String())
			return
		}
		ids <- s.show(req.Preset, opts)
	})

	select {
	case id := <-ids:
		s.playSound(req.Preset)
		return id, nil
	case <-ctx.Done():
		if claim.CompareAndSwap(pending, abandoned) {
			return "", ctx.Err()
		}
		id := <-ids
		s.playSound(req.Preset)
		return id, nil
	}
}

func (s *Service) show(preset toast.Preset, opts toast.Options) string {
	n := toast.NewWithOptions(s.backend, opts, s.logger)
	n.OnClose(s.closed)
	s.registry.Register(n.ID(), preset, n.Interval())
	n.Notify()

	s.logger.Info("toast shown",
		"toast_id", n.ID(),
		"preset", preset.String(),
		"position", opts.Position.String(),
	)
	return n.ID()
}

func (s *Service) closed(n *toast.Notification) {
	s.registry.Close(n.ID())
	s.record(n)
	if removed := s.registry.Prune(time.Now().Add(-closedRetention)); removed > 0 {
		s.logger.Debug("pruned closed toasts", "count", removed)
	}

	s.mu.RLock()
	callbacks := append([]func(string){}, s.onClosed...)
	s.mu.RUnlock()

	for _, cb := range callbacks {
		cb(n.ID())
	}
}

func (s *Service) record(n *toast.Notification) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()

	state, ok := s.registry.Get(n.ID())
	if history == nil || !ok {
		return
	}
	if err := history.Add(store.NewRecord(n, state.Preset, state.CreatedAt, state.ClosedAt)); err != nil {
		s.logger.Warn("failed to record toast history", "toast_id", n.ID(), "error", err)
	}
}

func (s *Service) playSound(preset toast.Preset) {
	s.mu.RLock()
	sounds := s.sounds
	s.mu.RUnlock()

	if sounds == nil || preset == toast.PresetNone {
		return
	}
	if err := sounds.PlayForPreset(preset); err != nil {
		s.logger.Warn("failed to play sound", "preset", preset.String(), "error", err)
	}
}

// Status reports when the service started and how many toasts it has
// shown and has open.
func (s *Service) Status() Status {
	return Status{
		StartedAt: s.started,
		Shown:     s.registry.Shown(),
		Active:    uint32(s.registry.ActiveCount()),
	}
}
