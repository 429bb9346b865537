package daemon

import (
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/easytoast/internal/toast"
)

// ToastStatus is where a tracked toast is in its life.
type ToastStatus int

const (
	// ToastStatusActive means the toast is on screen.
	ToastStatusActive ToastStatus = iota
	// ToastStatusClosed means the close timer fired.
	ToastStatusClosed
)

// String returns the string representation of ToastStatus.
func (s ToastStatus) String() string {
	switch s {
	case ToastStatusActive:
		return "active"
	case ToastStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ToastStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ToastState tracks one toast shown by the service.
type ToastState struct {
	ID        string       `json:"id"`
	Preset    toast.Preset `json:"preset"`
	Status    ToastStatus  `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	ClosedAt  time.Time    `json:"closed_at,omitzero"`
}

// Registry maps toast IDs to their state. It is written from the UI loop
// and read from transport goroutines.
type Registry struct {
	mu    sync.RWMutex
	now   func() time.Time
	byID  map[string]*ToastState
	shown uint32
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		now:  time.Now,
		byID: make(map[string]*ToastState),
	}
}

// Register records a toast that has just been shown.
func (r *Registry) Register(id string, preset toast.Preset, interval time.Duration) ToastState {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	state := &ToastState{
		ID:        id,
		Preset:    preset,
		Status:    ToastStatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(interval),
	}
	r.byID[id] = state
	r.shown++
	return *state
}

// Close marks a toast closed. Unknown IDs are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.byID[id]
	if !ok || state.Status == ToastStatusClosed {
		return
	}
	state.Status = ToastStatusClosed
	state.ClosedAt = r.now()
}

// Get returns a copy of the state for id.
func (r *Registry) Get(id string) (ToastState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.byID[id]
	if !ok {
		return ToastState{}, false
	}
	return *state, true
}

// Active returns the open toasts, oldest first.
func (r *Registry) Active() []ToastState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []ToastState
	for _, state := range r.byID {
		if state.Status == ToastStatusActive {
			active = append(active, *state)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}

// ActiveCount returns the number of open toasts.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, state := range r.byID {
		if state.Status == ToastStatusActive {
			count++
		}
	}
	return count
}

// Shown returns how many toasts have been registered.
func (r *Registry) Shown() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shown
}

// Prune forgets toasts that closed before cutoff and returns how many
// were removed.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, state := range r.byID {
		if state.Status == ToastStatusClosed && state.ClosedAt.Before(cutoff) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}
