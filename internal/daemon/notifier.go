package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/easytoast/internal/toast"
)

// noticeTimeout bounds how long an internal notice waits for the UI loop.
const noticeTimeout = 2 * time.Second

// ShowFunc shows a toast for a request. Service.Show satisfies it.
type ShowFunc func(ctx context.Context, req Request) (string, error)

// InternalNotifier shows toasts about the daemon's own events, such as a
// configuration reload. The same key is not shown twice within the
// minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	show ShowFunc

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a notifier that shows notices through show.
func NewInternalNotifier(show ShowFunc, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		now:            time.Now,
		show:           show,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows a notice unless one with the same key was shown recently.
// It reports whether the notice was shown.
func (n *InternalNotifier) Notify(key, title, text string, preset toast.Preset) bool {
	n.mu.Lock()
	if !n.enabled || n.show == nil {
		n.mu.Unlock()
		return false
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notice rate-limited", "key", key)
		return false
	}
	n.lastNotifyTime[key] = now
	show := n.show
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), noticeTimeout)
	defer cancel()

	if _, err := show(ctx, Request{Preset: preset, Title: title, Text: text}); err != nil {
		n.logger.Warn("failed to show internal notice", "key", key, "error", err)
		return false
	}
	return true
}

// NotifyConfigReloaded shows that the configuration was reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"easytoast configuration has been reloaded.", toast.PresetInfo)
}

// NotifyConfigError shows that a changed configuration was rejected.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), toast.PresetError)
}

// NotifyThemeError shows that a theme could not be loaded.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme Error",
		"Failed to load theme: "+err.Error(), toast.PresetError)
}

// NotifyStartup shows that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "easytoast Started",
		"Toast service v"+version+" is now running.", toast.PresetSuccess)
}
