// Package store keeps a persistent history of closed toasts.
package store

import (
	"time"

	"github.com/jmylchreest/easytoast/internal/toast"
)

// Record is one closed toast as written to the history file.
type Record struct {
	ID       string    `json:"id"`
	Preset   string    `json:"preset,omitempty"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	Position string    `json:"position"`
	ShownAt  time.Time `json:"shown_at"`
	ClosedAt time.Time `json:"closed_at"`
}

// NewRecord captures a toast that has just closed.
func NewRecord(n *toast.Notification, preset toast.Preset, shownAt, closedAt time.Time) Record {
	rec := Record{
		ID:       n.ID(),
		Title:    n.Title(),
		Text:     n.Text(),
		Position: n.Position().String(),
		ShownAt:  shownAt,
		ClosedAt: closedAt,
	}
	if preset != toast.PresetNone {
		rec.Preset = preset.String()
	}
	return rec
}

// Duration returns how long the toast was on screen.
func (r Record) Duration() time.Duration {
	if r.ClosedAt.Before(r.ShownAt) {
		return 0
	}
	return r.ClosedAt.Sub(r.ShownAt)
}
