// Package daemon turns toast requests into on-screen toasts for the
// easytoast service. It coordinates the display backend, per-preset
// sounds, live configuration and the registry of open toasts.
package daemon
