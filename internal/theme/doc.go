// Package theme handles CSS theming for GTK toasts: bundled and user
// stylesheets with @import inlining, per-toast palette rules, and polling
// hot-reload. User themes live in ~/.config/easytoast/themes/ and shadow
// bundled themes of the same name.
package theme
