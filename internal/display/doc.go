// Package display draws toasts as GTK4 layer-shell surfaces.
// Every call into this package must happen on the GTK main loop; use
// Backend.Dispatch to get there from other goroutines.
package display
