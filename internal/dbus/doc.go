// Package dbus exports the easytoast service on the session bus and
// provides a client for it.
package dbus
