// Package toast implements a self-closing notification popup.
//
// A Notification owns one surface from a Backend. It positions itself at
// one of nine screen anchors, grows to fit its message and closes itself
// once after its interval. The lifecycle is Created, Shown, Closed; there
// is no way back and no manual dismissal.
package toast
