// Package audio plays the sound attached to a toast preset.
// Decoding uses beep (WAV, OGG Vorbis, MP3); decoded sounds are cached
// so repeated toasts don't hit the disk.
package audio
