//go:build rtmidi

package main

// The rtmidi driver needs cgo and the platform MIDI libraries (ALSA on
// Linux), so it is only linked into builds tagged rtmidi. Without it the
// midi audio source finds no input ports.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
