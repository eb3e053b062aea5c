// Package audio provides level sources for sound-reactive shows.
//
// Capturing and analysing audio happens outside Luminary. This package only
// receives the resulting amplitude and dominant-frequency readings, both
// normalised to [0, 1], and exposes them through show.LevelSource:
//
//   - MQTTSource reads JSON readings from luminary/audio/level.
//   - MIDISource turns note-on events from a MIDI input into readings, so a
//     drum pad or sequencer can drive the show.
//   - StaticSource holds a value set by hand, for tests and manual control.
//
// Readings fade out linearly over the configured decay and are reported as
// absent once older than the stale window.
package audio
