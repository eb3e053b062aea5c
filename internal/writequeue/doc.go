// Package writequeue debounces colour writes on their way to a light
// controller.
//
// Light hardware is slow and rate-limited. A running show can produce many
// colours for the same light inside a few milliseconds, and sending each one
// would build a backlog the device works through long after the show has
// moved on. The Coordinator keeps at most one pending write per light:
//
//   - SetColor replaces any pending write for the same light. The replaced
//     handle resolves as superseded.
//   - A pending write fires once the debounce interval passes with no newer
//     call for that light, carrying the latest colour.
//   - Lights debounce independently of each other.
//   - At most one write per light is in flight. A write that becomes due
//     while the previous one is still running waits as the pending entry,
//     where it can still be superseded or cancelled.
//
// Cancel and CancelAll drop pending writes only. A write already handed to
// the controller runs to completion, bounded by the write timeout.
//
// Every outcome is logged and, when a Recorder is set, reported for
// telemetry.
package writequeue
