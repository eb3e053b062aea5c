// Package show implements the light show catalogue.
//
// A Show computes colours for a set of positioned lights and runs as a
// cancellable loop. Every computed colour is handed to the preview callback
// and then submitted to a Writer, normally a writequeue.Coordinator that
// debounces writes before they reach the hardware.
//
// Loop shape shared by the variants:
//
//	compute colours → OnUpdate → Writer.SetColor → sleep tick → check ctx
//
// Cancellation is carried by the context passed to Run. Every sleep selects
// on ctx.Done(), so a cancelled show returns within one tick. A cancelled
// Run returns nil; cancellation is not an error.
//
// Show parameters are live: each variant keeps its config behind a
// read/write lock and takes a snapshot once per tick, so edits made while a
// show runs take effect on the next tick.
//
// Sequenced shows (Wave, Rainbow Wave, Snake) additionally implement
// Sequenced and order their lights with a sequence.Strategy.
package show
