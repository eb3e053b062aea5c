// Package engine runs light shows.
//
// The Engine owns at most one running Session. Applying a show cancels the
// running session, waits for its loop to exit and only then starts the new
// one, so two shows never write to the lights at the same time.
//
// The engine does not debounce. Colours go straight from the show to the
// Writer (a writequeue.Coordinator in production) and to the preview
// callback. Stopping a session leaves writes already queued in the
// coordinator alone; StopAll cancels those too.
//
// Session starts and ends are recorded through a SessionRepository when one
// is configured. History failures are logged and never block a show.
package engine
