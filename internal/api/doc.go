// Package api provides the HTTP REST API and WebSocket preview stream for
// Luminary.
//
// Routes live under /api/v1:
//
//	GET   /health                  component health
//	GET   /shows                   show catalogue
//	GET   /shows/{id}              one show with its settings
//	PATCH /shows/{id}/config       merge new settings into a show
//	POST  /shows/{id}/apply        start a show on a set of lights
//	POST  /session/stop            stop the running show (?all=true also drops pending writes)
//	GET   /session                 the running session, if any
//	GET   /sessions                session history, newest first
//	GET   /audit                   control actions, newest first (?action=, ?show_id=, ?limit=, ?offset=)
//	GET   /ws                      WebSocket preview stream
//
// The browser preview page is served at /panel/.
//
// When api.auth.jwt_secret is set, PATCH /shows/{id}/config, POST
// /shows/{id}/apply, POST /session/stop and GET /audit need a bearer token
// with the control scope. Everything else stays open.
//
// WebSocket clients subscribe to channels; light.preview carries every
// colour a show computes and session.changed carries session starts and
// stops.
package api
