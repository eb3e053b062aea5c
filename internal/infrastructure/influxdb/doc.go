// Package influxdb records Luminary telemetry in InfluxDB v2.
//
// Two measurements are written:
//
//	light_writes    tags: light_id, status        fields: latency_ms, count
//	show_sessions   tags: show_id, event          fields: lights
//
// Writes use the client's non-blocking batched API, so recording never
// stalls a show or the write coordinator. Asynchronous write failures are
// reported through SetOnError.
//
// The integration is optional: Connect returns ErrDisabled when the
// influxdb section is not enabled, and callers run without telemetry.
package influxdb
