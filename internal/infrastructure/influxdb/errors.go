package influxdb

import "errors"

var (
	// ErrNotConnected is returned once the client has been closed.
	ErrNotConnected = errors.New("influxdb: client closed")

	// ErrConnectionFailed is returned when the server does not answer the
	// startup ping.
	ErrConnectionFailed = errors.New("influxdb: server unreachable")

	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: telemetry disabled")
)
