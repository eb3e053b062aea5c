package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementLightWrites  = "light_writes"
	measurementShowSessions = "show_sessions"
)

// WriteLightWrite records the outcome of one coordinated light write.
//
// Parameters:
//   - lightID: Light the write targeted
//   - status: Write outcome (written, failed, superseded, cancelled)
//   - latency: Controller call duration; zero for writes that never fired
func (c *Client) WriteLightWrite(lightID, status string, latency time.Duration) {
	c.writePoint(measurementLightWrites,
		map[string]string{
			"light_id": lightID,
			"status":   status,
		},
		map[string]any{
			"latency_ms": float64(latency.Microseconds()) / 1000,
			"count":      int64(1),
		},
	)
}

// WriteSessionEvent records a show session lifecycle event.
//
// Parameters:
//   - showID: Show the session runs
//   - event: started, or the end reason (stopped, superseded, completed, failed)
//   - lights: Number of lights in the session
func (c *Client) WriteSessionEvent(showID, event string, lights int) {
	c.writePoint(measurementShowSessions,
		map[string]string{
			"show_id": showID,
			"event":   event,
		},
		map[string]any{
			"lights": int64(lights),
		},
	)
}

// RecordWrite lets the client serve as the write coordinator's recorder.
func (c *Client) RecordWrite(lightID, status string, latency time.Duration) {
	c.WriteLightWrite(lightID, status, latency)
}

// RecordSessionEvent lets the client serve as the engine's event recorder.
func (c *Client) RecordSessionEvent(showID, event string, lights int) {
	c.WriteSessionEvent(showID, event, lights)
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
