// Package lightctl delivers colour writes to physical lights.
//
// MQTTController implements writequeue.Controller by publishing a JSON
// command per write to luminary/command/light/{light_id}. A protocol bridge
// (or the light firmware itself) subscribes to those topics and drives the
// hardware. The controller does not wait for a state echo; a write counts
// as delivered once the broker acknowledges the publish at the configured
// QoS.
package lightctl
