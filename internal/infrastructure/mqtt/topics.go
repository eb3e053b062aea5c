package mqtt

import "fmt"

// Topic roots.
const (
	// TopicPrefix is the base for every Luminary topic.
	TopicPrefix = "luminary"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Luminary MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.LightCommand("par-1") // "luminary/command/light/par-1"
type Topics struct{}

// LightCommand returns the topic colour commands for a light are published on.
func (Topics) LightCommand(lightID string) string {
	return fmt.Sprintf("%s/command/light/%s", TopicPrefix, lightID)
}

// LightState returns the topic a light controller reports its state on.
func (Topics) LightState(lightID string) string {
	return fmt.Sprintf("%s/state/light/%s", TopicPrefix, lightID)
}

// AllLightStates matches every light state topic.
func (Topics) AllLightStates() string {
	return TopicPrefix + "/state/light/+"
}

// AudioLevel returns the topic amplitude/frequency samples arrive on.
func (Topics) AudioLevel() string {
	return TopicPrefix + "/audio/level"
}

// ShowEvent returns the topic session lifecycle events for a show are
// published on, e.g. luminary/show/strobe/started.
func (Topics) ShowEvent(showID, event string) string {
	return fmt.Sprintf("%s/show/%s/%s", TopicPrefix, showID, event)
}

// SystemStatus returns the retained online/offline status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllTopics matches every Luminary topic.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
