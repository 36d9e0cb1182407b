package mqtt

import "fmt"

// Topic prefixes for topics Haunt Core itself publishes.
//
// Inbound topics (person detection, portal state reports) belong to external
// systems and are configured in config.yaml rather than built here.
const (
	// TopicPrefixCore is the base for core-published event topics.
	TopicPrefixCore = "hauntcore/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hauntcore/system"
)

// Topics provides builders for Haunt Core MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the service status topic (online/offline, LWT).
//
// Example: hauntcore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// ScenarioEvent returns the topic for scenario lifecycle events.
//
// Example: hauntcore/core/scenario/triggered
func (Topics) ScenarioEvent(event string) string {
	return fmt.Sprintf("%s/scenario/%s", TopicPrefixCore, event)
}
