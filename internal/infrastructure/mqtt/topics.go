package mqtt

import "fmt"

// Topic prefixes for the biosignal daemon.
//
// Device topics use the scheme: biosignal/device/{device_id}/{kind}
const (
	// TopicPrefix is the root of every topic the daemon publishes.
	TopicPrefix = "biosignal"

	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = TopicPrefix + "/device"

	// TopicPrefixSystem is the base for daemon-wide topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for biosignal MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	statusTopic := mqtt.Topics{}.DeviceStatus("amp-1")
//	// Returns: "biosignal/device/amp-1/status"
type Topics struct{}

// DeviceStatus returns the retained lifecycle status topic of a device.
//
// Example: biosignal/device/amp-1/status
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevice, deviceID)
}

// SystemStatus returns the daemon online/offline topic (also used for the LWT).
//
// Example: biosignal/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
