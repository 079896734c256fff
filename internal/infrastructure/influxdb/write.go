package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// StatusMeasurement holds one point per device lifecycle transition.
const StatusMeasurement = "device_status"

// WriteDeviceStatus records a lifecycle transition of a device.
//
// The status is stored both as a tag (for grouping) and as a string field,
// since InfluxDB requires at least one field per point.
//
// Parameters:
//   - deviceID: Unique device identifier (e.g., "amp-1")
//   - status: The status just entered (e.g., "connected")
//   - timestamp: When the transition happened
func (c *Client) WriteDeviceStatus(deviceID, status string, timestamp time.Time) {
	c.WritePointWithTime(StatusMeasurement,
		map[string]string{
			"device_id": deviceID,
			"status":    status,
		},
		map[string]interface{}{
			"value": status,
		},
		timestamp,
	)
}

// WritePoint writes a custom point timestamped now.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// The telemetry reporter uses this to stamp counter snapshots with the time
// they were taken rather than the time they were flushed. Writes on a
// disconnected client are dropped.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
