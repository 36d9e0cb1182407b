package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// boolToFloat converts a liveness flag to a gaugeable value.
func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// RecordTrigger writes a scenario trigger event.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - source: What admitted the trigger ("manual", "camera")
func (c *Client) RecordTrigger(source string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scenario_triggers",
		map[string]string{
			"source": source,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordSequence writes the outcome of a finished effect sequence.
//
// Parameters:
//   - duration: Wall-clock length of the sequence
//   - aborted: Whether an operator abort cut it short
func (c *Client) RecordSequence(duration time.Duration, aborted bool) {
	if !c.IsConnected() {
		return
	}

	outcome := "completed"
	if aborted {
		outcome = "aborted"
	}

	point := write.NewPoint(
		"scenario_sequences",
		map[string]string{
			"outcome": outcome,
		},
		map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordLiveness writes the device reachability gauges.
//
// Written on every probe so the dashboard history shows outage windows,
// not just transitions.
func (c *Client) RecordLiveness(portalOnline, lightingAvailable, busConnected bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_liveness",
		nil,
		map[string]interface{}{
			"portal_online":      boolToFloat(portalOnline),
			"lighting_available": boolToFloat(lightingAvailable),
			"bus_connected":      boolToFloat(busConnected),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordVisitorCount writes the current visitor tally.
func (c *Client) RecordVisitorCount(count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"visitors",
		nil,
		map[string]interface{}{
			"count": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
