// Package influxdb provides InfluxDB connectivity for Haunt Core.
//
// It wraps the official influxdb-client-go v2 library with Haunt
// Core-specific patterns for connection management, metric writing,
// and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Scenario trigger events and sequence outcomes
//   - Device liveness gauges (portal, lighting, bus)
//   - Visitor tally history
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "hauntcore",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordTrigger("camera")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead without blocking the scenario engine.
package influxdb
