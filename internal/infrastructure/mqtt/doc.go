// Package mqtt provides MQTT client connectivity for Haunt Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Haunt Core uses MQTT as its inbound event bus: the camera's person-count
// detections and the portal device's state reports arrive as bus messages.
// Core also publishes its own service status and scenario lifecycle events.
//
//	Camera / Portal firmware → MQTT Broker → Haunt Core
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to person-count detections
//	err = client.Subscribe(cfg.MQTT.Topics.Person, 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a scenario event
//	topic := mqtt.Topics{}.ScenarioEvent("triggered")
//	client.Publish(topic, []byte(`{"origin":"bus"}`), 1, false)
package mqtt
