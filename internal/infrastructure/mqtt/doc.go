// Package mqtt provides MQTT client connectivity for the biosignal daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained publishing of device lifecycle statuses
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	biosignal/system/status           daemon online/offline (retained, LWT)
//	biosignal/device/{id}/status      device lifecycle status (retained)
//	biosignal/device/{id}/telemetry   counter snapshots
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) outside the lab network
//   - Pass the password through BSA_MQTT_PASSWORD rather than the config file
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceStatus("amp-1")
//	client.PublishRetained(topic, []byte(`{"status":"connected"}`))
package mqtt
