// Package influxdb provides InfluxDB connectivity for the biosignal daemon.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched writes and health monitoring.
//
// Two kinds of points are written:
//   - device_telemetry: periodic counter snapshots from the telemetry reporter
//   - device_status: one point per device lifecycle transition
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	reporter, _ := telemetry.NewReporter(telemetry.ReporterConfig{
//	    Source: registry,
//	    Sink:   client,
//	})
//
// # Error Handling
//
// Writes are non-blocking; batch failures are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
