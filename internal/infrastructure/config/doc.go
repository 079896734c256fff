// Package config handles loading and validating biosignal daemon configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with BSA_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - MQTT passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/biosignald.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range cfg.Devices {
//	    fmt.Println(d.ID, d.Address)
//	}
package config
