// Package config loads and validates Luminary configuration.
//
// Values come from three layers, each overriding the last: built-in
// defaults, a YAML file, and LUMINARY_* environment variables. Validate
// reports every problem at once rather than stopping at the first.
//
// Credentials (MQTT password, InfluxDB token) should be supplied through
// the environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.Name)
package config
