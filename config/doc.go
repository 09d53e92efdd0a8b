// Package config loads layered configuration for liftkit binaries.
//
// A YAML (or JSON/TOML) file is read first, then a .env file is loaded into
// the process environment, then environment variables override file values.
// With WithEnvPrefix("LIFTKIT") only LIFTKIT_* variables take part, and
// LIFTKIT_BUS_REQUEST_TIMEOUT maps onto bus.request_timeout.
//
//	var cfg AppConfig
//	err := config.LoadConfig("liftkit", &cfg, config.WithConfigFile(path))
package config
