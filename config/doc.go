// Package config loads and validates the configuration of simpleioc
// applications.
//
// It uses Viper to read config.yml and binds environment variables (and a
// .env file, via godotenv) on top of it. Keys are nested with dots, and an
// environment variable such as CONTAINER_TRACING=true sets container.tracing.
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Clock ClockConfig `yaml:"clock" mapstructure:"clock"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("orders", &cfg, config.WithEnvPrefix("ORDERS"))
package config
