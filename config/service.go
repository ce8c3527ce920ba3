package config

import (
	"github.com/kbukum/simpleioc/logger"
	"github.com/kbukum/simpleioc/observability"
	"github.com/kbukum/simpleioc/validation"
)

// Environments accepted by ServiceConfig.Validate.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the configuration fields every simpleioc
// application needs. Projects extend this by embedding it in their own
// config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Clock ClockConfig `yaml:"clock" mapstructure:"clock"`
//	}
type ServiceConfig struct {
	Name          string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Version       string               `yaml:"version" mapstructure:"version"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Container     ContainerConfig      `yaml:"container" mapstructure:"container"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ContainerConfig toggles instrumentation of the service registry.
type ContainerConfig struct {
	// Tracing records a span per resolution.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics counts registrations and resolutions.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
}

// Instrumented reports whether any registry telemetry is enabled.
func (c ContainerConfig) Instrumented() bool {
	return c.Tracing || c.Metrics
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = "0.0.0"
	}
	c.Logging.ApplyDefaults()
	if c.Container.Instrumented() {
		c.Observability.ApplyDefaults()
	}
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	v := validation.New()
	v.Merge("config", validation.Validate(c))
	v.OneOf("environment", c.Environment, Environments)
	v.Custom(c.Environment != "", "environment", "is required")
	v.Merge("logging", c.Logging.Validate())
	v.Custom(!c.Container.Instrumented() || c.Observability.Endpoint != "",
		"observability.endpoint", "is required when container tracing or metrics is on")

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
