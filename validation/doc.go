// Package validation validates configuration structs for simpleioc
// applications.
//
// Struct tag validation uses go-playground/validator. Field names in errors
// follow the mapstructure tag, so they match the keys of config.yml:
//
//	type Container struct {
//	    Tracing bool   `mapstructure:"tracing"`
//	    Name    string `mapstructure:"name" validate:"required"`
//	}
//	err := validation.Validate(cfg) // INVALID_INPUT: container.name: is required
//
// Cross-field rules are collected with a Validator:
//
//	v := validation.New()
//	v.Custom(cfg.Endpoint != "" || !cfg.Tracing, "observability.endpoint", "is required when tracing is on")
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
