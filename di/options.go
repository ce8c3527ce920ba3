package di

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/simpleioc/logger"
)

// Option configures a Registry at construction.
type Option func(*registryOptions)

type registryOptions struct {
	logger         *logger.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithLogger sets the logger the registry writes its debug events to.
// The registry tags it with the "di" component and its own ID.
func WithLogger(l *logger.Logger) Option {
	return func(o *registryOptions) {
		o.logger = l
	}
}

// WithTracerProvider enables a span per resolution.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *registryOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider enables resolution and registration counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *registryOptions) {
		o.meterProvider = mp
	}
}

// RegisterOption configures a single registration call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	key       string
	immediate bool
}

// WithKey registers a factory under a named key. Only valid for factories.
func WithKey(key string) RegisterOption {
	return func(o *registerOptions) {
		o.key = key
	}
}

// Immediately resolves the registration eagerly, caching the instance.
func Immediately() RegisterOption {
	return func(o *registerOptions) {
		o.immediate = true
	}
}

func applyRegisterOptions(opts []RegisterOption) registerOptions {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
