// Package observability sets up the OpenTelemetry tracer and meter providers
// that instrument a simpleioc registry.
//
//	p, err := observability.Setup(ctx, cfg.Observability, observability.ServiceInfo{
//	    Name: "orders", Version: "1.2.0", Environment: "production",
//	}, true, true)
//	defer p.Shutdown(ctx)
//
//	r := di.NewRegistry(
//	    di.WithTracerProvider(p.TracerProvider()),
//	    di.WithMeterProvider(p.MeterProvider()),
//	)
//
// Both providers export over OTLP HTTP.
package observability
