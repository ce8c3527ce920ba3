// Package bootstrap is the process-wide context object of a simpleioc
// application. An App owns exactly one *di.Registry, created from the typed
// config, and gives it a documented lifecycle.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return di.Register[Logger](a.Registry, NewConsoleLogger)
//	})
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return di.MustGetInstance[*Service](app.Registry, "").Run(ctx)
//	})
//
// NewApp applies config defaults, validates, initializes the logger and
// creates the registry (instrumented when container tracing or metrics is
// on). Shutdown runs the stop hooks, closes the registry and flushes
// telemetry.
package bootstrap
