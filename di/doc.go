// Package di provides the service registry used by simpleioc applications.
//
// A Registry maps contract types to either a construction function, whose
// parameters are resolved from the registry (constructor injection), or to
// keyed factories. Instances are created lazily on first resolution and
// cached per (contract, key) pair until they are unregistered or the
// registry is reset.
//
// # Registration
//
//	r := di.NewRegistry()
//	err := di.Register[Logger](r, NewConsoleLogger)          // func() *ConsoleLogger
//	err = di.Register[*Service](r, NewService)                // func(Logger, *Repo) (*Service, error)
//	err = di.RegisterFactory[*Clock](r, func(di.Resolver) (*Clock, error) {
//	    return &Clock{Seed: 1}, nil
//	}, di.WithKey("test"))
//
// # Resolution
//
//	svc := di.MustGetInstance[*Service](r, "")
//	clock, err := di.GetInstance[*Clock](r, "test")
//
// Factories and construction functions run while the registry lock is held.
// A factory that needs other services must resolve them through the
// Resolver it is handed, never through the outer *Registry.
package di
