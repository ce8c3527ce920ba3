package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/simpleioc/errors"
	"github.com/kbukum/simpleioc/logger"
)

// Registry is the service registry and resolver.
//
// All four tables are guarded by one mutex, held for the whole of every
// public call including factory invocation.
type Registry struct {
	id         string
	defaultKey string

	mu sync.Mutex
	// contract -> implementation; nil means the contract is served by factories only
	contracts map[reflect.Type]reflect.Type
	// implementation -> construction function, selected once
	constructors map[reflect.Type]*constructor
	// contract -> key -> factory
	factories map[reflect.Type]map[string]factory
	// contract -> key -> cached instance
	instances map[reflect.Type]map[string]any

	log       *logger.Logger
	telemetry *telemetry
}

// factory produces one instance. It always runs with the registry lock held.
type factory func(s *scope) (any, error)

// Factory produces an instance of T. The Resolver is only valid for the
// duration of the call.
type Factory[T any] func(res Resolver) (T, error)

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	log := logger.Get("di")
	if o.logger != nil {
		log = o.logger.WithComponent("di")
	}

	r := &Registry{
		id: id,
		// a fresh UUID can never collide with a caller supplied key
		defaultKey: uuid.NewString(),
		log:        log.WithFields(logger.Fields(logger.FieldRegistryID, id)),
		telemetry:  newTelemetry(o.tracerProvider, o.meterProvider),
	}
	r.clear()
	return r
}

// ID returns the registry identity used in log fields.
func (r *Registry) ID() string {
	return r.id
}

func (r *Registry) clear() {
	r.contracts = make(map[reflect.Type]reflect.Type)
	r.constructors = make(map[reflect.Type]*constructor)
	r.factories = make(map[reflect.Type]map[string]factory)
	r.instances = make(map[reflect.Type]map[string]any)
}

// Register binds contract I to the implementation returned by constructor.
//
// constructor must be a function whose parameters are the dependencies to
// inject and whose results are (C) or (C, error), with C a concrete type
// assignable to I. Registering the same implementation twice is a no-op;
// registering a different one fails with a CONFLICT error. Factories already
// registered under explicit keys are kept; a factory under the default key
// makes the call fail.
//
// Constructors are memoized per implementation type: when C was already
// registered for another contract, the first constructor keeps serving it and
// constructor is never called.
func Register[I any](r *Registry, constructor any, opts ...RegisterOption) error {
	return r.register(reflect.TypeFor[I](), constructor, applyRegisterOptions(opts))
}

// RegisterFactory binds contract T (under an optional key) to a factory.
func RegisterFactory[T any](r *Registry, f Factory[T], opts ...RegisterOption) error {
	contract := reflect.TypeFor[T]()
	if f == nil {
		return errors.InvalidArgument("factory", "factory cannot be nil").
			WithDetail("contract", typeName(contract))
	}
	return r.registerFactory(contract, applyRegisterOptions(opts), func(s *scope) (any, error) {
		v, err := f(s)
		if err != nil {
			return nil, err
		}
		return v, nil
	}, "factory")
}

// RegisterInstance binds contract T to an existing value and caches it at once.
func RegisterInstance[T any](r *Registry, instance T, opts ...RegisterOption) error {
	return r.registerFactory(reflect.TypeFor[T](), applyRegisterOptions(append(opts, Immediately())),
		func(*scope) (any, error) { return instance, nil }, "instance")
}

func (r *Registry) register(contract reflect.Type, fn any, o registerOptions) error {
	name := typeName(contract)
	if o.key != "" {
		return errors.InvalidArgument("key", "a keyed registration requires a factory").
			WithDetail("contract", name)
	}

	ctor, err := newConstructor(fn)
	if err != nil {
		return err.WithDetail("contract", name)
	}
	impl := ctor.impl
	if impl.Kind() == reflect.Interface {
		return errors.InvalidArgument("constructor",
			fmt.Sprintf("an interface cannot be registered alone: %s", typeName(impl))).
			WithDetail("contract", name)
	}
	if !impl.AssignableTo(contract) {
		return errors.InvalidArgument("constructor",
			fmt.Sprintf("%s is not assignable to %s", typeName(impl), name)).
			WithDetail("contract", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, mapped := r.contracts[contract]
	if mapped {
		// keyed-only factories leave the default key free for the constructor
		_, hasDefault := r.factories[contract][r.defaultKey]
		switch {
		case existing == nil && hasDefault && impl == contract:
			return errors.AlreadyRegistered(name, "")
		case existing == nil && hasDefault:
			return errors.Conflict(name, "factory", typeName(impl))
		case existing != nil && existing != impl:
			return errors.Conflict(name, typeName(existing), typeName(impl))
		case existing == impl:
			if o.immediate {
				_, err := r.resolveLocked(contract, r.defaultKey, true)
				return err
			}
			return nil
		}
	}

	_, hadCtor := r.constructors[impl]
	if !hadCtor {
		r.constructors[impl] = ctor
	}
	_, hadBucket := r.instances[contract]
	r.contracts[contract] = impl
	r.addFactory(contract, r.defaultKey, r.injectingFactory(impl))

	if o.immediate {
		if _, err := r.resolveLocked(contract, r.defaultKey, true); err != nil {
			r.rollbackConstructor(contract, impl, mapped, hadCtor, hadBucket)
			return err
		}
	}

	r.telemetry.registered(context.Background(), name, "constructor")
	r.log.Debug("Contract registered", logger.Fields(
		logger.FieldContract, name,
		logger.FieldImplementation, typeName(impl),
		"immediate", o.immediate,
	))
	return nil
}

// rollbackConstructor undoes a constructor registration whose eager
// resolution failed, leaving keyed factories registered before it intact.
func (r *Registry) rollbackConstructor(contract, impl reflect.Type, mapped, hadCtor, hadBucket bool) {
	if mapped {
		r.contracts[contract] = nil
	} else {
		delete(r.contracts, contract)
	}
	delete(r.factories[contract], r.defaultKey)
	if len(r.factories[contract]) == 0 {
		delete(r.factories, contract)
	}
	if hadBucket {
		delete(r.instances[contract], r.defaultKey)
	} else {
		delete(r.instances, contract)
	}
	if !hadCtor {
		delete(r.constructors, impl)
	}
}

func (r *Registry) registerFactory(contract reflect.Type, o registerOptions, f factory, kind string) error {
	name := typeName(contract)
	key := r.normalize(o.key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.factories[contract][key]; dup {
		return errors.AlreadyRegistered(name, o.key)
	}

	_, mapped := r.contracts[contract]
	if !mapped {
		r.contracts[contract] = nil
	}
	_, hadBucket := r.instances[contract]
	r.addFactory(contract, key, f)

	if o.immediate {
		if _, err := r.resolveLocked(contract, key, true); err != nil {
			delete(r.factories[contract], key)
			if len(r.factories[contract]) == 0 {
				delete(r.factories, contract)
			}
			if !mapped {
				delete(r.contracts, contract)
			}
			if !hadBucket {
				delete(r.instances, contract)
			}
			return err
		}
	}

	r.telemetry.registered(context.Background(), name, kind)
	r.log.Debug("Factory registered", logger.Fields(
		logger.FieldContract, name,
		logger.FieldKey, o.key,
		"immediate", o.immediate,
	))
	return nil
}

func (r *Registry) addFactory(contract reflect.Type, key string, f factory) {
	fs, ok := r.factories[contract]
	if !ok {
		fs = make(map[string]factory)
		r.factories[contract] = fs
	}
	fs[key] = f
}

// injectingFactory builds impl through its memoized constructor.
func (r *Registry) injectingFactory(impl reflect.Type) factory {
	return func(s *scope) (any, error) {
		ctor, ok := r.constructors[impl]
		if !ok {
			return nil, errors.Activation(typeName(impl),
				fmt.Sprintf("No constructor registered for %s.", typeName(impl)))
		}
		return ctor.build(s)
	}
}

// normalize maps the absent key to the private default key.
func (r *Registry) normalize(key string) string {
	if key == "" {
		return r.defaultKey
	}
	return key
}

// displayKey hides the default key from errors, logs and spans.
func (r *Registry) displayKey(key string) string {
	if key == r.defaultKey {
		return ""
	}
	return key
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
