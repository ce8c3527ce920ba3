package di

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/simpleioc/errors"
	"github.com/kbukum/simpleioc/logger"
)

// Resolver resolves instances by contract type. Both *Registry and the
// resolver handed to factories implement it.
type Resolver interface {
	// Resolve returns the cached instance for (contract, key), creating and
	// caching it on first use. An empty key selects the default key.
	Resolve(contract reflect.Type, key string) (any, error)
	// ResolveWithoutCaching always invokes the factory and never touches the cache.
	ResolveWithoutCaching(contract reflect.Type, key string) (any, error)
}

// Resolve implements Resolver.
func (r *Registry) Resolve(contract reflect.Type, key string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(contract, key, true)
}

// ResolveWithoutCaching implements Resolver.
func (r *Registry) ResolveWithoutCaching(contract reflect.Type, key string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(contract, key, false)
}

// resolveLocked runs one top-level resolution. The caller holds r.mu.
func (r *Registry) resolveLocked(contract reflect.Type, key string, cache bool) (any, error) {
	s := r.newScope()
	defer s.close()
	return s.resolve(contract, key, cache)
}

// slot identifies one (contract, key) pair being resolved.
type slot struct {
	contract reflect.Type
	key      string
}

// scope is one top-level call's view of the registry. The caller holds the
// lock for its whole lifetime, so nested resolutions never lock again.
type scope struct {
	r      *Registry
	ctx    context.Context
	stack  []slot
	closed bool
}

func (r *Registry) newScope() *scope {
	return &scope{r: r, ctx: context.Background()}
}

func (s *scope) close() { s.closed = true }

// Resolve implements Resolver.
func (s *scope) Resolve(contract reflect.Type, key string) (any, error) {
	return s.resolve(contract, key, true)
}

// ResolveWithoutCaching implements Resolver.
func (s *scope) ResolveWithoutCaching(contract reflect.Type, key string) (any, error) {
	return s.resolve(contract, key, false)
}

func (s *scope) resolve(contract reflect.Type, key string, cache bool) (instance any, err error) {
	r := s.r
	name := typeName(contract)
	if s.closed {
		return nil, errors.Activation(name, "Resolver used after its factory returned.")
	}
	key = r.normalize(key)

	outcome := "created"
	ctx, span := r.telemetry.startResolve(s.ctx, name, r.displayKey(key), cache)
	parent := s.ctx
	s.ctx = ctx
	defer func() {
		s.ctx = parent
		if err != nil {
			outcome = "error"
		}
		r.telemetry.endResolve(ctx, span, name, outcome, err)
	}()

	bucket, ok := r.instances[contract]
	if !ok {
		if _, registered := r.contracts[contract]; !registered {
			return nil, errors.Activation(name, fmt.Sprintf("Type not found in cache: %s.", name))
		}
		if cache {
			bucket = make(map[string]any)
			r.instances[contract] = bucket
		}
	}

	if cache {
		if v, hit := bucket[key]; hit {
			outcome = "hit"
			return v, nil
		}
	}

	f, err := r.factoryFor(contract, key)
	if err != nil {
		return nil, err
	}

	current := slot{contract: contract, key: key}
	for _, sl := range s.stack {
		if sl == current {
			return nil, errors.Activation(name,
				fmt.Sprintf("Circular dependency detected: %s.", s.path(current))).
				WithDetail("key", r.displayKey(key))
		}
	}
	s.stack = append(s.stack, current)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()

	v, err := f(s)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Activation(name, fmt.Sprintf("Factory for %s failed.", name)).
			WithDetail("key", r.displayKey(key)).
			WithCause(err)
	}

	if cache {
		bucket[key] = v
	}
	r.log.Debug("Instance created", logger.Fields(
		logger.FieldContract, name,
		logger.FieldKey, r.displayKey(key),
		"cached", cache,
	))
	return v, nil
}

// factoryFor returns the factory for key, falling back to the default key.
func (r *Registry) factoryFor(contract reflect.Type, key string) (factory, error) {
	fs := r.factories[contract]
	if f, ok := fs[key]; ok {
		return f, nil
	}
	if f, ok := fs[r.defaultKey]; ok {
		return f, nil
	}
	name := typeName(contract)
	return nil, errors.Activation(name, fmt.Sprintf("Type not found in cache without a key: %s", name)).
		WithDetail("key", r.displayKey(key))
}

func (s *scope) path(last slot) string {
	parts := make([]string, 0, len(s.stack)+1)
	for _, sl := range append(s.stack, last) {
		p := typeName(sl.contract)
		if k := s.r.displayKey(sl.key); k != "" {
			p += "(" + k + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " -> ")
}

// GetInstance resolves T with type safety, creating and caching it on first use.
// An empty key selects the default key.
//
// Example:
//
//	clock, err := di.GetInstance[*Clock](r, "test")
func GetInstance[T any](res Resolver, key string) (T, error) {
	v, err := res.Resolve(reflect.TypeFor[T](), key)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// GetInstanceWithoutCaching resolves a fresh, unshared T.
func GetInstanceWithoutCaching[T any](res Resolver, key string) (T, error) {
	v, err := res.ResolveWithoutCaching(reflect.TypeFor[T](), key)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// MustGetInstance resolves T and panics on error.
// Use this during wiring, where a missing service is a programming error.
func MustGetInstance[T any](res Resolver, key string) T {
	v, err := GetInstance[T](res, key)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", reflect.TypeFor[T](), err))
	}
	return v
}

// TryGetInstance resolves T, returning false instead of an error.
// Use this when a dependency is optional.
//
//	if metrics, ok := di.TryGetInstance[Metrics](r, ""); ok {
//	    metrics.Record(...)
//	}
func TryGetInstance[T any](res Resolver, key string) (T, bool) {
	v, err := GetInstance[T](res, key)
	if err != nil {
		return v, false
	}
	return v, true
}

// cast is the single downcast from the type-erased tables to T.
func cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		name := typeName(reflect.TypeFor[T]())
		return zero, errors.Activation(name, fmt.Sprintf("Instance of %T is not a %s.", v, name))
	}
	return t, nil
}
