package di

import (
	stderrors "errors"
	"reflect"
	"sort"

	"github.com/kbukum/simpleioc/logger"
)

// RegistrationInfo describes one registered contract.
type RegistrationInfo struct {
	Contract       string
	Implementation string // empty when the contract is served by factories only
	Keys           []string
	Created        int
}

// IsRegistered reports whether t is mapped and, when key is non-empty,
// whether a factory exists under that exact key.
func (r *Registry) IsRegistered(t reflect.Type, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[t]; !ok {
		return false
	}
	if key == "" {
		return true
	}
	_, ok := r.factories[t][key]
	return ok
}

// ContainsCreated reports whether an instance of t is cached under key. An
// empty key means the default key, so instances cached only under explicit
// keys are not reported; use CreatedInstances to test for any instance.
func (r *Registry) ContainsCreated(t reflect.Type, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.instances[t][r.normalize(key)]
	return ok
}

// CreatedInstances returns the cached instances of t without creating any.
func (r *Registry) CreatedInstances(t reflect.Type) []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.instances[t]
	out := make([]any, 0, len(bucket))
	for _, k := range orderedKeys(r, bucket) {
		out = append(out, bucket[k])
	}
	return out
}

// AllInstances realizes every keyed factory of t through the cache and
// returns the cached instances, default key first. The first failure aborts.
func (r *Registry) AllInstances(t reflect.Type) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range orderedKeys(r, r.factories[t]) {
		if _, err := r.resolveLocked(t, k, true); err != nil {
			return nil, err
		}
	}

	bucket := r.instances[t]
	out := make([]any, 0, len(bucket))
	for _, k := range orderedKeys(r, bucket) {
		out = append(out, bucket[k])
	}
	return out, nil
}

// Unregister removes every trace of t: its cached instances, its mapping and
// its factories. The construction descriptor of its implementation is kept
// while another contract still maps to it.
func (r *Registry) Unregister(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	impl, mapped := r.contracts[t]
	if impl == nil {
		impl = t
	}

	delete(r.instances, t)
	delete(r.contracts, t)
	delete(r.factories, t)

	shared := false
	for _, other := range r.contracts {
		if other == impl {
			shared = true
			break
		}
	}
	if !shared {
		delete(r.constructors, impl)
	}

	r.log.Debug("Contract unregistered", logger.Fields(
		logger.FieldContract, typeName(t),
		"was_registered", mapped,
	))
}

// UnregisterInstance evicts every cached instance of t identical to v.
// Non-comparable values match nothing. Registrations are untouched.
func (r *Registry) UnregisterInstance(t reflect.Type, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.instances[t]
	removed := 0
	for k, cached := range bucket {
		if same(cached, v) {
			delete(bucket, k)
			removed++
		}
	}
	if removed > 0 {
		r.log.Debug("Instance unregistered", logger.Fields(
			logger.FieldContract, typeName(t),
			logger.FieldCount, removed,
		))
	}
}

// UnregisterKey evicts the cached instance of t under key. The factory stays.
func (r *Registry) UnregisterKey(t reflect.Type, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.instances[t], r.normalize(key))
}

// Reset clears every registration and every cached instance.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clear()
	r.log.Debug("Registry reset")
}

// Registrations lists the registered contracts sorted by name.
// The default key is reported as "".
func (r *Registry) Registrations() []RegistrationInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RegistrationInfo, 0, len(r.contracts))
	for contract, impl := range r.contracts {
		info := RegistrationInfo{
			Contract: typeName(contract),
			Created:  len(r.instances[contract]),
		}
		if impl != nil {
			info.Implementation = typeName(impl)
		}
		for _, k := range orderedKeys(r, r.factories[contract]) {
			info.Keys = append(info.Keys, r.displayKey(k))
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Contract < out[j].Contract })
	return out
}

// Close closes every distinct cached instance that has a Close() error
// method, then resets the registry. Close errors are joined.
func (r *Registry) Close() error {
	type closer interface{ Close() error }

	r.mu.Lock()
	contracts := make([]reflect.Type, 0, len(r.instances))
	for t := range r.instances {
		contracts = append(contracts, t)
	}
	sort.Slice(contracts, func(i, j int) bool { return typeName(contracts[i]) < typeName(contracts[j]) })

	var seen []any
	var closers []closer
	for _, t := range contracts {
		bucket := r.instances[t]
		for _, k := range orderedKeys(r, bucket) {
			v := bucket[k]
			c, ok := v.(closer)
			if !ok || contains(seen, v) {
				continue
			}
			seen = append(seen, v)
			closers = append(closers, c)
		}
	}
	r.clear()
	r.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.log.Debug("Registry closed", logger.Fields(logger.FieldCount, len(closers)))
	return stderrors.Join(errs...)
}

// orderedKeys returns the keys of m with the default key first and the rest sorted.
func orderedKeys[V any](r *Registry, m map[string]V) []string {
	keys := make([]string, 0, len(m))
	_, hasDefault := m[r.defaultKey]
	for k := range m {
		if k != r.defaultKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if hasDefault {
		keys = append([]string{r.defaultKey}, keys...)
	}
	return keys
}

// same reports identity for comparable values; anything else never matches.
func same(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	// structs holding non-comparable dynamic values still panic
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func contains(list []any, v any) bool {
	for _, x := range list {
		if same(x, v) {
			return true
		}
	}
	return false
}

// IsRegistered reports whether T is registered (under key, when non-empty).
func IsRegistered[T any](r *Registry, key string) bool {
	return r.IsRegistered(reflect.TypeFor[T](), key)
}

// ContainsCreated reports whether an instance of T is cached under key,
// where an empty key means the default key.
func ContainsCreated[T any](r *Registry, key string) bool {
	return r.ContainsCreated(reflect.TypeFor[T](), key)
}

// GetAllCreatedInstances returns the cached instances of T.
func GetAllCreatedInstances[T any](r *Registry) ([]T, error) {
	return castAll[T](r.CreatedInstances(reflect.TypeFor[T]()))
}

// GetAllInstances realizes and returns every keyed instance of T.
func GetAllInstances[T any](r *Registry) ([]T, error) {
	vs, err := r.AllInstances(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return castAll[T](vs)
}

// Unregister removes T entirely.
func Unregister[T any](r *Registry) {
	r.Unregister(reflect.TypeFor[T]())
}

// UnregisterInstance evicts every cached T identical to v.
func UnregisterInstance[T any](r *Registry, v T) {
	r.UnregisterInstance(reflect.TypeFor[T](), v)
}

// UnregisterKey evicts the cached T under key.
func UnregisterKey[T any](r *Registry, key string) {
	r.UnregisterKey(reflect.TypeFor[T](), key)
}

func castAll[T any](vs []any) ([]T, error) {
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
