package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/simpleioc/errors"
)

var errorType = reflect.TypeFor[error]()

// constructor is the memoized descriptor of a construction function.
type constructor struct {
	fn      reflect.Value
	impl    reflect.Type
	params  []reflect.Type
	withErr bool
}

// newConstructor validates fn and captures its parameter types in order.
func newConstructor(fn any) (*constructor, *errors.AppError) {
	if fn == nil {
		return nil, errors.InvalidArgument("constructor", "constructor cannot be nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, errors.InvalidArgument("constructor",
			fmt.Sprintf("constructor must be a function, got %s", t))
	}
	if v.IsNil() {
		return nil, errors.InvalidArgument("constructor", "constructor cannot be nil")
	}
	if t.IsVariadic() {
		return nil, errors.InvalidArgument("constructor",
			fmt.Sprintf("variadic constructor %s cannot be injected", t))
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, errors.InvalidArgument("constructor",
			fmt.Sprintf("constructor must return (T) or (T, error), got %s", t))
	}

	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	return &constructor{
		fn:      v,
		impl:    t.Out(0),
		params:  params,
		withErr: t.NumOut() == 2,
	}, nil
}

// build resolves every parameter depth-first with the default key and calls
// the construction function. Resolution errors are returned unchanged.
func (c *constructor) build(s *scope) (any, error) {
	args := make([]reflect.Value, len(c.params))
	for i, p := range c.params {
		v, err := s.resolve(p, "", true)
		if err != nil {
			return nil, err
		}
		arg, err := argument(v, p)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	out := c.fn.Call(args)
	if c.withErr && !out[1].IsNil() {
		cause, _ := out[1].Interface().(error)
		return nil, errors.Activation(typeName(c.impl),
			fmt.Sprintf("Constructor of %s failed.", typeName(c.impl))).WithCause(cause)
	}
	return out[0].Interface(), nil
}

func argument(v any, p reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(p), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(p) {
		return reflect.Value{}, errors.Activation(typeName(p),
			fmt.Sprintf("Resolved %s is not assignable to parameter %s.", rv.Type(), typeName(p)))
	}
	return rv, nil
}
