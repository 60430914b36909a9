package interop

import (
	"reflect"

	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// constructorSet picks one of the declared constructors of a type for each
// script construction.
type constructorSet struct {
	registry *Registry
	name     string
	ctors    []reflect.Value
}

// construct selects, in this order, a constructor whose arity matches and
// whose parameters accept every argument exactly, a constructor taking a
// single slice (the arguments are packed into it) and a parameterless one.
func (cs *constructorSet) construct(ctx *vm.Context, args *vm.Arguments) (result vm.Value, err error) {
	if len(cs.ctors) == 0 {
		return vm.Undefined, errors.Configurationf(cs.name, "no constructor declared")
	}
	defer func() {
		if rec := recover(); rec != nil {
			result, err = vm.Undefined, nativeFailure(ctx, cs.name, panicError(rec))
		}
	}()
	r := cs.registry
	for _, c := range cs.ctors {
		ct := c.Type()
		if ct.IsVariadic() || ct.NumIn() != args.Len() {
			continue
		}
		in, ok := cs.exact(ctx, ct, args)
		if ok {
			return cs.call(ctx, c, in, false)
		}
	}
	for _, c := range cs.ctors {
		ct := c.Type()
		if ct.NumIn() != 1 || ct.In(0).Kind() != reflect.Slice {
			continue
		}
		elem := ct.In(0).Elem()
		packed := reflect.MakeSlice(ct.In(0), 0, args.Len())
		for i := 0; i < args.Len(); i++ {
			v, err := r.toNative(ctx, args.At(i), elem, r.opts.StrictConversion)
			if err != nil {
				return vm.Undefined, nativeFailure(ctx, cs.name, err)
			}
			packed = reflect.Append(packed, v)
		}
		return cs.call(ctx, c, []reflect.Value{packed}, ct.IsVariadic())
	}
	for _, c := range cs.ctors {
		if c.Type().NumIn() == 0 {
			return cs.call(ctx, c, nil, false)
		}
	}
	return vm.Undefined, ctx.NewTypeError("No constructor of %s accepts %d argument(s)", cs.name, args.Len())
}

func (cs *constructorSet) exact(ctx *vm.Context, ct reflect.Type, args *vm.Arguments) ([]reflect.Value, bool) {
	in := make([]reflect.Value, ct.NumIn())
	for i := range in {
		v, err := cs.registry.toNative(ctx, args.At(i), ct.In(i), true)
		if err != nil {
			return nil, false
		}
		in[i] = v
	}
	return in, true
}

func (cs *constructorSet) call(ctx *vm.Context, c reflect.Value, in []reflect.Value, spread bool) (vm.Value, error) {
	var out []reflect.Value
	if spread {
		out = c.CallSlice(in)
	} else {
		out = c.Call(in)
	}
	if len(out) == 2 && !out[1].IsNil() {
		return vm.Undefined, nativeFailure(ctx, cs.name, out[1].Interface().(error))
	}
	tracer().Debugf("constructed %s", cs.name)
	return cs.registry.Box(out[0]), nil
}
