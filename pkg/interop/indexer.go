package interop

import (
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// indexResolver exposes the GetItem/SetItem variants of a host value as own accessor
// properties for names the prototype chain does not answer.
type indexResolver struct {
	proxy *TypeProxy
	obj   *vm.Object
}

func (ir *indexResolver) MemberNames() []string { return nil }

func (ir *indexResolver) ResolveMember(name string) (vm.Value, bool, error) {
	if proto := ir.obj.Proto(); proto != nil {
		slot, _, err := proto.Lookup(name)
		if err != nil || slot != nil {
			return vm.Undefined, false, err
		}
	}
	tp := ir.proxy
	getter, gkey, hasGet := pickIndexer(tp.getItems, name)
	setter, skey, hasSet := pickIndexer(tp.setItems, name)
	if !hasGet && !hasSet {
		return vm.Undefined, false, nil
	}
	r := tp.registry
	var get, set *vm.Function
	if hasGet {
		get = vm.NewNativeFunction(r.realm, name, 0, func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
			recv, ok := hostAs(this, tp.typ)
			if !ok {
				return vm.Undefined, ctx.NewTypeError("Can not call function \"%s\" for object of another type.", getter.Name)
			}
			out, err := callItem(getter.Func, recv, gkey)
			if err != nil {
				return vm.Undefined, nativeFailure(ctx, getter.Name, err)
			}
			if len(out) == 0 {
				return vm.Undefined, nil
			}
			return r.Box(out[0]), nil
		})
	}
	if hasSet {
		set = vm.NewNativeFunction(r.realm, name, 1, func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
			recv, ok := hostAs(this, tp.typ)
			if !ok {
				return vm.Undefined, ctx.NewTypeError("Can not call function \"%s\" for object of another type.", setter.Name)
			}
			v, err := r.toNative(ctx, args.At(0), setter.Type.In(2), r.opts.StrictConversion)
			if err != nil {
				return vm.Undefined, nativeFailure(ctx, setter.Name, err)
			}
			if _, err := callItem(setter.Func, recv, skey, v); err != nil {
				return vm.Undefined, nativeFailure(ctx, setter.Name, err)
			}
			return vm.Undefined, nil
		})
	}
	return vm.NewAccessor(get, set).WithAttrs(vm.DoNotEnumerate), true, nil
}

// keyRank orders indexer key types: string, integer, floating point, any.
func keyRank(kt reflect.Type) int {
	switch kt.Kind() {
	case reflect.String:
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 1
	case reflect.Float32, reflect.Float64:
		return 2
	case reflect.Interface:
		return 3
	}
	return 4
}

func sortIndexers(ms []reflect.Method) {
	sort.SliceStable(ms, func(i, j int) bool {
		return keyRank(ms[i].Type.In(1)) < keyRank(ms[j].Type.In(1))
	})
}

// pickIndexer returns the first variant whose key type accepts name.
func pickIndexer(ms []reflect.Method, name string) (reflect.Method, reflect.Value, bool) {
	for _, m := range ms {
		if key, ok := indexKey(m.Type.In(1), name); ok {
			return m, key, true
		}
	}
	return reflect.Method{}, reflect.Value{}, false
}

// indexKey marshals a property name into the key type kt of an indexer.
func indexKey(kt reflect.Type, name string) (reflect.Value, bool) {
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(name).Convert(kt), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, kt.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(kt), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(name, 10, kt.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(kt), true
	case reflect.Float32, reflect.Float64:
		f := vm.StringToNumber(name)
		if math.IsNaN(f) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(f).Convert(kt), true
	case reflect.Interface:
		if kt.NumMethod() == 0 {
			return reflect.ValueOf(name), true
		}
	}
	return reflect.Value{}, false
}

// callItem calls an indexer method and splits off a trailing error result.
func callItem(fn, recv reflect.Value, args ...reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	out = fn.Call(append([]reflect.Value{recv}, args...))
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	return out, nil
}
