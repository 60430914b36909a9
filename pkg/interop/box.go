package interop

import (
	"math"
	"reflect"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Box wraps a native result as the best matching script value. Values
// without a script counterpart become objects carrying the native value,
// with the prototype of the TypeProxy of their dynamic type.
func (r *Registry) Box(v any) vm.Value {
	switch x := v.(type) {
	case nil:
		return vm.Null
	case vm.Value:
		return x.Plain()
	case *vm.Object:
		if x == nil {
			return vm.Null
		}
		return x.Value()
	case *vm.Function:
		if x == nil {
			return vm.Null
		}
		return x.Value()
	case reflect.Value:
		if !x.IsValid() {
			return vm.Undefined
		}
		return r.boxValue(x)
	}
	return r.boxValue(reflect.ValueOf(v))
}

func (r *Registry) boxValue(rv reflect.Value) vm.Value {
	switch rv.Kind() {
	case reflect.Bool:
		return vm.BooleanValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.NumberFromInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return vm.DoubleValue(float64(u))
		}
		return vm.IntegerValue(int32(u))
	case reflect.Float32, reflect.Float64:
		return vm.DoubleValue(rv.Float())
	case reflect.String:
		return vm.NewString(rv.String())
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		if rv.IsNil() {
			return vm.Null
		}
		if rv.Kind() == reflect.Interface {
			return r.Box(rv.Elem().Interface())
		}
	}
	if rv.Type() == valueType {
		return rv.Interface().(vm.Value).Plain()
	}
	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case *vm.Object:
			return x.Value()
		case *vm.Function:
			return x.Value()
		}
	}
	return r.wrap(rv)
}

// wrap creates the script object for a native value. Struct values are
// copied behind a pointer so that their fields can be written.
func (r *Registry) wrap(rv reflect.Value) vm.Value {
	if rv.Kind() == reflect.Struct {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	proxy := r.proxyFor(rv.Type())
	obj := vm.NewObject(proxy.Prototype())
	obj.SetClass(proxy.Name())
	obj.SetHost(rv.Interface())
	if proxy.hasIndexer() {
		obj.SetResolver(&indexResolver{proxy: proxy, obj: obj})
	}
	return obj.Value()
}
