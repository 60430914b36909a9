package interop

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

var (
	valueType     = reflect.TypeOf(vm.Value{})
	objectType    = reflect.TypeOf((*vm.Object)(nil))
	functionType  = reflect.TypeOf((*vm.Function)(nil))
	contextType   = reflect.TypeOf((*vm.Context)(nil))
	argumentsType = reflect.TypeOf((*vm.Arguments)(nil))
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	timeType      = reflect.TypeOf(time.Time{})
)

var errNoConversion = errors.New("no conversion")

// conversionError describes a script value that cannot become a t.
type conversionError struct {
	value vm.Value
	t     reflect.Type
	why   string
}

func (e *conversionError) Error() string {
	if e.why != "" {
		return fmt.Sprintf("Can not convert %s to %s: %s", describe(e.value), e.t, e.why)
	}
	return fmt.Sprintf("Can not convert %s to %s", describe(e.value), e.t)
}

func describe(v vm.Value) string {
	if v.IsString() {
		return fmt.Sprintf("%q", v.AsString())
	}
	return v.String()
}

// hostOf returns the native payload carried by an object value.
func hostOf(v vm.Value) (any, bool) {
	if !v.IsObject() {
		return nil, false
	}
	h := v.AsObject().Host()
	return h, h != nil
}

// hostAs returns the payload of v as a t, dereferencing one pointer level.
func hostAs(v vm.Value, t reflect.Type) (reflect.Value, bool) {
	h, ok := hostOf(v)
	if !ok {
		return reflect.Value{}, false
	}
	hv := reflect.ValueOf(h)
	if hv.Type().AssignableTo(t) {
		return hv, true
	}
	if hv.Kind() == reflect.Pointer && !hv.IsNil() && hv.Elem().Type().AssignableTo(t) {
		return hv.Elem(), true
	}
	return reflect.Value{}, false
}

// toNative converts v to a Go value of type t. In strict mode only exact
// matches succeed; otherwise script coercions apply and Null or Undefined
// become the zero value.
func (r *Registry) toNative(ctx *vm.Context, v vm.Value, t reflect.Type, strict bool) (reflect.Value, error) {
	v = v.Plain()
	switch t {
	case valueType:
		return reflect.ValueOf(v), nil
	case objectType:
		if v.IsObject() {
			return reflect.ValueOf(v.AsObject()), nil
		}
	case functionType:
		if v.IsFunction() {
			return reflect.ValueOf(v.AsFunction()), nil
		}
	case timeType:
		if hv, ok := hostAs(v, t); ok {
			return hv, nil
		}
		return r.toTime(ctx, v, strict)
	}
	if hv, ok := hostAs(v, t); ok {
		return hv, nil
	}
	if v.IsNullish() {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
			return reflect.Zero(t), nil
		}
		if !strict {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &conversionError{value: v, t: t}
	}
	switch t.Kind() {
	case reflect.Bool:
		if v.IsBoolean() {
			return reflect.ValueOf(v.AsBoolean()).Convert(t), nil
		}
		if !strict {
			return reflect.ValueOf(vm.ToBoolean(v)).Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := r.number(ctx, v, t, strict)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
			return reflect.Value{}, &conversionError{value: v, t: t, why: "out of range"}
		}
		out.SetInt(int64(f))
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f, err := r.number(ctx, v, t, strict)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return reflect.Value{}, &conversionError{value: v, t: t, why: "out of range"}
		}
		out.SetUint(uint64(f))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := r.number(ctx, v, t, strict)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if !math.IsInf(f, 0) && out.OverflowFloat(f) {
			return reflect.Value{}, &conversionError{value: v, t: t, why: "out of range"}
		}
		out.SetFloat(f)
		return out, nil
	case reflect.String:
		if v.IsString() {
			return reflect.ValueOf(v.AsString()).Convert(t), nil
		}
		if !strict {
			s, err := ctx.ToString(v)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(t), nil
		}
	case reflect.Slice:
		if v.IsObject() {
			return r.toSlice(ctx, v, t, strict)
		}
	case reflect.Map:
		if v.IsObject() && t.Key().Kind() == reflect.String {
			return r.toMap(ctx, v, t, strict)
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return reflect.ValueOf(r.export(v)), nil
		}
	}
	return reflect.Value{}, &conversionError{value: v, t: t}
}

// number extracts a numeric value. Strict conversion to an integer type
// requires an integral number, lenient conversion truncates and maps NaN to 0.
func (r *Registry) number(ctx *vm.Context, v vm.Value, t reflect.Type, strict bool) (float64, error) {
	if v.IsNumber() {
		f := v.AsFloat()
		if strict && t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 && f != math.Trunc(f) {
			return 0, &conversionError{value: v, t: t, why: "not an integer"}
		}
		return f, nil
	}
	if strict {
		return 0, &conversionError{value: v, t: t}
	}
	f, err := ctx.ToFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) && t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
		return 0, nil
	}
	return f, nil
}

// toTime accepts epoch milliseconds and, unless strict, any date string
// dateparse recognizes.
func (r *Registry) toTime(ctx *vm.Context, v vm.Value, strict bool) (reflect.Value, error) {
	switch {
	case v.IsNumber():
		return reflect.ValueOf(time.UnixMilli(int64(v.AsFloat())).UTC()), nil
	case v.IsString():
		tm, err := dateparse.ParseAny(v.AsString())
		if err != nil {
			return reflect.Value{}, &conversionError{value: v, t: timeType, why: err.Error()}
		}
		return reflect.ValueOf(tm), nil
	case v.IsNullish() && !strict:
		return reflect.ValueOf(time.Time{}), nil
	}
	return reflect.Value{}, &conversionError{value: v, t: timeType}
}

func (r *Registry) toSlice(ctx *vm.Context, v vm.Value, t reflect.Type, strict bool) (reflect.Value, error) {
	lv, err := ctx.Get(v, "length")
	if err != nil {
		return reflect.Value{}, err
	}
	n, err := ctx.ToFloat(lv)
	if err != nil {
		return reflect.Value{}, err
	}
	if math.IsNaN(n) || n < 0 || n > math.MaxInt32 {
		return reflect.Value{}, &conversionError{value: v, t: t, why: "no valid length"}
	}
	out := reflect.MakeSlice(t, int(n), int(n))
	for i := 0; i < int(n); i++ {
		ev, err := ctx.Get(v, vm.NumberToString(float64(i)))
		if err != nil {
			return reflect.Value{}, err
		}
		nv, err := r.toNative(ctx, ev, t.Elem(), strict)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(nv)
	}
	return out, nil
}

func (r *Registry) toMap(ctx *vm.Context, v vm.Value, t reflect.Type, strict bool) (reflect.Value, error) {
	obj := v.AsObject()
	keys := obj.EnumerableKeys()
	out := reflect.MakeMapWithSize(t, len(keys))
	for _, k := range keys {
		ev, err := ctx.Get(v, k)
		if err != nil {
			return reflect.Value{}, err
		}
		nv, err := r.toNative(ctx, ev, t.Elem(), strict)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), nv)
	}
	return out, nil
}

// export turns v into its natural Go representation for `any` parameters.
func (r *Registry) export(v vm.Value) any {
	switch v.Type() {
	case vm.TypeUndefined, vm.TypeNull:
		return nil
	case vm.TypeBoolean:
		return v.AsBoolean()
	case vm.TypeInteger:
		return int(v.AsInteger())
	case vm.TypeDouble:
		return v.AsDouble()
	case vm.TypeString:
		return v.AsString()
	}
	if h, ok := hostOf(v); ok {
		if hv, isValue := h.(vm.Value); isValue {
			return hv
		}
		return h
	}
	return v
}

// zeroArgument manufactures a usable zero value: pointers point to a fresh
// zero element, maps and slices are empty but not nil.
func zeroArgument(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Pointer:
		return reflect.New(t.Elem())
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	}
	if t == valueType {
		return reflect.ValueOf(vm.Undefined)
	}
	return reflect.Zero(t)
}

// defaultArgument converts a declared default to t.
func defaultArgument(d any, t reflect.Type) (reflect.Value, error) {
	if d == nil {
		return reflect.Zero(t), nil
	}
	dv := reflect.ValueOf(d)
	switch {
	case dv.Type().AssignableTo(t):
		return dv, nil
	case dv.Type().ConvertibleTo(t):
		return dv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("default %v does not fit %s", d, t)
}
