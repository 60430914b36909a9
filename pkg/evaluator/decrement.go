package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

type DecrementType uint8

const (
	PreDecrement DecrementType = iota
	PostDecrement
)

// Decrement is `--x` or `x--`.
type Decrement struct {
	Operand Assignable
	Type    DecrementType
}

func NewDecrement(operand Assignable, typ DecrementType) *Decrement {
	if operand == nil {
		panic("decrement requires an operand")
	}
	return &Decrement{Operand: operand, Type: typ}
}

func (d *Decrement) Evaluate(ctx *vm.Context) (vm.Value, error) {
	return update(ctx, d.Operand, -1, d.Type == PostDecrement, "decrement")
}

func (d *Decrement) String() string {
	if d.Type == PostDecrement {
		return d.Operand.String() + "--"
	}
	return "--" + d.Operand.String()
}

// update implements ++ and --. The operand is resolved once. Accessor
// operands read through the getter and write through the setter; a missing
// setter discards the write (strict: TypeError). Read-only operands are
// updated on a private copy (strict: TypeError). The post form returns the
// coerced old value.
func update(ctx *vm.Context, operand Assignable, delta int64, post bool, verb string) (vm.Value, error) {
	ref, err := operand.EvaluateForWrite(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if ref.Unresolvable {
		return vm.Undefined, ctx.NewReferenceError("%s is not defined", ref.Name)
	}
	var (
		current vm.Value
		setter  *vm.Function
		write   = true
	)
	switch slot := ref.Slot; {
	case slot != nil && slot.IsProperty():
		acc := slot.AsAccessor()
		setter = acc.Set
		if setter == nil {
			if ctx.Strict() {
				return vm.Undefined, ctx.NewTypeError("Can not %s property \"%s\" without setter.", verb, operand)
			}
			write = false
		}
		current = vm.Undefined
		if acc.Get != nil {
			if current, err = acc.Get.Invoke(ctx, ref.Base); err != nil {
				return vm.Undefined, err
			}
		}
	case slot != nil && slot.Has(vm.ReadOnly):
		if ctx.Strict() {
			return vm.Undefined, ctx.NewTypeError("Can not %s readonly \"%s\"", verb, operand)
		}
		current = slot.Plain()
		write = false
	default:
		if current, err = ctx.GetValue(ref); err != nil {
			return vm.Undefined, err
		}
	}
	old, err := numericOperand(ctx, current)
	if err != nil {
		return vm.Undefined, err
	}
	updated := step(old, delta)
	tracer().Debugf("%s %s: %v -> %v", verb, operand, old, updated)
	if write {
		if setter != nil {
			_, err = setter.Invoke(ctx, ref.Base, updated)
		} else {
			err = ctx.Assign(ref, updated)
		}
		if err != nil {
			return vm.Undefined, err
		}
	}
	if post {
		return old, nil
	}
	return updated, nil
}

// numericOperand applies the coercion ladder of the update operators.
// Objects that do not reduce to a primitive count as 0.
func numericOperand(ctx *vm.Context, v vm.Value) (vm.Value, error) {
	switch v.Type() {
	case vm.TypeInteger, vm.TypeDouble:
		return v.Plain(), nil
	case vm.TypeObject, vm.TypeFunction:
		prim, ok, err := ctx.TryPrimitive(v, "number")
		if err != nil {
			return vm.Undefined, err
		}
		if !ok {
			return vm.IntegerValue(0), nil
		}
		return numericOperand(ctx, prim)
	}
	// undefined -> NaN, null -> 0, booleans -> 0/1, strings parsed;
	// symbols fail with TypeError
	return ctx.ToNumber(v)
}

// step adds delta without wrapping: Integer results leaving the int32 range
// become Double.
func step(v vm.Value, delta int64) vm.Value {
	if v.IsInteger() {
		return vm.NumberFromInt64(int64(v.AsInteger()) + delta)
	}
	return vm.DoubleValue(v.AsFloat() + float64(delta))
}
