package vm

import (
	"math"
)

// ToBoolean converts v following the script truthiness rules.
func ToBoolean(v Value) bool {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.AsBoolean()
	case TypeInteger:
		return v.AsInteger() != 0
	case TypeDouble:
		f := v.AsDouble()
		return f == f && f != 0
	case TypeString:
		return v.AsString() != ""
	}
	return true
}

// ToNumber converts v to an Integer or Double, running valueOf/toString on objects.
func (c *Context) ToNumber(v Value) (Value, error) {
	switch v.typ {
	case TypeInteger, TypeDouble:
		return v.Plain(), nil
	case TypeUndefined, TypeProperty:
		return NaN, nil
	case TypeNull:
		return IntegerValue(0), nil
	case TypeBoolean:
		if v.AsBoolean() {
			return IntegerValue(1), nil
		}
		return IntegerValue(0), nil
	case TypeString:
		return NumberFromFloat(StringToNumber(v.AsString())), nil
	case TypeSymbol:
		return Undefined, c.NewTypeError("Cannot convert a Symbol value to a number")
	}
	prim, err := c.ToPrimitive(v, "number")
	if err != nil {
		return Undefined, err
	}
	return c.ToNumber(prim)
}

// ToFloat is ToNumber yielding a float64.
func (c *Context) ToFloat(v Value) (float64, error) {
	n, err := c.ToNumber(v)
	if err != nil {
		return math.NaN(), err
	}
	return n.AsFloat(), nil
}

// ToString converts v to a string, running toString/valueOf on objects.
func (c *Context) ToString(v Value) (string, error) {
	switch v.typ {
	case TypeSymbol:
		return "", c.NewTypeError("Cannot convert a Symbol value to a string")
	case TypeObject, TypeFunction:
		prim, err := c.ToPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		return c.ToString(prim)
	}
	return v.String(), nil
}

// TryPrimitive runs the valueOf/toString ladder (toString first for the
// "string" hint). It reports false, returning v itself, when neither method
// yields a primitive.
func (c *Context) TryPrimitive(v Value, hint string) (Value, bool, error) {
	if !v.IsObject() {
		return v, true, nil
	}
	order := [2]string{"valueOf", "toString"}
	if hint == "string" {
		order = [2]string{"toString", "valueOf"}
	}
	for _, name := range order {
		m, err := c.Get(v, name)
		if err != nil {
			return Undefined, false, err
		}
		if !m.IsFunction() {
			continue
		}
		r, err := m.AsFunction().Invoke(c, v)
		if err != nil {
			return Undefined, false, err
		}
		if r.IsPrimitive() {
			return r, true, nil
		}
	}
	return v, false, nil
}

// ToPrimitive is TryPrimitive failing with TypeError when no primitive results.
func (c *Context) ToPrimitive(v Value, hint string) (Value, error) {
	prim, ok, err := c.TryPrimitive(v, hint)
	if err != nil {
		return Undefined, err
	}
	if !ok {
		return Undefined, c.NewTypeError("Cannot convert object to primitive value")
	}
	return prim, nil
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.typ == TypeInteger && b.typ == TypeInteger {
			return a.AsInteger() == b.AsInteger()
		}
		return a.AsFloat() == b.AsFloat()
	}
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeUndefined, TypeNull:
		return true
	}
	return a.Plain().Is(b.Plain())
}

// SameValue is StrictEquals except that NaN equals NaN and +0 differs from -0.
func SameValue(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		x, y := a.AsFloat(), b.AsFloat()
		if x != x && y != y {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	}
	return StrictEquals(a, b)
}

// LooseEquals implements ==.
func (c *Context) LooseEquals(a, b Value) (bool, error) {
	switch {
	case a.IsNullish() || b.IsNullish():
		return a.IsNullish() && b.IsNullish(), nil
	case a.typ == b.typ || (a.IsNumber() && b.IsNumber()):
		return StrictEquals(a, b), nil
	case a.IsObject() && b.IsObject():
		return StrictEquals(a, b), nil
	case a.IsObject():
		prim, err := c.ToPrimitive(a, "default")
		if err != nil {
			return false, err
		}
		return c.LooseEquals(prim, b)
	case b.IsObject():
		return c.LooseEquals(b, a)
	case a.IsSymbol() || b.IsSymbol():
		return false, nil
	}
	x, err := c.ToFloat(a)
	if err != nil {
		return false, err
	}
	y, err := c.ToFloat(b)
	if err != nil {
		return false, err
	}
	return x == y, nil
}

// TypeOf returns the result of the typeof operator.
func TypeOf(v Value) string {
	switch v.typ {
	case TypeUndefined, TypeProperty:
		return "undefined"
	case TypeNull, TypeObject:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeInteger, TypeDouble:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeFunction:
		return "function"
	}
	return "undefined"
}

func (c *Context) getString(v Value, name, def string) (string, error) {
	m, err := c.Get(v, name)
	if err != nil {
		return "", err
	}
	if m.IsUndefined() {
		return def, nil
	}
	return c.ToString(m)
}
