package vm

import (
	"fmt"
	"math"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeInteger
	TypeDouble

	TypeString
	TypeSymbol

	TypeObject
	TypeFunction

	TypeProperty // accessor pair, only ever stored in a property slot
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	case TypeFunction:
		return "function"
	case TypeProperty:
		return "property"
	default:
		return fmt.Sprintf("<unknown type: %d>", vt)
	}
}

// Attributes are the flags of a storage slot. They travel with the Value
// stored in the slot.
type Attributes uint8

const (
	ReadOnly Attributes = 1 << iota
	DoNotEnumerate
	DoNotDelete
	NotConfigurable
	SystemObject // engine-internal: never enumerated or deleted
)

// Value is the tagged representation of every script datum.
//
// Primitives are copied by value. Objects, functions and accessor pairs
// share their referent through obj.
type Value struct {
	typ     ValueType
	attrs   Attributes
	payload uint64
	obj     unsafe.Pointer
}

// Symbol is a unique script symbol. Identity is pointer identity.
type Symbol struct {
	Description string
}

// Accessor is the payload of a Property value.
type Accessor struct {
	Get *Function
	Set *Function
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeDouble, payload: math.Float64bits(math.NaN())}
)

func IntegerValue(value int32) Value {
	return Value{typ: TypeInteger, payload: uint64(uint32(value))}
}

func DoubleValue(value float64) Value {
	return Value{typ: TypeDouble, payload: math.Float64bits(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&value)}
}

func NewSymbol(description string) Value {
	return Value{typ: TypeSymbol, obj: unsafe.Pointer(&Symbol{Description: description})}
}

func SymbolValue(s *Symbol) Value {
	return Value{typ: TypeSymbol, obj: unsafe.Pointer(s)}
}

// ObjectValue wraps o. Objects embedded in a Function yield the function value.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	if o.fn != nil {
		return FunctionValue(o.fn)
	}
	return Value{typ: TypeObject, obj: unsafe.Pointer(o)}
}

func FunctionValue(f *Function) Value {
	if f == nil {
		return Null
	}
	return Value{typ: TypeFunction, obj: unsafe.Pointer(f)}
}

// NewAccessor creates a Property value. At least one of get and set must be
// given; a pair without both is a placeholder never produced here.
func NewAccessor(get, set *Function) Value {
	if get == nil && set == nil {
		panic("accessor requires a getter or a setter")
	}
	return Value{typ: TypeProperty, obj: unsafe.Pointer(&Accessor{Get: get, Set: set})}
}

// --- type checks ---

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsInteger() bool   { return v.typ == TypeInteger }
func (v Value) IsDouble() bool    { return v.typ == TypeDouble }
func (v Value) IsNumber() bool    { return v.typ == TypeInteger || v.typ == TypeDouble }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsFunction() bool  { return v.typ == TypeFunction }
func (v Value) IsProperty() bool  { return v.typ == TypeProperty }

// IsObject reports whether v references an object, functions included.
func (v Value) IsObject() bool { return v.typ == TypeObject || v.typ == TypeFunction }

// IsPrimitive reports whether v is neither an object nor an accessor pair.
func (v Value) IsPrimitive() bool { return v.typ < TypeObject }

// --- payload access ---

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsInteger() int32 {
	if v.typ != TypeInteger {
		panic("value is not an integer")
	}
	return int32(uint32(v.payload))
}

func (v Value) AsDouble() float64 {
	if v.typ != TypeDouble {
		panic("value is not a double")
	}
	return math.Float64frombits(v.payload)
}

// AsFloat returns the numeric payload of an Integer or Double.
func (v Value) AsFloat() float64 {
	switch v.typ {
	case TypeInteger:
		return float64(v.AsInteger())
	case TypeDouble:
		return v.AsDouble()
	}
	panic("value is not a number")
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return *(*string)(v.obj)
}

func (v Value) AsSymbol() *Symbol {
	if v.typ != TypeSymbol {
		panic("value is not a symbol")
	}
	return (*Symbol)(v.obj)
}

// AsObject returns the object behind an Object or Function value.
func (v Value) AsObject() *Object {
	switch v.typ {
	case TypeObject:
		return (*Object)(v.obj)
	case TypeFunction:
		return &(*Function)(v.obj).Object
	}
	panic("value is not an object")
}

func (v Value) AsFunction() *Function {
	if v.typ != TypeFunction {
		panic("value is not a function")
	}
	return (*Function)(v.obj)
}

func (v Value) AsAccessor() *Accessor {
	if v.typ != TypeProperty {
		panic("value is not a property")
	}
	return (*Accessor)(v.obj)
}

// --- attributes ---

func (v Value) Attrs() Attributes { return v.attrs }

// Has reports whether all flags of a are set on v.
func (v Value) Has(a Attributes) bool { return v.attrs&a == a }

// HasAny reports whether any flag of a is set on v.
func (v Value) HasAny(a Attributes) bool { return v.attrs&a != 0 }

// WithAttrs returns a copy of v carrying exactly the attributes a.
func (v Value) WithAttrs(a Attributes) Value {
	v.attrs = a
	return v
}

// Plain returns a copy of v without attributes, as it is observed after
// being read out of its slot.
func (v Value) Plain() Value {
	v.attrs = 0
	return v
}

// Store writes nv into the slot v while keeping the slot's attributes.
func (v *Value) Store(nv Value) {
	a := v.attrs
	*v = nv
	v.attrs = a
}

// Enumerable reports whether a slot shows up in key enumeration.
func (v Value) Enumerable() bool {
	return v.attrs&(DoNotEnumerate|SystemObject) == 0
}

// Deletable reports whether a slot may be removed.
func (v Value) Deletable() bool {
	return v.attrs&(DoNotDelete|NotConfigurable|SystemObject) == 0
}

// Is reports identity: same type and same payload or referent.
// Numbers compare bitwise; use StrictEquals for script semantics.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.AsString() == other.AsString()
	case TypeSymbol, TypeObject, TypeFunction, TypeProperty:
		return v.obj == other.obj
	}
	return v.payload == other.payload
}

// String renders v without invoking script code. Error-like objects show
// as "name: message", other objects as "[object Class]".
func (v Value) String() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeInteger, TypeDouble:
		return NumberToString(v.AsFloat())
	case TypeString:
		return v.AsString()
	case TypeSymbol:
		return fmt.Sprintf("Symbol(%s)", v.AsSymbol().Description)
	case TypeFunction:
		return fmt.Sprintf("function %s() { [native code] }", v.AsFunction().Name)
	case TypeProperty:
		return "[accessor]"
	case TypeObject:
		o := v.AsObject()
		name, okName := o.dataString("name")
		msg, okMsg := o.dataString("message")
		if okName && okMsg {
			if msg == "" {
				return name
			}
			return name + ": " + msg
		}
		return "[object " + o.Class() + "]"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}
