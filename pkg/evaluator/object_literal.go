package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

type PropertyKind uint8

const (
	PropertyData PropertyKind = iota
	PropertyGetter
	PropertySetter
)

// ObjectProperty is one entry of an object literal.
type ObjectProperty struct {
	Kind  PropertyKind
	Key   string
	Value Node
}

func DataProperty(key string, value Node) ObjectProperty {
	return ObjectProperty{Kind: PropertyData, Key: key, Value: value}
}

func GetterProperty(key string, fn *FunctionLiteral) ObjectProperty {
	return ObjectProperty{Kind: PropertyGetter, Key: key, Value: fn}
}

func SetterProperty(key string, fn *FunctionLiteral) ObjectProperty {
	return ObjectProperty{Kind: PropertySetter, Key: key, Value: fn}
}

// ObjectLiteral is `{ key: value, get key() {...}, set key(v) {...} }`.
type ObjectLiteral struct {
	Properties []ObjectProperty
}

func NewObjectLiteral(props ...ObjectProperty) *ObjectLiteral {
	return &ObjectLiteral{Properties: props}
}

func (ol *ObjectLiteral) Evaluate(ctx *vm.Context) (vm.Value, error) {
	obj := vm.NewObject(ctx.Realm().ObjectPrototype)
	for _, p := range ol.Properties {
		v, err := p.Value.Evaluate(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		if p.Kind == PropertyData {
			obj.Set(p.Key, v)
			continue
		}
		if !v.IsFunction() {
			return vm.Undefined, ctx.NewTypeError("accessor %q requires a function", p.Key)
		}
		var get, set *vm.Function
		if slot, _ := obj.Properties().Get(p.Key); slot != nil && slot.IsProperty() {
			get, set = slot.AsAccessor().Get, slot.AsAccessor().Set
		}
		if p.Kind == PropertyGetter {
			get = v.AsFunction()
		} else {
			set = v.AsFunction()
		}
		obj.DefineAccessor(p.Key, get, set, 0)
	}
	return obj.Value(), nil
}

func (ol *ObjectLiteral) String() string {
	s := "{"
	for i, p := range ol.Properties {
		if i > 0 {
			s += ", "
		}
		switch p.Kind {
		case PropertyGetter:
			s += "get " + p.Key + "()"
		case PropertySetter:
			s += "set " + p.Key + "()"
		default:
			s += p.Key + ": " + p.Value.String()
		}
	}
	return s + "}"
}
