package vm

import (
	"math"
)

// Realm holds the intrinsic objects every context of an engine shares.
type Realm struct {
	ObjectPrototype   *Object
	FunctionPrototype *Object

	errorPrototypes   map[ErrorKind]*Object
	errorConstructors map[ErrorKind]*Function
}

const builtinAttrs = DoNotEnumerate

// NewRealm creates the intrinsics: Object.prototype, Function.prototype and
// the error constructors with their prototypes.
func NewRealm() *Realm {
	r := &Realm{
		errorPrototypes:   make(map[ErrorKind]*Object),
		errorConstructors: make(map[ErrorKind]*Function),
	}
	r.ObjectPrototype = NewObject(nil)
	r.FunctionPrototype = NewObject(r.ObjectPrototype)
	r.FunctionPrototype.SetClass("Function")

	r.initObjectPrototype()
	r.initFunctionPrototype()
	r.initErrors()
	tracer().Debugf("realm initialized")
	return r
}

func (r *Realm) method(o *Object, name string, length int, fn NativeFunc) {
	o.Set(name, NewNativeFunction(r, name, length, fn).Value().WithAttrs(builtinAttrs))
}

func (r *Realm) initObjectPrototype() {
	proto := r.ObjectPrototype
	r.method(proto, "toString", 0, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		switch this.Type() {
		case TypeUndefined:
			return NewString("[object Undefined]"), nil
		case TypeNull:
			return NewString("[object Null]"), nil
		case TypeObject, TypeFunction:
			return NewString("[object " + this.AsObject().Class() + "]"), nil
		}
		return NewString("[object " + primitiveClass(this) + "]"), nil
	})
	r.method(proto, "valueOf", 0, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		return this, nil
	})
	r.method(proto, "hasOwnProperty", 1, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		if !this.IsObject() {
			return False, nil
		}
		key := args.At(0)
		if key.IsSymbol() {
			_, ok := this.AsObject().symbols[key.AsSymbol()]
			return BooleanValue(ok), nil
		}
		name, err := ctx.ToString(key)
		if err != nil {
			return Undefined, err
		}
		slot, err := this.AsObject().GetOwn(name)
		if err != nil {
			return Undefined, err
		}
		return BooleanValue(slot != nil), nil
	})
}

func (r *Realm) initFunctionPrototype() {
	proto := r.FunctionPrototype
	r.method(proto, "toString", 0, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		if !this.IsFunction() {
			return Undefined, ctx.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return NewString(this.String()), nil
	})
	r.method(proto, "call", 1, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		if !this.IsFunction() {
			return Undefined, ctx.NewTypeError("Function.prototype.call called on non-function")
		}
		var rest []Value
		if args.Len() > 1 {
			rest = args.Slice()[1:]
		}
		return this.AsFunction().Invoke(ctx, args.At(0), rest...)
	})
}

func (r *Realm) initErrors() {
	base := r.newErrorType(KindError, r.ObjectPrototype)
	r.method(base, "toString", 0, func(ctx *Context, this Value, args *Arguments) (Value, error) {
		if !this.IsObject() {
			return Undefined, ctx.NewTypeError("Error.prototype.toString called on non-object")
		}
		name, err := ctx.getString(this, "name", "Error")
		if err != nil {
			return Undefined, err
		}
		msg, err := ctx.getString(this, "message", "")
		if err != nil {
			return Undefined, err
		}
		switch {
		case msg == "":
			return NewString(name), nil
		case name == "":
			return NewString(msg), nil
		}
		return NewString(name + ": " + msg), nil
	})
	for _, kind := range []ErrorKind{KindTypeError, KindReferenceError, KindSyntaxError} {
		r.newErrorType(kind, base)
	}
}

func (r *Realm) newErrorType(kind ErrorKind, parent *Object) *Object {
	proto := NewObject(parent)
	proto.SetClass("Error")
	proto.Set("name", NewString(string(kind)).WithAttrs(builtinAttrs))
	proto.Set("message", NewString("").WithAttrs(builtinAttrs))

	create := func(ctx *Context, args *Arguments) (Value, error) {
		obj := NewObject(proto)
		obj.SetClass("Error")
		if msg := args.At(0); !msg.IsUndefined() {
			s, err := ctx.ToString(msg)
			if err != nil {
				return Undefined, err
			}
			obj.Set("message", NewString(s).WithAttrs(builtinAttrs))
		}
		return obj.Value(), nil
	}
	ctor := NewNativeConstructor(r, string(kind), 1,
		func(ctx *Context, this Value, args *Arguments) (Value, error) { return create(ctx, args) },
		create)
	ctor.Set("prototype", proto.Value().WithAttrs(ReadOnly|DoNotEnumerate|DoNotDelete))
	proto.Set("constructor", ctor.Value().WithAttrs(builtinAttrs))

	r.errorPrototypes[kind] = proto
	r.errorConstructors[kind] = ctor
	return proto
}

// NewError creates an error object of the given kind wrapped as an exception.
func (r *Realm) NewError(kind ErrorKind, msg string) *Exception {
	proto, ok := r.errorPrototypes[kind]
	if !ok {
		proto = r.errorPrototypes[KindError]
	}
	obj := NewObject(proto)
	obj.SetClass("Error")
	obj.Set("message", NewString(msg).WithAttrs(builtinAttrs))
	return &Exception{Value: obj.Value()}
}

// ErrorPrototype returns the prototype of errors of the given kind.
func (r *Realm) ErrorPrototype(kind ErrorKind) *Object {
	return r.errorPrototypes[kind]
}

// InstallGlobals defines the intrinsic bindings in the root context.
func (r *Realm) InstallGlobals(ctx *Context) {
	root := ctx.Root()
	fixed := ReadOnly | DoNotEnumerate | DoNotDelete
	root.vars.Define("undefined", Undefined.WithAttrs(fixed))
	root.vars.Define("NaN", NaN.WithAttrs(fixed))
	root.vars.Define("Infinity", DoubleValue(math.Inf(1)).WithAttrs(fixed))
	for _, kind := range []ErrorKind{KindError, KindTypeError, KindReferenceError, KindSyntaxError} {
		root.vars.Define(string(kind), r.errorConstructors[kind].Value().WithAttrs(builtinAttrs))
	}
}

func primitiveClass(v Value) string {
	switch v.Type() {
	case TypeBoolean:
		return "Boolean"
	case TypeInteger, TypeDouble:
		return "Number"
	case TypeString:
		return "String"
	case TypeSymbol:
		return "Symbol"
	}
	return "Object"
}
