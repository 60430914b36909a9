package vm

// Callable is the calling protocol shared by script functions, native
// functions and interop proxies. ctx is the callee's own activation.
type Callable interface {
	Call(ctx *Context, this Value, args *Arguments) (Value, error)
}

// Constructor is implemented by callables usable with `new`.
type Constructor interface {
	Construct(ctx *Context, args *Arguments) (Value, error)
}

// NativeFunc adapts a Go function to Callable.
type NativeFunc func(ctx *Context, this Value, args *Arguments) (Value, error)

func (f NativeFunc) Call(ctx *Context, this Value, args *Arguments) (Value, error) {
	return f(ctx, this, args)
}

// Function is an Object that can be called.
type Function struct {
	Object
	Name   string
	Length int
	Strict bool
	impl   Callable
	scope  *Context // defining scope; nil for native functions
}

// NewFunction creates a function object backed by impl. scope is the
// lexical scope of script functions and nil for natives.
func NewFunction(realm *Realm, name string, length int, impl Callable, scope *Context) *Function {
	f := &Function{Name: name, Length: length, impl: impl, scope: scope}
	var proto *Object
	if realm != nil {
		proto = realm.FunctionPrototype
	}
	f.init(proto, "Function")
	f.fn = f
	f.props.Define("name", NewString(name).WithAttrs(ReadOnly|DoNotEnumerate))
	f.props.Define("length", IntegerValue(int32(length)).WithAttrs(ReadOnly|DoNotEnumerate))
	return f
}

// NewNativeFunction wraps fn as a script-callable function.
func NewNativeFunction(realm *Realm, name string, length int, fn NativeFunc) *Function {
	return NewFunction(realm, name, length, fn, nil)
}

type nativeConstructor struct {
	call      NativeFunc
	construct func(ctx *Context, args *Arguments) (Value, error)
}

func (n nativeConstructor) Call(ctx *Context, this Value, args *Arguments) (Value, error) {
	return n.call(ctx, this, args)
}

func (n nativeConstructor) Construct(ctx *Context, args *Arguments) (Value, error) {
	return n.construct(ctx, args)
}

// NewNativeConstructor creates a native function that also supports `new`.
func NewNativeConstructor(realm *Realm, name string, length int, call NativeFunc,
	construct func(ctx *Context, args *Arguments) (Value, error)) *Function {
	return NewFunction(realm, name, length, nativeConstructor{call: call, construct: construct}, nil)
}

func (f *Function) Impl() Callable  { return f.impl }
func (f *Function) Scope() *Context { return f.scope }

// IsConstructor reports whether f can be used with `new`.
func (f *Function) IsConstructor() bool {
	_, ok := f.impl.(Constructor)
	return ok
}

func (f *Function) activation(caller *Context, this Value) *Context {
	scope := f.scope
	strict := f.Strict
	if scope == nil {
		scope = caller.Root()
		strict = strict || caller.strict
	}
	return newFunctionContext(scope, f, this, strict)
}

// Invoke calls f from caller in a fresh activation context.
func (f *Function) Invoke(caller *Context, this Value, args ...Value) (Value, error) {
	return f.InvokeArgs(caller, this, NewArguments(args...))
}

// InvokeArgs is Invoke with a prepared argument list.
func (f *Function) InvokeArgs(caller *Context, this Value, args *Arguments) (Value, error) {
	if args.Callee == nil {
		args.Callee = f
	}
	result, err := f.impl.Call(f.activation(caller, this), this, args)
	if err != nil {
		return Undefined, err
	}
	return result.Plain(), nil
}

// New constructs an instance through f.
func (f *Function) New(caller *Context, args *Arguments) (Value, error) {
	ctor, ok := f.impl.(Constructor)
	if !ok {
		return Undefined, caller.NewTypeError("%s is not a constructor", f.Name)
	}
	if args.Callee == nil {
		args.Callee = f
	}
	result, err := ctor.Construct(f.activation(caller, Undefined), args)
	if err != nil {
		return Undefined, err
	}
	return result.Plain(), nil
}

// Arguments is the argument list of a call.
type Arguments struct {
	values []Value
	Callee *Function
}

func NewArguments(values ...Value) *Arguments {
	return &Arguments{values: values}
}

func (a *Arguments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// At returns argument i, or Undefined if it was not supplied.
func (a *Arguments) At(i int) Value {
	if a == nil || i < 0 || i >= len(a.values) {
		return Undefined
	}
	return a.values[i]
}

// Slice returns the supplied arguments.
func (a *Arguments) Slice() []Value {
	if a == nil {
		return nil
	}
	return a.values
}
