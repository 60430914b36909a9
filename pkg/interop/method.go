package interop

import (
	"fmt"
	"reflect"

	"github.com/cnf/structhash"

	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Method identifies a native function or method.
type Method struct {
	Name     string
	Func     reflect.Value // for methods the method expression, receiver first
	Receiver reflect.Type  // nil for plain functions
	Spec     MemberSpec
}

// FuncOf describes the Go function fn.
func FuncOf(name string, fn any, spec MemberSpec) (Method, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return Method{}, errors.Configurationf(name, "%T is not a function", fn)
	}
	return Method{Name: name, Func: fv, Spec: spec}, nil
}

// MethodOf describes the method goName of receiver type t. Declarations of
// t through Annotated are applied.
func MethodOf(t reflect.Type, goName string) (Method, error) {
	if t.Kind() == reflect.Interface {
		return Method{}, errors.Configurationf(t.String(), "methods of interface types can not be bound")
	}
	m, ok := t.MethodByName(goName)
	if !ok {
		return Method{}, errors.Configurationf(t.String(), "no method %s", goName)
	}
	return Method{Name: goName, Func: m.Func, Receiver: t, Spec: memberSpecs(t)[goName]}, nil
}

// methodIdentity is hashed into the thunk cache key.
type methodIdentity struct {
	Code           uint64
	Signature      string
	Receiver       string
	InstanceMember bool
}

func (m Method) key() (string, error) {
	id := methodIdentity{
		Code:           uint64(m.Func.Pointer()),
		Signature:      m.Func.Type().String(),
		InstanceMember: m.Spec.InstanceMember,
	}
	if m.Receiver != nil {
		id.Receiver = m.Receiver.String()
	}
	return structhash.Hash(id, 1)
}

// MethodProxy calls one native method from script code. It implements
// vm.Callable.
type MethodProxy struct {
	registry *Registry
	method   Method
	target   reflect.Value // fixed receiver, invalid if `this` is used
	strict   bool
	thunk    *thunk
}

// NewMethodProxy binds m, with target as fixed receiver if it is not nil.
func (r *Registry) NewMethodProxy(m Method, target any) (*MethodProxy, error) {
	th, err := r.thunkFor(m)
	if err != nil {
		return nil, err
	}
	p := &MethodProxy{
		registry: r,
		method:   m,
		strict:   m.Spec.StrictConversion || r.opts.StrictConversion,
		thunk:    th,
	}
	if target != nil {
		tv := reflect.ValueOf(target)
		if m.Receiver == nil || !tv.Type().AssignableTo(m.Receiver) {
			return nil, errors.Configurationf(m.Name, "target %T does not match receiver", target)
		}
		p.target = tv
	}
	return p, nil
}

func (p *MethodProxy) Convention() Convention { return p.thunk.convention }

// Length is the script-visible arity.
func (p *MethodProxy) Length() int {
	spec := p.method.Spec
	if n := spec.ArgumentsLength; n > 0 || (n == 0 && spec.ZeroLength) {
		return n
	}
	if p.thunk.rawArgs {
		return 0
	}
	return p.thunk.fixed()
}

// Function wraps p as a script function named name.
func (p *MethodProxy) Function(name string) *vm.Function {
	return vm.NewFunction(p.registry.realm, name, p.Length(), p, nil)
}

// Call resolves the receiver, converts the arguments and invokes the method.
// Receiver and argument problems are reported before the native code runs.
func (p *MethodProxy) Call(ctx *vm.Context, this vm.Value, args *vm.Arguments) (result vm.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result, err = vm.Undefined, p.fail(ctx, panicError(rec))
		}
	}()
	th := p.thunk
	in := make([]reflect.Value, 0, len(th.params)+3)
	if th.receiver {
		recv, err := p.receiver(ctx, this)
		if err != nil {
			return vm.Undefined, err
		}
		in = append(in, recv)
	}
	if th.context {
		in = append(in, reflect.ValueOf(ctx))
	}
	if th.rawThis {
		in = append(in, reflect.ValueOf(this.Plain()))
	}
	if th.convention == ForceInstance {
		tv, err := p.instance(ctx, this)
		if err != nil {
			return vm.Undefined, p.fail(ctx, err)
		}
		in = append(in, tv)
	}
	if th.rawArgs {
		if args == nil {
			args = vm.NewArguments()
		}
		in = append(in, reflect.ValueOf(args))
	} else if in, err = p.arguments(ctx, in, args); err != nil {
		return vm.Undefined, p.fail(ctx, err)
	}
	tracer().Debugf("native call %s with %d argument(s)", p.method.Name, len(in))
	out := p.method.Func.Call(in)
	return p.result(ctx, out)
}

func (p *MethodProxy) receiver(ctx *vm.Context, this vm.Value) (reflect.Value, error) {
	if p.target.IsValid() {
		return p.target, nil
	}
	if rv, ok := hostAs(this, p.method.Receiver); ok {
		return rv, nil
	}
	return reflect.Value{}, ctx.NewTypeError("Can not call function \"%s\" for object of another type.", p.method.Name)
}

// instance converts `this` for the ForceInstance convention. An object
// boxing a script value is unwrapped one level.
func (p *MethodProxy) instance(ctx *vm.Context, this vm.Value) (reflect.Value, error) {
	if h, ok := hostOf(this); ok {
		if hv, isValue := h.(vm.Value); isValue {
			this = hv
		}
	}
	return p.registry.toNative(ctx, this, p.thunk.this, p.strict)
}

func (p *MethodProxy) arguments(ctx *vm.Context, in []reflect.Value, args *vm.Arguments) ([]reflect.Value, error) {
	th := p.thunk
	spec := p.method.Spec
	fixed := th.fixed()
	firstDefault := fixed - len(spec.Defaults)
	for i := 0; i < fixed; i++ {
		t := th.params[i]
		if i < args.Len() {
			v, err := p.convert(ctx, i, args.At(i), t)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
			continue
		}
		switch {
		case i >= firstDefault:
			v, err := defaultArgument(spec.Defaults[i-firstDefault], t)
			if err != nil {
				return nil, errors.Configurationf(p.method.Name, "%s", err.Error())
			}
			in = append(in, v)
		case p.strict:
			return nil, ctx.NewTypeError("Missing argument %d of \"%s\"", i+1, p.method.Name)
		case p.registry.opts.DummyValues:
			in = append(in, zeroArgument(t))
		default:
			in = append(in, reflect.Zero(t))
		}
	}
	if th.variadic {
		elem := th.params[fixed].Elem()
		for i := fixed; i < args.Len(); i++ {
			v, err := p.convert(ctx, i, args.At(i), elem)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}
	}
	return in, nil
}

func (p *MethodProxy) convert(ctx *vm.Context, i int, v vm.Value, t reflect.Type) (reflect.Value, error) {
	if params := p.method.Spec.Params; i < len(params) && params[i] != nil {
		x, err := params[i].ToNative(ctx, v)
		switch {
		case err == errNoConversion:
		case err != nil:
			return reflect.Value{}, err
		case x == nil:
			return reflect.Zero(t), nil
		default:
			xv := reflect.ValueOf(x)
			if !xv.Type().AssignableTo(t) {
				return reflect.Value{}, fmt.Errorf("converter of parameter %d returned %T, want %s", i+1, x, t)
			}
			return xv, nil
		}
	}
	return p.registry.toNative(ctx, v, t, p.strict)
}

func (p *MethodProxy) result(ctx *vm.Context, out []reflect.Value) (vm.Value, error) {
	th := p.thunk
	if th.err >= 0 && !out[th.err].IsNil() {
		return vm.Undefined, p.fail(ctx, out[th.err].Interface().(error))
	}
	if th.result < 0 {
		return vm.Undefined, nil
	}
	res := out[th.result]
	if conv := p.method.Spec.Return; conv != nil {
		v, err := conv.ToScript(ctx, res.Interface())
		if err != errNoConversion {
			if err != nil {
				return vm.Undefined, p.fail(ctx, err)
			}
			return v, nil
		}
	}
	return p.registry.Box(res), nil
}

// fail normalizes a native failure. Script exceptions and configuration
// errors pass unchanged, anything else becomes a TypeError carrying the
// message of its innermost cause.
func (p *MethodProxy) fail(ctx *vm.Context, err error) error {
	return nativeFailure(ctx, p.method.Name, err)
}

func nativeFailure(ctx *vm.Context, name string, err error) error {
	if exc, ok := vm.AsException(err); ok {
		return exc
	}
	if errors.IsConfiguration(err) {
		return err
	}
	cause := errors.Innermost(err)
	tracer().Debugf("native %s failed: %v", name, err)
	exc := ctx.Realm().NewError(vm.KindTypeError, cause.Error())
	exc.Cause = err
	return exc
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}
