package evaluator

import (
	"strings"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// FunctionLiteral creates a script function closing over the current scope.
type FunctionLiteral struct {
	Name   string
	Params []string
	Body   []Node
	Strict bool // body starts with a "use strict" directive
}

func NewFunctionLiteral(name string, params []string, body ...Node) *FunctionLiteral {
	return &FunctionLiteral{Name: name, Params: params, Body: body, Strict: hasUseStrict(body)}
}

func (fl *FunctionLiteral) Evaluate(ctx *vm.Context) (vm.Value, error) {
	return fl.instantiate(ctx).Value(), nil
}

func (fl *FunctionLiteral) instantiate(ctx *vm.Context) *vm.Function {
	realm := ctx.Realm()
	f := vm.NewFunction(realm, fl.Name, len(fl.Params), &scriptFunction{literal: fl}, ctx)
	f.Strict = fl.Strict || ctx.Strict()
	proto := vm.NewObject(realm.ObjectPrototype)
	proto.Set("constructor", f.Value().WithAttrs(vm.DoNotEnumerate))
	f.Set("prototype", proto.Value().WithAttrs(vm.DoNotEnumerate|vm.DoNotDelete))
	return f
}

func (fl *FunctionLiteral) String() string {
	return "function " + fl.Name + "(" + strings.Join(fl.Params, ", ") + ") { " + joinNodes(fl.Body, "; ") + " }"
}

// scriptFunction runs a function body in the activation context it is handed.
type scriptFunction struct {
	literal *FunctionLiteral
}

func (sf *scriptFunction) Call(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
	if !ctx.Strict() && this.IsNullish() {
		ctx.SetThis(ctx.Global().Value())
	}
	vars := ctx.Vars()
	if fn := ctx.Function(); fn != nil && sf.literal.Name != "" {
		vars.Define(sf.literal.Name, fn.Value())
	}
	for i, p := range sf.literal.Params {
		vars.Define(p, args.At(i))
	}
	if _, err := runStatements(ctx, sf.literal.Body); err != nil {
		return vm.Undefined, err
	}
	comp := ctx.Completion()
	ctx.ClearCompletion()
	if comp.Kind == vm.CompletionReturn {
		return comp.Payload, nil
	}
	return vm.Undefined, nil
}

func (sf *scriptFunction) Construct(ctx *vm.Context, args *vm.Arguments) (vm.Value, error) {
	proto := ctx.Realm().ObjectPrototype
	if fn := ctx.Function(); fn != nil {
		if slot, _ := fn.Properties().Get("prototype"); slot != nil && slot.IsObject() {
			proto = slot.AsObject()
		}
	}
	obj := vm.NewObject(proto).Value()
	ctx.SetThis(obj)
	result, err := sf.Call(ctx, obj, args)
	if err != nil {
		return vm.Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return obj, nil
}

// runStatements evaluates body in order until one of them completes abruptly.
// It returns the value of the last statement evaluated.
func runStatements(ctx *vm.Context, body []Node) (vm.Value, error) {
	result := vm.Undefined
	for _, stmt := range body {
		v, err := stmt.Evaluate(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		result = v
		if ctx.Abrupt() {
			break
		}
	}
	return result, nil
}

func hasUseStrict(body []Node) bool {
	for _, stmt := range body {
		c, ok := stmt.(*Constant)
		if !ok || !c.Value.IsString() {
			return false
		}
		if c.Value.AsString() == "use strict" {
			return true
		}
	}
	return false
}
