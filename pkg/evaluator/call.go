package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Call invokes Callee with Args. A member callee supplies its object as `this`.
type Call struct {
	Callee Node
	Args   []Node
}

func NewCall(callee Node, args ...Node) *Call {
	return &Call{Callee: callee, Args: args}
}

func (c *Call) Evaluate(ctx *vm.Context) (vm.Value, error) {
	var fn, this vm.Value
	if m, ok := c.Callee.(*Member); ok {
		base, key, err := m.operands(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		if fn, err = ctx.GetMember(base, key); err != nil {
			return vm.Undefined, err
		}
		this = base
	} else {
		var err error
		if fn, err = c.Callee.Evaluate(ctx); err != nil {
			return vm.Undefined, err
		}
		this = vm.Undefined
	}
	args, err := evaluateAll(ctx, c.Args)
	if err != nil {
		return vm.Undefined, err
	}
	if !fn.IsFunction() {
		return vm.Undefined, ctx.NewTypeError("%s is not a function", c.Callee)
	}
	tracer().Debugf("call %s with %d argument(s)", c.Callee, len(args))
	return fn.AsFunction().Invoke(ctx, this, args...)
}

func (c *Call) String() string {
	return c.Callee.String() + "(" + joinNodes(c.Args, ", ") + ")"
}

// New is `new Callee(Args)`.
type New struct {
	Callee Node
	Args   []Node
}

func NewNew(callee Node, args ...Node) *New {
	return &New{Callee: callee, Args: args}
}

func (n *New) Evaluate(ctx *vm.Context) (vm.Value, error) {
	fn, err := n.Callee.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	args, err := evaluateAll(ctx, n.Args)
	if err != nil {
		return vm.Undefined, err
	}
	if !fn.IsFunction() {
		return vm.Undefined, ctx.NewTypeError("%s is not a constructor", n.Callee)
	}
	return fn.AsFunction().New(ctx, vm.NewArguments(args...))
}

func (n *New) String() string {
	return "new " + n.Callee.String() + "(" + joinNodes(n.Args, ", ") + ")"
}
