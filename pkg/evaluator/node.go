/*
Package evaluator walks syntax trees against a vm.Context.

Trees are built by a parser collaborator (or directly in Go) from the
exported node constructors. Expressions and statements share the Node
contract; statements that transfer control write a completion signal into
the context and return Undefined. Thrown script values travel as errors.
*/
package evaluator

import (
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// tracer writes to trace with key 'niljs.evaluator'
func tracer() tracing.Trace {
	return tracing.Select("niljs.evaluator")
}

// Node is the contract of every syntax tree node.
type Node interface {
	Evaluate(ctx *vm.Context) (vm.Value, error)
	String() string
}

// Assignable nodes can additionally be resolved to a storage location.
type Assignable interface {
	Node
	EvaluateForWrite(ctx *vm.Context) (vm.Reference, error)
}

// labelTarget is implemented by statements that own labels (loops and switch).
type labelTarget interface {
	addLabel(label string)
}

// evaluateAll evaluates nodes left to right.
func evaluateAll(ctx *vm.Context, nodes []Node) ([]vm.Value, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	values := make([]vm.Value, len(nodes))
	for i, n := range nodes {
		v, err := n.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

// --- Literals ---

// Constant is a literal value.
type Constant struct {
	Value vm.Value
}

func NewConstant(v vm.Value) *Constant { return &Constant{Value: v.Plain()} }

func NewNumber(f float64) *Constant       { return NewConstant(vm.NumberFromFloat(f)) }
func NewStringLiteral(s string) *Constant { return NewConstant(vm.NewString(s)) }
func NewBoolean(b bool) *Constant         { return NewConstant(vm.BooleanValue(b)) }
func NewNull() *Constant                  { return NewConstant(vm.Null) }
func NewUndefined() *Constant             { return NewConstant(vm.Undefined) }

func (c *Constant) Evaluate(ctx *vm.Context) (vm.Value, error) { return c.Value, nil }

func (c *Constant) String() string {
	if c.Value.IsString() {
		return strconv.Quote(c.Value.AsString())
	}
	return c.Value.String()
}

// Variable is an identifier reference.
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable { return &Variable{Name: name} }

func (v *Variable) Evaluate(ctx *vm.Context) (vm.Value, error) {
	return ctx.GetValue(ctx.VariableReference(v.Name))
}

func (v *Variable) EvaluateForWrite(ctx *vm.Context) (vm.Reference, error) {
	return ctx.VariableReference(v.Name), nil
}

func (v *Variable) String() string { return v.Name }

// This evaluates to the `this` binding of the current activation.
type This struct{}

func NewThis() *This { return &This{} }

func (t *This) Evaluate(ctx *vm.Context) (vm.Value, error) { return ctx.This(), nil }
func (t *This) String() string                             { return "this" }

// --- Member access ---

// Member is `object.name` or `object[property]`.
type Member struct {
	Object   Node
	Property Node
	computed bool
}

// NewMember creates the dot form object.name.
func NewMember(object Node, name string) *Member {
	return &Member{Object: object, Property: NewStringLiteral(name)}
}

// NewIndex creates the computed form object[property].
func NewIndex(object, property Node) *Member {
	return &Member{Object: object, Property: property, computed: true}
}

func (m *Member) operands(ctx *vm.Context) (vm.Value, vm.Value, error) {
	base, err := m.Object.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, vm.Undefined, err
	}
	key, err := m.Property.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, vm.Undefined, err
	}
	return base, key, nil
}

func (m *Member) Evaluate(ctx *vm.Context) (vm.Value, error) {
	base, key, err := m.operands(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	return ctx.GetMember(base, key)
}

func (m *Member) EvaluateForWrite(ctx *vm.Context) (vm.Reference, error) {
	base, key, err := m.operands(ctx)
	if err != nil {
		return vm.Reference{}, err
	}
	return ctx.MemberReference(base, key)
}

func (m *Member) String() string {
	if m.computed {
		return m.Object.String() + "[" + m.Property.String() + "]"
	}
	return m.Object.String() + "." + m.Property.(*Constant).Value.AsString()
}

// --- Assignment ---

// Assign is `target = value`.
type Assign struct {
	Target Assignable
	Value  Node
}

func NewAssign(target Assignable, value Node) *Assign {
	return &Assign{Target: target, Value: value}
}

func (a *Assign) Evaluate(ctx *vm.Context) (vm.Value, error) {
	ref, err := a.Target.EvaluateForWrite(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	v, err := a.Value.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if err := ctx.Assign(ref, v); err != nil {
		return vm.Undefined, err
	}
	return v, nil
}

func (a *Assign) String() string { return a.Target.String() + " = " + a.Value.String() }
