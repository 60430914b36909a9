package evaluator

import (
	"math"
	"strings"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// --- Unary operators ---

type UnaryOp uint8

const (
	OpNegate UnaryOp = iota
	OpPlus
	OpNot
	OpTypeOf
	OpVoid
)

var unarySymbols = map[UnaryOp]string{
	OpNegate: "-", OpPlus: "+", OpNot: "!", OpTypeOf: "typeof ", OpVoid: "void ",
}

type Unary struct {
	Op      UnaryOp
	Operand Node
}

func NewUnary(op UnaryOp, operand Node) *Unary { return &Unary{Op: op, Operand: operand} }

func (u *Unary) Evaluate(ctx *vm.Context) (vm.Value, error) {
	if u.Op == OpTypeOf {
		// typeof tolerates unresolvable identifiers
		if v, ok := u.Operand.(*Variable); ok {
			if slot, _ := ctx.Resolve(v.Name); slot == nil {
				return vm.NewString("undefined"), nil
			}
		}
	}
	v, err := u.Operand.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	switch u.Op {
	case OpNegate:
		n, err := ctx.ToNumber(v)
		if err != nil {
			return vm.Undefined, err
		}
		if n.IsInteger() && n.AsInteger() != 0 {
			return vm.NumberFromInt64(-int64(n.AsInteger())), nil
		}
		return vm.DoubleValue(-n.AsFloat()), nil
	case OpPlus:
		return ctx.ToNumber(v)
	case OpNot:
		return vm.BooleanValue(!vm.ToBoolean(v)), nil
	case OpTypeOf:
		return vm.NewString(vm.TypeOf(v)), nil
	case OpVoid:
		return vm.Undefined, nil
	}
	return vm.Undefined, ctx.NewSyntaxError("unknown unary operator %d", u.Op)
}

func (u *Unary) String() string { return unarySymbols[u.Op] + u.Operand.String() }

// Delete is `delete operand`.
type Delete struct {
	Operand Node
}

func NewDelete(operand Node) *Delete { return &Delete{Operand: operand} }

func (d *Delete) Evaluate(ctx *vm.Context) (vm.Value, error) {
	switch op := d.Operand.(type) {
	case *Member:
		base, key, err := op.operands(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := ctx.DeleteMember(base, key)
		return vm.BooleanValue(ok), err
	case *Variable:
		if ctx.Strict() {
			return vm.Undefined, ctx.NewSyntaxError("Delete of an unqualified identifier in strict mode.")
		}
		slot, owner := ctx.Resolve(op.Name)
		if slot == nil {
			return vm.True, nil
		}
		if owner != ctx.Root() || !slot.Deletable() {
			return vm.False, nil
		}
		return vm.BooleanValue(owner.Vars().Delete(op.Name)), nil
	}
	if _, err := d.Operand.Evaluate(ctx); err != nil {
		return vm.Undefined, err
	}
	return vm.True, nil
}

func (d *Delete) String() string { return "delete " + d.Operand.String() }

// --- Binary operators ---

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpStrictEqual
	OpStrictNotEqual
	OpEqual
	OpNotEqual
)

var binarySymbols = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLess: "<", OpGreater: ">", OpLessEqual: "<=", OpGreaterEqual: ">=",
	OpStrictEqual: "===", OpStrictNotEqual: "!==", OpEqual: "==", OpNotEqual: "!=",
}

type Binary struct {
	Op          BinaryOp
	Left, Right Node
}

func NewBinary(op BinaryOp, left, right Node) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + binarySymbols[b.Op] + " " + b.Right.String() + ")"
}

func (b *Binary) Evaluate(ctx *vm.Context) (vm.Value, error) {
	l, err := b.Left.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	r, err := b.Right.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	switch b.Op {
	case OpAdd:
		return add(ctx, l, r)
	case OpSub, OpMul, OpDiv, OpMod:
		return arithmetic(ctx, b.Op, l, r)
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual:
		return relational(ctx, b.Op, l, r)
	case OpStrictEqual:
		return vm.BooleanValue(vm.StrictEquals(l, r)), nil
	case OpStrictNotEqual:
		return vm.BooleanValue(!vm.StrictEquals(l, r)), nil
	case OpEqual, OpNotEqual:
		eq, err := ctx.LooseEquals(l, r)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(eq == (b.Op == OpEqual)), nil
	}
	return vm.Undefined, ctx.NewSyntaxError("unknown binary operator %d", b.Op)
}

func add(ctx *vm.Context, l, r vm.Value) (vm.Value, error) {
	if l.IsInteger() && r.IsInteger() {
		return vm.NumberFromInt64(int64(l.AsInteger()) + int64(r.AsInteger())), nil
	}
	lp, err := ctx.ToPrimitive(l, "default")
	if err != nil {
		return vm.Undefined, err
	}
	rp, err := ctx.ToPrimitive(r, "default")
	if err != nil {
		return vm.Undefined, err
	}
	if lp.IsString() || rp.IsString() {
		ls, err := ctx.ToString(lp)
		if err != nil {
			return vm.Undefined, err
		}
		rs, err := ctx.ToString(rp)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(ls + rs), nil
	}
	return arithmetic(ctx, OpAdd, lp, rp)
}

func arithmetic(ctx *vm.Context, op BinaryOp, l, r vm.Value) (vm.Value, error) {
	ln, err := ctx.ToNumber(l)
	if err != nil {
		return vm.Undefined, err
	}
	rn, err := ctx.ToNumber(r)
	if err != nil {
		return vm.Undefined, err
	}
	if ln.IsInteger() && rn.IsInteger() {
		x, y := int64(ln.AsInteger()), int64(rn.AsInteger())
		switch op {
		case OpAdd:
			return vm.NumberFromInt64(x + y), nil
		case OpSub:
			return vm.NumberFromInt64(x - y), nil
		case OpMul:
			if p := x * y; p != 0 || (x >= 0 && y >= 0) {
				return vm.NumberFromInt64(p), nil
			}
			return vm.DoubleValue(math.Copysign(0, -1)), nil
		}
	}
	x, y := ln.AsFloat(), rn.AsFloat()
	var f float64
	switch op {
	case OpAdd:
		f = x + y
	case OpSub:
		f = x - y
	case OpMul:
		f = x * y
	case OpDiv:
		f = x / y
	case OpMod:
		f = math.Mod(x, y)
	}
	return vm.NumberFromFloat(f), nil
}

// relational converts both operands to primitives (left first) and
// compares strings lexically, everything else numerically. NaN compares false.
func relational(ctx *vm.Context, op BinaryOp, l, r vm.Value) (vm.Value, error) {
	lp, err := ctx.ToPrimitive(l, "number")
	if err != nil {
		return vm.Undefined, err
	}
	rp, err := ctx.ToPrimitive(r, "number")
	if err != nil {
		return vm.Undefined, err
	}
	var cmp int
	if lp.IsString() && rp.IsString() {
		cmp = strings.Compare(lp.AsString(), rp.AsString())
	} else {
		x, err := ctx.ToFloat(lp)
		if err != nil {
			return vm.Undefined, err
		}
		y, err := ctx.ToFloat(rp)
		if err != nil {
			return vm.Undefined, err
		}
		switch {
		case x != x || y != y:
			return vm.False, nil
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	}
	switch op {
	case OpLess:
		return vm.BooleanValue(cmp < 0), nil
	case OpGreater:
		return vm.BooleanValue(cmp > 0), nil
	case OpLessEqual:
		return vm.BooleanValue(cmp <= 0), nil
	}
	return vm.BooleanValue(cmp >= 0), nil
}

// --- Logical operators ---

type LogicalOp uint8

const (
	OpAnd LogicalOp = iota
	OpOr
)

// Logical is `&&` or `||`; the right operand is evaluated only when needed.
type Logical struct {
	Op          LogicalOp
	Left, Right Node
}

func NewLogical(op LogicalOp, left, right Node) *Logical {
	return &Logical{Op: op, Left: left, Right: right}
}

func (l *Logical) Evaluate(ctx *vm.Context) (vm.Value, error) {
	v, err := l.Left.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if vm.ToBoolean(v) == (l.Op == OpOr) {
		return v, nil
	}
	return l.Right.Evaluate(ctx)
}

func (l *Logical) String() string {
	op := " && "
	if l.Op == OpOr {
		op = " || "
	}
	return "(" + l.Left.String() + op + l.Right.String() + ")"
}

// Conditional is `test ? then : otherwise`.
type Conditional struct {
	Test, Then, Otherwise Node
}

func NewConditional(test, then, otherwise Node) *Conditional {
	return &Conditional{Test: test, Then: then, Otherwise: otherwise}
}

func (c *Conditional) Evaluate(ctx *vm.Context) (vm.Value, error) {
	t, err := c.Test.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if vm.ToBoolean(t) {
		return c.Then.Evaluate(ctx)
	}
	return c.Otherwise.Evaluate(ctx)
}

func (c *Conditional) String() string {
	return "(" + c.Test.String() + " ? " + c.Then.String() + " : " + c.Otherwise.String() + ")"
}
