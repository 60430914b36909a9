package evaluator

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

func TestDecrementGetterOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "niljs.evaluator")
	defer teardown()

	ctx := newTestContext(false)
	run(t, ctx, NewVar("o", getterObject("x", num(5))))
	post := run(t, ctx, NewDecrement(NewMember(ident("o"), "x"), PostDecrement))
	expectInteger(t, post, 5)
	pre := run(t, ctx, NewDecrement(NewMember(ident("o"), "x"), PreDecrement))
	expectInteger(t, pre, 4)
	after := run(t, ctx, NewMember(ident("o"), "x"))
	expectInteger(t, after, 5)

	strict := newTestContext(true)
	run(t, strict, NewVar("o", getterObject("x", num(5))))
	err := runErr(strict, NewDecrement(NewMember(ident("o"), "x"), PreDecrement))
	expectError(t, err, "TypeError", "Can not decrement property \"o.x\" without setter.")
}

func TestDecrementSetterReceivesNewValue(t *testing.T) {
	ctx := newTestContext(false)
	// o = { get x() { return 10 }, set x(v) { this.seen = v } }
	obj := NewObjectLiteral(
		GetterProperty("x", NewFunctionLiteral("", nil, NewReturn(num(10)))),
		SetterProperty("x", NewFunctionLiteral("", []string{"v"},
			NewAssign(NewMember(NewThis(), "seen"), ident("v")))),
	)
	run(t, ctx, NewVar("o", obj))
	res := run(t, ctx, NewDecrement(NewMember(ident("o"), "x"), PostDecrement))
	expectInteger(t, res, 10)
	seen := run(t, ctx, NewMember(ident("o"), "seen"))
	expectInteger(t, seen, 9)
}

func TestPostDecrementKeepsOldValue(t *testing.T) {
	ctx := newTestContext(false)
	run(t, ctx, NewVar("a", num(5)))
	// (a--) + (a = 100)
	res := run(t, ctx, NewBinary(OpAdd,
		NewDecrement(ident("a"), PostDecrement),
		NewAssign(ident("a"), num(100))))
	expectInteger(t, res, 105)
	expectInteger(t, binding(t, ctx, "a"), 100)

	pre := run(t, ctx, NewDecrement(ident("a"), PreDecrement))
	expectInteger(t, pre, 99)
	expectInteger(t, binding(t, ctx, "a"), 99)
}

func TestDecrementNumericEdges(t *testing.T) {
	ctx := newTestContext(false)
	run(t, ctx, NewVar("u", nil), NewVar("m", NewConstant(vm.IntegerValue(math.MinInt32))))

	res := run(t, ctx, NewDecrement(ident("u"), PreDecrement))
	if !res.IsDouble() || !math.IsNaN(res.AsFloat()) {
		t.Errorf("decrementing undefined must give Double NaN, got %s %v", res.Type(), res)
	}
	res = run(t, ctx, NewDecrement(ident("m"), PreDecrement))
	if !res.IsDouble() || res.AsFloat() != math.MinInt32-1.0 {
		t.Errorf("expected Double %v, got %s %v", math.MinInt32-1.0, res.Type(), res)
	}
	if m := binding(t, ctx, "m"); !m.IsDouble() {
		t.Errorf("stored value must be promoted too, got %s", m.Type())
	}
	run(t, ctx, NewVar("d", num(2.5)))
	expectNumber(t, run(t, ctx, NewDecrement(ident("d"), PreDecrement)), 1.5)
}

func TestDecrementCoercionLadder(t *testing.T) {
	realmCtx := newTestContext(false)
	r := realmCtx.Realm()
	valueOf := vm.NewObject(r.ObjectPrototype)
	valueOf.Set("valueOf", vm.NewNativeFunction(r, "valueOf", 0,
		func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
			return vm.NewString("10"), nil
		}).Value())
	bare := vm.NewObject(nil) // no valueOf, no toString

	tests := []struct {
		name    string
		initial vm.Value
		wantOld float64
		wantNew float64
	}{
		{"true", vm.True, 1, 0},
		{"false", vm.False, 0, -1},
		{"numeric string", vm.NewString(" 7 "), 7, 6},
		{"hex string", vm.NewString("0x10"), 16, 15},
		{"null", vm.Null, 0, -1},
		{"object with valueOf", valueOf.Value(), 10, 9},
		{"irreducible object", bare.Value(), 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			realmCtx.Root().Vars().Define("v", tt.initial)
			old := run(t, realmCtx, NewDecrement(ident("v"), PostDecrement))
			expectNumber(t, old, tt.wantOld)
			expectNumber(t, binding(t, realmCtx, "v"), tt.wantNew)
		})
	}

	realmCtx.Root().Vars().Define("s", vm.NewString("abc"))
	res := run(t, realmCtx, NewDecrement(ident("s"), PreDecrement))
	if !math.IsNaN(res.AsFloat()) {
		t.Errorf("non-numeric strings decrement to NaN, got %v", res)
	}
	realmCtx.Root().Vars().Define("sym", vm.NewSymbol("x"))
	err := runErr(realmCtx, NewDecrement(ident("sym"), PreDecrement))
	expectError(t, err, "TypeError", "Symbol")
}

func TestDecrementReadOnly(t *testing.T) {
	for _, strict := range []bool{false, true} {
		ctx := newTestContext(strict)
		ctx.Root().Vars().Define("fixed", vm.IntegerValue(3).WithAttrs(vm.ReadOnly))
		res, err := NewProgram(NewDecrement(ident("fixed"), PreDecrement)).Evaluate(ctx)
		if strict {
			expectError(t, err, "TypeError", "Can not decrement readonly \"fixed\"")
		} else {
			if err != nil {
				t.Fatal(err)
			}
			expectInteger(t, res, 2)
		}
		expectInteger(t, binding(t, ctx, "fixed"), 3)
	}
}

func TestDecrementUnresolvable(t *testing.T) {
	ctx := newTestContext(false)
	err := runErr(ctx, NewDecrement(ident("ghost"), PostDecrement))
	expectError(t, err, "ReferenceError", "ghost is not defined")
}

func TestIncrementMirrorsDecrement(t *testing.T) {
	ctx := newTestContext(false)
	run(t, ctx, NewVar("i", NewConstant(vm.IntegerValue(math.MaxInt32))))
	old := run(t, ctx, NewIncrement(ident("i"), PostIncrement))
	expectInteger(t, old, math.MaxInt32)
	if i := binding(t, ctx, "i"); !i.IsDouble() || i.AsFloat() != math.MaxInt32+1.0 {
		t.Errorf("overflow must promote to Double, got %s %v", i.Type(), i)
	}
	strict := newTestContext(true)
	run(t, strict, NewVar("o", getterObject("x", num(1))))
	err := runErr(strict, NewIncrement(NewMember(ident("o"), "x"), PostIncrement))
	expectError(t, err, "TypeError", "Can not increment property")
}
