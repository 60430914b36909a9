package evaluator

import (
	"strings"
	"testing"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

func newTestContext(strict bool) *vm.Context {
	realm := vm.NewRealm()
	ctx := vm.NewRootContext(realm, strict)
	realm.InstallGlobals(ctx)
	return ctx
}

func run(t *testing.T, ctx *vm.Context, body ...Node) vm.Value {
	t.Helper()
	v, err := NewProgram(body...).Evaluate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func runErr(ctx *vm.Context, body ...Node) error {
	_, err := NewProgram(body...).Evaluate(ctx)
	return err
}

func binding(t *testing.T, ctx *vm.Context, name string) vm.Value {
	t.Helper()
	slot, _ := ctx.Resolve(name)
	if slot == nil {
		t.Fatalf("no binding %q", name)
	}
	return slot.Plain()
}

func expectError(t *testing.T, err error, kind, contains string) {
	t.Helper()
	exc, ok := vm.AsException(err)
	if !ok {
		t.Fatalf("expected a %s, got %v", kind, err)
	}
	msg := exc.Value.String()
	if !strings.HasPrefix(msg, kind) || !strings.Contains(msg, contains) {
		t.Errorf("expected %s containing %q, got %q", kind, contains, msg)
	}
}

func expectInteger(t *testing.T, v vm.Value, want int32) {
	t.Helper()
	if !v.IsInteger() || v.AsInteger() != want {
		t.Errorf("expected Integer %d, got %s %v", want, v.Type(), v)
	}
}

func expectNumber(t *testing.T, v vm.Value, want float64) {
	t.Helper()
	if !v.IsNumber() || v.AsFloat() != want {
		t.Errorf("expected number %v, got %s %v", want, v.Type(), v)
	}
}

func num(f float64) Node       { return NewNumber(f) }
func str(s string) Node        { return NewStringLiteral(s) }
func ident(n string) *Variable { return NewVariable(n) }

// getterObject builds `{ get name() { return value } }`.
func getterObject(name string, value Node) *ObjectLiteral {
	return NewObjectLiteral(GetterProperty(name, NewFunctionLiteral("", nil, NewReturn(value))))
}
