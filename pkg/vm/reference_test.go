package vm

import (
	"strings"
	"testing"
)

func newTestContext(strict bool) *Context {
	r := NewRealm()
	ctx := NewRootContext(r, strict)
	r.InstallGlobals(ctx)
	return ctx
}

func expectTypeError(t *testing.T, err error, contains string) {
	t.Helper()
	exc, ok := AsException(err)
	if !ok {
		t.Fatalf("expected a script exception, got %v", err)
	}
	if !strings.HasPrefix(exc.Value.String(), "TypeError") || !strings.Contains(exc.Value.String(), contains) {
		t.Errorf("expected TypeError containing %q, got %q", contains, exc.Value.String())
	}
}

func TestAssignReadOnly(t *testing.T) {
	for _, strict := range []bool{false, true} {
		ctx := newTestContext(strict)
		o := NewObject(ctx.Realm().ObjectPrototype)
		o.Set("fixed", IntegerValue(1).WithAttrs(ReadOnly))
		ref, err := ctx.MemberReference(o.Value(), NewString("fixed"))
		if err != nil {
			t.Fatal(err)
		}
		err = ctx.Assign(ref, IntegerValue(2))
		if strict {
			expectTypeError(t, err, "readonly")
		} else if err != nil {
			t.Errorf("non-strict readonly write must be discarded silently, got %v", err)
		}
		if slot, _ := o.Properties().Get("fixed"); slot.AsInteger() != 1 {
			t.Errorf("readonly slot was mutated (strict=%v)", strict)
		}
	}
}

func TestAssignThroughAccessor(t *testing.T) {
	ctx := newTestContext(false)
	r := ctx.Realm()
	var stored Value
	var setterThis Value
	set := NewNativeFunction(r, "set", 1, func(c *Context, this Value, args *Arguments) (Value, error) {
		setterThis = this
		stored = args.At(0)
		return Undefined, nil
	})
	get := NewNativeFunction(r, "get", 0, func(c *Context, this Value, args *Arguments) (Value, error) {
		return NewString("got"), nil
	})
	proto := NewObject(r.ObjectPrototype)
	proto.DefineAccessor("p", get, set, 0)
	o := NewObject(proto)

	if err := ctx.PutMember(o.Value(), NewString("p"), IntegerValue(7)); err != nil {
		t.Fatal(err)
	}
	if stored.AsInteger() != 7 || !StrictEquals(setterThis, o.Value()) {
		t.Errorf("setter must run with the receiver as this")
	}
	if _, ok := o.Properties().Get("p"); ok {
		t.Errorf("an inherited accessor must not be shadowed by a write")
	}
	v, err := ctx.Get(o.Value(), "p")
	if err != nil || v.AsString() != "got" {
		t.Errorf("getter not invoked: %v %v", v, err)
	}
}

func TestAssignGetterOnly(t *testing.T) {
	for _, strict := range []bool{false, true} {
		ctx := newTestContext(strict)
		r := ctx.Realm()
		get := NewNativeFunction(r, "get", 0, func(c *Context, this Value, args *Arguments) (Value, error) {
			return IntegerValue(1), nil
		})
		o := NewObject(r.ObjectPrototype)
		o.DefineAccessor("g", get, nil, 0)
		err := ctx.PutMember(o.Value(), NewString("g"), IntegerValue(5))
		if strict {
			expectTypeError(t, err, "without setter")
		} else if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	}
}

func TestAssignShadowsInheritedData(t *testing.T) {
	ctx := newTestContext(false)
	proto := NewObject(ctx.Realm().ObjectPrototype)
	proto.Set("v", IntegerValue(1))
	o := NewObject(proto)
	if err := ctx.PutMember(o.Value(), NewString("v"), IntegerValue(2)); err != nil {
		t.Fatal(err)
	}
	own, _ := o.Properties().Get("v")
	inherited, _ := proto.Properties().Get("v")
	if own == nil || own.AsInteger() != 2 || inherited.AsInteger() != 1 {
		t.Errorf("write must create an own property and leave the prototype alone")
	}
}

func TestUnresolvableReference(t *testing.T) {
	sloppy := newTestContext(false)
	ref := sloppy.VariableReference("nowhere")
	if _, err := sloppy.GetValue(ref); err == nil {
		t.Errorf("reading an unresolvable reference is a ReferenceError")
	}
	if err := sloppy.Assign(ref, True); err != nil {
		t.Fatal(err)
	}
	if slot, _ := sloppy.Resolve("nowhere"); slot == nil {
		t.Errorf("non-strict assignment creates a global binding")
	}
	strict := newTestContext(true)
	err := strict.Assign(strict.VariableReference("nowhere"), True)
	exc, ok := AsException(err)
	if !ok || !strings.HasPrefix(exc.Value.String(), "ReferenceError") {
		t.Errorf("expected ReferenceError, got %v", err)
	}
}

func TestDeleteMember(t *testing.T) {
	for _, strict := range []bool{false, true} {
		ctx := newTestContext(strict)
		o := NewObject(ctx.Realm().ObjectPrototype)
		o.Set("free", True)
		o.Set("pinned", True.WithAttrs(DoNotDelete))
		if ok, err := ctx.DeleteMember(o.Value(), NewString("free")); !ok || err != nil {
			t.Errorf("expected deletion, got %v %v", ok, err)
		}
		ok, err := ctx.DeleteMember(o.Value(), NewString("pinned"))
		if strict {
			expectTypeError(t, err, "delete")
		} else if ok || err != nil {
			t.Errorf("non-strict delete of a pinned slot reports false, got %v %v", ok, err)
		}
		if _, present := o.Properties().Get("pinned"); !present {
			t.Errorf("pinned slot was removed")
		}
	}
}

func TestToPrimitiveLadder(t *testing.T) {
	ctx := newTestContext(false)
	r := ctx.Realm()
	o := NewObject(r.ObjectPrototype)
	o.Set("valueOf", NewNativeFunction(r, "valueOf", 0, func(c *Context, this Value, args *Arguments) (Value, error) {
		return IntegerValue(10), nil
	}).Value())
	n, err := ctx.ToNumber(o.Value())
	if err != nil || n.AsInteger() != 10 {
		t.Errorf("valueOf should drive number conversion, got %v %v", n, err)
	}
	s, err := ctx.ToString(o.Value())
	if err != nil || s != "[object Object]" {
		t.Errorf("toString should drive string conversion, got %q %v", s, err)
	}

	bare := NewObject(nil)
	if _, ok, err := ctx.TryPrimitive(bare.Value(), "number"); ok || err != nil {
		t.Errorf("an object without methods yields no primitive")
	}
	if _, err := ctx.ToNumber(bare.Value()); err == nil {
		t.Errorf("ToNumber on an irreducible object is a TypeError")
	}
	if _, err := ctx.ToNumber(NewSymbol("s")); err == nil {
		t.Errorf("symbols do not convert to numbers")
	}
}

func TestInheritedPrimitiveMethods(t *testing.T) {
	ctx := newTestContext(false)
	r := ctx.Realm()
	proto := NewObject(r.ObjectPrototype)
	proto.Set("valueOf", NewNativeFunction(r, "valueOf", 0, func(c *Context, this Value, args *Arguments) (Value, error) {
		return this, nil
	}).Value())
	proto.Set("toString", NewNativeFunction(r, "toString", 0, func(c *Context, this Value, args *Arguments) (Value, error) {
		return NewString("7"), nil
	}).Value())
	inst := NewObject(proto)

	prim, ok, err := ctx.TryPrimitive(inst.Value(), "number")
	if err != nil || !ok || prim.AsString() != "7" {
		t.Errorf("a non-primitive valueOf falls through to toString, got %v %v %v", prim, ok, err)
	}
	if n, err := ctx.ToNumber(inst.Value()); err != nil || n.AsInteger() != 7 {
		t.Errorf("expected 7, got %v %v", n, err)
	}
	if s, err := ctx.ToString(inst.Value()); err != nil || s != "7" {
		t.Errorf("expected \"7\", got %q %v", s, err)
	}

	ctor, _ := ctx.Resolve("TypeError")
	protoOfType, _ := ctx.Get(*ctor, "prototype")
	custom := NewObject(protoOfType.AsObject())
	custom.Set("message", NewString("inherited name"))
	if s, err := ctx.ToString(custom.Value()); err != nil || s != "TypeError: inherited name" {
		t.Errorf("error names come from the prototype, got %q %v", s, err)
	}
}

func TestLooseEquals(t *testing.T) {
	ctx := newTestContext(false)
	tests := []struct {
		a, b Value
		want bool
	}{
		{Undefined, Null, true},
		{NewString("1"), IntegerValue(1), true},
		{True, IntegerValue(1), true},
		{NewString("a"), NewString("b"), false},
		{Null, IntegerValue(0), false},
	}
	for _, tt := range tests {
		got, err := ctx.LooseEquals(tt.a, tt.b)
		if err != nil || got != tt.want {
			t.Errorf("%v == %v: got %v (%v), want %v", tt.a, tt.b, got, err, tt.want)
		}
	}
}

func TestStringMembers(t *testing.T) {
	ctx := newTestContext(false)
	s := NewString("héllo")
	if v, _ := ctx.Get(s, "length"); v.AsInteger() != 5 {
		t.Errorf("unexpected length %v", v)
	}
	if v, _ := ctx.Get(s, "1"); v.AsString() != "é" {
		t.Errorf("unexpected index access %v", v)
	}
	if _, err := ctx.Get(Undefined, "x"); err == nil {
		t.Errorf("member access on undefined is a TypeError")
	}
}

func TestErrorConstructors(t *testing.T) {
	ctx := newTestContext(false)
	ctor, _ := ctx.Resolve("TypeError")
	v, err := ctor.AsFunction().New(ctx, NewArguments(NewString("bad")))
	if err != nil {
		t.Fatal(err)
	}
	s, err := ctx.ToString(v)
	if err != nil || s != "TypeError: bad" {
		t.Errorf("unexpected error string %q %v", s, err)
	}
	name, _ := ctx.Get(v, "name")
	if name.AsString() != "TypeError" {
		t.Errorf("unexpected name %v", name)
	}
	syn := ctx.NewSyntaxError("unexpected token %s", "}")
	if !strings.HasPrefix(syn.Error(), "SyntaxError: unexpected token }") {
		t.Errorf("unexpected syntax error %q", syn.Error())
	}
}
