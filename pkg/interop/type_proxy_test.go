package interop

import (
	"reflect"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/lance2088/NiL.JS/pkg/config"
	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

func TestCapabilityTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "niljs.interop")
	defer teardown()

	r, _ := newTestRegistry(lenient())
	tp := r.Proxy(reflect.TypeOf(&Counter{}))
	want := []string{"total", "label", "add", "explode", "fail", "rethrow", "scale"}
	if got := tp.MemberNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
	if tp != r.Proxy(reflect.TypeOf(Counter{})) {
		t.Errorf("struct and pointer type share one proxy")
	}
	if tp.Name() != "Counter" {
		t.Errorf("expected Counter, got %s", tp.Name())
	}
}

func TestFieldAccess(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	c := &Counter{Total: 3, Label: "hits", Hidden: "h"}
	obj := r.Box(c)

	if v := prop(t, ctx, obj, "total"); v.AsInteger() != 3 {
		t.Errorf("expected total 3, got %v", v)
	}
	if err := ctx.PutMember(obj, vm.NewString("total"), vm.IntegerValue(9)); err != nil {
		t.Fatal(err)
	}
	if c.Total != 3 {
		t.Errorf("readonly field was written: %d", c.Total)
	}
	if err := ctx.PutMember(obj, vm.NewString("label"), vm.IntegerValue(12)); err != nil {
		t.Fatal(err)
	}
	if c.Label != "12" {
		t.Errorf("expected label 12, got %q", c.Label)
	}
	for _, name := range []string{"hidden", "Hidden", "secret"} {
		if v := prop(t, ctx, obj, name); !v.IsUndefined() {
			t.Errorf("%s must not be visible, got %v", name, v)
		}
	}

	strict := vm.NewRootContext(ctx.Realm(), true)
	err := strict.PutMember(obj, vm.NewString("total"), vm.IntegerValue(9))
	expectTypeError(t, err, "without setter")

	// fields live on the shared prototype and read the receiver
	other := r.Box(&Counter{Total: 8})
	if v := prop(t, ctx, other, "total"); v.AsInteger() != 8 {
		t.Errorf("expected 8, got %v", v)
	}
}

func TestAccessorPair(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	th := &Thermo{}
	obj := r.Box(th)
	if err := ctx.PutMember(obj, vm.NewString("celsius"), vm.IntegerValue(100)); err != nil {
		t.Fatal(err)
	}
	if th.celsius != 100 {
		t.Errorf("setter not called, celsius = %v", th.celsius)
	}
	if v := prop(t, ctx, obj, "fahrenheit"); v.AsFloat() != 212 {
		t.Errorf("expected 212, got %v", v)
	}
	if err := ctx.PutMember(obj, vm.NewString("fahrenheit"), vm.IntegerValue(0)); err != nil {
		t.Fatal(err)
	}
	if th.celsius != 100 {
		t.Errorf("getter-only accessor was written")
	}
	if v := prop(t, ctx, obj, "setCelsius"); !v.IsUndefined() {
		t.Errorf("accessor setters are not methods, got %v", v)
	}
	res, err := call(ctx, obj, "describe", vm.NewString("C"))
	if err != nil {
		t.Fatal(err)
	}
	if res.AsString() != "100.0C" {
		t.Errorf("expected 100.0C, got %s", res.AsString())
	}
}

func TestMalformedMembers(t *testing.T) {
	r, ctx := newTestRegistry(lenient())

	amb := r.Box(Ambiguous{})
	if _, err := ctx.Get(amb, "size"); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for ambiguous name, got %v", err)
	}
	if _, err := ctx.Get(amb, "count"); err != nil {
		t.Errorf("renamed member frees its Go name: %v", err)
	}
	if err := amb.AsObject().Proto().Materialize(); !errors.IsConfiguration(err) {
		t.Errorf("materializing an ambiguous table must fail, got %v", err)
	}

	bad := r.Box(&BadAccessor{})
	if _, err := ctx.Get(bad, "value"); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for accessor with parameters, got %v", err)
	}
}

func TestIndexers(t *testing.T) {
	r, ctx := newTestRegistry(lenient())

	bag := &Bag{items: map[string]int{"a": 1}}
	obj := r.Box(bag)
	if v := prop(t, ctx, obj, "a"); v.AsInteger() != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if err := ctx.PutMember(obj, vm.NewString("b"), vm.NewString("5")); err != nil {
		t.Fatal(err)
	}
	if bag.items["b"] != 5 {
		t.Errorf("indexer setter not called: %v", bag.items)
	}
	if v := prop(t, ctx, obj, "toString"); !v.IsFunction() {
		t.Errorf("prototype members win over the indexer, got %v", v)
	}
	if res, err := call(ctx, obj, "len"); err != nil || res.AsInteger() != 2 {
		t.Errorf("expected len 2, got %v %v", res, err)
	}
	if keys := obj.AsObject().EnumerableKeys(); len(keys) != 0 {
		t.Errorf("indexed entries are not enumerable, got %v", keys)
	}

	row := r.Box(&Row{cells: []string{"x", "y"}})
	if v := prop(t, ctx, row, "1"); v.AsString() != "y" {
		t.Errorf("expected y, got %v", v)
	}
	_, err := ctx.Get(row, "5")
	expectTypeError(t, err, "index 5 out of range")
	if v := prop(t, ctx, row, "first"); !v.IsUndefined() {
		t.Errorf("keys not fitting the index type are absent, got %v", v)
	}

	scale := r.Box(Scale{})
	if v := prop(t, ctx, scale, "1.5"); v.AsFloat() != 3 {
		t.Errorf("expected 3, got %v", v)
	}
}

func TestIndexerVariants(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	grid := r.Box(Grid{})
	tests := []struct {
		key  string
		want string
	}{
		{"2", "int 2"},
		{"1.5", "float 1.5"},
		{"-3", "int -3"},
		{"cell", "any cell"},
	}
	for _, tt := range tests {
		if v := prop(t, ctx, grid, tt.key); v.AsString() != tt.want {
			t.Errorf("%s: expected %q, got %v", tt.key, tt.want, v)
		}
	}
	if err := ctx.PutMember(grid, vm.NewString("4"), vm.IntegerValue(1)); err != nil {
		t.Errorf("integer keys reach SetItemIndex: %v", err)
	}
	if names := r.Proxy(reflect.TypeOf(Grid{})).MemberNames(); len(names) != 0 {
		t.Errorf("indexer variants are not members, got %v", names)
	}
}

func definePoint(t *testing.T, r *Registry, spec TypeSpec) *vm.Function {
	t.Helper()
	tp, err := r.Define(&Point{}, spec)
	if err != nil {
		t.Fatal(err)
	}
	return tp.Constructor()
}

func TestConstructorSelection(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	ctor := definePoint(t, r, TypeSpec{Constructors: []any{NewPoint, NewPointFrom, NewOrigin}})
	tests := []struct {
		name string
		args []vm.Value
		via  string
		x    int32
	}{
		{"exact", []vm.Value{vm.IntegerValue(1), vm.IntegerValue(2)}, "exact", 1},
		{"strings go to the slice", []vm.Value{vm.NewString("a"), vm.NewString("b")}, "slice", 2},
		{"one number", []vm.Value{vm.IntegerValue(3)}, "slice", 1},
		{"three numbers", []vm.Value{vm.IntegerValue(1), vm.IntegerValue(2), vm.IntegerValue(3)}, "slice", 3},
		{"no arguments", nil, "empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ctor.New(ctx, vm.NewArguments(tt.args...))
			if err != nil {
				t.Fatal(err)
			}
			if v := prop(t, ctx, p, "via"); v.AsString() != tt.via {
				t.Errorf("expected %s constructor, got %v", tt.via, v)
			}
			if v := prop(t, ctx, p, "x"); v.AsInteger() != tt.x {
				t.Errorf("expected x = %d, got %v", tt.x, v)
			}
			if v := prop(t, ctx, p, "constructor"); !v.Is(ctor.Value()) {
				t.Errorf("instances point back to their constructor")
			}
		})
	}
	if ctor.Name != "Point" || ctor.Length != 2 {
		t.Errorf("expected Point/2, got %s/%d", ctor.Name, ctor.Length)
	}
	// calling without new constructs as well
	if p, err := ctor.Invoke(ctx, vm.Undefined); err != nil || !p.IsObject() {
		t.Errorf("expected an instance, got %v %v", p, err)
	}
}

func TestConstructorFailures(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	named := definePoint(t, r, TypeSpec{Name: "Named", Constructors: []any{NewNamedPoint}})
	_, err := named.New(ctx, vm.NewArguments(vm.NewString("")))
	expectTypeError(t, err, "empty name")
	p, err := named.New(ctx, vm.NewArguments(vm.NewString("p")))
	if err != nil {
		t.Fatal(err)
	}
	if v := prop(t, ctx, p, "via"); v.AsString() != "p" {
		t.Errorf("expected p, got %v", v)
	}

	r2, ctx2 := newTestRegistry(lenient())
	exact := definePoint(t, r2, TypeSpec{Constructors: []any{NewPoint}})
	_, err = exact.New(ctx2, vm.NewArguments(vm.NewString("x")))
	expectTypeError(t, err, "No constructor of Point accepts 1 argument(s)")

	r3, ctx3 := newTestRegistry(lenient())
	tp, err := r3.Define(&Gauge{}, TypeSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tp.Constructor().New(ctx3, vm.NewArguments()); !errors.IsConfiguration(err) {
		t.Errorf("a type without constructors can not be instantiated, got %v", err)
	}
	if _, err := r3.Define(&Row{}, TypeSpec{Constructors: []any{func() {}}}); !errors.IsConfiguration(err) {
		t.Errorf("constructors must return a value, got %v", err)
	}
}

func TestStaticMembers(t *testing.T) {
	r, ctx := newTestRegistry(lenient())
	ctor := definePoint(t, r, TypeSpec{
		Constructors: []any{NewOrigin},
		Static:       map[string]any{"Origin": NewOrigin, "Dimensions": 2},
	})
	if v := prop(t, ctx, ctor.Value(), "dimensions"); v.AsInteger() != 2 {
		t.Errorf("expected dimensions 2, got %v", v)
	}
	p, err := call(ctx, ctor.Value(), "origin")
	if err != nil {
		t.Fatal(err)
	}
	if v := prop(t, ctx, p, "via"); v.AsString() != "empty" {
		t.Errorf("expected empty, got %v", v)
	}
	proto := prop(t, ctx, ctor.Value(), "prototype")
	if !proto.IsObject() || proto.AsObject() != r.Proxy(reflect.TypeOf(&Point{})).Prototype() {
		t.Errorf("prototype must be the proxy prototype")
	}
}

func TestNaming(t *testing.T) {
	tests := []struct {
		mode string
		in   string
		want string
	}{
		{config.NamingLowerCamel, "Add", "add"},
		{config.NamingLowerCamel, "URLPath", "urlPath"},
		{config.NamingLowerCamel, "ID", "id"},
		{config.NamingLowerCamel, "already", "already"},
		{config.NamingLowerCamel, "Ärger", "ärger"},
		{config.NamingGo, "URLPath", "URLPath"},
	}
	for _, tt := range tests {
		if got := (naming{mode: tt.mode}).scriptName(tt.in); got != tt.want {
			t.Errorf("%s(%s): expected %s, got %s", tt.mode, tt.in, tt.want, got)
		}
	}

	r, ctx := newTestRegistry(config.InteropConfig{Naming: config.NamingGo})
	obj := r.Box(&Counter{})
	if _, err := call(ctx, obj, "Add", vm.IntegerValue(1)); err != nil {
		t.Errorf("Go naming keeps method names: %v", err)
	}
	if v := prop(t, ctx, obj, "add"); !v.IsUndefined() {
		t.Errorf("expected no lower-case alias, got %v", v)
	}
}
