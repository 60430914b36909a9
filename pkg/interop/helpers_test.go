package interop

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lance2088/NiL.JS/pkg/config"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

func newTestRegistry(opts config.InteropConfig) (*Registry, *vm.Context) {
	realm := vm.NewRealm()
	ctx := vm.NewRootContext(realm, false)
	realm.InstallGlobals(ctx)
	return NewRegistry(realm, opts), ctx
}

func lenient() config.InteropConfig {
	return config.Defaults().Interop
}

func expectTypeError(t *testing.T, err error, contains string) {
	t.Helper()
	exc, ok := vm.AsException(err)
	if !ok {
		t.Fatalf("expected a script exception, got %v", err)
	}
	msg := exc.Value.String()
	if !strings.HasPrefix(msg, "TypeError") || !strings.Contains(msg, contains) {
		t.Errorf("expected TypeError containing %q, got %q", contains, msg)
	}
}

func prop(t *testing.T, ctx *vm.Context, obj vm.Value, name string) vm.Value {
	t.Helper()
	v, err := ctx.Get(obj, name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return v
}

func call(ctx *vm.Context, obj vm.Value, name string, args ...vm.Value) (vm.Value, error) {
	fn, err := ctx.Get(obj, name)
	if err != nil {
		return vm.Undefined, err
	}
	if !fn.IsFunction() {
		return vm.Undefined, fmt.Errorf("%s is not a function", name)
	}
	return fn.AsFunction().Invoke(ctx, obj, args...)
}

// --- Native types used by the tests ---

type Counter struct {
	Total  int    `js:"total,readonly"`
	Label  string
	Hidden string `js:"-"`
	secret int
}

func (c *Counter) Add(n int) int { c.Total += n; return c.Total }

func (c *Counter) Scale(factor float64, offset int) float64 {
	return float64(c.Total)*factor + float64(offset)
}

func (c *Counter) Fail(msg string) error {
	return fmt.Errorf("outer: %w", fmt.Errorf("middle: %w", errors.New(msg)))
}

func (c *Counter) Explode() { panic("counter exploded") }

func (c *Counter) Rethrow(v vm.Value) error { return vm.Throw(v) }

func (c *Counter) ScriptMembers() map[string]MemberSpec {
	return map[string]MemberSpec{
		"Scale": {Defaults: []any{0}},
	}
}

type Gauge struct {
	Level int
}

func (g *Gauge) Add(n int) int { g.Level += n; return g.Level }

type Thermo struct {
	celsius float64
}

func (th *Thermo) Celsius() float64     { return th.celsius }
func (th *Thermo) SetCelsius(v float64) { th.celsius = v }
func (th *Thermo) Fahrenheit() float64  { return th.celsius*9/5 + 32 }
func (th *Thermo) Describe(unit string) string {
	return fmt.Sprintf("%.1f%s", th.celsius, unit)
}

func (th *Thermo) ScriptMembers() map[string]MemberSpec {
	return map[string]MemberSpec{
		"Celsius":    {Accessor: true},
		"Fahrenheit": {Accessor: true},
	}
}

type Ambiguous struct{}

func (Ambiguous) Count() int { return 1 }
func (Ambiguous) Size() int  { return 2 }

func (Ambiguous) ScriptMembers() map[string]MemberSpec {
	return map[string]MemberSpec{"Count": {Name: "size"}}
}

type BadAccessor struct{}

func (*BadAccessor) Value(n int) int { return n }

func (*BadAccessor) ScriptMembers() map[string]MemberSpec {
	return map[string]MemberSpec{"Value": {Accessor: true}}
}

type Bag struct {
	items map[string]int
}

func (b *Bag) GetItem(key string) int    { return b.items[key] }
func (b *Bag) SetItem(key string, v int) { b.items[key] = v }
func (b *Bag) Len() int                  { return len(b.items) }

type Row struct {
	cells []string
}

func (r *Row) GetItem(i int) (string, error) {
	if i < 0 || i >= len(r.cells) {
		return "", fmt.Errorf("index %d out of range", i)
	}
	return r.cells[i], nil
}

type Scale struct{}

func (Scale) GetItem(f float64) float64 { return f * 2 }

type Grid struct{}

func (Grid) GetItem(f float64) string  { return fmt.Sprintf("float %g", f) }
func (Grid) GetItemIndex(i int) string { return fmt.Sprintf("int %d", i) }
func (Grid) GetItemAny(key any) string { return fmt.Sprintf("any %v", key) }

func (Grid) SetItemIndex(i, v int) {}

type Point struct {
	X, Y int
	Via  string `js:"via,readonly"`
}

func NewPoint(x, y int) *Point         { return &Point{X: x, Y: y, Via: "exact"} }
func NewPointFrom(coords []int) *Point { return &Point{X: len(coords), Via: "slice"} }
func NewOrigin() *Point                { return &Point{Via: "empty"} }
func NewNamedPoint(name string) (*Point, error) {
	if name == "" {
		return nil, errors.New("empty name")
	}
	return &Point{Via: name}, nil
}
