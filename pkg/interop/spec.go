package interop

import (
	"reflect"
	"strings"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// MemberSpec is the script-side declaration of one native member.
type MemberSpec struct {
	Name             string // script name; derived from the Go name if empty
	Hidden           bool
	DoNotEnumerate   bool
	DoNotDelete      bool
	NotConfigurable  bool
	ReadOnly         bool
	InstanceMember   bool // a plain function whose first parameter receives `this`
	StrictConversion bool
	ArgumentsLength  int  // script-visible arity, -1 or 0 derive it from the signature
	ZeroLength       bool // an ArgumentsLength of 0 is meant literally
	Accessor         bool // a getter, paired with the method Set<Name> as setter
	Params           []Converter
	Return           Converter
	Defaults         []any // defaults of trailing parameters, aligned to the last ones
}

func (s MemberSpec) attributes() vm.Attributes {
	var a vm.Attributes
	if s.DoNotEnumerate {
		a |= vm.DoNotEnumerate
	}
	if s.DoNotDelete {
		a |= vm.DoNotDelete
	}
	if s.NotConfigurable {
		a |= vm.NotConfigurable
	}
	if s.ReadOnly {
		a |= vm.ReadOnly
	}
	return a
}

// Annotated is implemented by native types declaring their script members.
// The map is keyed by Go member name.
type Annotated interface {
	ScriptMembers() map[string]MemberSpec
}

// TypeSpec describes a native type registered with Registry.Define.
type TypeSpec struct {
	Name         string // constructor name; defaults to the Go type name
	Constructors []any  // functions returning the type, optionally with an error
	Static       map[string]any
}

// Converter replaces the generic conversion of one parameter or result.
type Converter interface {
	ToNative(ctx *vm.Context, v vm.Value) (any, error)
	ToScript(ctx *vm.Context, v any) (vm.Value, error)
}

// ConverterFuncs adapts a pair of functions to Converter. Missing halves fall
// back to the generic conversion of the registry.
type ConverterFuncs struct {
	Native func(ctx *vm.Context, v vm.Value) (any, error)
	Script func(ctx *vm.Context, v any) (vm.Value, error)
}

func (c ConverterFuncs) ToNative(ctx *vm.Context, v vm.Value) (any, error) {
	if c.Native == nil {
		return nil, errNoConversion
	}
	return c.Native(ctx, v)
}

func (c ConverterFuncs) ToScript(ctx *vm.Context, v any) (vm.Value, error) {
	if c.Script == nil {
		return vm.Undefined, errNoConversion
	}
	return c.Script(ctx, v)
}

// fieldTag is the parsed form of `js:"name,readonly,hidden,noenum"`.
type fieldTag struct {
	name     string
	readonly bool
	hidden   bool
	noenum   bool
}

func parseFieldTag(f reflect.StructField) fieldTag {
	tag, ok := f.Tag.Lookup("js")
	if !ok {
		return fieldTag{}
	}
	parts := strings.Split(tag, ",")
	t := fieldTag{name: strings.TrimSpace(parts[0])}
	if t.name == "-" {
		return fieldTag{hidden: true}
	}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "readonly":
			t.readonly = true
		case "hidden":
			t.hidden = true
		case "noenum":
			t.noenum = true
		}
	}
	return t
}

// memberSpecs collects the declarations of t, looking at both the pointer
// and the value method set.
func memberSpecs(t reflect.Type) map[string]MemberSpec {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() != reflect.Pointer {
		if a, ok := reflect.New(t.Elem()).Interface().(Annotated); ok {
			return a.ScriptMembers()
		}
		return nil
	}
	if a, ok := reflect.Zero(t).Interface().(Annotated); ok {
		return a.ScriptMembers()
	}
	return nil
}
