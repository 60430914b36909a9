package interop

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

type memberKind uint8

const (
	memberMethod memberKind = iota
	memberField
	memberAccessor
)

// member is one entry of the capability table of a type.
type member struct {
	kind     memberKind
	goName   string
	spec     MemberSpec
	method   Method  // method, or getter of an accessor pair
	setter   *Method // setter of an accessor pair
	field    []int
	fieldTyp reflect.Type
	readonly bool
	attrs    vm.Attributes
	err      error // reported when the member is resolved
}

// TypeProxy exposes a Go type to scripts. Its prototype resolves members
// from a capability table built once; resolved values are memoized.
type TypeProxy struct {
	registry *Registry
	typ      reflect.Type
	name     string
	members  map[string]*member
	order    []string
	getItems []reflect.Method // GetItem variants, ordered by key preference
	setItems []reflect.Method
	proto    *vm.Object
	ctor     *vm.Function

	mu    sync.Mutex
	cache map[string]vm.Value
}

func newTypeProxy(r *Registry, t reflect.Type) *TypeProxy {
	tp := &TypeProxy{
		registry: r,
		typ:      t,
		name:     typeName(t),
		members:  make(map[string]*member),
		cache:    make(map[string]vm.Value),
	}
	tp.collect()
	tp.proto = vm.NewObject(r.realm.ObjectPrototype)
	tp.proto.SetClass(tp.name)
	tp.proto.SetResolver(tp)
	return tp
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func (tp *TypeProxy) Name() string              { return tp.name }
func (tp *TypeProxy) Type() reflect.Type        { return tp.typ }
func (tp *TypeProxy) Prototype() *vm.Object     { return tp.proto }
func (tp *TypeProxy) Constructor() *vm.Function { return tp.ctor }
func (tp *TypeProxy) hasIndexer() bool          { return len(tp.getItems)+len(tp.setItems) > 0 }

// collect builds the capability table: exported fields first, then methods.
func (tp *TypeProxy) collect() {
	specs := memberSpecs(tp.typ)
	if st := tp.typ; st.Kind() == reflect.Pointer && st.Elem().Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(st.Elem()) {
			if f.Anonymous || !f.IsExported() {
				continue
			}
			tag := parseFieldTag(f)
			if tag.hidden {
				continue
			}
			name := tag.name
			if name == "" {
				name = tp.registry.names.scriptName(f.Name)
			}
			attrs := vm.DoNotDelete
			if tag.noenum {
				attrs |= vm.DoNotEnumerate
			}
			readonly := tag.readonly
			if spec, ok := specs[f.Name]; ok {
				if spec.Hidden {
					continue
				}
				if spec.Name != "" {
					name = spec.Name
				}
				readonly = readonly || spec.ReadOnly
				attrs |= spec.attributes() &^ vm.ReadOnly
			}
			tp.add(name, &member{
				kind: memberField, goName: f.Name, field: f.Index, fieldTyp: f.Type,
				readonly: readonly, attrs: attrs,
			})
		}
	}
	setters := make(map[string]bool)
	for goName, spec := range specs {
		if spec.Accessor {
			setters["Set"+goName] = true
		}
	}
	for i := 0; i < tp.typ.NumMethod(); i++ {
		m := tp.typ.Method(i)
		switch {
		case m.Name == "ScriptMembers" || setters[m.Name]:
			continue
		case strings.HasPrefix(m.Name, "GetItem") && m.Type.NumIn() == 2:
			tp.getItems = append(tp.getItems, m)
			continue
		case strings.HasPrefix(m.Name, "SetItem") && m.Type.NumIn() == 3:
			tp.setItems = append(tp.setItems, m)
			continue
		}
		spec := specs[m.Name]
		if spec.Hidden {
			continue
		}
		name := tp.registry.scriptNameOf(m.Name, spec)
		entry := &member{
			kind:   memberMethod,
			goName: m.Name,
			spec:   spec,
			method: Method{Name: m.Name, Func: m.Func, Receiver: tp.typ, Spec: spec},
			attrs:  spec.attributes() | vm.DoNotEnumerate | vm.DoNotDelete,
		}
		if spec.Accessor {
			tp.accessorPair(entry, m)
		}
		tp.add(name, entry)
	}
	sortIndexers(tp.getItems)
	sortIndexers(tp.setItems)
}

// accessorPair turns a method entry into a getter with optional Set<Name>.
func (tp *TypeProxy) accessorPair(entry *member, getter reflect.Method) {
	entry.kind = memberAccessor
	entry.attrs = entry.spec.attributes() | vm.DoNotDelete
	if !accessorSignature(getter.Type, 0) {
		entry.err = errors.Configurationf(tp.name, "accessor %s must take no arguments and return a value", getter.Name)
		return
	}
	set, ok := tp.typ.MethodByName("Set" + getter.Name)
	if !ok || entry.spec.ReadOnly {
		return
	}
	if !accessorSignature(set.Type, 1) {
		entry.err = errors.Configurationf(tp.name, "accessor setter %s must take exactly one argument", set.Name)
		return
	}
	entry.setter = &Method{Name: set.Name, Func: set.Func, Receiver: tp.typ, Spec: MemberSpec{StrictConversion: entry.spec.StrictConversion}}
}

// accessorSignature checks receiver, an optional *vm.Context and params
// script parameters. Getters must return a value.
func accessorSignature(ft reflect.Type, params int) bool {
	in := ft.NumIn() - 1
	if in > 0 && ft.In(1) == contextType {
		in--
	}
	if in != params || ft.IsVariadic() {
		return false
	}
	if params == 0 {
		return ft.NumOut() >= 1 && ft.Out(0) != errorType
	}
	return true
}

func (tp *TypeProxy) add(name string, m *member) {
	if prev, ok := tp.members[name]; ok {
		prevName := prev.goName
		tp.members[name] = &member{
			goName: prevName,
			err:    errors.Configurationf(tp.name, "ambiguous member %q: %s and %s", name, prevName, m.goName),
		}
		return
	}
	tp.members[name] = m
	tp.order = append(tp.order, name)
}

// MemberNames lists the script names of all declared members.
func (tp *TypeProxy) MemberNames() []string {
	return tp.order
}

// ResolveMember returns the script value of member name, building it on
// first use. Ambiguous or malformed members fail with a ConfigurationError.
func (tp *TypeProxy) ResolveMember(name string) (vm.Value, bool, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if v, ok := tp.cache[name]; ok {
		return v, true, nil
	}
	m, ok := tp.members[name]
	if !ok {
		return vm.Undefined, false, nil
	}
	if m.err != nil {
		return vm.Undefined, false, m.err
	}
	v, err := tp.build(name, m)
	if err != nil {
		return vm.Undefined, false, err
	}
	tracer().Debugf("resolved %s.%s", tp.name, name)
	tp.cache[name] = v
	return v, true, nil
}

func (tp *TypeProxy) build(name string, m *member) (vm.Value, error) {
	r := tp.registry
	switch m.kind {
	case memberField:
		get, set := tp.fieldAccessors(name, m)
		return vm.NewAccessor(get, set).WithAttrs(m.attrs), nil
	case memberAccessor:
		gp, err := r.NewMethodProxy(m.method, nil)
		if err != nil {
			return vm.Undefined, err
		}
		var set *vm.Function
		if m.setter != nil {
			sp, err := r.NewMethodProxy(*m.setter, nil)
			if err != nil {
				return vm.Undefined, err
			}
			set = sp.Function(name)
		}
		return vm.NewAccessor(gp.Function(name), set).WithAttrs(m.attrs), nil
	}
	p, err := r.NewMethodProxy(m.method, nil)
	if err != nil {
		return vm.Undefined, err
	}
	return p.Function(name).Value().WithAttrs(m.attrs), nil
}

// fieldAccessors reads and writes a struct field of the `this` host value.
func (tp *TypeProxy) fieldAccessors(name string, m *member) (*vm.Function, *vm.Function) {
	r := tp.registry
	field := func(ctx *vm.Context, this vm.Value) (reflect.Value, error) {
		rv, ok := hostAs(this, tp.typ)
		if !ok || rv.IsNil() {
			return reflect.Value{}, ctx.NewTypeError("Can not call function \"%s\" for object of another type.", name)
		}
		fv, err := rv.Elem().FieldByIndexErr(m.field)
		if err != nil {
			return reflect.Value{}, nativeFailure(ctx, name, err)
		}
		return fv, nil
	}
	get := vm.NewNativeFunction(r.realm, name, 0, func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
		fv, err := field(ctx, this)
		if err != nil {
			return vm.Undefined, err
		}
		return r.Box(fv), nil
	})
	if m.readonly {
		return get, nil
	}
	set := vm.NewNativeFunction(r.realm, name, 1, func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
		fv, err := field(ctx, this)
		if err != nil {
			return vm.Undefined, err
		}
		nv, err := r.toNative(ctx, args.At(0), m.fieldTyp, r.opts.StrictConversion)
		if err != nil {
			return vm.Undefined, nativeFailure(ctx, name, err)
		}
		fv.Set(nv)
		return vm.Undefined, nil
	})
	return get, set
}

// Define registers the Go type of sample as a script constructor. Struct
// types are exposed through their pointer type.
func (r *Registry) Define(sample any, spec TypeSpec) (*TypeProxy, error) {
	tp := r.proxyFor(reflect.TypeOf(sample))
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.ctor != nil {
		return tp, nil
	}
	name := spec.Name
	if name == "" {
		name = tp.name
	}
	ctors := make([]reflect.Value, 0, len(spec.Constructors))
	length := 0
	for _, c := range spec.Constructors {
		cv := reflect.ValueOf(c)
		if cv.Kind() != reflect.Func || !constructorSignature(cv.Type()) {
			return nil, errors.Configurationf(name, "constructor %T must return a value and optionally an error", c)
		}
		ctors = append(ctors, cv)
		if n := cv.Type().NumIn(); n > length {
			length = n
		}
	}
	sel := &constructorSet{registry: r, name: name, ctors: ctors}
	construct := func(ctx *vm.Context, args *vm.Arguments) (vm.Value, error) {
		return sel.construct(ctx, args)
	}
	ctor := vm.NewNativeConstructor(r.realm, name, length,
		func(ctx *vm.Context, this vm.Value, args *vm.Arguments) (vm.Value, error) {
			return construct(ctx, args)
		}, construct)
	ctor.Set("prototype", tp.proto.Value().WithAttrs(vm.ReadOnly|vm.DoNotEnumerate|vm.DoNotDelete))
	tp.proto.Set("constructor", ctor.Value().WithAttrs(vm.DoNotEnumerate))

	statics := make([]string, 0, len(spec.Static))
	for k := range spec.Static {
		statics = append(statics, k)
	}
	sort.Strings(statics)
	for _, k := range statics {
		v := spec.Static[k]
		sname := r.names.scriptName(k)
		if reflect.TypeOf(v) != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			fn, err := r.Func(sname, v)
			if err != nil {
				return nil, err
			}
			ctor.Set(sname, fn.Value().WithAttrs(vm.DoNotEnumerate))
			continue
		}
		ctor.Set(sname, r.Box(v))
	}
	tp.ctor = ctor
	tracer().Infof("defined native type %s with %d constructor(s)", name, len(ctors))
	return tp, nil
}

func constructorSignature(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(1).Implements(errorType)
	}
	return false
}
