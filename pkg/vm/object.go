package vm

import (
	"errors"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ErrEnumerationInvalidated is returned by a KeyEnumerator once the key set
// of its table changed after the enumerator was created.
var ErrEnumerationInvalidated = errors.New("property table changed during enumeration")

// PropertyMap is an insertion-ordered table of named slots. Its version is
// bumped on every insert and delete; overwriting a slot is not structural.
type PropertyMap struct {
	m       *linkedhashmap.Map
	version uint64
}

func NewPropertyMap() *PropertyMap {
	return &PropertyMap{m: linkedhashmap.New()}
}

// Get returns the slot for name.
func (p *PropertyMap) Get(name string) (*Value, bool) {
	slot, ok := p.m.Get(name)
	if !ok {
		return nil, false
	}
	return slot.(*Value), true
}

// Define stores v (attributes included) under name. An existing slot is
// overwritten in place so references to it stay valid.
func (p *PropertyMap) Define(name string, v Value) *Value {
	if slot, ok := p.Get(name); ok {
		*slot = v
		return slot
	}
	slot := new(Value)
	*slot = v
	p.m.Put(name, slot)
	p.version++
	return slot
}

// Delete removes name and reports whether it was present.
func (p *PropertyMap) Delete(name string) bool {
	if _, ok := p.m.Get(name); !ok {
		return false
	}
	p.m.Remove(name)
	p.version++
	return true
}

func (p *PropertyMap) Len() int        { return p.m.Size() }
func (p *PropertyMap) Version() uint64 { return p.version }

// Keys returns all names in insertion order.
func (p *PropertyMap) Keys() []string {
	keys := make([]string, 0, p.m.Size())
	it := p.m.Iterator()
	for it.Next() {
		keys = append(keys, it.Key().(string))
	}
	return keys
}

// Enumerate starts a key enumeration over the current key set.
func (p *PropertyMap) Enumerate() *KeyEnumerator {
	return &KeyEnumerator{table: p, version: p.version, keys: p.Keys()}
}

// KeyEnumerator walks the keys of a PropertyMap in insertion order.
type KeyEnumerator struct {
	table   *PropertyMap
	version uint64
	keys    []string
	pos     int
}

// Next returns the next key and its slot. It reports false at the end and
// fails with ErrEnumerationInvalidated after a structural change.
func (e *KeyEnumerator) Next() (string, *Value, bool, error) {
	if e.table.version != e.version {
		return "", nil, false, ErrEnumerationInvalidated
	}
	if e.pos >= len(e.keys) {
		return "", nil, false, nil
	}
	key := e.keys[e.pos]
	e.pos++
	slot, _ := e.table.Get(key)
	return key, slot, true, nil
}

// MemberResolver supplies own members of an object lazily, e.g. the methods
// of a native type. Resolved members are stored into the object's table.
type MemberResolver interface {
	ResolveMember(name string) (Value, bool, error)
	MemberNames() []string
}

// Object is the common representation of script objects.
type Object struct {
	props      *PropertyMap
	symbols    map[*Symbol]*Value
	proto      *Object
	extensible bool
	class      string
	host       any
	resolver   MemberResolver
	fn         *Function // set when embedded in a Function
}

// NewObject creates an empty extensible object with the given prototype.
func NewObject(proto *Object) *Object {
	o := &Object{}
	o.init(proto, "Object")
	return o
}

func (o *Object) init(proto *Object, class string) {
	o.props = NewPropertyMap()
	o.proto = proto
	o.extensible = true
	o.class = class
}

func (o *Object) Proto() *Object         { return o.proto }
func (o *Object) SetProto(proto *Object) { o.proto = proto }
func (o *Object) Class() string          { return o.class }
func (o *Object) SetClass(class string)  { o.class = class }
func (o *Object) Extensible() bool       { return o.extensible }
func (o *Object) PreventExtensions()     { o.extensible = false }

// Host returns the native payload of an interop wrapper, or nil.
func (o *Object) Host() any        { return o.host }
func (o *Object) SetHost(host any) { o.host = host }

func (o *Object) SetResolver(r MemberResolver) { o.resolver = r }

// Properties exposes the own property table.
func (o *Object) Properties() *PropertyMap { return o.props }

// Value returns o as a script value.
func (o *Object) Value() Value { return ObjectValue(o) }

// GetOwn returns the own slot for name, consulting the member resolver on a miss.
func (o *Object) GetOwn(name string) (*Value, error) {
	if slot, ok := o.props.Get(name); ok {
		return slot, nil
	}
	if o.resolver == nil {
		return nil, nil
	}
	v, ok, err := o.resolver.ResolveMember(name)
	if err != nil || !ok {
		return nil, err
	}
	return o.props.Define(name, v), nil
}

// Lookup resolves name along the prototype chain and returns the slot
// together with the object owning it.
func (o *Object) Lookup(name string) (*Value, *Object, error) {
	for cur := o; cur != nil; cur = cur.proto {
		slot, err := cur.GetOwn(name)
		if err != nil {
			return nil, nil, err
		}
		if slot != nil {
			return slot, cur, nil
		}
	}
	return nil, nil, nil
}

// Set defines a plain data property, replacing any existing slot content.
func (o *Object) Set(name string, v Value) *Value {
	return o.props.Define(name, v)
}

// DefineAccessor defines a getter/setter pair under name.
func (o *Object) DefineAccessor(name string, get, set *Function, attrs Attributes) *Value {
	return o.props.Define(name, NewAccessor(get, set).WithAttrs(attrs))
}

// Delete removes an own property without attribute checks.
func (o *Object) Delete(name string) bool {
	return o.props.Delete(name)
}

// Materialize resolves every member the resolver knows into the own table.
func (o *Object) Materialize() error {
	if o.resolver == nil {
		return nil
	}
	for _, name := range o.resolver.MemberNames() {
		if _, err := o.GetOwn(name); err != nil {
			return err
		}
	}
	return nil
}

func (o *Object) GetSymbol(s *Symbol) (*Value, *Object) {
	for cur := o; cur != nil; cur = cur.proto {
		if slot, ok := cur.symbols[s]; ok {
			return slot, cur
		}
	}
	return nil, nil
}

func (o *Object) SetSymbol(s *Symbol, v Value) *Value {
	if o.symbols == nil {
		o.symbols = make(map[*Symbol]*Value)
	}
	if slot, ok := o.symbols[s]; ok {
		*slot = v
		return slot
	}
	slot := new(Value)
	*slot = v
	o.symbols[s] = slot
	return slot
}

func (o *Object) DeleteSymbol(s *Symbol) bool {
	if _, ok := o.symbols[s]; !ok {
		return false
	}
	delete(o.symbols, s)
	return true
}

// EnumerableKeys lists own enumerable string keys in insertion order.
func (o *Object) EnumerableKeys() []string {
	var keys []string
	for _, k := range o.props.Keys() {
		if slot, _ := o.props.Get(k); slot.Enumerable() {
			keys = append(keys, k)
		}
	}
	return keys
}

// dataString reads a string data property along the chain without running
// accessors.
func (o *Object) dataString(name string) (string, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if slot, ok := cur.props.Get(name); ok {
			if slot.IsString() {
				return slot.AsString(), true
			}
			return "", false
		}
	}
	return "", false
}
