package vm

// Reference is a resolved storage location, produced by evaluating an
// expression for writing.
//
// Slot is nil when nothing was found. Holder is the object a new own
// property would be created on; it is nil for bindings and primitive bases.
type Reference struct {
	Base   Value // receiver passed as `this` to accessors
	Slot   *Value
	Name   string
	Symbol *Symbol
	Holder *Object

	Inherited    bool // Slot belongs to a prototype of Holder
	Unresolvable bool // identifier without binding
}

// Key renders the referenced name for messages.
func (r Reference) Key() string {
	if r.Symbol != nil {
		return "Symbol(" + r.Symbol.Description + ")"
	}
	return r.Name
}

// VariableReference resolves an identifier against the scope chain.
func (c *Context) VariableReference(name string) Reference {
	slot, _ := c.Resolve(name)
	if slot == nil {
		return Reference{Base: Undefined, Name: name, Unresolvable: true}
	}
	return Reference{Base: Undefined, Slot: slot, Name: name}
}

// MemberReference resolves base[key] for writing.
func (c *Context) MemberReference(base, key Value) (Reference, error) {
	if base.IsNullish() {
		k, _ := c.ToString(key)
		return Reference{}, c.NewTypeError("Cannot set property '%s' of %s", k, base.String())
	}
	ref := Reference{Base: base.Plain()}
	if key.IsSymbol() {
		ref.Symbol = key.AsSymbol()
	} else {
		name, err := c.ToString(key)
		if err != nil {
			return Reference{}, err
		}
		ref.Name = name
	}
	if !base.IsObject() {
		return ref, nil
	}
	obj := base.AsObject()
	ref.Holder = obj
	var owner *Object
	if ref.Symbol != nil {
		ref.Slot, owner = obj.GetSymbol(ref.Symbol)
	} else {
		slot, o, err := obj.Lookup(ref.Name)
		if err != nil {
			return Reference{}, err
		}
		ref.Slot, owner = slot, o
	}
	ref.Inherited = ref.Slot != nil && owner != obj
	return ref, nil
}

// GetValue reads through ref, invoking a getter when the slot holds a Property.
func (c *Context) GetValue(ref Reference) (Value, error) {
	if ref.Unresolvable {
		return Undefined, c.NewReferenceError("%s is not defined", ref.Name)
	}
	if ref.Slot == nil {
		if ref.Holder == nil && !ref.Base.IsUndefined() {
			return c.GetMember(ref.Base, c.keyValue(ref))
		}
		return Undefined, nil
	}
	if ref.Slot.IsProperty() {
		get := ref.Slot.AsAccessor().Get
		if get == nil {
			return Undefined, nil
		}
		return get.Invoke(c, ref.Base)
	}
	return ref.Slot.Plain(), nil
}

// Assign writes v through ref honoring slot attributes. In strict mode a
// rejected write is a TypeError, otherwise it is discarded.
func (c *Context) Assign(ref Reference, v Value) error {
	v = v.Plain()
	if ref.Unresolvable {
		if c.strict {
			return c.NewReferenceError("%s is not defined", ref.Name)
		}
		c.Root().vars.Define(ref.Name, v)
		return nil
	}
	if slot := ref.Slot; slot != nil {
		if slot.IsProperty() {
			set := slot.AsAccessor().Set
			if set == nil {
				if c.strict {
					return c.NewTypeError("Can not assign to property \"%s\" without setter.", ref.Key())
				}
				return nil
			}
			_, err := set.Invoke(c, ref.Base, v)
			return err
		}
		if slot.Has(ReadOnly) {
			if c.strict {
				return c.NewTypeError("Can not assign to readonly property \"%s\"", ref.Key())
			}
			return nil
		}
		if !ref.Inherited {
			slot.Store(v)
			return nil
		}
	}
	if ref.Holder == nil {
		// primitive base
		if c.strict {
			return c.NewTypeError("Cannot create property '%s' on %s", ref.Key(), TypeOf(ref.Base))
		}
		return nil
	}
	if !ref.Holder.Extensible() {
		if c.strict {
			return c.NewTypeError("Cannot add property %s, object is not extensible", ref.Key())
		}
		return nil
	}
	if ref.Symbol != nil {
		ref.Holder.SetSymbol(ref.Symbol, v)
	} else {
		ref.Holder.Set(ref.Name, v)
	}
	return nil
}

// GetMember reads base[key] along the prototype chain.
func (c *Context) GetMember(base Value, key Value) (Value, error) {
	if base.IsNullish() {
		k, _ := c.ToString(key)
		return Undefined, c.NewTypeError("Cannot read property '%s' of %s", k, base.String())
	}
	if key.IsSymbol() {
		if !base.IsObject() {
			return Undefined, nil
		}
		slot, _ := base.AsObject().GetSymbol(key.AsSymbol())
		return c.readSlot(base, slot)
	}
	name, err := c.ToString(key)
	if err != nil {
		return Undefined, err
	}
	var obj *Object
	switch {
	case base.IsObject():
		obj = base.AsObject()
	case base.IsString():
		if v, ok := stringMember(base.AsString(), name); ok {
			return v, nil
		}
		obj = c.realm.ObjectPrototype
	default:
		obj = c.realm.ObjectPrototype
	}
	slot, _, err := obj.Lookup(name)
	if err != nil {
		return Undefined, err
	}
	return c.readSlot(base, slot)
}

// Get is GetMember with a string key.
func (c *Context) Get(base Value, name string) (Value, error) {
	return c.GetMember(base, NewString(name))
}

// PutMember writes base[key] = v.
func (c *Context) PutMember(base Value, key Value, v Value) error {
	ref, err := c.MemberReference(base, key)
	if err != nil {
		return err
	}
	return c.Assign(ref, v)
}

// DeleteMember removes an own property. Protected slots are a TypeError in
// strict mode and report false otherwise.
func (c *Context) DeleteMember(base Value, key Value) (bool, error) {
	if base.IsNullish() {
		return false, c.NewTypeError("Cannot convert undefined or null to object")
	}
	if !base.IsObject() {
		return true, nil
	}
	obj := base.AsObject()
	var slot *Value
	var name string
	if key.IsSymbol() {
		slot = obj.symbols[key.AsSymbol()]
		name = "Symbol(" + key.AsSymbol().Description + ")"
	} else {
		var err error
		if name, err = c.ToString(key); err != nil {
			return false, err
		}
		slot, _ = obj.props.Get(name)
	}
	if slot == nil {
		return true, nil
	}
	if !slot.Deletable() {
		if c.strict {
			return false, c.NewTypeError("Can not delete property \"%s\"", name)
		}
		return false, nil
	}
	if key.IsSymbol() {
		obj.DeleteSymbol(key.AsSymbol())
	} else {
		obj.Delete(name)
	}
	return true, nil
}

func (c *Context) readSlot(base Value, slot *Value) (Value, error) {
	if slot == nil {
		return Undefined, nil
	}
	if slot.IsProperty() {
		get := slot.AsAccessor().Get
		if get == nil {
			return Undefined, nil
		}
		return get.Invoke(c, base)
	}
	return slot.Plain(), nil
}

func (c *Context) keyValue(ref Reference) Value {
	if ref.Symbol != nil {
		return SymbolValue(ref.Symbol)
	}
	return NewString(ref.Name)
}

func stringMember(s string, name string) (Value, bool) {
	runes := []rune(s)
	if name == "length" {
		return IntegerValue(int32(len(runes))), true
	}
	idx := StringToNumber(name)
	if idx >= 0 && idx < float64(len(runes)) && idx == float64(int(idx)) && NumberToString(idx) == name {
		return NewString(string(runes[int(idx)])), true
	}
	return Undefined, false
}
