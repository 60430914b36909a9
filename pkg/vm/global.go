package vm

// NewGlobalObject materializes the bindings of ctx as a script object. The
// object shares ctx's binding table, so property access on it reads and
// writes the bindings directly. It is reachable as `globalThis`.
func NewGlobalObject(ctx *Context) *Object {
	var proto *Object
	if ctx.realm != nil {
		proto = ctx.realm.ObjectPrototype
	}
	g := &Object{
		props:      ctx.vars,
		proto:      proto,
		extensible: true,
		class:      "global",
	}
	ctx.vars.Define("globalThis", g.Value().WithAttrs(DoNotEnumerate|DoNotDelete|SystemObject))
	return g
}
