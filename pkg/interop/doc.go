/*
Package interop exposes Go functions, methods and types to script code.

A MethodProxy turns one native function or method into a vm.Callable. It
resolves the receiver from the script `this`, converts the script arguments
to the declared parameter types and hands them to a thunk, the compiled
calling convention of the method. Thunks are built once per method identity
and shared through the Registry of the engine.

A TypeProxy binds a Go type to a script constructor and a prototype. The
prototype resolves members lazily: methods, exported fields, accessor pairs
and indexers are looked up in a capability table computed once per type.

Member metadata comes from struct tags and the optional Annotated interface:

	type Counter struct {
		Total int `js:"total,readonly"`
	}

	func (c *Counter) ScriptMembers() map[string]interop.MemberSpec {
		return map[string]interop.MemberSpec{
			"Add": {Defaults: []any{1}},
		}
	}
*/
package interop

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'niljs.interop'
func tracer() tracing.Trace {
	return tracing.Select("niljs.interop")
}
