/*
Package vm holds the value model and the execution context of the engine.

Values are small tagged structs. Objects keep their own properties in an
insertion-ordered table whose slots carry attributes; every write from
script code goes through Context.Assign which enforces them. Abrupt
completions (break, continue, return) are explicit state on the Context,
thrown script values travel as *Exception errors.
*/
package vm

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'niljs.vm'
func tracer() tracing.Trace {
	return tracing.Select("niljs.vm")
}
