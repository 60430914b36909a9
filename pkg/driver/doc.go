/*
Package driver is the embedding facade of the engine.

An Engine owns one realm, its outermost context and the interop registry.
Bindings made with Define, DefineFunc and DefineType persist across runs,
so successive programs share their global state:

	eng := driver.New(nil)
	eng.DefineFunc("log", func(msg string) { fmt.Println(msg) })
	v, err := eng.Run(program)

Script exceptions nobody catches end the run and are returned as
*UncaughtError. Configuration errors of native bindings are returned as
they are.
*/
package driver

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'niljs.driver'
func tracer() tracing.Trace {
	return tracing.Select("niljs.driver")
}
