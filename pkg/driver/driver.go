package driver

import (
	stderrors "errors"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/lance2088/NiL.JS/pkg/config"
	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/evaluator"
	"github.com/lance2088/NiL.JS/pkg/interop"
	"github.com/lance2088/NiL.JS/pkg/source"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Engine is a persistent script session. It is not safe for concurrent runs.
type Engine struct {
	opts     *config.Options
	realm    *vm.Realm
	root     *vm.Context
	registry *interop.Registry
}

// ParseFunc turns a script into a program. Parsers report malformed input
// as *errors.SyntaxError.
type ParseFunc func(src *source.Script) (evaluator.Node, error)

// New creates an engine with opts, or with config.Defaults() if opts is nil.
func New(opts *config.Options) *Engine {
	if opts == nil {
		opts = config.Defaults()
	}
	applyTraceLevel(opts.Trace.Level)
	realm := vm.NewRealm()
	root := vm.NewRootContext(realm, opts.Strict)
	realm.InstallGlobals(root)
	e := &Engine{
		opts:     opts,
		realm:    realm,
		root:     root,
		registry: interop.NewRegistry(realm, opts.Interop),
	}
	tracer().Infof("engine created (strict=%v, naming=%s)", opts.Strict, opts.Interop.Naming)
	return e
}

func applyTraceLevel(level string) {
	var l tracing.TraceLevel
	switch strings.ToLower(level) {
	case "debug":
		l = tracing.LevelDebug
	case "info":
		l = tracing.LevelInfo
	default:
		l = tracing.LevelError
	}
	for _, key := range []string{"niljs.vm", "niljs.evaluator", "niljs.interop", "niljs.driver"} {
		tracing.Select(key).SetTraceLevel(l)
	}
}

func (e *Engine) Options() *config.Options    { return e.opts }
func (e *Engine) Realm() *vm.Realm            { return e.realm }
func (e *Engine) Context() *vm.Context        { return e.root }
func (e *Engine) Global() *vm.Object          { return e.root.Global() }
func (e *Engine) Registry() *interop.Registry { return e.registry }

// Define binds name in the global scope to the script form of v.
func (e *Engine) Define(name string, v any) {
	e.Global().Set(name, e.registry.Box(v))
}

// DefineFunc binds name to the native function fn.
func (e *Engine) DefineFunc(name string, fn any) error {
	f, err := e.registry.Func(name, fn)
	if err != nil {
		return err
	}
	e.Global().Set(name, f.Value())
	return nil
}

// DefineType registers the Go type of sample and binds its constructor
// under the constructor name.
func (e *Engine) DefineType(sample any, spec interop.TypeSpec) (*interop.TypeProxy, error) {
	tp, err := e.registry.Define(sample, spec)
	if err != nil {
		return nil, err
	}
	ctor := tp.Constructor()
	e.Global().Set(ctor.Name, ctor.Value())
	return tp, nil
}

// Run evaluates program in the global scope and returns the value of its
// last statement.
func (e *Engine) Run(program evaluator.Node) (vm.Value, error) {
	e.root.ClearCompletion()
	v, err := program.Evaluate(e.root)
	if err != nil {
		return vm.Undefined, e.uncaught(err)
	}
	return v, nil
}

// RunSource parses src with parse and runs the result. Syntax errors
// surface as uncaught script SyntaxErrors.
func (e *Engine) RunSource(src *source.Script, parse ParseFunc) (vm.Value, error) {
	e.root.ClearCompletion()
	program, err := parse(src)
	if err != nil {
		var serr *errors.SyntaxError
		if stderrors.As(err, &serr) {
			if serr.File == "" {
				serr.File = src.DisplayPath()
			}
			tracer().Errorf("%s", errors.Format(src, serr))
			exc := e.realm.NewError(vm.KindSyntaxError, serr.Msg)
			exc.Cause = serr
			return vm.Undefined, e.uncaught(exc)
		}
		return vm.Undefined, err
	}
	return e.Run(program)
}

func (e *Engine) uncaught(err error) error {
	exc, ok := vm.AsException(err)
	if !ok {
		tracer().Errorf("evaluation aborted: %v", err)
		return err
	}
	e.root.Signal(vm.CompletionThrow, "", exc.Value)
	msg, serr := e.root.ToString(exc.Value)
	if serr != nil {
		msg = exc.Value.String()
	}
	tracer().Errorf("uncaught exception: %s", msg)
	return &UncaughtError{Value: exc.Value, msg: msg, cause: exc}
}

// UncaughtError is a script exception that left the program.
type UncaughtError struct {
	Value vm.Value
	msg   string
	cause *vm.Exception
}

func (e *UncaughtError) Error() string { return e.msg }
func (e *UncaughtError) Unwrap() error { return e.cause }
