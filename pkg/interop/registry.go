package interop

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/singleflight"

	"github.com/lance2088/NiL.JS/pkg/config"
	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Registry owns the interop caches of one engine: compiled thunks keyed by
// method identity and type proxies keyed by Go type. Entries live as long as
// the registry.
type Registry struct {
	realm *vm.Realm
	opts  config.InteropConfig
	names naming

	mu     sync.RWMutex
	thunks map[string]*thunk
	types  map[reflect.Type]*TypeProxy
	flight singleflight.Group
	builds atomic.Int64
}

// NewRegistry creates an empty registry producing functions and objects of realm.
func NewRegistry(realm *vm.Realm, opts config.InteropConfig) *Registry {
	return &Registry{
		realm:  realm,
		opts:   opts,
		names:  naming{mode: opts.Naming},
		thunks: make(map[string]*thunk),
		types:  make(map[reflect.Type]*TypeProxy),
	}
}

func (r *Registry) Realm() *vm.Realm { return r.realm }

// ThunkBuilds reports how many thunks have been compiled so far.
func (r *Registry) ThunkBuilds() int64 { return r.builds.Load() }

// ScriptName maps a Go identifier with the naming mode of the registry.
func (r *Registry) ScriptName(goName string) string { return r.names.scriptName(goName) }

// thunkFor returns the shared thunk of m, compiling it on first use.
// Concurrent first uses compile once.
func (r *Registry) thunkFor(m Method) (*thunk, error) {
	key, err := m.key()
	if err != nil {
		return nil, errors.Configurationf(m.Name, "no identity: %v", err)
	}
	r.mu.RLock()
	th, ok := r.thunks[key]
	r.mu.RUnlock()
	if ok {
		return th, nil
	}
	v, err := r.flight.Do(key, func() (interface{}, error) {
		r.mu.RLock()
		th, ok := r.thunks[key]
		r.mu.RUnlock()
		if ok {
			return th, nil
		}
		th, err := compileThunk(m)
		if err != nil {
			return nil, err
		}
		r.builds.Add(1)
		r.mu.Lock()
		r.thunks[key] = th
		r.mu.Unlock()
		return th, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*thunk), nil
}

// Func wraps the Go function fn as a script function.
func (r *Registry) Func(name string, fn any) (*vm.Function, error) {
	m, err := FuncOf(name, fn, MemberSpec{})
	if err != nil {
		return nil, err
	}
	p, err := r.NewMethodProxy(m, nil)
	if err != nil {
		return nil, err
	}
	return p.Function(name), nil
}

// Bind wraps the method goName of target as a script function calling it
// on target whatever `this` is.
func (r *Registry) Bind(target any, goName string) (*vm.Function, error) {
	m, err := MethodOf(reflect.TypeOf(target), goName)
	if err != nil {
		return nil, err
	}
	p, err := r.NewMethodProxy(m, target)
	if err != nil {
		return nil, err
	}
	return p.Function(r.scriptNameOf(goName, m.Spec)), nil
}

func (r *Registry) scriptNameOf(goName string, spec MemberSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return r.names.scriptName(goName)
}

// Proxy returns the type proxy of t, creating it on first use.
func (r *Registry) Proxy(t reflect.Type) *TypeProxy {
	return r.proxyFor(t)
}

func (r *Registry) proxyFor(t reflect.Type) *TypeProxy {
	if t.Kind() == reflect.Struct {
		t = reflect.PointerTo(t)
	}
	r.mu.RLock()
	tp, ok := r.types[t]
	r.mu.RUnlock()
	if ok {
		return tp
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if tp, ok := r.types[t]; ok {
		return tp
	}
	tp = newTypeProxy(r, t)
	r.types[t] = tp
	tracer().Debugf("type proxy for %s with %d member(s)", t, len(tp.order))
	return tp
}
