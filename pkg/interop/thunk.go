package interop

import (
	"reflect"

	"github.com/lance2088/NiL.JS/pkg/errors"
)

// Convention is the calling convention of a native method.
type Convention uint8

const (
	// Standard methods get every script argument converted to its parameter type.
	Standard Convention = iota
	// Raw methods take (this vm.Value, args *vm.Arguments) or just the
	// arguments and see the script values untouched.
	Raw
	// ForceInstance methods receive the script `this` as their first
	// parameter, optionally followed by the raw *vm.Arguments.
	ForceInstance
)

func (c Convention) String() string {
	switch c {
	case Raw:
		return "raw"
	case ForceInstance:
		return "forceInstance"
	}
	return "standard"
}

// thunk is the compiled calling convention of one native method. It holds
// no function value, so every proxy of the same method identity can share it.
type thunk struct {
	convention Convention
	receiver   bool         // first native parameter is the Go receiver
	context    bool         // next parameter is the calling *vm.Context
	this       reflect.Type // ForceInstance: the parameter receiving `this`
	rawThis    bool         // Raw: the script `this` is passed as vm.Value
	rawArgs    bool         // last parameter takes the *vm.Arguments as is
	params     []reflect.Type
	variadic   bool
	result     int // index of the value result, -1 if none
	err        int // index of the error result, -1 if none
}

// fixed is the number of parameters filled one by one from script arguments.
func (t *thunk) fixed() int {
	if t.variadic {
		return len(t.params) - 1
	}
	return len(t.params)
}

func compileThunk(m Method) (*thunk, error) {
	ft := m.Func.Type()
	th := &thunk{result: -1, err: -1}
	i := 0
	if m.Receiver != nil {
		th.receiver = true
		i++
	}
	if i < ft.NumIn() && ft.In(i) == contextType {
		th.context = true
		i++
	}
	rest := ft.NumIn() - i
	plain := !ft.IsVariadic()
	switch {
	case rest == 2 && plain && ft.In(i) == valueType && ft.In(i+1) == argumentsType:
		th.convention = Raw
		th.rawThis, th.rawArgs = true, true
		i += 2
	case rest == 1 && plain && ft.In(i) == argumentsType:
		th.convention = Raw
		th.rawArgs = true
		i++
	case m.Spec.InstanceMember:
		if rest == 0 || (rest == 1 && ft.IsVariadic()) {
			return nil, errors.Configurationf(m.Name, "instance member needs a parameter receiving this")
		}
		th.convention = ForceInstance
		th.this = ft.In(i)
		i++
		if rest == 2 && plain && ft.In(i) == argumentsType {
			th.rawArgs = true
			i++
		}
	}
	for ; i < ft.NumIn(); i++ {
		th.params = append(th.params, ft.In(i))
	}
	th.variadic = ft.IsVariadic() && th.convention != Raw
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			th.err = 0
		} else {
			th.result = 0
		}
	case 2:
		if !ft.Out(1).Implements(errorType) {
			return nil, errors.Configurationf(m.Name, "second result must be an error, is %s", ft.Out(1))
		}
		th.result, th.err = 0, 1
	default:
		return nil, errors.Configurationf(m.Name, "too many results (%d)", ft.NumOut())
	}
	tracer().Debugf("compiled %s thunk for %s with %d parameter(s)", th.convention, m.Name, len(th.params))
	return th, nil
}
