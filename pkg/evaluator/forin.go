package evaluator

import (
	"errors"
	"strconv"

	"github.com/lance2088/NiL.JS/pkg/vm"
)

// ForIn is `for (Target in Source) Body`.
//
// Keys are visited level by level along the prototype chain of the
// source. A key shadowed by a level already visited is skipped. When the
// table of the current level changes structurally, enumeration of that
// level restarts and skips as many keys as were already consumed there.
type ForIn struct {
	loop
	Target Assignable
	Source Node
	Body   Node
}

func NewForIn(target Assignable, source, body Node) *ForIn {
	return &ForIn{Target: target, Source: source, Body: body}
}

func (f *ForIn) Evaluate(ctx *vm.Context) (vm.Value, error) {
	src, err := f.Source.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if src.IsNullish() {
		return vm.Undefined, nil
	}
	ref, err := f.Target.EvaluateForWrite(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	visited := make(map[string]struct{})
	last := vm.Undefined
	visit := func(key string) (bool, error) {
		visited[key] = struct{}{}
		if err := ctx.Assign(ref, vm.NewString(key)); err != nil {
			return true, err
		}
		return f.runBody(ctx, f.Body, &last)
	}

	var obj *vm.Object
	if src.IsObject() {
		obj = src.AsObject()
	} else {
		if src.IsString() {
			n := len([]rune(src.AsString()))
			for i := 0; i < n; i++ {
				if stop, err := visit(strconv.Itoa(i)); stop || err != nil {
					return last, err
				}
			}
		}
		obj = ctx.Realm().ObjectPrototype
	}
	for ; obj != nil; obj = obj.Proto() {
		if err := obj.Materialize(); err != nil {
			return vm.Undefined, err
		}
		stop, err := f.enumerateLevel(obj, visited, visit)
		if stop || err != nil {
			return last, err
		}
		// own keys of this level shadow enumerable ones further up
		for _, k := range obj.Properties().Keys() {
			visited[k] = struct{}{}
		}
	}
	return last, nil
}

func (f *ForIn) enumerateLevel(obj *vm.Object, visited map[string]struct{},
	visit func(string) (bool, error)) (bool, error) {
	keys := obj.Properties().Enumerate()
	consumed := 0
	for {
		key, slot, ok, err := keys.Next()
		if errors.Is(err, vm.ErrEnumerationInvalidated) {
			tracer().Debugf("for-in: key set changed, restarting after %d key(s)", consumed)
			keys = obj.Properties().Enumerate()
			for i := 0; i < consumed; i++ {
				if _, _, more, _ := keys.Next(); !more {
					break
				}
			}
			continue
		}
		if err != nil {
			return true, err
		}
		if !ok {
			return false, nil
		}
		consumed++
		if _, seen := visited[key]; seen || !slot.Enumerable() {
			continue
		}
		if stop, err := visit(key); stop || err != nil {
			return true, err
		}
	}
}

func (f *ForIn) String() string {
	return "for (" + f.Target.String() + " in " + f.Source.String() + ") " + f.Body.String()
}
