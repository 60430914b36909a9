package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/errors"
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Try is `try Block catch (Param) Catch finally Finally`. Catch or Finally
// may be nil, not both.
type Try struct {
	Block   Node
	Param   string
	Catch   Node
	Finally Node
}

func NewTry(block Node, param string, catch, finally Node) *Try {
	return &Try{Block: block, Param: param, Catch: catch, Finally: finally}
}

func (t *Try) Evaluate(ctx *vm.Context) (vm.Value, error) {
	v, err := t.Block.Evaluate(ctx)
	if errors.IsConfiguration(err) {
		return vm.Undefined, err
	}
	if err != nil && t.Catch != nil {
		cctx := ctx.NewChild()
		if t.Param != "" {
			cctx.Vars().Define(t.Param, thrownValue(ctx, err))
		}
		v, err = t.Catch.Evaluate(cctx)
		if errors.IsConfiguration(err) {
			return vm.Undefined, err
		}
	}
	if t.Finally == nil {
		return v, err
	}
	pending := ctx.Completion()
	ctx.ClearCompletion()
	if _, ferr := t.Finally.Evaluate(ctx); ferr != nil {
		return vm.Undefined, ferr
	}
	if ctx.Abrupt() {
		// an abrupt finally discards the pending completion or exception
		return vm.Undefined, nil
	}
	if pending.Kind != vm.CompletionNone {
		ctx.Signal(pending.Kind, pending.Label, pending.Payload)
	}
	return v, err
}

// thrownValue extracts the script value of err. Plain Go errors surface as
// Error objects carrying their message.
func thrownValue(ctx *vm.Context, err error) vm.Value {
	if exc, ok := vm.AsException(err); ok {
		return exc.Value
	}
	return ctx.Realm().NewError(vm.KindError, err.Error()).Value
}

func (t *Try) String() string {
	s := "try " + t.Block.String()
	if t.Catch != nil {
		s += " catch (" + t.Param + ") " + t.Catch.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}
