package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

type IncrementType uint8

const (
	PreIncrement IncrementType = iota
	PostIncrement
)

// Increment is `++x` or `x++`. It mirrors Decrement.
type Increment struct {
	Operand Assignable
	Type    IncrementType
}

func NewIncrement(operand Assignable, typ IncrementType) *Increment {
	if operand == nil {
		panic("increment requires an operand")
	}
	return &Increment{Operand: operand, Type: typ}
}

func (i *Increment) Evaluate(ctx *vm.Context) (vm.Value, error) {
	return update(ctx, i.Operand, 1, i.Type == PostIncrement, "increment")
}

func (i *Increment) String() string {
	if i.Type == PostIncrement {
		return i.Operand.String() + "++"
	}
	return "++" + i.Operand.String()
}
