package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// SwitchCase is one clause of a switch. A nil Test marks the default clause.
type SwitchCase struct {
	Test Node
	Body []Node
}

func Case(test Node, body ...Node) SwitchCase { return SwitchCase{Test: test, Body: body} }
func Default(body ...Node) SwitchCase         { return SwitchCase{Body: body} }

// Switch evaluates its discriminant once and compares it with the case
// tests in source order using strict equality. Execution falls through
// from the matching clause, or from the default clause wherever it sits.
type Switch struct {
	loop
	Discriminant Node
	Cases        []SwitchCase
}

func NewSwitch(discriminant Node, cases ...SwitchCase) *Switch {
	return &Switch{Discriminant: discriminant, Cases: cases}
}

func (s *Switch) Evaluate(ctx *vm.Context) (vm.Value, error) {
	d, err := s.Discriminant.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	start, deflt := -1, -1
	for i, c := range s.Cases {
		if c.Test == nil {
			deflt = i
			continue
		}
		t, err := c.Test.Evaluate(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		if vm.StrictEquals(d, t) {
			start = i
			break
		}
	}
	if start < 0 {
		start = deflt
	}
	if start < 0 {
		return vm.Undefined, nil
	}
	result := vm.Undefined
	for _, c := range s.Cases[start:] {
		v, err := runStatements(ctx, c.Body)
		if err != nil {
			return vm.Undefined, err
		}
		result = v
		if ctx.Abrupt() {
			comp := ctx.Completion()
			if comp.Kind == vm.CompletionBreak && owns(s.Labels, comp.Label) {
				ctx.ClearCompletion()
			}
			break
		}
	}
	return result, nil
}

func owns(labels []string, label string) bool {
	if label == "" {
		return true
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func (s *Switch) String() string {
	str := "switch (" + s.Discriminant.String() + ") {"
	for _, c := range s.Cases {
		if c.Test == nil {
			str += " default: "
		} else {
			str += " case " + c.Test.String() + ": "
		}
		str += joinNodes(c.Body, "; ")
	}
	return str + " }"
}
