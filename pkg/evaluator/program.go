package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Program is the top-level node handed over by the parser.
type Program struct {
	Body   []Node
	Strict bool // program starts with a "use strict" directive
}

func NewProgram(body ...Node) *Program {
	return &Program{Body: body, Strict: hasUseStrict(body)}
}

// Evaluate runs the program in ctx and returns the value of the last
// statement. A strict directive applies for the duration of the run only.
// Jumps left over at top level are discarded.
func (p *Program) Evaluate(ctx *vm.Context) (vm.Value, error) {
	if p.Strict && !ctx.Strict() {
		ctx.SetStrict(true)
		defer ctx.SetStrict(false)
	}
	v, err := runStatements(ctx, p.Body)
	if ctx.Abrupt() && ctx.Completion().Kind != vm.CompletionThrow {
		ctx.ClearCompletion()
	}
	return v, err
}

func (p *Program) String() string { return joinNodes(p.Body, ";\n") }
