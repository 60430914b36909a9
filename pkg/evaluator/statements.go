package evaluator

import (
	"github.com/lance2088/NiL.JS/pkg/vm"
)

// Block is a statement list. It does not introduce a binding scope.
type Block struct {
	Body []Node
}

func NewBlock(body ...Node) *Block { return &Block{Body: body} }

func (b *Block) Evaluate(ctx *vm.Context) (vm.Value, error) { return runStatements(ctx, b.Body) }
func (b *Block) String() string                             { return "{ " + joinNodes(b.Body, "; ") + " }" }

// VarDecl is `var name = init`. The binding goes to the enclosing function
// activation (or the root).
type VarDecl struct {
	Name string
	Init Node
}

func NewVar(name string, init Node) *VarDecl { return &VarDecl{Name: name, Init: init} }

func (d *VarDecl) Evaluate(ctx *vm.Context) (vm.Value, error) {
	ref, err := d.EvaluateForWrite(ctx)
	if err != nil || d.Init == nil {
		return vm.Undefined, err
	}
	v, err := d.Init.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.Undefined, ctx.Assign(ref, v)
}

func (d *VarDecl) EvaluateForWrite(ctx *vm.Context) (vm.Reference, error) {
	slot := ctx.VarScope().Declare(d.Name, vm.Undefined)
	return vm.Reference{Base: vm.Undefined, Slot: slot, Name: d.Name}, nil
}

func (d *VarDecl) String() string {
	if d.Init == nil {
		return "var " + d.Name
	}
	return "var " + d.Name + " = " + d.Init.String()
}

// If is `if (Test) Then else Else`.
type If struct {
	Test, Then, Else Node
}

func NewIf(test, then, otherwise Node) *If { return &If{Test: test, Then: then, Else: otherwise} }

func (s *If) Evaluate(ctx *vm.Context) (vm.Value, error) {
	t, err := s.Test.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if vm.ToBoolean(t) {
		return s.Then.Evaluate(ctx)
	}
	if s.Else != nil {
		return s.Else.Evaluate(ctx)
	}
	return vm.Undefined, nil
}

func (s *If) String() string {
	str := "if (" + s.Test.String() + ") " + s.Then.String()
	if s.Else != nil {
		str += " else " + s.Else.String()
	}
	return str
}

// --- Loops ---

// loop carries the labels a labeled statement hands down to its loop.
type loop struct {
	Labels []string
}

func (l *loop) addLabel(label string) { l.Labels = append(l.Labels, label) }

// runBody evaluates a loop body and decides whether the loop goes on.
func (l *loop) runBody(ctx *vm.Context, body Node, last *vm.Value) (bool, error) {
	v, err := body.Evaluate(ctx)
	if err != nil {
		return true, err
	}
	*last = v
	return ctx.ConsumeLoopSignal(l.Labels), nil
}

// While is `while (Test) Body`.
type While struct {
	loop
	Test, Body Node
}

func NewWhile(test, body Node) *While { return &While{Test: test, Body: body} }

func (w *While) Evaluate(ctx *vm.Context) (vm.Value, error) {
	last := vm.Undefined
	for {
		t, err := w.Test.Evaluate(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		if !vm.ToBoolean(t) {
			return last, nil
		}
		if stop, err := w.runBody(ctx, w.Body, &last); stop || err != nil {
			return last, err
		}
	}
}

func (w *While) String() string { return "while (" + w.Test.String() + ") " + w.Body.String() }

// DoWhile is `do Body while (Test)`.
type DoWhile struct {
	loop
	Body, Test Node
}

func NewDoWhile(body, test Node) *DoWhile { return &DoWhile{Body: body, Test: test} }

func (d *DoWhile) Evaluate(ctx *vm.Context) (vm.Value, error) {
	last := vm.Undefined
	for {
		if stop, err := d.runBody(ctx, d.Body, &last); stop || err != nil {
			return last, err
		}
		t, err := d.Test.Evaluate(ctx)
		if err != nil {
			return vm.Undefined, err
		}
		if !vm.ToBoolean(t) {
			return last, nil
		}
	}
}

func (d *DoWhile) String() string { return "do " + d.Body.String() + " while (" + d.Test.String() + ")" }

// For is `for (Init; Test; Update) Body`. Each part may be nil.
type For struct {
	loop
	Init, Test, Update, Body Node
}

func NewFor(init, test, update, body Node) *For {
	return &For{Init: init, Test: test, Update: update, Body: body}
}

func (f *For) Evaluate(ctx *vm.Context) (vm.Value, error) {
	if f.Init != nil {
		if _, err := f.Init.Evaluate(ctx); err != nil {
			return vm.Undefined, err
		}
	}
	last := vm.Undefined
	for {
		if f.Test != nil {
			t, err := f.Test.Evaluate(ctx)
			if err != nil {
				return vm.Undefined, err
			}
			if !vm.ToBoolean(t) {
				return last, nil
			}
		}
		if stop, err := f.runBody(ctx, f.Body, &last); stop || err != nil {
			return last, err
		}
		if f.Update != nil {
			if _, err := f.Update.Evaluate(ctx); err != nil {
				return vm.Undefined, err
			}
		}
	}
}

func (f *For) String() string {
	part := func(n Node) string {
		if n == nil {
			return ""
		}
		return n.String()
	}
	return "for (" + part(f.Init) + "; " + part(f.Test) + "; " + part(f.Update) + ") " + f.Body.String()
}

// --- Labels and jumps ---

// Labeled is `Label: Body`. Loops and switches own the label themselves so
// that `continue Label` reaches them.
type Labeled struct {
	Label string
	Body  Node
}

func NewLabeled(label string, body Node) *Labeled {
	if t, ok := body.(labelTarget); ok {
		t.addLabel(label)
	}
	return &Labeled{Label: label, Body: body}
}

func (l *Labeled) Evaluate(ctx *vm.Context) (vm.Value, error) {
	v, err := l.Body.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	if c := ctx.Completion(); c.Kind == vm.CompletionBreak && c.Label == l.Label {
		ctx.ClearCompletion()
	}
	return v, nil
}

func (l *Labeled) String() string { return l.Label + ": " + l.Body.String() }

type Break struct {
	Label string
}

func NewBreak(label string) *Break { return &Break{Label: label} }

func (b *Break) Evaluate(ctx *vm.Context) (vm.Value, error) {
	ctx.Signal(vm.CompletionBreak, b.Label, vm.Undefined)
	return vm.Undefined, nil
}

func (b *Break) String() string { return withLabel("break", b.Label) }

type Continue struct {
	Label string
}

func NewContinue(label string) *Continue { return &Continue{Label: label} }

func (c *Continue) Evaluate(ctx *vm.Context) (vm.Value, error) {
	ctx.Signal(vm.CompletionContinue, c.Label, vm.Undefined)
	return vm.Undefined, nil
}

func (c *Continue) String() string { return withLabel("continue", c.Label) }

func withLabel(keyword, label string) string {
	if label == "" {
		return keyword
	}
	return keyword + " " + label
}

// Return is `return Value`; Value may be nil.
type Return struct {
	Value Node
}

func NewReturn(value Node) *Return { return &Return{Value: value} }

func (r *Return) Evaluate(ctx *vm.Context) (vm.Value, error) {
	v := vm.Undefined
	if r.Value != nil {
		var err error
		if v, err = r.Value.Evaluate(ctx); err != nil {
			return vm.Undefined, err
		}
	}
	ctx.Signal(vm.CompletionReturn, "", v)
	return vm.Undefined, nil
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// Throw is `throw Value`.
type Throw struct {
	Value Node
}

func NewThrow(value Node) *Throw { return &Throw{Value: value} }

func (t *Throw) Evaluate(ctx *vm.Context) (vm.Value, error) {
	v, err := t.Value.Evaluate(ctx)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.Undefined, vm.Throw(v)
}

func (t *Throw) String() string { return "throw " + t.Value.String() }
