package vm

// CompletionKind classifies the abrupt completion pending on a context.
type CompletionKind uint8

const (
	CompletionNone CompletionKind = iota
	CompletionBreak
	CompletionContinue
	CompletionReturn
	CompletionThrow // uncaught exception recorded on the root context
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionNone:
		return "none"
	case CompletionBreak:
		return "break"
	case CompletionContinue:
		return "continue"
	case CompletionReturn:
		return "return"
	case CompletionThrow:
		return "throw"
	}
	return "unknown"
}

// Completion is the signal register of a function activation.
type Completion struct {
	Kind    CompletionKind
	Label   string
	Payload Value
}

// Context is one scope activation. Block contexts share the completion
// register of the function activation they belong to.
type Context struct {
	parent     *Context
	vars       *PropertyMap
	strict     bool
	this       Value
	realm      *Realm
	function   *Function
	completion *Completion
	global     *Object
}

// NewRootContext creates the outermost context of a realm together with
// its global object.
func NewRootContext(realm *Realm, strict bool) *Context {
	ctx := &Context{
		vars:       NewPropertyMap(),
		strict:     strict,
		realm:      realm,
		completion: &Completion{},
	}
	ctx.global = NewGlobalObject(ctx)
	ctx.this = ctx.global.Value()
	return ctx
}

// NewChild creates a block scope. It inherits strictness, `this` and the
// completion register.
func (c *Context) NewChild() *Context {
	return &Context{
		parent:     c,
		vars:       NewPropertyMap(),
		strict:     c.strict,
		this:       c.this,
		realm:      c.realm,
		function:   c.function,
		completion: c.completion,
		global:     c.global,
	}
}

func newFunctionContext(scope *Context, fn *Function, this Value, strict bool) *Context {
	return &Context{
		parent:     scope,
		vars:       NewPropertyMap(),
		strict:     strict,
		this:       this,
		realm:      scope.realm,
		function:   fn,
		completion: &Completion{},
		global:     scope.global,
	}
}

func (c *Context) Parent() *Context      { return c.parent }
func (c *Context) Realm() *Realm         { return c.realm }
func (c *Context) Strict() bool          { return c.strict }
func (c *Context) SetStrict(strict bool) { c.strict = strict }
func (c *Context) This() Value           { return c.this }
func (c *Context) SetThis(this Value)    { c.this = this }
func (c *Context) Vars() *PropertyMap    { return c.vars }
func (c *Context) Global() *Object       { return c.global }

// Function returns the function whose activation c belongs to, nil at top level.
func (c *Context) Function() *Function { return c.function }

// Root returns the outermost context.
func (c *Context) Root() *Context {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// VarScope returns the context `var` declarations made in c belong to: the
// enclosing function activation, or the root.
func (c *Context) VarScope() *Context {
	for c.parent != nil && c.parent.completion == c.completion {
		c = c.parent
	}
	return c
}

// Declare creates a binding in c unless one exists already there, and
// returns its slot.
func (c *Context) Declare(name string, v Value) *Value {
	if slot, ok := c.vars.Get(name); ok {
		return slot
	}
	return c.vars.Define(name, v)
}

// Resolve finds the innermost binding for name.
func (c *Context) Resolve(name string) (*Value, *Context) {
	for cur := c; cur != nil; cur = cur.parent {
		if slot, ok := cur.vars.Get(name); ok {
			return slot, cur
		}
	}
	return nil, nil
}

// --- completion signals ---

func (c *Context) Signal(kind CompletionKind, label string, payload Value) {
	*c.completion = Completion{Kind: kind, Label: label, Payload: payload}
}

func (c *Context) Completion() Completion { return *c.completion }

func (c *Context) ClearCompletion() { *c.completion = Completion{} }

// Abrupt reports whether a completion other than None is pending.
func (c *Context) Abrupt() bool { return c.completion.Kind != CompletionNone }

// ConsumeLoopSignal inspects the pending signal after a loop body ran.
// Break and Continue that are unlabeled or carry one of labels are cleared.
// It reports whether the loop has to stop.
func (c *Context) ConsumeLoopSignal(labels []string) bool {
	comp := c.completion
	switch comp.Kind {
	case CompletionNone:
		return false
	case CompletionContinue:
		if owns(labels, comp.Label) {
			c.ClearCompletion()
			return false
		}
	case CompletionBreak:
		if owns(labels, comp.Label) {
			c.ClearCompletion()
		}
	}
	return true
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
