package visibility

// Evaluator decides a rule string (visibleWhen, disabledWhen, canDeleteWhen)
// against a context.
type Evaluator interface {
	Eval(rule string, ctx Context) (bool, error)
}

// Context provides the inputs a rule can reference. Values holds state flags
// such as status, isEdit and isNew; Row holds the record of the row being
// rendered and is addressed with the `row.` prefix.
type Context struct {
	Values map[string]any
	Row    map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(rule string, ctx Context) (bool, error) {
	return fn(rule, ctx)
}
