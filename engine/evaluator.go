package engine

import (
	"taipan/ast"
	"taipan/circuit"
	"taipan/fol2sat"
	"taipan/instance"
)

// Evaluator interprets AST nodes under a concrete instance by running
// the translator over constant matrices.
type Evaluator struct {
	inst    *instance.Instance
	options *Options
}

// NewEvaluator returns an evaluator over the given instance.
func NewEvaluator(inst *instance.Instance) *Evaluator {
	return &Evaluator{inst: inst, options: DefaultOptions()}
}

// Options returns the evaluator's mutable options; only the integer
// encoding settings and comparison depth are consulted.
func (e *Evaluator) Options() *Options { return e.options }

func (e *Evaluator) allocator() fol2sat.Allocator {
	factory := circuit.NewFactory(0, e.options.ComparisonDepth)
	factory.IntEncoding = e.options.IntEncoding
	factory.Bitwidth = e.options.Bitwidth
	return fol2sat.NewInstanceAllocator(e.inst, factory)
}

// Evaluate returns the truth value of f under the instance.
func (e *Evaluator) Evaluate(f ast.Formula) bool {
	t, err := fol2sat.TranslateFormula(fol2sat.Annotate(f), e.allocator(), false, nil)
	if err != nil {
		panic(err)
	}
	return t.Root == circuit.True
}

// EvaluateExpr returns the tuple set denoted by expr under the
// instance.
func (e *Evaluator) EvaluateExpr(expr ast.Expression) *instance.TupleSet {
	m := fol2sat.TranslateExpression(fol2sat.Annotate(expr), e.allocator())
	ts := e.inst.Universe().Factory().NoneOf(expr.Arity())
	for _, c := range m.Cells() {
		if c.Value == circuit.True {
			ts.AddIndex(c.Index)
		}
	}
	return ts
}

// EvaluateInt returns the value of ie under the instance.
func (e *Evaluator) EvaluateInt(ie ast.IntExpression) int {
	return fol2sat.TranslateIntExpression(fol2sat.Annotate(ie), e.allocator()).ConstValue()
}
