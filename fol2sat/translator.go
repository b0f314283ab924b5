package fol2sat

import (
	"errors"
	"fmt"
	"sort"

	"taipan/ast"
	"taipan/circuit"
	"taipan/ints"
)

// ErrCancelled is returned when the caller's cancel function fires
// during translation.
var ErrCancelled = errors.New("fol2sat: translation cancelled")

type cancelled struct{}

// Translation is the result of lowering a formula to a boolean circuit.
type Translation struct {
	// Root is the circuit value of the whole formula.
	Root circuit.Value
	// Factory owns the circuit.
	Factory *circuit.Factory
	// Allocator maps relations to primary variables; nil when the
	// translation was driven by an instance.
	Allocator *VarAllocator
	// Log is the translation log; nil unless tracking was requested.
	Log *Log
	// VarUsage maps nodes to the labels of the values their
	// translations are made of; nil unless tracking was requested.
	VarUsage map[ast.Node]ints.Mutable
	// TrueFormulas and FalseFormulas collect the descendants that
	// translated to constants; nil unless tracking was requested.
	TrueFormulas  map[ast.Formula]bool
	FalseFormulas map[ast.Formula]bool
}

// RootLiteral returns the literal a top-level conjunct of the root
// formula was translated to: the literal of its log record under the
// empty environment.
func (t *Translation) RootLiteral(conjunct ast.Formula) (int, bool) {
	if t.Log == nil {
		return 0, false
	}
	for _, r := range t.Log.Records() {
		if r.Node == conjunct && len(r.Env) == 0 {
			return r.Literal, true
		}
	}
	return 0, false
}

// TranslateFormula lowers the annotated formula to a circuit using the
// given allocator. With track set, it also produces the translation
// log needed for proof extraction. The optional cancel function is
// polled at quantifier boundaries.
func TranslateFormula(a *Annotated, alloc Allocator, track bool, cancel func() bool) (t *Translation, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cancelled); ok {
				t, err = nil, ErrCancelled
				return
			}
			panic(r)
		}
	}()
	root, ok := a.Root().(ast.Formula)
	if !ok {
		panic("fol2sat: root is not a formula")
	}
	tr := newTranslator(a, alloc, track, cancel)
	value := tr.formula(root)
	out := &Translation{
		Root:    value,
		Factory: alloc.Factory(),
	}
	if va, ok := alloc.(*VarAllocator); ok {
		out.Allocator = va
	}
	if track {
		out.Log = tr.cache.log
		out.VarUsage = tr.cache.varUsage
		out.TrueFormulas = tr.cache.trueFormulas
		out.FalseFormulas = tr.cache.falseFormulas
	}
	return out, nil
}

// TranslateExpression lowers the annotated expression to a boolean
// matrix. It is used by the evaluator.
func TranslateExpression(a *Annotated, alloc Allocator) *circuit.Matrix {
	e, ok := a.Root().(ast.Expression)
	if !ok {
		panic("fol2sat: root is not an expression")
	}
	return newTranslator(a, alloc, false, nil).expression(e)
}

// TranslateIntExpression lowers the annotated integer expression.
func TranslateIntExpression(a *Annotated, alloc Allocator) *circuit.Int {
	e, ok := a.Root().(ast.IntExpression)
	if !ok {
		panic("fol2sat: root is not an integer expression")
	}
	return newTranslator(a, alloc, false, nil).intExpr(e)
}

type translator struct {
	alloc      Allocator
	cache      *translationCache
	env        *Environment
	cancel     func() bool
	loggedRels map[*ast.Relation]bool
	preds      map[ast.Node]ast.Formula
}

func newTranslator(a *Annotated, alloc Allocator, track bool, cancel func() bool) *translator {
	return &translator{
		alloc:      alloc,
		cache:      newCache(a, track),
		cancel:     cancel,
		loggedRels: make(map[*ast.Relation]bool),
		preds:      make(map[ast.Node]ast.Formula),
	}
}

func (t *translator) checkCancel() {
	if t.cancel != nil && t.cancel() {
		panic(cancelled{})
	}
}

func (t *translator) factory() *circuit.Factory { return t.alloc.Factory() }

// expression translates an expression to a boolean matrix.
func (t *translator) expression(e ast.Expression) *circuit.Matrix {
	if v, ok := t.cache.lookup(e, t.env); ok {
		return v.(*circuit.Matrix)
	}
	var ret *circuit.Matrix
	switch e := e.(type) {
	case *ast.Variable:
		m := t.env.Lookup(e)
		if m == nil {
			panic(fmt.Sprintf("fol2sat: unbound variable %v", e))
		}
		return m
	case *ast.Relation:
		m := t.alloc.Allocate(e)
		if !t.loggedRels[e] {
			t.loggedRels[e] = true
			t.cache.record(e, m, t.env)
		}
		return m
	case *ast.ConstantExpr:
		return t.constantExpr(e)
	case *ast.BinaryExpr:
		left, right := t.expression(e.Left()), t.expression(e.Right())
		switch e.Op() {
		case ast.UnionOp:
			ret = left.Or(right)
		case ast.IntersectionOp:
			ret = left.And(right)
		case ast.DifferenceOp:
			ret = left.Difference(right)
		case ast.OverrideOp:
			ret = left.Override(right)
		case ast.JoinOp:
			ret = left.Dot(right)
		case ast.ProductOp:
			ret = left.Cross(right)
		default:
			panic(fmt.Sprintf("fol2sat: unknown expression operator %v", e.Op()))
		}
	case *ast.UnaryExpr:
		child := t.expression(e.Expr())
		switch e.Op() {
		case ast.TransposeOp:
			ret = child.Transpose()
		case ast.ClosureOp:
			ret = child.Closure()
		case ast.ReflexiveClosureOp:
			ret = child.ReflexiveClosure()
		default:
			panic(fmt.Sprintf("fol2sat: unknown expression operator %v", e.Op()))
		}
	case *ast.Comprehension:
		ret = t.comprehension(e)
	case *ast.IfExpr:
		cond := t.formula(e.Cond())
		ret = t.expression(e.Then()).Choice(cond, t.expression(e.Else()))
	case *ast.ProjectExpr:
		ret = t.project(e)
	case *ast.IntToExprCast:
		ret = t.intToExpr(e)
	default:
		panic(fmt.Sprintf("fol2sat: unknown expression %T", e))
	}
	return t.cache.record(e, ret, t.env).(*circuit.Matrix)
}

func (t *translator) constantExpr(e *ast.ConstantExpr) *circuit.Matrix {
	f := t.factory()
	n := t.alloc.Universe().Size()
	switch e.Kind() {
	case ast.UnivKind:
		return f.ConstantMatrix(circuit.Square(1, n), ints.Range(0, n-1))
	case ast.IdenKind:
		iden := ints.NewSparseSet()
		for i := 0; i < n; i++ {
			iden.Add(i*n + i)
		}
		return f.ConstantMatrix(circuit.Square(2, n), iden)
	case ast.NoneKind:
		return f.Matrix(circuit.Square(1, n))
	default:
		panic("fol2sat: unknown constant expression")
	}
}

// formula translates a formula to a circuit value.
func (t *translator) formula(fml ast.Formula) circuit.Value {
	if v, ok := t.cache.lookup(fml, t.env); ok {
		return v.(circuit.Value)
	}
	f := t.factory()
	var ret circuit.Value
	switch fml := fml.(type) {
	case *ast.ConstantFormula:
		if fml.Value() {
			return circuit.True
		}
		return circuit.False
	case *ast.ComparisonFormula:
		left, right := t.expression(fml.Left()), t.expression(fml.Right())
		if fml.Op() == ast.SubsetOp {
			ret = left.Subset(right)
		} else {
			ret = left.Eq(right)
		}
	case *ast.MultiplicityFormula:
		child := t.expression(fml.Expr())
		switch fml.Mult() {
		case ast.NoMult:
			ret = child.None()
		case ast.SomeMult:
			ret = child.Some()
		case ast.OneMult:
			ret = child.One()
		case ast.LoneMult:
			ret = child.Lone()
		default:
			panic(fmt.Sprintf("fol2sat: unknown multiplicity %v", fml.Mult()))
		}
	case *ast.QuantifiedFormula:
		if fml.Quant() == ast.AllQuant {
			ret = t.universal(fml)
		} else {
			ret = t.existential(fml)
		}
	case *ast.BinaryFormula:
		left, right := t.formula(fml.Left()), t.formula(fml.Right())
		switch fml.Op() {
		case ast.AndOp:
			ret = f.And(left, right)
		case ast.OrOp:
			ret = f.Or(left, right)
		case ast.ImpliesOp:
			ret = f.Implies(left, right)
		case ast.IffOp:
			ret = f.Iff(left, right)
		}
	case *ast.NotFormula:
		ret = f.Not(t.formula(fml.Body()))
	case *ast.IntComparisonFormula:
		left, right := t.intExpr(fml.Left()), t.intExpr(fml.Right())
		switch fml.Op() {
		case ast.IntEqOp:
			ret = left.Eq(right)
		case ast.IntLTOp:
			ret = left.LT(right)
		case ast.IntLTEOp:
			ret = left.LTE(right)
		case ast.IntGTOp:
			ret = left.GT(right)
		case ast.IntGTEOp:
			ret = left.GTE(right)
		}
	case ast.RelationPredicate:
		constraints, ok := t.preds[fml]
		if !ok {
			constraints = fml.Constraints()
			t.preds[fml] = constraints
		}
		ret = t.formula(constraints)
	default:
		panic(fmt.Sprintf("fol2sat: unknown formula %T", fml))
	}
	return t.cache.record(fml, ret, t.env).(circuit.Value)
}

// intExpr translates an integer expression to a small-integer circuit.
func (t *translator) intExpr(e ast.IntExpression) *circuit.Int {
	if v, ok := t.cache.lookup(e, t.env); ok {
		return v.(*circuit.Int)
	}
	f := t.factory()
	var ret *circuit.Int
	switch e := e.(type) {
	case *ast.IntConstant:
		return f.IntConst(e.Value())
	case *ast.Cardinality:
		ret = t.expression(e.Expr()).Cardinality()
	case *ast.BinaryIntExpr:
		left, right := t.intExpr(e.Left()), t.intExpr(e.Right())
		if e.Op() == ast.PlusOp {
			ret = left.Plus(right)
		} else {
			ret = left.Minus(right)
		}
	case *ast.IfIntExpr:
		cond := t.formula(e.Cond())
		ret = t.intExpr(e.Then()).Choice(cond, t.intExpr(e.Else()))
	case *ast.ExprToIntCast:
		ret = t.exprToInt(e)
	case *ast.SumExpr:
		ret = t.sum(e)
	default:
		panic(fmt.Sprintf("fol2sat: unknown integer expression %T", e))
	}
	return t.cache.record(e, ret, t.env).(*circuit.Int)
}

// groundIterate enumerates the ground values of the declared variables:
// the Cartesian product of the non-FALSE cells of the declaration
// matrices. For each combination it binds every variable to the
// indicator matrix of its cell and invokes fn with the cell indices and
// membership guards. fn returns false to stop the enumeration.
func (t *translator) groundIterate(decls *ast.Decls, fn func(indices []int, guards []circuit.Value) bool) {
	f := t.factory()
	n := decls.Len()
	matrices := make([]*circuit.Matrix, n)
	for i, d := range decls.All() {
		if d.Mult() != ast.OneMult {
			panic(fmt.Sprintf("fol2sat: cannot ground-enumerate a %v declaration", d.Mult()))
		}
		matrices[i] = t.expression(d.Expr())
	}
	base := t.env
	indices := make([]int, n)
	guards := make([]circuit.Value, n)
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == n {
			return fn(indices, guards)
		}
		d := decls.Decl(i)
		saved := t.env
		for _, cell := range matrices[i].Cells() {
			indicator := f.Matrix(matrices[i].Dimensions())
			indicator.Set(cell.Index, circuit.True)
			t.env = saved.Extend(d.Variable(), indicator, cell.Index)
			indices[i] = cell.Index
			guards[i] = cell.Value
			if !rec(i + 1) {
				t.env = saved
				return false
			}
		}
		t.env = saved
		return true
	}
	rec(0)
	t.env = base
}

// universal translates all d1, ..., dk | F as the conjunction over all
// ground values of (guard => F).
func (t *translator) universal(qf *ast.QuantifiedFormula) circuit.Value {
	t.checkCancel()
	f := t.factory()
	conj := circuit.NewAccumulator(circuit.OpAnd)
	t.groundIterate(qf.Decls(), func(_ []int, guards []circuit.Value) bool {
		disj := circuit.NewAccumulator(circuit.OpOr)
		for _, g := range guards {
			disj.Add(f.Not(g))
		}
		disj.Add(t.formula(qf.Body()))
		return !conj.Add(f.Accumulate(disj))
	})
	return f.Accumulate(conj)
}

// existential translates some d1, ..., dk | F as the disjunction over
// all ground values of (guard && F).
func (t *translator) existential(qf *ast.QuantifiedFormula) circuit.Value {
	t.checkCancel()
	f := t.factory()
	disj := circuit.NewAccumulator(circuit.OpOr)
	t.groundIterate(qf.Decls(), func(_ []int, guards []circuit.Value) bool {
		conj := circuit.NewAccumulator(circuit.OpAnd)
		for _, g := range guards {
			conj.Add(g)
		}
		conj.Add(t.formula(qf.Body()))
		return !disj.Add(f.Accumulate(conj))
	})
	return f.Accumulate(disj)
}

// comprehension translates { d1, ..., dk | F } to the matrix whose cell
// at each ground combination holds guard && F.
func (t *translator) comprehension(c *ast.Comprehension) *circuit.Matrix {
	t.checkCancel()
	f := t.factory()
	caps := make([]int, c.Decls().Len())
	size := t.alloc.Universe().Size()
	dims := circuit.Square(c.Arity(), size)
	for i, d := range c.Decls().All() {
		caps[i] = circuit.Square(d.Variable().Arity(), size).Capacity()
	}
	ret := f.Matrix(dims)
	t.groundIterate(c.Decls(), func(indices []int, guards []circuit.Value) bool {
		conj := circuit.NewAccumulator(circuit.OpAnd)
		for _, g := range guards {
			conj.Add(g)
		}
		conj.Add(t.formula(c.Body()))
		combined := 0
		for i, idx := range indices {
			combined = combined*caps[i] + idx
		}
		ret.Set(combined, f.Accumulate(conj))
		return true
	})
	return ret
}

// sum translates sum d1, ..., dk | ie as the integer sum over all
// ground values of (guard => ie else 0).
func (t *translator) sum(s *ast.SumExpr) *circuit.Int {
	t.checkCancel()
	f := t.factory()
	zero := f.IntConst(0)
	total := zero
	t.groundIterate(s.Decls(), func(_ []int, guards []circuit.Value) bool {
		conj := circuit.NewAccumulator(circuit.OpAnd)
		for _, g := range guards {
			conj.Add(g)
		}
		guard := f.Accumulate(conj)
		total = total.Plus(t.intExpr(s.Body()).Choice(guard, zero))
		return true
	})
	return total
}

// intToExpr translates Int[ie]: the unary relation whose single atom is
// the one naming the value of ie under the integer bounds.
func (t *translator) intToExpr(e *ast.IntToExprCast) *circuit.Matrix {
	f := t.factory()
	iv := t.intExpr(e.IntExpr())
	ret := f.Matrix(circuit.Square(1, t.alloc.Universe().Size()))
	for _, i := range t.alloc.Ints() {
		atom := t.alloc.IntBound(i).Indices().Min()
		guard := iv.Eq(f.IntConst(i))
		ret.Set(atom, f.Or(ret.Get(atom), guard))
	}
	return ret
}

// exprToInt translates sum(e): the sum of the integer values named by
// the atoms in e.
func (t *translator) exprToInt(e *ast.ExprToIntCast) *circuit.Int {
	f := t.factory()
	m := t.expression(e.Expr())
	zero := f.IntConst(0)
	total := zero
	for _, i := range t.alloc.Ints() {
		atom := t.alloc.IntBound(i).Indices().Min()
		total = total.Plus(f.IntConst(i).Choice(m.Get(atom), zero))
	}
	return total
}

// project translates the projection of an expression onto integer
// columns. Constant columns select source coordinates directly;
// symbolic columns contribute a guard per candidate coordinate.
func (t *translator) project(p *ast.ProjectExpr) *circuit.Matrix {
	f := t.factory()
	src := t.expression(p.Expr())
	srcDims := src.Dimensions()
	cols := make([]*circuit.Int, len(p.Columns()))
	for i, c := range p.Columns() {
		cols[i] = t.intExpr(c)
	}
	size := t.alloc.Universe().Size()
	dims := circuit.Square(len(cols), size)
	acc := make(map[int]*circuit.Accumulator)
	choice := make([]int, len(cols))
	var rec func(i int, guard circuit.Value)
	rec = func(i int, guard circuit.Value) {
		if guard == circuit.False {
			return
		}
		if i == len(cols) {
			for _, cell := range src.Cells() {
				coords := srcDims.Coords(cell.Index)
				out := make([]int, len(cols))
				for j, c := range choice {
					out[j] = coords[c]
				}
				v := f.And(guard, cell.Value)
				if v == circuit.False {
					continue
				}
				idx := dims.Index(out)
				a, ok := acc[idx]
				if !ok {
					a = circuit.NewAccumulator(circuit.OpOr)
					acc[idx] = a
				}
				a.Add(v)
			}
			return
		}
		for c := 0; c < srcDims.Arity(); c++ {
			choice[i] = c
			rec(i+1, f.And(guard, cols[i].Eq(f.IntConst(c))))
		}
	}
	rec(0, circuit.True)
	indices := make([]int, 0, len(acc))
	for idx := range acc {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	ret := f.Matrix(dims)
	for _, idx := range indices {
		ret.Set(idx, f.Accumulate(acc[idx]))
	}
	return ret
}
