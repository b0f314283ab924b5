package fol2sat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taipan/ast"
	"taipan/circuit"
	"taipan/instance"
	"taipan/satlab"
)

// testProblem is a small universe with a unary A = {a0, a1} bound
// exactly and a binary r bounded from empty to A->A.
type testProblem struct {
	universe *instance.Universe
	bounds   *instance.Bounds
	a        *ast.Relation
	r        *ast.Relation
}

func newTestProblem() *testProblem {
	u := instance.NewUniverse("a0", "a1")
	f := u.Factory()
	a := ast.NewRelation("A", 1)
	r := ast.NewRelation("r", 2)
	b := instance.NewBounds(u)
	b.BoundExactly(a, f.AllOf(1))
	b.BoundUpper(r, f.AllOf(2))
	return &testProblem{universe: u, bounds: b, a: a, r: r}
}

func translate(t *testing.T, f ast.Formula, b *instance.Bounds, track bool) *Translation {
	t.Helper()
	factory := circuit.NewFactory(NumPrimaryVariables(b), 3)
	alloc := NewVarAllocator(b, factory)
	tr, err := TranslateFormula(Annotate(f), alloc, track, nil)
	assert.NoError(t, err)
	return tr
}

func TestRelationAllocation(t *testing.T) {
	u := instance.NewUniverse("a0", "a1")
	f := u.Factory()
	r := ast.NewRelation("r", 1)
	b := instance.NewBounds(u)
	b.Bound(r, f.SetOf(f.Tuple("a0")), f.AllOf(1))

	factory := circuit.NewFactory(NumPrimaryVariables(b), 3)
	assert.Equal(t, 1, factory.NumVars())
	alloc := NewVarAllocator(b, factory)

	m := alloc.Allocate(r)
	assert.Equal(t, circuit.True, m.Get(0), "lower-bound tuple is TRUE")
	assert.Equal(t, factory.Variable(1), m.Get(1), "free tuple gets a variable")
	assert.Equal(t, m, alloc.Allocate(r), "allocation is memoized")
	assert.Equal(t, []VarAssignment{{Label: 1, Tuple: 1}}, alloc.Variables(r))
}

func TestConstantOutcomes(t *testing.T) {
	p := newTestProblem()

	tautology := ast.In(p.a, p.a)
	assert.Equal(t, circuit.True, translate(t, tautology, p.bounds, false).Root)

	contradiction := ast.No(p.a)
	assert.Equal(t, circuit.False, translate(t, contradiction, p.bounds, false).Root)
}

func TestQuantifierTranslation(t *testing.T) {
	p := newTestProblem()
	x := ast.NewVariable("x")

	// all x: A | x in A holds independently of r
	all := ast.ForAll(ast.NewDecls(ast.OneOf(x, p.a)), ast.In(x, p.a))
	assert.Equal(t, circuit.True, translate(t, all, p.bounds, false).Root)

	// some x: A | some x.r depends on r's variables
	some := ast.Exists(ast.NewDecls(ast.OneOf(x, p.a)), ast.Some(ast.Join(x, p.r)))
	root := translate(t, some, p.bounds, false).Root
	assert.NotEqual(t, circuit.True, root)
	assert.NotEqual(t, circuit.False, root)
}

func TestUnboundVariablePanics(t *testing.T) {
	p := newTestProblem()
	x := ast.NewVariable("x")
	assert.Panics(t, func() {
		translate(t, ast.Some(ast.Join(x, p.r)), p.bounds, false)
	})
}

func TestHigherOrderDeclPanics(t *testing.T) {
	p := newTestProblem()
	x := ast.NewVariable("x")
	decl := ast.Declare(x, ast.SetMult, p.a)
	assert.Panics(t, func() {
		translate(t, ast.ForAll(ast.NewDecls(decl), ast.In(x, p.a)), p.bounds, false)
	})
}

func TestComprehension(t *testing.T) {
	p := newTestProblem()
	x := ast.NewVariable("x")

	// { x: A | some x.r } = A when r is replaced by its upper bound
	comp := ast.NewComprehension(ast.NewDecls(ast.OneOf(x, p.a)), ast.Some(ast.Join(x, p.r)))
	eq := ast.Equals(comp, p.a)
	root := translate(t, eq, p.bounds, false).Root
	assert.NotEqual(t, circuit.False, root, "satisfiable when r covers every atom")
}

func TestTranslationLog(t *testing.T) {
	p := newTestProblem()
	someR := ast.Some(p.r)
	tr := translate(t, someR, p.bounds, true)

	assert.NotNil(t, tr.Log)
	assert.Equal(t, someR, tr.Log.Formula())

	lit, ok := tr.RootLiteral(someR)
	assert.True(t, ok)
	assert.Equal(t, tr.Root.Label(), lit)

	// relation cells are logged once with their variable literals
	relRecords := tr.Log.Replay(func(r Record) bool { return r.Node == p.r })
	assert.Len(t, relRecords, 4)
}

func TestLogEnvironments(t *testing.T) {
	p := newTestProblem()
	x := ast.NewVariable("x")
	body := ast.Some(ast.Join(x, p.r))
	all := ast.ForAll(ast.NewDecls(ast.OneOf(x, p.a)), body)
	tr := translate(t, all, p.bounds, true)

	records := tr.Log.Replay(func(r Record) bool { return r.Node == body })
	assert.Len(t, records, 2, "one record per ground value of x")
	seen := map[int]bool{}
	for _, r := range records {
		idx, bound := r.Env[x]
		assert.True(t, bound)
		seen[idx] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true}, seen)
}

func TestConstantCaches(t *testing.T) {
	p := newTestProblem()
	trueConjunct := ast.In(p.a, p.a)
	falseConjunct := ast.No(p.a)
	liveConjunct := ast.Some(p.r)
	tr := translate(t, ast.Conjunction(trueConjunct, falseConjunct, liveConjunct), p.bounds, true)

	assert.True(t, tr.TrueFormulas[trueConjunct])
	assert.True(t, tr.FalseFormulas[falseConjunct])
	assert.Equal(t, circuit.False, tr.Root)
}

// cnfRecorder captures emitted CNF for determinism checks.
type cnfRecorder struct {
	vars    int
	clauses [][]int
}

func (s *cnfRecorder) AddVariables(n int)  { s.vars += n }
func (s *cnfRecorder) NumVariables() int   { return s.vars }
func (s *cnfRecorder) NumClauses() int     { return len(s.clauses) }
func (s *cnfRecorder) ValueOf(v int) bool  { return false }
func (s *cnfRecorder) Solve() satlab.Status { return satlab.Unknown }

func (s *cnfRecorder) AddClause(lits ...int) {
	s.clauses = append(s.clauses, append([]int(nil), lits...))
}

func TestTranslationDeterminism(t *testing.T) {
	emit := func() ([][]int, int) {
		p := newTestProblem()
		x := ast.NewVariable("x")
		f := ast.And(
			ast.ForAll(ast.NewDecls(ast.OneOf(x, p.a)), ast.Some(ast.Join(x, p.r))),
			ast.Lone(p.r))
		tr := translate(t, f, p.bounds, true)
		s := &cnfRecorder{}
		EmitCNF(tr.Factory, tr.Root, s)
		return s.clauses, s.vars
	}
	c1, v1 := emit()
	c2, v2 := emit()
	assert.Equal(t, v1, v2)
	assert.Equal(t, c1, c2, "identical CNF for identical input")
}
