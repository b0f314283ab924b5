// Package fol2sat lowers relational formulas to boolean circuits: it
// annotates the AST, allocates boolean variables for bounded relations,
// translates nodes to circuit values and matrices under an environment
// of bound variables, records a translation log, and emits CNF.
package fol2sat

import (
	"taipan/ast"
)

// Annotated is an AST node annotated with structural information: the
// set of shared descendants, per-node free variables, and the top-level
// relation predicates.
type Annotated struct {
	root      ast.Node
	shared    map[ast.Node]bool
	relations []*ast.Relation
	freeVars  map[ast.Node][]*ast.Variable
}

type annotationState struct {
	status    map[ast.Node]bool // false: visited once, true: shared
	relations []*ast.Relation
	relSeen   map[*ast.Relation]bool
}

// Annotate traverses root once and returns its annotations. Sharing is
// detected by reference-identity counting of internal nodes.
func Annotate(root ast.Node) *Annotated {
	st := &annotationState{
		status:  make(map[ast.Node]bool),
		relSeen: make(map[*ast.Relation]bool),
	}
	st.visit(root)
	shared := make(map[ast.Node]bool)
	for n, multi := range st.status {
		if multi {
			shared[n] = true
		}
	}
	return &Annotated{
		root:      root,
		shared:    shared,
		relations: st.relations,
		freeVars:  make(map[ast.Node][]*ast.Variable),
	}
}

func (st *annotationState) visit(n ast.Node) {
	if r, ok := n.(*ast.Relation); ok {
		if !st.relSeen[r] {
			st.relSeen[r] = true
			st.relations = append(st.relations, r)
		}
		return
	}
	children := ast.Children(n)
	if len(children) == 0 {
		return
	}
	if _, seen := st.status[n]; seen {
		st.status[n] = true
		return
	}
	st.status[n] = false
	for _, c := range children {
		st.visit(c)
	}
}

// Root returns the annotated node.
func (a *Annotated) Root() ast.Node { return a.root }

// Shared reports whether n has more than one parent in the DAG.
func (a *Annotated) Shared(n ast.Node) bool { return a.shared[n] }

// Relations returns the relations at the leaves, in first-visit order.
func (a *Annotated) Relations() []*ast.Relation {
	return append([]*ast.Relation(nil), a.relations...)
}

// FreeVariables returns the variables free in n, in first-occurrence
// order.
func (a *Annotated) FreeVariables(n ast.Node) []*ast.Variable {
	if fv, ok := a.freeVars[n]; ok {
		return fv
	}
	var out []*ast.Variable
	seen := make(map[*ast.Variable]bool)
	add := func(vs []*ast.Variable, bound map[*ast.Variable]bool) {
		for _, v := range vs {
			if !seen[v] && !bound[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	switch n := n.(type) {
	case *ast.Variable:
		out = []*ast.Variable{n}
	case *ast.QuantifiedFormula:
		a.freeOfDecls(n.Decls(), n.Body(), add)
	case *ast.Comprehension:
		a.freeOfDecls(n.Decls(), n.Body(), add)
	case *ast.SumExpr:
		a.freeOfDecls(n.Decls(), n.Body(), add)
	default:
		for _, c := range ast.Children(n) {
			add(a.FreeVariables(c), nil)
		}
	}
	a.freeVars[n] = out
	return out
}

func (a *Annotated) freeOfDecls(decls *ast.Decls, body ast.Node, add func([]*ast.Variable, map[*ast.Variable]bool)) {
	bound := make(map[*ast.Variable]bool)
	for _, d := range decls.All() {
		add(a.FreeVariables(d.Expr()), bound)
		bound[d.Variable()] = true
	}
	add(a.FreeVariables(body), bound)
}

// Predicates returns the relation predicates that occur positively in
// the top-level conjunction of the root formula.
func (a *Annotated) Predicates() []ast.RelationPredicate {
	root, ok := a.root.(ast.Formula)
	if !ok {
		return nil
	}
	var out []ast.RelationPredicate
	for _, c := range TopConjuncts(root) {
		if p, ok := c.(ast.RelationPredicate); ok {
			out = append(out, p)
		}
	}
	return out
}

// TopConjuncts flattens the top-level conjunction of f into its
// conjuncts, in left-to-right order.
func TopConjuncts(f ast.Formula) []ast.Formula {
	if b, ok := f.(*ast.BinaryFormula); ok && b.Op() == ast.AndOp {
		return append(TopConjuncts(b.Left()), TopConjuncts(b.Right())...)
	}
	return []ast.Formula{f}
}
