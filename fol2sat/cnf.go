package fol2sat

import (
	"taipan/circuit"
	"taipan/satlab"
)

// EmitCNF clausifies the root circuit into the solver: one solver
// variable per circuit label, Tseitin clauses per gate, and the root
// asserted. Nested AND gates at the root are flattened and every
// conjunct asserted as its own unit clause instead of defining an
// intermediate gate; the unit clauses make the conjuncts directly
// identifiable during core extraction. The optional conjunct labels
// mark circuits of top-level source conjuncts at which flattening
// stops, so that each keeps a single identifying unit clause. The root
// must not be a constant.
func EmitCNF(f *circuit.Factory, root circuit.Value, s satlab.Solver, conjuncts ...int) {
	if _, ok := root.(*circuit.Constant); ok {
		panic("fol2sat: cannot emit a constant circuit")
	}
	stop := make(map[int]bool, len(conjuncts))
	for _, lit := range conjuncts {
		if lit > 0 {
			stop[lit] = true
		}
	}
	s.AddVariables(f.MaxLabel())
	e := &emitter{solver: s, defined: make(map[int]bool)}
	for _, conjunct := range rootConjuncts(root.(circuit.Formula), stop) {
		e.define(conjunct)
		s.AddClause(conjunct.Label())
	}
}

// rootConjuncts flattens AND gates at the root into the list of
// asserted conjuncts, in input order, stopping at marked labels.
func rootConjuncts(root circuit.Formula, stop map[int]bool) []circuit.Formula {
	var out []circuit.Formula
	var collect func(g circuit.Formula)
	collect = func(g circuit.Formula) {
		if g.Op() == circuit.OpAnd && !stop[g.Label()] {
			for i := 0; i < g.NumInputs(); i++ {
				collect(g.Input(i))
			}
			return
		}
		out = append(out, g)
	}
	collect(root)
	return out
}

type emitter struct {
	solver  satlab.Solver
	defined map[int]bool
}

// define emits the Tseitin clauses of the gate underlying g and,
// recursively, of every gate below it.
func (e *emitter) define(g circuit.Formula) {
	if g.Op() == circuit.OpNot {
		e.define(g.Input(0))
		return
	}
	label := g.Label()
	if e.defined[label] {
		return
	}
	e.defined[label] = true
	for i := 0; i < g.NumInputs(); i++ {
		e.define(g.Input(i))
	}
	switch g.Op() {
	case circuit.OpVar:
		// primary variables need no defining clauses
	case circuit.OpAnd:
		long := make([]int, 0, g.NumInputs()+1)
		for i := 0; i < g.NumInputs(); i++ {
			in := g.Input(i).Label()
			e.solver.AddClause(-label, in)
			long = append(long, -in)
		}
		e.solver.AddClause(append(long, label)...)
	case circuit.OpOr:
		long := make([]int, 0, g.NumInputs()+1)
		for i := 0; i < g.NumInputs(); i++ {
			in := g.Input(i).Label()
			e.solver.AddClause(label, -in)
			long = append(long, in)
		}
		e.solver.AddClause(append(long, -label)...)
	case circuit.OpITE:
		i, t, el := g.Input(0).Label(), g.Input(1).Label(), g.Input(2).Label()
		e.solver.AddClause(-label, -i, t)
		e.solver.AddClause(-label, i, el)
		e.solver.AddClause(label, -i, -t)
		e.solver.AddClause(label, i, -el)
	}
}
