package engine

import (
	mapset "github.com/deckarep/golang-set/v2"

	"taipan/ast"
	"taipan/fol2sat"
	"taipan/satlab"
	"taipan/ucore"
)

// Proof is a proof of unsatisfiability.
type Proof interface {
	// Core returns the log records whose nodes and literals
	// participate in the refutation.
	Core() []fol2sat.Record
	// HighLevelCore returns the top-level conjuncts of the root
	// formula whose subtrees contributed to the refutation. Their
	// conjunction is unsatisfiable under the original bounds.
	HighLevelCore() []ast.Formula
	// Minimize shrinks the core with the given strategy. A reduction
	// attempt that fails never invalidates the last known core.
	Minimize(strategy satlab.ReductionStrategy)
	// Trace returns the current resolution trace, or nil for a proof
	// of trivial unsatisfiability.
	Trace() *satlab.Trace
}

// resolutionProof extracts cores from a resolution trace and the
// translation log.
type resolutionProof struct {
	prover      satlab.Prover
	translation *fol2sat.Translation
	// asserted records the conjunct literals that had their own unit
	// clause in the initial trace.
	asserted  mapset.Set[int]
	coreVars  mapset.Set[int]
	coreNodes map[ast.Node]bool
}

func newResolutionProof(prover satlab.Prover, translation *fol2sat.Translation) Proof {
	p := &resolutionProof{prover: prover, translation: translation, asserted: mapset.NewSet[int]()}
	trace := prover.Proof()
	for _, conjunct := range fol2sat.TopConjuncts(translation.Log.Formula()) {
		if lit, ok := translation.RootLiteral(conjunct); ok && trace.UnitClause(lit) != nil {
			p.asserted.Add(lit)
		}
	}
	return p
}

// refresh recomputes the core variables and the connected core nodes
// from the prover's current trace.
func (p *resolutionProof) refresh() {
	if p.coreVars != nil {
		return
	}
	p.coreVars = ucore.CoreVars(p.prover.Proof())
	// nodes that contributed at least one core literal
	contributed := make(map[ast.Node]bool)
	for _, r := range p.translation.Log.Records() {
		lit := r.Literal
		if lit < 0 {
			lit = -lit
		}
		if p.coreVars.Contains(lit) {
			contributed[r.Node] = true
		}
	}
	// keep only nodes structurally reachable from the root formula
	p.coreNodes = make(map[ast.Node]bool)
	visited := make(map[ast.Node]bool)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		if contributed[n] {
			p.coreNodes[n] = true
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(p.translation.Log.Formula())
}

func (p *resolutionProof) Core() []fol2sat.Record {
	p.refresh()
	return p.translation.Log.Replay(func(r fol2sat.Record) bool {
		lit := r.Literal
		if lit < 0 {
			lit = -lit
		}
		return p.coreNodes[r.Node] && p.coreVars.Contains(lit)
	})
}

func (p *resolutionProof) HighLevelCore() []ast.Formula {
	p.refresh()
	trace := p.prover.Proof()
	inCore := mapset.NewSet[int]()
	for _, c := range trace.Core() {
		inCore.Add(c.Index())
	}
	var out []ast.Formula
	for _, conjunct := range fol2sat.TopConjuncts(p.translation.Log.Formula()) {
		lit, ok := p.translation.RootLiteral(conjunct)
		if ok && p.asserted.Contains(lit) {
			// a conjunct asserted by its own unit clause is in the
			// core exactly when that clause reaches the conflict;
			// a clause dropped by minimization is out for good
			if unit := trace.UnitClause(lit); unit != nil && inCore.Contains(unit.Index()) {
				out = append(out, conjunct)
			}
			continue
		}
		if p.subtreeInCore(conjunct) {
			out = append(out, conjunct)
		}
	}
	return out
}

func (p *resolutionProof) subtreeInCore(root ast.Formula) bool {
	found := false
	visited := make(map[ast.Node]bool)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if found || visited[n] {
			return
		}
		visited[n] = true
		if p.coreNodes[n] {
			found = true
			return
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(root)
	return found
}

func (p *resolutionProof) Trace() *satlab.Trace { return p.prover.Proof() }

func (p *resolutionProof) Minimize(strategy satlab.ReductionStrategy) {
	p.prover.Reduce(strategy)
	p.coreVars = nil
	p.coreNodes = nil
}

// trivialProof is the proof of a formula whose circuit reduced to FALSE
// during translation: the core is read off the translator's constant
// caches.
type trivialProof struct {
	translation *fol2sat.Translation
}

func newTrivialProof(translation *fol2sat.Translation) Proof {
	return &trivialProof{translation: translation}
}

func (p *trivialProof) Core() []fol2sat.Record { return nil }

func (p *trivialProof) HighLevelCore() []ast.Formula {
	conjuncts := fol2sat.TopConjuncts(p.translation.Log.Formula())
	for _, c := range conjuncts {
		if p.translation.FalseFormulas[c] {
			// a single false conjunct refutes the conjunction
			return []ast.Formula{c}
		}
	}
	return conjuncts
}

func (p *trivialProof) Trace() *satlab.Trace { return nil }

func (p *trivialProof) Minimize(strategy satlab.ReductionStrategy) {}
