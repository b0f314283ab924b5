package engine

import (
	"errors"
	"time"

	"taipan/ast"
	"taipan/circuit"
	"taipan/fol2sat"
	"taipan/instance"
	"taipan/satlab"
)

// Solver is the facade over the translation-and-proof pipeline. A
// Solver is reusable; each Solve call owns its circuit factory,
// translation cache and annotations, and discards them at the end.
type Solver struct {
	options *Options
}

// NewSolver returns a solver with default options.
func NewSolver() *Solver { return &Solver{options: DefaultOptions()} }

// Options returns the solver's mutable options.
func (s *Solver) Options() *Options { return s.options }

// Solve determines the satisfiability of f under the bounds. The
// bounds are cloned and frozen; the caller's copy is untouched.
func (s *Solver) Solve(f ast.Formula, b *instance.Bounds) (*Solution, error) {
	if err := s.options.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	bounds := b.Clone()
	if s.options.SkolemDepth > 0 {
		f = fol2sat.Skolemize(f, bounds, s.options.SkolemDepth)
	}
	bounds.Freeze()

	numVars := fol2sat.NumPrimaryVariables(bounds)
	factory := circuit.NewFactory(numVars, s.options.ComparisonDepth)
	factory.IntEncoding = s.options.IntEncoding
	factory.Bitwidth = s.options.Bitwidth
	alloc := fol2sat.NewVarAllocator(bounds, factory)

	translation, err := fol2sat.TranslateFormula(fol2sat.Annotate(f), alloc, s.options.LogTranslation, s.options.Cancel)
	if errors.Is(err, fol2sat.ErrCancelled) {
		return &Solution{Outcome: Unknown}, nil
	}
	if err != nil {
		return nil, err
	}

	sol := &Solution{
		Stats: Stats{
			PrimaryVariables: numVars,
			SymmetryBreaking: s.options.SymmetryBreaking,
			TranslationTime:  time.Since(start),
		},
	}
	if s.options.LogTranslation {
		sol.Translation = translation
	}

	switch translation.Root {
	case circuit.True:
		sol.Outcome = TriviallySatisfiable
		sol.Instance = lowerBoundInstance(bounds)
		return sol, nil
	case circuit.False:
		sol.Outcome = TriviallyUnsatisfiable
		if s.options.LogTranslation {
			sol.Proof = newTrivialProof(translation)
		}
		return sol, nil
	}

	backend, err := s.options.backend()
	if err != nil {
		return nil, err
	}
	var conjunctLits []int
	if s.options.LogTranslation {
		for _, c := range fol2sat.TopConjuncts(translation.Log.Formula()) {
			if lit, ok := translation.RootLiteral(c); ok {
				conjunctLits = append(conjunctLits, lit)
			}
		}
	}
	fol2sat.EmitCNF(factory, translation.Root, backend, conjunctLits...)
	sol.Stats.Variables = backend.NumVariables()
	sol.Stats.Clauses = backend.NumClauses()

	solveStart := time.Now()
	status := backend.Solve()
	sol.Stats.SolvingTime = time.Since(solveStart)

	switch status {
	case satlab.Sat:
		sol.Outcome = Satisfiable
		sol.Instance = decode(bounds, backend, translation.Allocator)
	case satlab.Unsat:
		sol.Outcome = Unsatisfiable
		if s.options.LogTranslation {
			sol.Proof = newResolutionProof(backend.(satlab.Prover), translation)
		}
	default:
		sol.Outcome = Unknown
	}
	return sol, nil
}

// decode reads the model back into an instance: each relation gets its
// lower bound plus every upper-bound tuple whose primary variable is
// true.
func decode(b *instance.Bounds, backend satlab.Solver, alloc *fol2sat.VarAllocator) *instance.Instance {
	inst := instance.NewInstance(b.Universe())
	for _, r := range b.Relations() {
		ts := b.Lower(r).Clone()
		for _, va := range alloc.Variables(r) {
			if backend.ValueOf(va.Label) {
				ts.AddIndex(va.Tuple)
			}
		}
		inst.Assign(r, ts)
	}
	for _, i := range b.Ints() {
		inst.AssignInt(i, b.IntBound(i))
	}
	return inst
}

// lowerBoundInstance maps every relation to its lower bound; it
// witnesses a trivially satisfiable formula.
func lowerBoundInstance(b *instance.Bounds) *instance.Instance {
	inst := instance.NewInstance(b.Universe())
	for _, r := range b.Relations() {
		inst.Assign(r, b.Lower(r).Clone())
	}
	for _, i := range b.Ints() {
		inst.AssignInt(i, b.IntBound(i))
	}
	return inst
}
