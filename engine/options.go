// Package engine orchestrates solving: it skolemizes, translates,
// emits CNF, runs the SAT backend, and decodes an instance or extracts
// a proof of unsatisfiability.
package engine

import (
	"fmt"
	"time"

	"taipan/circuit"
	"taipan/satlab"
)

// Options configures a Solver.
type Options struct {
	// Solver constructs the SAT backend; nil picks gini, or the
	// resolution-tracing prover when LogTranslation is set.
	Solver func() satlab.Solver
	// SymmetryBreaking is the size of the symmetry-breaking predicate;
	// 0 disables it. Predicate generation is an external collaborator:
	// the option is validated and surfaced on Stats.
	SymmetryBreaking int
	// IntEncoding selects the small-integer circuit encoding.
	IntEncoding circuit.Encoding
	// Bitwidth is the width of two's-complement integers.
	Bitwidth int
	// LogTranslation enables the translation log, required for unsat
	// cores.
	LogTranslation bool
	// ComparisonDepth bounds gate flattening during circuit equality
	// checks; it must be at least 1.
	ComparisonDepth int
	// SkolemDepth is the maximum nesting of existential quantifiers to
	// skolemize; 0 disables skolemization.
	SkolemDepth int
	// Timeout bounds the SAT search where the backend supports it;
	// exceeding it yields the Unknown outcome.
	Timeout time.Duration
	// Cancel is polled by the translator at quantifier boundaries.
	Cancel func() bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		SymmetryBreaking: 20,
		IntEncoding:      circuit.TwosComplement,
		Bitwidth:         8,
		ComparisonDepth:  3,
	}
}

func (o *Options) validate() error {
	if o.ComparisonDepth < 1 {
		return fmt.Errorf("engine: comparison depth %d must be at least 1", o.ComparisonDepth)
	}
	if o.Bitwidth < 1 {
		return fmt.Errorf("engine: bitwidth %d must be at least 1", o.Bitwidth)
	}
	if o.SymmetryBreaking < 0 {
		return fmt.Errorf("engine: symmetry breaking %d must be non-negative", o.SymmetryBreaking)
	}
	if o.SkolemDepth < 0 {
		return fmt.Errorf("engine: skolem depth %d must be non-negative", o.SkolemDepth)
	}
	return nil
}

// backend returns the configured SAT solver for one solve.
func (o *Options) backend() (satlab.Solver, error) {
	var s satlab.Solver
	if o.Solver != nil {
		s = o.Solver()
	} else if o.LogTranslation {
		s = satlab.NewTraceProver()
	} else {
		s = satlab.NewGini()
	}
	if o.LogTranslation {
		if _, ok := s.(satlab.Prover); !ok {
			return nil, fmt.Errorf("engine: translation logging requires a proof-capable solver")
		}
	}
	if o.Timeout > 0 {
		if ts, ok := s.(interface{ SetTimeout(time.Duration) }); ok {
			ts.SetTimeout(o.Timeout)
		}
	}
	return s, nil
}
