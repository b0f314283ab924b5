package satlab

import (
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"
)

// Gini adapts the gini solver. It is the default backend when no proof
// is needed.
type Gini struct {
	solver  *gini.Gini
	vars    int
	clauses int
	timeout time.Duration
}

// NewGini returns a fresh gini-backed solver.
func NewGini() *Gini {
	return &Gini{solver: gini.New()}
}

// SetTimeout makes subsequent Solve calls give up after d, returning
// Unknown.
func (s *Gini) SetTimeout(d time.Duration) { s.timeout = d }

func (s *Gini) AddVariables(n int) { s.vars += n }

func (s *Gini) NumVariables() int { return s.vars }

func (s *Gini) AddClause(lits ...int) {
	for _, v := range lits {
		if v < 0 {
			s.solver.Add(z.Var(-v).Neg())
		} else if v > 0 {
			s.solver.Add(z.Var(v).Pos())
		} else {
			panic("satlab: propositional variable cannot be zero")
		}
	}
	s.solver.Add(0)
	s.clauses++
}

func (s *Gini) NumClauses() int { return s.clauses }

func (s *Gini) Solve() Status {
	var res int
	if s.timeout > 0 {
		res = s.solver.GoSolve().Try(s.timeout)
	} else {
		res = s.solver.Solve()
	}
	switch res {
	case 1:
		return Sat
	case -1:
		return Unsat
	default:
		return Unknown
	}
}

func (s *Gini) ValueOf(v int) bool {
	return s.solver.Value(z.Var(v).Pos())
}
