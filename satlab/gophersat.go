package satlab

import "github.com/crillab/gophersat/solver"

// Gopher adapts the gophersat solver.
type Gopher struct {
	vars    int
	clauses [][]int
	model   []bool
}

// NewGopher returns a fresh gophersat-backed solver.
func NewGopher() *Gopher {
	return &Gopher{}
}

func (s *Gopher) AddVariables(n int) { s.vars += n }

func (s *Gopher) NumVariables() int { return s.vars }

func (s *Gopher) AddClause(lits ...int) {
	for _, v := range lits {
		if v == 0 {
			panic("satlab: propositional variable cannot be zero")
		}
	}
	s.clauses = append(s.clauses, append([]int(nil), lits...))
}

func (s *Gopher) NumClauses() int { return len(s.clauses) }

func (s *Gopher) Solve() Status {
	pb := solver.ParseSliceNb(s.clauses, s.vars)
	sv := solver.New(pb)
	switch sv.Solve() {
	case solver.Sat:
		s.model = sv.Model()
		return Sat
	case solver.Unsat:
		return Unsat
	default:
		return Unknown
	}
}

func (s *Gopher) ValueOf(v int) bool {
	return s.model[v-1]
}
