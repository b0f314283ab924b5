package satlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProverSat(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(2)
	p.AddClause(1, 2)
	p.AddClause(-1)

	assert.Equal(t, Sat, p.Solve())
	assert.False(t, p.ValueOf(1))
	assert.True(t, p.ValueOf(2))
}

func TestProverUnsatChain(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(2)
	p.AddClause(1)
	p.AddClause(-1, 2)
	p.AddClause(-2)

	assert.Equal(t, Unsat, p.Solve())

	trace := p.Proof()
	conflict := trace.Conflict()
	assert.True(t, conflict.Learned())
	assert.Empty(t, conflict.Literals())
	assert.NotEmpty(t, conflict.Antecedents())

	core := trace.Core()
	indices := make([]int, len(core))
	for i, c := range core {
		indices[i] = c.Index()
	}
	assert.Equal(t, []int{0, 1, 2}, indices, "the whole chain is in the core")
}

func TestProverUnsatWithDecisions(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(3)
	// UNSAT over x1, x2; x3 is free
	p.AddClause(1, 2)
	p.AddClause(1, -2)
	p.AddClause(-1, 2)
	p.AddClause(-1, -2)
	p.AddClause(3, 1)

	assert.Equal(t, Unsat, p.Solve())
	trace := p.Proof()

	coreIdx := map[int]bool{}
	for _, c := range trace.Core() {
		coreIdx[c.Index()] = true
	}
	assert.False(t, coreIdx[4], "clause over the free variable is not in the core")
	assert.Len(t, coreIdx, 4)

	// every learned clause resolves existing clauses
	for _, c := range trace.Reachable() {
		if c.Learned() {
			assert.NotEmpty(t, c.Antecedents())
			for _, a := range c.Antecedents() {
				assert.NotNil(t, trace.Clause(a))
			}
		}
	}
}

func TestProverEmptyClause(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(1)
	p.AddClause(1)
	p.AddClause()

	assert.Equal(t, Unsat, p.Solve())
	assert.Equal(t, []int{1}, p.Proof().Conflict().Antecedents())
}

// scriptedStrategy returns each scripted reduction once.
type scriptedStrategy struct {
	steps [][]int
}

func (s *scriptedStrategy) NextReduction(t *Trace) []int {
	if len(s.steps) == 0 {
		return nil
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next
}

func TestReduceKeepsRefutation(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(2)
	p.AddClause(1)
	p.AddClause(-1)
	p.AddClause(2)

	assert.Equal(t, Unsat, p.Solve())

	// dropping clause 2 preserves the conflict; dropping clause 0 does not
	p.Reduce(&scriptedStrategy{steps: [][]int{{2}, {0}}})
	trace := p.Proof()
	assert.NotNil(t, trace.Clause(0), "failed reduction rolled back")
	assert.NotNil(t, trace.Clause(1))
	assert.Nil(t, trace.Clause(2), "successful reduction kept")
}

func TestUnitClauseLookup(t *testing.T) {
	p := NewTraceProver()
	p.AddVariables(2)
	p.AddClause(1)
	p.AddClause(-1, 2)
	p.AddClause(-2)
	assert.Equal(t, Unsat, p.Solve())

	trace := p.Proof()
	assert.Equal(t, 0, trace.UnitClause(1).Index())
	assert.Equal(t, 2, trace.UnitClause(-2).Index())
	assert.Nil(t, trace.UnitClause(2))
}

func TestBackends(t *testing.T) {
	for _, s := range []Solver{NewGini(), NewGopher(), NewTraceProver()} {
		s.AddVariables(2)
		s.AddClause(1, 2)
		s.AddClause(-1)
		assert.Equal(t, Sat, s.Solve())
		assert.True(t, s.ValueOf(2))

		s.AddClause(-2)
		assert.Equal(t, Unsat, s.Solve())
	}
}
