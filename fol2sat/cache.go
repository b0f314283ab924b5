package fol2sat

import (
	"taipan/ast"
	"taipan/circuit"
	"taipan/ints"
)

// translationCache caches the translations of shared nodes, keyed by
// the values bound to the node's free variables. With tracking enabled
// it additionally maintains the translation log, per-node variable
// usage, and the caches of formulas that reduced to constants.
type translationCache struct {
	annotated *Annotated
	entries   map[ast.Node][]cacheEntry

	tracking      bool
	log           *Log
	varUsage      map[ast.Node]ints.Mutable
	trueFormulas  map[ast.Formula]bool
	falseFormulas map[ast.Formula]bool
}

type cacheEntry struct {
	bindings []*circuit.Matrix
	value    any
}

func newCache(a *Annotated, track bool) *translationCache {
	c := &translationCache{
		annotated: a,
		entries:   make(map[ast.Node][]cacheEntry),
		tracking:  track,
	}
	if track {
		root, _ := a.Root().(ast.Formula)
		c.log = &Log{formula: root}
		c.varUsage = make(map[ast.Node]ints.Mutable)
		c.trueFormulas = make(map[ast.Formula]bool)
		c.falseFormulas = make(map[ast.Formula]bool)
	}
	return c
}

// bindingsOf captures the current values of the node's free variables.
func (c *translationCache) bindingsOf(n ast.Node, env *Environment) []*circuit.Matrix {
	fv := c.annotated.FreeVariables(n)
	if len(fv) == 0 {
		return nil
	}
	out := make([]*circuit.Matrix, len(fv))
	for i, v := range fv {
		out[i] = env.Lookup(v)
	}
	return out
}

func sameBindings(a, b []*circuit.Matrix) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lookup returns the cached translation of n under env, if any.
func (c *translationCache) lookup(n ast.Node, env *Environment) (any, bool) {
	entries, ok := c.entries[n]
	if !ok {
		return nil, false
	}
	bindings := c.bindingsOf(n, env)
	for _, e := range entries {
		if sameBindings(e.bindings, bindings) {
			return e.value, true
		}
	}
	return nil, false
}

// record tracks the translation of n and caches it if n is shared. It
// returns the translation unchanged.
func (c *translationCache) record(n ast.Node, value any, env *Environment) any {
	if c.tracking {
		c.track(n, value, env)
	}
	if c.annotated.Shared(n) {
		c.entries[n] = append(c.entries[n], cacheEntry{
			bindings: c.bindingsOf(n, env),
			value:    value,
		})
	}
	return value
}

func (c *translationCache) usage(n ast.Node) ints.Mutable {
	u, ok := c.varUsage[n]
	if !ok {
		u = ints.NewSparseSet()
		c.varUsage[n] = u
	}
	return u
}

func (c *translationCache) track(n ast.Node, value any, env *Environment) {
	switch v := value.(type) {
	case circuit.Value:
		f, isFormula := n.(ast.Formula)
		if v == circuit.True {
			if isFormula {
				c.trueFormulas[f] = true
			}
			return
		}
		if v == circuit.False {
			if isFormula {
				c.falseFormulas[f] = true
			}
			return
		}
		c.log.records = append(c.log.records, Record{Node: n, Literal: v.Label(), Env: env.Snapshot()})
		c.usage(n).Add(absInt(v.Label()))
	case *circuit.Matrix:
		snap := env.Snapshot()
		u := c.usage(n)
		for _, cell := range v.Cells() {
			if _, constant := cell.Value.(*circuit.Constant); constant {
				continue
			}
			c.log.records = append(c.log.records, Record{Node: n, Literal: cell.Value.Label(), Env: snap})
			u.Add(absInt(cell.Value.Label()))
		}
	case *circuit.Int:
		u := c.usage(n)
		for _, bit := range v.Bits() {
			if _, constant := bit.(*circuit.Constant); !constant {
				u.Add(absInt(bit.Label()))
			}
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
