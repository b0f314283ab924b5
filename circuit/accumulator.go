package circuit

import "sort"

// Accumulator gathers inputs to an n-ary AND/OR gate, simplifying on
// the fly: duplicates are dropped, identity constants are ignored, and
// a complementary pair or a dominating constant short-circuits the
// whole gate. Inputs are kept sorted by ascending label.
type Accumulator struct {
	op     Op
	inputs []Formula
	short  bool
}

// NewAccumulator returns an empty accumulator for the given operator,
// which must be OpAnd or OpOr.
func NewAccumulator(op Op) *Accumulator {
	if op != OpAnd && op != OpOr {
		panic("circuit: accumulator operator must be AND or OR")
	}
	return &Accumulator{op: op}
}

// Op returns the accumulator's operator.
func (a *Accumulator) Op() Op { return a.op }

// Add incorporates v and reports whether the accumulator has
// short-circuited to the dominating constant.
func (a *Accumulator) Add(v Value) bool {
	if a.short {
		return true
	}
	if c, ok := v.(*Constant); ok {
		if c == a.op.shortCircuit() {
			a.short = true
			a.inputs = nil
		}
		return a.short
	}
	g := v.(Formula)
	pos := sort.Search(len(a.inputs), func(i int) bool {
		return a.inputs[i].Label() >= g.Label()
	})
	if pos < len(a.inputs) && a.inputs[pos] == g {
		return false
	}
	// a complementary pair short-circuits
	npos := sort.Search(len(a.inputs), func(i int) bool {
		return a.inputs[i].Label() >= -g.Label()
	})
	if npos < len(a.inputs) && a.inputs[npos] == g.Negation() {
		a.short = true
		a.inputs = nil
		return true
	}
	a.inputs = append(a.inputs, nil)
	copy(a.inputs[pos+1:], a.inputs[pos:])
	a.inputs[pos] = g
	return false
}

// IsShortCircuited reports whether the accumulated gate is a constant.
func (a *Accumulator) IsShortCircuited() bool { return a.short }

// Len returns the number of accumulated inputs.
func (a *Accumulator) Len() int { return len(a.inputs) }

// Accumulate returns a value equivalent to the accumulated gate,
// hash-consing an n-ary gate when more than two inputs remain.
func (f *Factory) Accumulate(a *Accumulator) Value {
	if a.short {
		return a.op.shortCircuit()
	}
	switch len(a.inputs) {
	case 0:
		return a.op.identity()
	case 1:
		return a.inputs[0]
	case 2:
		return f.assemble(a.op, a.inputs[0], a.inputs[1])
	}
	var hash uint32
	for _, in := range a.inputs {
		hash += in.hashCode()
	}
	for _, g := range f.gates[a.op][hash] {
		if g.NumInputs() == len(a.inputs) && sameInputs(g, a.inputs) {
			return g
		}
	}
	g := newNaryGate(a.op, f.nextLabel(), hash, append([]Formula(nil), a.inputs...))
	f.gates[a.op][hash] = append(f.gates[a.op][hash], g)
	return g
}

func sameInputs(g Formula, inputs []Formula) bool {
	for i, in := range inputs {
		if g.Input(i) != in {
			return false
		}
	}
	return true
}
