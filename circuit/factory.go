package circuit

import "fmt"

// Factory builds variables, AND/OR/ITE gates and negations with
// maximal local simplification and hash-consing. Values from different
// factories must never be mixed.
type Factory struct {
	cmpDepth int
	label    int
	vars     []*Variable
	// gate caches indexed by OpAnd, OpOr, OpITE.
	gates [3]map[uint32][]Formula

	// IntEncoding and Bitwidth configure the small-integer circuits
	// built by Cardinality and IntConst.
	IntEncoding Encoding
	Bitwidth    int
}

// NewFactory returns a factory holding numVars variables labeled
// 1..numVars. cmpDepth bounds the flattening depth used when comparing
// gates for structural equality; it must be at least 1.
func NewFactory(numVars, cmpDepth int) *Factory {
	if numVars < 0 {
		panic("circuit: negative variable count")
	}
	if cmpDepth < 1 {
		panic("circuit: comparison depth must be at least 1")
	}
	f := &Factory{
		cmpDepth:    cmpDepth,
		label:       numVars + 1,
		vars:        make([]*Variable, numVars),
		IntEncoding: TwosComplement,
		Bitwidth:    8,
	}
	for i := range f.vars {
		f.vars[i] = newVariable(i + 1)
	}
	for i := range f.gates {
		f.gates[i] = make(map[uint32][]Formula)
	}
	return f
}

// NumVars returns the number of variables in the factory.
func (f *Factory) NumVars() int { return len(f.vars) }

// MaxLabel returns the largest label assigned so far.
func (f *Factory) MaxLabel() int { return f.label - 1 }

// Variable returns the variable with the given label in 1..NumVars.
func (f *Factory) Variable(label int) Formula {
	if label < 1 || label > len(f.vars) {
		panic(fmt.Sprintf("circuit: variable label %d out of range", label))
	}
	return f.vars[label-1]
}

// Not returns the negation of v.
func (f *Factory) Not(v Value) Value {
	if c, ok := v.(*Constant); ok {
		if c.value {
			return False
		}
		return True
	}
	return v.(Formula).Negation()
}

// And returns a value meaning v0 && v1.
func (f *Factory) And(v0, v1 Value) Value { return f.assemble(OpAnd, v0, v1) }

// Or returns a value meaning v0 || v1.
func (f *Factory) Or(v0, v1 Value) Value { return f.assemble(OpOr, v0, v1) }

// Implies returns a value meaning v0 => v1.
func (f *Factory) Implies(v0, v1 Value) Value { return f.Or(f.Not(v0), v1) }

// Iff returns a value meaning v0 <=> v1.
func (f *Factory) Iff(v0, v1 Value) Value {
	return f.And(f.Implies(v0, v1), f.Implies(v1, v0))
}

// ITE returns a value meaning if cond then t else e.
func (f *Factory) ITE(cond, t, e Value) Value {
	switch {
	case cond == True || t == e:
		return t
	case cond == False:
		return e
	case t == True || cond == t:
		return f.Or(cond, e)
	case t == False || f.Not(cond) == t:
		return f.And(f.Not(cond), e)
	case e == True || f.Not(cond) == e:
		return f.Or(f.Not(cond), t)
	case e == False || cond == e:
		return f.And(cond, t)
	}
	fc, ft, fe := cond.(Formula), t.(Formula), e.(Formula)
	hash := fc.hashCode() + ft.hashCode() + fe.hashCode()
	for _, g := range f.gates[OpITE][hash] {
		if g.Input(0) == fc && g.Input(1) == ft && g.Input(2) == fe {
			return g
		}
	}
	g := newITEGate(f.nextLabel(), hash, fc, ft, fe)
	f.gates[OpITE][hash] = append(f.gates[OpITE][hash], g)
	return g
}

func (f *Factory) nextLabel() int {
	l := f.label
	f.label++
	return l
}

// assemble composes v0 op v1 after constant elimination, dispatching on
// the operator pair for simplification.
func (f *Factory) assemble(op Op, v0, v1 Value) Value {
	l, h := v0, v1
	if l.Op() > h.Op() {
		l, h = h, l
	}
	if h.Op() == OpConst {
		if h == op.identity() {
			return l
		}
		return h
	}
	return f.assembleFormulas(op, l.(Formula), h.(Formula))
}

// assembleFormulas requires f0.Op() <= f1.Op() and neither a constant.
func (f *Factory) assembleFormulas(op Op, f0, f1 Formula) Value {
	a, b := f0.Op(), f1.Op()
	switch {
	case (a == OpAnd || a == OpOr) && a == b:
		return f.joj(op, f0, f1)
	case a == OpAnd && b == OpOr:
		return f.aoo(op, f0, f1)
	case (a == OpAnd || a == OpOr) && b == OpITE:
		return f.joi(op, f0, f1)
	case (a == OpAnd || a == OpOr) && b == OpNot:
		return f.jon(op, f0, f1)
	case a == OpAnd || a == OpOr:
		return f.jox(op, f0, f1)
	case a == OpITE && b == OpITE:
		return f.ioi(op, f0, f1)
	case a == OpITE && b == OpNot:
		return f.ion(op, f0, f1)
	case a == OpITE:
		return f.iox(op, f0, f1)
	case a == OpNot && b == OpNot:
		return f.non(op, f0, f1)
	case a == OpNot:
		return f.nov(op, f0, f1)
	default:
		return f.vov(op, f0, f1)
	}
}

// joj simplifies (AND op AND) and (OR op OR) by absorption between
// same-operator chains:
// (a & b) & (a & b & c) = (a & b & c), (a & b) | (a & b & c) = (a & b).
func (f *Factory) joj(op Op, f0, f1 Formula) Value {
	if f0 == f1 {
		return f0
	}
	fop := f0.Op()
	s0 := make(map[Formula]bool)
	s1 := make(map[Formula]bool)
	flatten(f0, fop, s0, f.cmpDepth)
	flatten(f1, fop, s1, f.cmpDepth)
	if len(s0) < len(s1) && containsAll(s1, s0) {
		if op == fop {
			return f1
		}
		return f0
	}
	if len(s0) >= len(s1) && containsAll(s0, s1) {
		if op == fop {
			return f0
		}
		return f1
	}
	if f0.Label() < f1.Label() {
		return f.jox(op, f1, f0)
	}
	return f.jox(op, f0, f1)
}

// aoo simplifies (AND op OR) by absorption across the two chains:
// (a & b) & (a | b | c) = (a & b), (a & b) | (a | b | c) = (a | b | c).
func (f *Factory) aoo(op Op, f0, f1 Formula) Value {
	s0 := make(map[Formula]bool)
	s1 := make(map[Formula]bool)
	flatten(f0, OpAnd, s0, f.cmpDepth)
	flatten(f1, OpOr, s1, f.cmpDepth)
	for e := range s1 {
		if s0[e] {
			if op == OpAnd {
				return f0
			}
			return f1
		}
	}
	if f0.Label() < f1.Label() {
		return f.jox(op, f1, f0)
	}
	return f.jox(op, f0, f1)
}

// joi dispatches (AND/OR op ITE) to the later-created operand's rule.
func (f *Factory) joi(op Op, f0, f1 Formula) Value {
	if f0.Label() < f1.Label() {
		return f.iox(op, f1, f0)
	}
	return f.jox(op, f0, f1)
}

// jon simplifies (AND/OR op NOT): x & !x = F, x | !x = T.
func (f *Factory) jon(op Op, f0, f1 Formula) Value {
	if f0.Label() == -f1.Label() {
		return op.shortCircuit()
	}
	if f0.Label() < abs(f1.Label()) {
		return f.nox(op, f1, f0)
	}
	return f.jox(op, f0, f1)
}

// jox simplifies (AND/OR op X) where f0 is the junction:
// (a & b) & a = a & b, (a & b) & !a = F, (a & b) | a = a.
func (f *Factory) jox(op Op, f0, f1 Formula) Value {
	if contains(f0, f0.Op(), f1, f.cmpDepth) {
		if op == f0.Op() {
			return f0
		}
		return f1
	}
	if op == f0.Op() && contains(f0, op, f1.Negation(), f.cmpDepth) {
		return op.shortCircuit()
	}
	return f.cache(op, f0, f1)
}

// ioi simplifies (ITE op ITE):
// (a ? b : c) op (!a ? b : c) = b op c.
func (f *Factory) ioi(op Op, f0, f1 Formula) Value {
	if f0 == f1 {
		return f0
	}
	if f0.Input(0).Label() == -f1.Input(0).Label() &&
		f0.Input(1) == f1.Input(1) && f0.Input(2) == f1.Input(2) {
		return f.assemble(op, f0.Input(1), f0.Input(2))
	}
	if f0.Label() < f1.Label() {
		return f.iox(op, f1, f0)
	}
	return f.iox(op, f0, f1)
}

// ion simplifies (ITE op NOT): g & !g = F, g | !g = T.
func (f *Factory) ion(op Op, f0, f1 Formula) Value {
	if f0.Label() == -f1.Label() {
		return op.shortCircuit()
	}
	if f0.Label() < abs(f1.Label()) {
		return f.nox(op, f1, f0)
	}
	return f.iox(op, f0, f1)
}

// iox simplifies (ITE op X) where f0 is the ITE gate:
// (a ? b : c) & a = a & b, (a ? b : c) | a = a | c,
// (a ? b : c) & !a = !a & c, (a ? b : c) | !a = !a | b.
func (f *Factory) iox(op Op, f0, f1 Formula) Value {
	if f0.Input(0) == f1 {
		if op == OpAnd {
			return f.assemble(op, f0.Input(1), f1)
		}
		return f.assemble(op, f0.Input(2), f1)
	}
	if f0.Input(0).Label() == -f1.Label() {
		if op == OpAnd {
			return f.assemble(op, f0.Input(2), f1)
		}
		return f.assemble(op, f0.Input(1), f1)
	}
	return f.cache(op, f0, f1)
}

// non simplifies (NOT op NOT): !a & !a = !a.
func (f *Factory) non(op Op, f0, f1 Formula) Value {
	if f0 == f1 {
		return f0
	}
	if f0.Label() < f1.Label() {
		return f.nox(op, f0, f1)
	}
	return f.nox(op, f1, f0)
}

// nov simplifies (NOT op VAR): !a & a = F, !a | a = T.
func (f *Factory) nov(op Op, f0, f1 Formula) Value {
	if f0.Label() == -f1.Label() {
		return op.shortCircuit()
	}
	return f.nox(op, f0, f1)
}

// nox simplifies (NOT op X) where f0 is the negation:
// !(a | b) & a = F, !(a | b) & !a = !(a | b),
// !(a & b) | a = T, !(a & b) | !a = !(a & b).
func (f *Factory) nox(op Op, f0, f1 Formula) Value {
	if contains(f0.Input(0), op.complement(), f1, f.cmpDepth) {
		return op.shortCircuit()
	}
	if contains(f0.Input(0), op.complement(), f1.Negation(), f.cmpDepth) {
		return f0
	}
	return f.cache(op, f0, f1)
}

// vov composes two variables: a & a = a.
func (f *Factory) vov(op Op, f0, f1 Formula) Value {
	if f0 == f1 {
		return f0
	}
	return f.cache(op, f0, f1)
}

// cache returns the hash-consed gate f0 op f1, requiring that the
// composition cannot be further reduced. Gates with the same operator
// and the same flattened operand set share identity.
func (f *Factory) cache(op Op, f0, f1 Formula) Formula {
	l, h := f0, f1
	if h.Label() < l.Label() {
		l, h = h, l
	}
	hash := l.hashCode() + h.hashCode()
	bucket := f.gates[op][hash]
	if l.Op() == op || h.Op() == op {
		s0 := make(map[Formula]bool)
		flatten(l, op, s0, f.cmpDepth)
		flatten(h, op, s0, f.cmpDepth)
		for _, g := range bucket {
			if g.NumInputs() == 2 && g.Input(0) == l && g.Input(1) == h {
				return g
			}
			s1 := make(map[Formula]bool)
			flatten(g, op, s1, f.cmpDepth)
			if len(s0) == len(s1) && containsAll(s0, s1) {
				return g
			}
		}
	} else {
		for _, g := range bucket {
			if g.NumInputs() == 2 && g.Input(0) == l && g.Input(1) == h {
				return g
			}
		}
	}
	g := newBinaryGate(op, f.nextLabel(), hash, l, h)
	f.gates[op][hash] = append(bucket, g)
	return g
}

func containsAll(set, subset map[Formula]bool) bool {
	for e := range subset {
		if !set[e] {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
