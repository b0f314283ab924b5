package circuit

import (
	"fmt"
	"sort"

	"taipan/ints"
)

// Cell is a non-FALSE matrix entry at a linear index.
type Cell struct {
	Index int
	Value Value
}

// Matrix is an n-dimensional sparse matrix of circuit values. Unmapped
// cells implicitly hold FALSE. Algebraic operations never mutate their
// inputs.
type Matrix struct {
	dims    Dimensions
	factory *Factory
	cells   []Cell // ascending by index; values are never False
}

// Matrix returns an empty matrix of the given shape.
func (f *Factory) Matrix(dims Dimensions) *Matrix {
	return &Matrix{dims: dims, factory: f}
}

// ConstantMatrix returns a matrix with TRUE at the given indices.
func (f *Factory) ConstantMatrix(dims Dimensions, indices ints.IntSet) *Matrix {
	m := f.Matrix(dims)
	m.cells = make([]Cell, 0, indices.Len())
	indices.Each(func(i int) bool {
		m.cells = append(m.cells, Cell{Index: i, Value: True})
		return true
	})
	return m
}

// Dimensions returns the matrix's shape.
func (m *Matrix) Dimensions() Dimensions { return m.dims }

// Factory returns the owning factory.
func (m *Matrix) Factory() *Factory { return m.factory }

// Density returns the number of non-FALSE cells.
func (m *Matrix) Density() int { return len(m.cells) }

// Cells returns the non-FALSE cells in ascending index order. The
// returned slice must not be modified.
func (m *Matrix) Cells() []Cell { return m.cells }

func (m *Matrix) find(index int) (int, bool) {
	pos := sort.Search(len(m.cells), func(i int) bool { return m.cells[i].Index >= index })
	return pos, pos < len(m.cells) && m.cells[pos].Index == index
}

// Get returns the value at the given linear index.
func (m *Matrix) Get(index int) Value {
	if index < 0 || index >= m.dims.Capacity() {
		panic("circuit: matrix index out of range")
	}
	if pos, ok := m.find(index); ok {
		return m.cells[pos].Value
	}
	return False
}

// Set stores v at the given linear index. Storing FALSE clears the
// cell. Set is for matrix construction; the algebraic operations below
// allocate fresh matrices instead.
func (m *Matrix) Set(index int, v Value) {
	if index < 0 || index >= m.dims.Capacity() {
		panic("circuit: matrix index out of range")
	}
	pos, ok := m.find(index)
	if v == False {
		if ok {
			m.cells = append(m.cells[:pos], m.cells[pos+1:]...)
		}
		return
	}
	if ok {
		m.cells[pos].Value = v
		return
	}
	m.cells = append(m.cells, Cell{})
	copy(m.cells[pos+1:], m.cells[pos:])
	m.cells[pos] = Cell{Index: index, Value: v}
}

// Clone returns an independent copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{dims: m.dims, factory: m.factory, cells: append([]Cell(nil), m.cells...)}
}

func (m *Matrix) checkShape(other *Matrix) {
	if m.factory != other.factory {
		panic("circuit: matrices from different factories")
	}
	if !m.dims.Equal(other.dims) {
		panic(fmt.Sprintf("circuit: dimension mismatch %v vs %v", m.dims, other.dims))
	}
}

func fromMap(f *Factory, dims Dimensions, vals map[int]Value) *Matrix {
	indices := make([]int, 0, len(vals))
	for i, v := range vals {
		if v != False {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	m := f.Matrix(dims)
	m.cells = make([]Cell, len(indices))
	for i, idx := range indices {
		m.cells[i] = Cell{Index: idx, Value: vals[idx]}
	}
	return m
}

// Or returns the cellwise disjunction of m and other.
func (m *Matrix) Or(other *Matrix) *Matrix {
	m.checkShape(other)
	out := m.factory.Matrix(m.dims)
	out.cells = make([]Cell, 0, len(m.cells)+len(other.cells))
	i, j := 0, 0
	for i < len(m.cells) || j < len(other.cells) {
		switch {
		case j >= len(other.cells) || (i < len(m.cells) && m.cells[i].Index < other.cells[j].Index):
			out.cells = append(out.cells, m.cells[i])
			i++
		case i >= len(m.cells) || other.cells[j].Index < m.cells[i].Index:
			out.cells = append(out.cells, other.cells[j])
			j++
		default:
			v := m.factory.Or(m.cells[i].Value, other.cells[j].Value)
			if v != False {
				out.cells = append(out.cells, Cell{Index: m.cells[i].Index, Value: v})
			}
			i++
			j++
		}
	}
	return out
}

// And returns the cellwise conjunction of m and other.
func (m *Matrix) And(other *Matrix) *Matrix {
	m.checkShape(other)
	out := m.factory.Matrix(m.dims)
	i, j := 0, 0
	for i < len(m.cells) && j < len(other.cells) {
		switch {
		case m.cells[i].Index < other.cells[j].Index:
			i++
		case other.cells[j].Index < m.cells[i].Index:
			j++
		default:
			v := m.factory.And(m.cells[i].Value, other.cells[j].Value)
			if v != False {
				out.cells = append(out.cells, Cell{Index: m.cells[i].Index, Value: v})
			}
			i++
			j++
		}
	}
	return out
}

// Difference returns the cellwise conjunction of m with other's
// negation.
func (m *Matrix) Difference(other *Matrix) *Matrix {
	m.checkShape(other)
	out := m.factory.Matrix(m.dims)
	for _, c := range m.cells {
		v := m.factory.And(c.Value, m.factory.Not(other.Get(c.Index)))
		if v != False {
			out.cells = append(out.cells, Cell{Index: c.Index, Value: v})
		}
	}
	return out
}

// Override returns other overriding m: wherever other has any non-FALSE
// cell in a first-dimension row, that whole row of m is suppressed.
func (m *Matrix) Override(other *Matrix) *Matrix {
	m.checkShape(other)
	if len(other.cells) == 0 {
		return m.Clone()
	}
	rowSize := m.dims.Capacity() / m.dims.Dim(0)
	rowFlags := make(map[int]Value)
	for _, c := range other.cells {
		row := c.Index / rowSize
		if flag, ok := rowFlags[row]; ok {
			rowFlags[row] = m.factory.Or(flag, c.Value)
		} else {
			rowFlags[row] = c.Value
		}
	}
	vals := make(map[int]Value, len(m.cells)+len(other.cells))
	for _, c := range other.cells {
		vals[c.Index] = c.Value
	}
	for _, c := range m.cells {
		v := c.Value
		if flag, ok := rowFlags[c.Index/rowSize]; ok {
			v = m.factory.And(v, m.factory.Not(flag))
		}
		if prev, ok := vals[c.Index]; ok {
			vals[c.Index] = m.factory.Or(prev, v)
		} else {
			vals[c.Index] = v
		}
	}
	return fromMap(m.factory, m.dims, vals)
}

// Dot returns the dot product of m and other, contracting m's last
// dimension with other's first.
func (m *Matrix) Dot(other *Matrix) *Matrix {
	if m.factory != other.factory {
		panic("circuit: matrices from different factories")
	}
	dims := m.dims.Dot(other.dims)
	c := other.dims.Dim(0)
	b := other.dims.Capacity() / c
	acc := make(map[int]*Accumulator)
	for _, lc := range m.cells {
		row, k := lc.Index/c, lc.Index%c
		// other's cells with first coordinate k occupy [k*b, (k+1)*b)
		lo := sort.Search(len(other.cells), func(i int) bool { return other.cells[i].Index >= k*b })
		for j := lo; j < len(other.cells) && other.cells[j].Index < (k+1)*b; j++ {
			v := m.factory.And(lc.Value, other.cells[j].Value)
			if v == False {
				continue
			}
			idx := row*b + other.cells[j].Index - k*b
			a, ok := acc[idx]
			if !ok {
				a = NewAccumulator(OpOr)
				acc[idx] = a
			}
			a.Add(v)
		}
	}
	// accumulate in ascending index order so that gate creation, and
	// with it labeling, is deterministic
	indices := make([]int, 0, len(acc))
	for idx := range acc {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	out := m.factory.Matrix(dims)
	out.cells = make([]Cell, 0, len(indices))
	for _, idx := range indices {
		if v := m.factory.Accumulate(acc[idx]); v != False {
			out.cells = append(out.cells, Cell{Index: idx, Value: v})
		}
	}
	return out
}

// Cross returns the cross product of m and other.
func (m *Matrix) Cross(other *Matrix) *Matrix {
	if m.factory != other.factory {
		panic("circuit: matrices from different factories")
	}
	out := m.factory.Matrix(m.dims.Cross(other.dims))
	b := other.dims.Capacity()
	for _, lc := range m.cells {
		for _, rc := range other.cells {
			v := m.factory.And(lc.Value, rc.Value)
			if v != False {
				out.cells = append(out.cells, Cell{Index: lc.Index*b + rc.Index, Value: v})
			}
		}
	}
	return out
}

// Transpose returns the transpose of a two-dimensional matrix.
func (m *Matrix) Transpose() *Matrix {
	dims := m.dims.Transpose()
	rows, cols := m.dims.Dim(0), m.dims.Dim(1)
	vals := make(map[int]Value, len(m.cells))
	for _, c := range m.cells {
		i, j := c.Index/cols, c.Index%cols
		vals[j*rows+i] = c.Value
	}
	return fromMap(m.factory, dims, vals)
}

// Closure returns the transitive closure of a square binary matrix,
// computed by iterated join doubling.
func (m *Matrix) Closure() *Matrix {
	if m.dims.Arity() != 2 || !m.dims.IsSquare() {
		panic("circuit: closure requires a square binary matrix")
	}
	if len(m.cells) == 0 {
		return m.Clone()
	}
	ret := m
	for i := 1; i < m.dims.Dim(0); i <<= 1 {
		ret = ret.Or(ret.Dot(ret))
	}
	if ret == m {
		return m.Clone()
	}
	return ret
}

// ReflexiveClosure returns the closure of m joined with the identity.
func (m *Matrix) ReflexiveClosure() *Matrix {
	n := m.dims.Dim(0)
	iden := m.factory.Matrix(m.dims)
	iden.cells = make([]Cell, n)
	for i := 0; i < n; i++ {
		iden.cells[i] = Cell{Index: i*n + i, Value: True}
	}
	return m.Closure().Or(iden)
}

// Choice returns the cellwise conditional: m where cond holds, other
// where it does not.
func (m *Matrix) Choice(cond Value, other *Matrix) *Matrix {
	m.checkShape(other)
	if cond == True {
		return m.Clone()
	}
	if cond == False {
		return other.Clone()
	}
	vals := make(map[int]Value, len(m.cells)+len(other.cells))
	for _, c := range m.cells {
		vals[c.Index] = m.factory.ITE(cond, c.Value, other.Get(c.Index))
	}
	for _, c := range other.cells {
		if _, done := vals[c.Index]; !done {
			vals[c.Index] = m.factory.ITE(cond, False, c.Value)
		}
	}
	return fromMap(m.factory, m.dims, vals)
}

// Some returns the disjunction of all cells.
func (m *Matrix) Some() Value {
	acc := NewAccumulator(OpOr)
	for _, c := range m.cells {
		if acc.Add(c.Value) {
			break
		}
	}
	return m.factory.Accumulate(acc)
}

// None returns the negation of Some.
func (m *Matrix) None() Value { return m.factory.Not(m.Some()) }

// One returns a value meaning exactly one cell is true.
func (m *Matrix) One() Value {
	if len(m.cells) == 0 {
		return False
	}
	acc := NewAccumulator(OpOr)
	for i, ci := range m.cells {
		inner := NewAccumulator(OpAnd)
		inner.Add(ci.Value)
		for j, cj := range m.cells {
			if j != i {
				inner.Add(m.factory.Not(cj.Value))
			}
		}
		if acc.Add(m.factory.Accumulate(inner)) {
			break
		}
	}
	return m.factory.Accumulate(acc)
}

// Lone returns a value meaning at most one cell is true.
func (m *Matrix) Lone() Value {
	return m.factory.Or(m.None(), m.One())
}

// Subset returns a value meaning every cell of m implies the matching
// cell of other.
func (m *Matrix) Subset(other *Matrix) Value {
	m.checkShape(other)
	acc := NewAccumulator(OpAnd)
	for _, c := range m.cells {
		if acc.Add(m.factory.Implies(c.Value, other.Get(c.Index))) {
			break
		}
	}
	return m.factory.Accumulate(acc)
}

// Eq returns a value meaning m and other hold the same cells.
func (m *Matrix) Eq(other *Matrix) Value {
	return m.factory.And(m.Subset(other), other.Subset(m))
}

func (m *Matrix) String() string {
	return fmt.Sprintf("matrix%v%v", m.dims, m.cells)
}
