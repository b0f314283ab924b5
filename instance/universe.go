// Package instance provides the finite universe of atoms, tuples and
// tuple sets over it, relation bounds, and concrete instances.
package instance

import "fmt"

// Universe is a finite ordered sequence of distinct atoms, indexed from
// zero.
type Universe struct {
	atoms   []any
	indexOf map[any]int
	factory *TupleFactory
}

// NewUniverse returns a universe over the given atoms. Atoms must be
// comparable and distinct.
func NewUniverse(atoms ...any) *Universe {
	u := &Universe{
		atoms:   append([]any(nil), atoms...),
		indexOf: make(map[any]int, len(atoms)),
	}
	for i, a := range atoms {
		if _, dup := u.indexOf[a]; dup {
			panic(fmt.Sprintf("instance: duplicate atom %v", a))
		}
		u.indexOf[a] = i
	}
	u.factory = &TupleFactory{universe: u}
	return u
}

// Size returns the number of atoms.
func (u *Universe) Size() int { return len(u.atoms) }

// Atom returns the atom at index i.
func (u *Universe) Atom(i int) any { return u.atoms[i] }

// Index returns the index of the given atom, panicking if the atom is
// not in the universe.
func (u *Universe) Index(atom any) int {
	i, ok := u.indexOf[atom]
	if !ok {
		panic(fmt.Sprintf("instance: atom %v not in universe", atom))
	}
	return i
}

// Contains reports whether atom is in the universe.
func (u *Universe) Contains(atom any) bool {
	_, ok := u.indexOf[atom]
	return ok
}

// Factory returns the tuple factory for this universe.
func (u *Universe) Factory() *TupleFactory { return u.factory }

func (u *Universe) String() string { return fmt.Sprintf("universe%v", u.atoms) }
