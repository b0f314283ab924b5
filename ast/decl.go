package ast

import (
	"fmt"
	"strings"
)

// Decl binds a variable to an expression with a multiplicity.
type Decl struct {
	variable *Variable
	mult     Multiplicity
	expr     Expression
}

// Declare binds v to expr with the given multiplicity.
func Declare(v *Variable, mult Multiplicity, expr Expression) *Decl {
	if v.Arity() != expr.Arity() {
		panic(fmt.Sprintf("ast: cannot bind %d-ary variable to %d-ary expression", v.Arity(), expr.Arity()))
	}
	if mult == NoMult {
		panic("ast: no is not a declaration multiplicity")
	}
	return &Decl{variable: v, mult: mult, expr: expr}
}

// OneOf binds v to expr with multiplicity one, the default for
// quantifiers, comprehensions and sums.
func OneOf(v *Variable, expr Expression) *Decl { return Declare(v, OneMult, expr) }

func (d *Decl) node()                {}
func (d *Decl) Variable() *Variable  { return d.variable }
func (d *Decl) Mult() Multiplicity   { return d.mult }
func (d *Decl) Expr() Expression     { return d.expr }
func (d *Decl) String() string       { return fmt.Sprintf("%v: %v %v", d.variable, d.mult, d.expr) }

// Decls is an ordered sequence of declarations.
type Decls struct {
	decls []*Decl
}

// NewDecls combines the given declarations in order.
func NewDecls(decls ...*Decl) *Decls {
	if len(decls) == 0 {
		panic("ast: empty declaration sequence")
	}
	return &Decls{decls: append([]*Decl(nil), decls...)}
}

// And returns a new sequence with more appended.
func (d *Decls) And(more ...*Decl) *Decls {
	return &Decls{decls: append(append([]*Decl(nil), d.decls...), more...)}
}

func (d *Decls) node()         {}
func (d *Decls) Len() int      { return len(d.decls) }
func (d *Decls) Decl(i int) *Decl { return d.decls[i] }

// All returns the declarations in order.
func (d *Decls) All() []*Decl { return d.decls }

func (d *Decls) arity() int {
	total := 0
	for _, decl := range d.decls {
		total += decl.variable.Arity()
	}
	return total
}

func (d *Decls) String() string {
	parts := make([]string, len(d.decls))
	for i, decl := range d.decls {
		parts[i] = decl.String()
	}
	return strings.Join(parts, ", ")
}
