package fol2sat

import (
	"taipan/ast"
)

// Record ties an AST node to one literal of its translation, together
// with the ground values of the quantified variables in scope at the
// time the literal was produced.
type Record struct {
	Node    ast.Node
	Literal int
	Env     map[*ast.Variable]int
}

// Log is the append-only translation log: records appear in visitation
// order and replays are deterministic.
type Log struct {
	formula ast.Formula
	records []Record
}

// Formula returns the translated root formula.
func (l *Log) Formula() ast.Formula { return l.formula }

// Len returns the number of records.
func (l *Log) Len() int { return len(l.records) }

// Records returns all records in order. The slice must not be
// modified.
func (l *Log) Records() []Record { return l.records }

// Replay returns the records accepted by the filter, in order.
func (l *Log) Replay(filter func(Record) bool) []Record {
	var out []Record
	for _, r := range l.records {
		if filter(r) {
			out = append(out, r)
		}
	}
	return out
}
