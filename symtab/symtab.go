// Copyright (C) 2026 Arbor Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package symtab is the append-only symbol interner the parser and
// diagnostics packages share: every bound/free variable name and PARAM
// slot is reduced to a small graph.Symbol once here, so the reducer
// never compares strings (§5: "the reducer only reads from [the symbol
// interner]; printing, naming").
package symtab

import (
	"github.com/dchest/siphash"

	"github.com/arborlang/redex/graph"
)

var internKey0, internKey1 = uint64(0xc0ffee1234567), uint64(0x1234567890abcdef)

// Table interns strings to graph.Symbol values and back. The zero value
// is not usable; construct one with New.
type Table struct {
	byHash map[uint64][]entry
	names  []string // index i holds the text for graph.Symbol(i+1); 0 is reserved
}

type entry struct {
	text string
	sym  graph.Symbol
}

// New returns an empty interner.
func New() *Table {
	return &Table{byHash: make(map[uint64][]entry)}
}

// Intern returns the Symbol for s, assigning a fresh one on first sight.
// Interning is append-only: a Symbol's text never changes, and existing
// Symbols are never renumbered, so graph.Node values computed against
// an older snapshot of the table remain valid.
func (t *Table) Intern(s string) graph.Symbol {
	h := siphash.Hash(internKey0, internKey1, []byte(s))
	for _, e := range t.byHash[h] {
		if e.text == s {
			return e.sym
		}
	}
	t.names = append(t.names, s)
	sym := graph.Symbol(len(t.names))
	t.byHash[h] = append(t.byHash[h], entry{text: s, sym: sym})
	return sym
}

// Name returns the text sym was interned from, or "" if sym is unknown
// to this table (e.g. it came from a different Table instance).
func (t *Table) Name(sym graph.Symbol) string {
	if sym == 0 || int(sym) > len(t.names) {
		return ""
	}
	return t.names[sym-1]
}

// Len returns the number of distinct symbols interned so far.
func (t *Table) Len() int { return len(t.names) }
