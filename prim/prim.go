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

// Package prim implements the built-in operator set (§4.3): the
// descriptor table, operand resolution through administrative rename
// chains, and the contraction of a fully-saturated primitive
// application into its result value.
package prim

import (
	"fmt"
	"strings"

	"github.com/arborlang/redex/graph"
)

// Class is a primitive's display/arity shape, carried for diagnostics
// and printing; it plays no role in dispatch, which is keyed on Op.
type Class uint8

const (
	Atom Class = iota
	Unary
	Binary
	Nary
)

func (c Class) String() string {
	switch c {
	case Atom:
		return "atom"
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Nary:
		return "n-ary"
	default:
		return "?"
	}
}

// Built-in operator identities, assigned to graph.PrimOp.
const (
	Add graph.PrimOp = iota + 1
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Xor
	Not
	IsIntegral
	Concat
	Cell
	Fill
	At
	Find
	Fuse
	IsCell
	Nelems
	Car
	Cdr
	IsNil
	IsPair
	Undefined
	Panic
)

// Result carries the slot to splice into the redex's position.
type Result struct {
	Slot graph.Slot
}

// reduceFunc computes a primitive's result from the redex's raw
// argument slots (§4.3: "examines the argument slots reached through
// their SUBST chains"). It returns ok == false when the operands are
// not of the expected variety — an Irreducible outcome (§7): the redex
// is left in place.
type reduceFunc func(h *graph.Heap, args []graph.Slot) (Result, bool)

// Descriptor is the per-primitive entry the spec's §4.3 table describes:
// variety tag (Op), display name, syntax class, and reduce function.
type Descriptor struct {
	Op     graph.PrimOp
	Name   string
	Class  Class
	Arity  int // -1 means variadic (Cell)
	reduce reduceFunc
}

func (d *Descriptor) String() string { return fmt.Sprintf("%s (%s)", d.Name, d.Class) }

var table = map[graph.PrimOp]*Descriptor{}

func register(d *Descriptor) { table[d.Op] = d }

// Lookup returns the descriptor for op, or nil if op is unknown.
func Lookup(op graph.PrimOp) *Descriptor { return table[op] }

func init() {
	register(&Descriptor{Op: Add, Name: "+", Class: Binary, Arity: 2, reduce: arith(func(a, b float64) float64 { return a + b })})
	register(&Descriptor{Op: Sub, Name: "-", Class: Binary, Arity: 2, reduce: arith(func(a, b float64) float64 { return a - b })})
	register(&Descriptor{Op: Mul, Name: "*", Class: Binary, Arity: 2, reduce: arith(func(a, b float64) float64 { return a * b })})
	register(&Descriptor{Op: Div, Name: "/", Class: Binary, Arity: 2, reduce: arith(func(a, b float64) float64 { return a / b })})

	register(&Descriptor{Op: Eq, Name: "=", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return eq })})
	register(&Descriptor{Op: Ne, Name: "!=", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return !eq })})
	register(&Descriptor{Op: Lt, Name: "<", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return c < 0 })})
	register(&Descriptor{Op: Le, Name: "<=", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return c < 0 || eq })})
	register(&Descriptor{Op: Gt, Name: ">", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return c > 0 })})
	register(&Descriptor{Op: Ge, Name: ">=", Class: Binary, Arity: 2, reduce: compare(func(c int, eq bool) bool { return c > 0 || eq })})

	register(&Descriptor{Op: And, Name: "and", Class: Binary, Arity: 2, reduce: logic2(func(a, b bool) bool { return a && b })})
	register(&Descriptor{Op: Or, Name: "or", Class: Binary, Arity: 2, reduce: logic2(func(a, b bool) bool { return a || b })})
	register(&Descriptor{Op: Xor, Name: "xor", Class: Binary, Arity: 2, reduce: logic2(func(a, b bool) bool { return a != b })})
	register(&Descriptor{Op: Not, Name: "not", Class: Unary, Arity: 1, reduce: logic1(func(a bool) bool { return !a })})

	register(&Descriptor{Op: IsIntegral, Name: "is_integral", Class: Unary, Arity: 1, reduce: isIntegral})
	register(&Descriptor{Op: Concat, Name: "concat", Class: Binary, Arity: 2, reduce: concat})

	register(&Descriptor{Op: Cell, Name: "cell", Class: Nary, Arity: -1, reduce: cellCtor})
	register(&Descriptor{Op: Fill, Name: "fill", Class: Binary, Arity: 2, reduce: fill})
	register(&Descriptor{Op: At, Name: "at", Class: Binary, Arity: 2, reduce: at})
	register(&Descriptor{Op: Find, Name: "find", Class: Binary, Arity: 2, reduce: find})
	register(&Descriptor{Op: Fuse, Name: "fuse", Class: Binary, Arity: 2, reduce: fuse})
	register(&Descriptor{Op: IsCell, Name: "is_cell", Class: Unary, Arity: 1, reduce: isVariety(graph.Cell)})
	register(&Descriptor{Op: Nelems, Name: "nelems", Class: Unary, Arity: 1, reduce: nelems})

	register(&Descriptor{Op: Car, Name: "car", Class: Unary, Arity: 1, reduce: car})
	register(&Descriptor{Op: Cdr, Name: "cdr", Class: Unary, Arity: 1, reduce: cdr})
	register(&Descriptor{Op: IsNil, Name: "is_nil", Class: Unary, Arity: 1, reduce: isShape(0)})
	register(&Descriptor{Op: IsPair, Name: "is_pair", Class: Unary, Arity: 1, reduce: isShape(2)})

	register(&Descriptor{Op: Undefined, Name: "undefined", Class: Atom, Arity: 0, reduce: func(*graph.Heap, []graph.Slot) (Result, bool) { return Result{}, false }})
	register(&Descriptor{Op: Panic, Name: "panic", Class: Unary, Arity: 1, reduce: panicPrim})
}

// Panicked is a deliberate abort raised by the `panic` primitive; it is
// not a FatalBug (no invariant was violated) but the driver should
// treat it the same way: print Message and stop.
type Panicked struct {
	Message string
}

func (e *Panicked) Error() string { return "panic: " + e.Message }

// concrete resolves an argument slot to the concrete value it denotes,
// bypassing administrative unary-VAR/SUBST rename chains (§4.3). node
// is the backing node when the slot is a SUBST reference (nil for a
// directly-embedded literal, which has no node to bump a refcount on).
// scalar/isScalar carry the literal payload when the resolved value is
// a VAL node (or the slot was already a literal); a CELL (or anything
// that doesn't terminate in a VAL) leaves isScalar false but still
// returns the resolved node, for the cell/list primitives.
func concrete(s graph.Slot) (node *graph.Node, scalar graph.Slot, isScalar bool) {
	switch s.Tag {
	case graph.Num, graph.String, graph.SymbolLit:
		return nil, s, true
	case graph.Subst:
		n := s.Node
		for n != nil && n.Variety == graph.Var && n.Slots[0].Tag == graph.Subst {
			n = n.Slots[0].Node
		}
		if n == nil {
			return nil, graph.Slot{}, false
		}
		if n.Variety == graph.Val {
			return n, n.Slots[0], true
		}
		return n, graph.Slot{}, false
	default:
		return nil, graph.Slot{}, false
	}
}

func numOf(s graph.Slot) (float64, bool) {
	_, v, ok := concrete(s)
	if !ok || v.Tag != graph.Num {
		return 0, false
	}
	return v.NumVal, true
}

func strOf(s graph.Slot) (string, bool) {
	_, v, ok := concrete(s)
	if !ok || v.Tag != graph.String {
		return "", false
	}
	return v.StrVal, true
}

func truthyOf(s graph.Slot) (bool, bool) {
	v, ok := numOf(s)
	return v != 0, ok
}

func cellOf(s graph.Slot) *graph.Node {
	n, _, isScalar := concrete(s)
	if isScalar || n == nil || n.Variety != graph.Cell {
		return nil
	}
	return n
}

func arith(op func(a, b float64) float64) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		a, ok1 := numOf(args[0])
		b, ok2 := numOf(args[1])
		if !ok1 || !ok2 {
			return Result{}, false
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: op(a, b)}}, true
	}
}

// compareSlots returns (cmp, equal, ok): cmp < 0/0/>0 orders a before/
// equal to/after b for NUM (IEEE order) and STRING (byte-lexicographic);
// equality alone is also defined for SYMBOL (token-equal); ok is false
// for any other pairing, including a type mismatch.
func compareSlots(a, b graph.Slot) (int, bool, bool) {
	_, av, aScalar := concrete(a)
	_, bv, bScalar := concrete(b)
	if !aScalar || !bScalar {
		return 0, false, false
	}
	switch {
	case av.Tag == graph.Num && bv.Tag == graph.Num:
		switch {
		case av.NumVal < bv.NumVal:
			return -1, false, true
		case av.NumVal > bv.NumVal:
			return 1, false, true
		default:
			return 0, av.NumVal == bv.NumVal, true
		}
	case av.Tag == graph.String && bv.Tag == graph.String:
		return strings.Compare(av.StrVal, bv.StrVal), av.StrVal == bv.StrVal, true
	case av.Tag == graph.SymbolLit && bv.Tag == graph.SymbolLit:
		return 0, av.Sym == bv.Sym, true
	default:
		return 0, false, false
	}
}

func compare(pick func(cmp int, eq bool) bool) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		cmp, eq, ok := compareSlots(args[0], args[1])
		if !ok {
			return Result{}, false
		}
		v := 0.0
		if pick(cmp, eq) {
			v = 1
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: v}}, true
	}
}

func logic2(op func(a, b bool) bool) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		a, ok1 := truthyOf(args[0])
		b, ok2 := truthyOf(args[1])
		if !ok1 || !ok2 {
			return Result{}, false
		}
		v := 0.0
		if op(a, b) {
			v = 1
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: v}}, true
	}
}

func logic1(op func(a bool) bool) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		a, ok := truthyOf(args[0])
		if !ok {
			return Result{}, false
		}
		v := 0.0
		if op(a) {
			v = 1
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: v}}, true
	}
}

func isIntegral(h *graph.Heap, args []graph.Slot) (Result, bool) {
	v, ok := numOf(args[0])
	if !ok {
		return Result{}, false
	}
	r := 0.0
	if v == float64(int64(v)) {
		r = 1
	}
	return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: r}}, true
}

func concat(h *graph.Heap, args []graph.Slot) (Result, bool) {
	a, ok1 := strOf(args[0])
	b, ok2 := strOf(args[1])
	if !ok1 || !ok2 {
		return Result{}, false
	}
	return Result{Slot: graph.Slot{Tag: graph.String, StrVal: a + b}}, true
}

// copyElem returns a copy of s suitable for storing as a cell element,
// bumping the referenced node's nref if s carries one — the same
// ownership-transfer discipline as graph.NewCell's construction.
func copyElem(s graph.Slot) graph.Slot {
	if s.IsRef() && s.Node != nil {
		s.Node.Nref++
	}
	return s
}

func cellCtor(h *graph.Heap, args []graph.Slot) (Result, bool) {
	n := h.Alloc(len(args))
	n.Variety = graph.Cell
	for i, a := range args {
		n.Slots[i] = copyElem(a)
	}
	return Result{Slot: graph.Slot{Tag: graph.Subst, Node: n}}, true
}

func fill(h *graph.Heap, args []graph.Slot) (Result, bool) {
	count, ok := numOf(args[0])
	if !ok || count < 0 || count != float64(int64(count)) {
		return Result{}, false
	}
	n := h.Alloc(int(count))
	n.Variety = graph.Cell
	for i := range n.Slots {
		n.Slots[i] = copyElem(args[1])
	}
	return Result{Slot: graph.Slot{Tag: graph.Subst, Node: n}}, true
}

func at(h *graph.Heap, args []graph.Slot) (Result, bool) {
	c := cellOf(args[0])
	idx, ok := numOf(args[1])
	if c == nil || !ok {
		return Result{}, false
	}
	i := int(idx)
	if i < 0 || i >= len(c.Slots) || idx != float64(i) {
		return Result{}, false
	}
	return Result{Slot: copyElem(c.Slots[i])}, true
}

func find(h *graph.Heap, args []graph.Slot) (Result, bool) {
	c := cellOf(args[0])
	if c == nil {
		return Result{}, false
	}
	needle := args[1]
	for i := range c.Slots {
		if _, eq, ok := compareSlots(c.Slots[i], needle); ok && eq {
			return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: float64(i)}}, true
		}
	}
	// No option/maybe type in this language: -1 is the out-of-band
	// sentinel, since no valid index is negative.
	return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: -1}}, true
}

func fuse(h *graph.Heap, args []graph.Slot) (Result, bool) {
	a, b := cellOf(args[0]), cellOf(args[1])
	if a == nil || b == nil {
		return Result{}, false
	}
	n := h.Alloc(len(a.Slots) + len(b.Slots))
	n.Variety = graph.Cell
	for i := range a.Slots {
		n.Slots[i] = copyElem(a.Slots[i])
	}
	for i := range b.Slots {
		n.Slots[len(a.Slots)+i] = copyElem(b.Slots[i])
	}
	return Result{Slot: graph.Slot{Tag: graph.Subst, Node: n}}, true
}

func isVariety(v graph.Variety) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		n, _, isScalar := concrete(args[0])
		r := 0.0
		if !isScalar && n != nil && n.Variety == v {
			r = 1
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: r}}, true
	}
}

func nelems(h *graph.Heap, args []graph.Slot) (Result, bool) {
	c := cellOf(args[0])
	if c == nil {
		return Result{}, false
	}
	return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: float64(len(c.Slots))}}, true
}

// car/cdr/is_nil/is_pair treat a 2-element CELL as the pair
// representation and a 0-element CELL as nil; see DESIGN.md for why
// this encoding was chosen over a dedicated list variety.
func car(h *graph.Heap, args []graph.Slot) (Result, bool) {
	c := cellOf(args[0])
	if c == nil || len(c.Slots) != 2 {
		return Result{}, false
	}
	return Result{Slot: copyElem(c.Slots[0])}, true
}

func cdr(h *graph.Heap, args []graph.Slot) (Result, bool) {
	c := cellOf(args[0])
	if c == nil || len(c.Slots) != 2 {
		return Result{}, false
	}
	return Result{Slot: copyElem(c.Slots[1])}, true
}

func isShape(n int) reduceFunc {
	return func(h *graph.Heap, args []graph.Slot) (Result, bool) {
		c := cellOf(args[0])
		r := 0.0
		if c != nil && len(c.Slots) == n {
			r = 1
		}
		return Result{Slot: graph.Slot{Tag: graph.Num, NumVal: r}}, true
	}
}

func panicPrim(h *graph.Heap, args []graph.Slot) (Result, bool) {
	msg, ok := strOf(args[0])
	if !ok {
		return Result{}, false
	}
	panic(&Panicked{Message: msg})
}

// Reduce contracts redex, a PRIM application whose leftmost slot
// resolves (through administrative rename chains) to a PRIM value, into
// its result. It returns (nil, false) — leaving redex untouched — if
// the leftmost slot is not a saturated primitive application or the
// operands are the wrong variety (§7's Irreducible outcome).
func Reduce(h *graph.Heap, redex *graph.Node) (*graph.Node, bool) {
	node, scalar, isScalar := concrete(redex.Slots[0])
	_ = node
	if !isScalar || scalar.Tag != graph.Prim {
		return nil, false
	}
	d := Lookup(scalar.PrimOp)
	if d == nil {
		return nil, false
	}
	args := redex.Slots[1:]
	if d.Arity >= 0 && len(args) != d.Arity {
		return nil, false
	}
	result, ok := d.reduce(h, args)
	if !ok {
		return nil, false
	}

	var finalNode *graph.Node
	if result.Slot.Tag == graph.Subst {
		finalNode = result.Slot.Node
	} else {
		finalNode = h.Alloc(1)
		finalNode.Variety = graph.Val
		finalNode.Slots[0] = result.Slot
	}
	spliceValue(h, redex, finalNode)
	return finalNode, true
}

// spliceValue grafts value into redex's chain position and retires
// redex — the single-node analogue of package beta's splice, which
// handles a whole spliced-in sub-chain instead of one node.
//
// When redex has at most one referrer (a chain head pointer or an
// ordinary back-reference), that single pointer is repointed directly at
// value and redex is freed. When redex is shared (Nref > 1, or its one
// referrer lives in a chain populateBackrefs never scanned), there is no
// single pointer left to patch cheaply; redex's own *Node identity is
// instead reused as a one-hop administrative alias to value, so every
// existing pointer into it keeps resolving correctly untouched, and the
// alias is threaded back into the chain immediately after value (see
// beta.splice, which does the same for a multi-node result).
func spliceValue(h *graph.Heap, redex, value *graph.Node) {
	outerPrev, outerNext := redex.Prev, redex.Next

	isHead := outerPrev != nil && outerPrev.Variety == graph.Sentinel &&
		outerPrev.Slots[0].Tag == graph.Subst && outerPrev.Slots[0].Node == redex

	var candidates []*graph.Node
	for i := range redex.Slots {
		if redex.Slots[i].Tag == graph.Subst && redex.Slots[i].Node != nil {
			candidates = append(candidates, redex.Slots[i].Node)
		}
	}

	switch {
	case redex.Nref <= 1 && isHead:
		outerPrev.Slots[0].Node = value
		value.Nref++
		redex.Nref--
		h.Deref(redex)

		value.Prev = outerPrev
		outerPrev.Next = value
		value.Next = outerNext
		if outerNext != nil {
			outerNext.Prev = value
		}
		redex.Prev, redex.Next = nil, nil
		h.Free(redex)

	case redex.Nref <= 1 && redex.Backref != nil && redex.Backref.Valid() && redex.Backref.Slot().Node == redex:
		redex.Backref.Slot().Node = value
		value.Nref++
		redex.Nref--
		h.Deref(redex)

		value.Prev = outerPrev
		if outerPrev != nil {
			outerPrev.Next = value
		}
		value.Next = outerNext
		if outerNext != nil {
			outerNext.Prev = value
		}
		redex.Prev, redex.Next = nil, nil
		h.Free(redex)

	default:
		if isHead {
			outerPrev.Slots[0].Node = value
			value.Nref++
			redex.Nref--
		}
		h.Deref(redex)
		redex.Variety = graph.Var
		redex.Slots = []graph.Slot{{Tag: graph.Subst, Node: value}}
		redex.Backref = nil
		redex.Forward = nil
		redex.Outer = nil
		redex.IsFresh = false
		value.Nref++

		value.Prev = outerPrev
		if outerPrev != nil {
			outerPrev.Next = value
		}
		// redex keeps its old Next (and whatever followed it keeps
		// pointing back at redex); only its Prev link moves, to sit
		// right after value.
		value.Next = redex
		redex.Prev = value
	}

	h.CollectZero(candidates...)
}
