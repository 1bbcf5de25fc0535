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

package graph

// Slot layout conventions (documented here once; see §4.2/§4.3 of the
// design notes for why LET differs from ABS/FIX):
//
//	APP   slot 0: function reference (SUBST/BOUND/CONSTANT)
//	      slot 1..n: argument expressions
//	ABS   slot 0: BODY
//	      slot 1..n: PARAM (display names only; substitution is by index)
//	FIX   same as ABS, plus an implicit self-reference at BOUND(0, n)
//	      inside the body, resolved specially by package beta
//	LET   slot 0: BODY (the let continuation chain; doubles as the "body
//	      sentinel" beta needs directly, no ABS indirection)
//	      slot 1..n: argument expressions (the bound values)
//	TEST  slot 0: predicate, slot 1: consequent BODY, slot 2: alternative BODY
//	CELL  slot 0..n-1: elements
//	VAR   slot 0: the single reference (SUBST, BOUND, or CONSTANT)
//	VAL   slot 0: NUM, STRING, SYMBOL, or PRIM literal

// NewSentinel allocates a bare sentinel node. Most callers want NewChain
// instead; this is exposed for building sentinels that are spliced into
// an existing chain structure (e.g. by the parser).
func NewSentinel(h *Heap, depth int) *Node {
	n := h.Alloc(1)
	n.Variety = Sentinel
	n.Depth = depth
	n.Slots[0] = Slot{Tag: Null}
	return n
}

// NewAbs allocates an n-ary abstraction with the given parameter names
// and body sentinel. names may be nil/empty only if n == 0, which is not
// a meaningful abstraction but is not rejected here; arity checking is
// the parser's job per §1 scope.
func NewAbs(h *Heap, names []Symbol, body *Node) *Node {
	n := h.Alloc(1 + len(names))
	n.Variety = Abs
	n.Slots[0] = Slot{Tag: Body, Node: body}
	body.Nref++
	for i, s := range names {
		n.Slots[1+i] = Slot{Tag: Param, Sym: s}
	}
	return n
}

// NewFix allocates a fixed-point abstraction: same shape as NewAbs, plus
// the implicit self-binder package beta resolves at BOUND(0, len(names)).
func NewFix(h *Heap, names []Symbol, body *Node) *Node {
	n := NewAbs(h, names, body)
	n.Variety = Fix
	return n
}

// NewApp allocates an application of fn to args.
func NewApp(h *Heap, fn Slot, args []Slot) *Node {
	n := h.Alloc(1 + len(args))
	n.Variety = App
	n.Slots[0] = fn
	copy(n.Slots[1:], args)
	n.bumpRefs()
	return n
}

// NewLet allocates a let-binding: body is the continuation chain (whose
// BOUND(0,k) slots refer to the k'th bound value), values are the bound
// expressions.
func NewLet(h *Heap, body *Node, values []Slot) *Node {
	n := h.Alloc(1 + len(values))
	n.Variety = Let
	n.Slots[0] = Slot{Tag: Body, Node: body}
	body.Nref++
	copy(n.Slots[1:], values)
	for i := 1; i < len(n.Slots); i++ {
		bumpSlotRef(&n.Slots[i])
	}
	return n
}

// NewTest allocates a conditional: pred is a numeric predicate slot,
// cons/alt are the consequent/alternative body sentinels.
func NewTest(h *Heap, pred Slot, cons, alt *Node) *Node {
	n := h.Alloc(3)
	n.Variety = Test
	n.Slots[0] = pred
	bumpSlotRef(&n.Slots[0])
	n.Slots[1] = Slot{Tag: Body, Node: cons}
	cons.Nref++
	n.Slots[2] = Slot{Tag: Body, Node: alt}
	alt.Nref++
	return n
}

// NewCell allocates a small heterogeneous tuple.
func NewCell(h *Heap, elems []Slot) *Node {
	n := h.Alloc(len(elems))
	n.Variety = Cell
	copy(n.Slots, elems)
	n.bumpRefs()
	return n
}

// NewBoundVar allocates a unary VAR node referencing a binder `up` levels
// out, parameter `across`.
func NewBoundVar(h *Heap, up, across int) *Node {
	n := h.Alloc(1)
	n.Variety = Var
	n.Slots[0] = Slot{Tag: Bound, Up: up, Across: across}
	return n
}

// NewFreeVar allocates a unary VAR node referencing an externally
// interned constant (a free/global variable).
func NewFreeVar(h *Heap, constIdx int) *Node {
	n := h.Alloc(1)
	n.Variety = Var
	n.Slots[0] = Slot{Tag: Constant, ConstIdx: constIdx}
	return n
}

// NewSubstVar allocates a unary VAR node whose slot is an explicit
// substitution pointer at target; this is the shape the rename rule
// (§4.4.2 rule 5) short-circuits.
func NewSubstVar(h *Heap, target *Node) *Node {
	n := h.Alloc(1)
	n.Variety = Var
	n.Slots[0] = Slot{Tag: Subst, Node: target}
	target.Nref++
	return n
}

// NewNum allocates a VAL node wrapping a numeric literal.
func NewNum(h *Heap, v float64) *Node {
	n := h.Alloc(1)
	n.Variety = Val
	n.Slots[0] = Slot{Tag: Num, NumVal: v}
	return n
}

// NewString allocates a VAL node wrapping an immutable string literal.
func NewString(h *Heap, s string) *Node {
	n := h.Alloc(1)
	n.Variety = Val
	n.Slots[0] = Slot{Tag: String, StrVal: s}
	return n
}

// NewSymbol allocates a VAL node wrapping a symbolic literal.
func NewSymbol(h *Heap, s Symbol) *Node {
	n := h.Alloc(1)
	n.Variety = Val
	n.Slots[0] = Slot{Tag: SymbolLit, Sym: s}
	return n
}

// NewPrim allocates a VAL node wrapping a reference to a built-in
// operator. The (name, arity, reduce-function) triple that op identifies
// lives in package prim; graph stores only the opaque op id and a name
// for printing.
func NewPrim(h *Heap, op PrimOp, name string) *Node {
	n := h.Alloc(1)
	n.Variety = Val
	n.Slots[0] = Slot{Tag: Prim, PrimOp: op, PrimName: name}
	return n
}

func bumpSlotRef(s *Slot) {
	if s.IsRef() && s.Node != nil {
		s.Node.Nref++
	}
}

func (n *Node) bumpRefs() {
	for i := range n.Slots {
		bumpSlotRef(&n.Slots[i])
	}
}
