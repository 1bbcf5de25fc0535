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

package reduce

import (
	"github.com/arborlang/redex/beta"
	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/prim"
)

// isAbsHead reports whether n is an APP whose function slot resolves, in
// a single SUBST hop, directly to an ABS or FIX — the beta rule's match
// shape (§4.4.2 rule 2). An administrative indirection (a rename-shape
// VAR) in between is not chased here: it is collapsed by its own turn at
// the rename rule, and a later round sees the direct hop.
func isAbsHead(n *graph.Node) bool {
	if n.Variety != graph.App {
		return false
	}
	fn := n.Slots[0]
	if fn.Tag != graph.Subst || fn.Node == nil {
		return false
	}
	return fn.Node.Variety == graph.Abs || fn.Node.Variety == graph.Fix
}

// isPrimHead reports whether n is an APP whose function slot resolves,
// in a single SUBST hop, to a VAL node carrying a PRIM literal (§4.4.2
// rule 4's match shape). prim.Reduce itself chases any further
// administrative rename chains in the operand slots.
func isPrimHead(n *graph.Node) bool {
	if n.Variety != graph.App {
		return false
	}
	fn := n.Slots[0]
	if fn.Tag != graph.Subst || fn.Node == nil || fn.Node.Variety != graph.Val {
		return false
	}
	return len(fn.Node.Slots) > 0 && fn.Node.Slots[0].Tag == graph.Prim
}

// isRenameVar reports whether n is a unary VAR whose only slot is itself
// a SUBST pointer (§4.4.2 rule 5's match shape): a pure administrative
// alias, whether built ahead of the reducer, produced by beta
// substituting an argument for a bound VAR, or left behind by
// beta/prim's splice when a shared redex is kept as an alias.
func isRenameVar(n *graph.Node) bool {
	return n.Variety == graph.Var && len(n.Slots) == 1 && n.Slots[0].Tag == graph.Subst
}

// isTestReady reports whether n's predicate slot resolves, through any
// administrative rename chain, to a NUM value — the only shape the test
// rule is defined over (§4.4.2 rule 3). A predicate that has not yet
// reduced to a scalar is left alone; it will be visited again once
// whatever redex produces it has fired.
func isTestReady(n *graph.Node) bool {
	_, ok := resolveNum(n.Slots[0])
	return ok
}

// resolveNum returns a literal NUM slot's value directly, and chases a
// SUBST slot through any chain of unary rename-shape VAR nodes to the
// NUM value at the end, reporting ok=false if the chain does not bottom
// out at one.
func resolveNum(s graph.Slot) (float64, bool) {
	if s.Tag == graph.Num {
		return s.NumVal, true
	}
	if s.Tag != graph.Subst {
		return 0, false
	}
	n := s.Node
	for n != nil && isRenameVar(n) {
		n = n.Slots[0].Node
	}
	if n == nil || n.Variety != graph.Val || n.Slots[0].Tag != graph.Num {
		return 0, false
	}
	return n.Slots[0].NumVal, true
}

// beta contracts n, an APP whose function slot names an ABS/FIX
// directly, per §4.2/§4.4.2 rule 2. It chooses beta_copy when the
// abstraction has other live users and beta_nocopy when this
// application is its only one (§9.4's resolution of the copy/no-copy
// Open Question: MLC's refcount-driven choice, applied uniformly).
func (m *machine) beta(n *graph.Node, depth int) (*graph.Node, bool, error) {
	abs := n.Slots[0].Node
	args := n.Slots[1:]
	wanted := len(abs.Slots) - 1
	if len(args) != wanted {
		return nil, false, &TypeError{App: n, Abs: abs, Wanted: wanted, Got: len(args)}
	}

	r := &beta.Redex{
		Node:  n,
		Args:  append([]graph.Slot(nil), args...),
		Body:  abs.Slots[0].Node,
		Depth: n.Depth,
		Delta: n.Depth - abs.Depth,
		Abs:   abs,
	}
	if abs.Variety == graph.Fix {
		r.SelfRef = abs
	}

	var result *graph.Node
	if abs.Nref <= 1 {
		result = beta.NoCopy(m.h, r)
	} else {
		result = beta.Copy(m.h, r)
	}
	m.stats.Beta++
	return result, true, nil
}

// prim contracts n, a saturated primitive application, via the prim
// package's own descriptor dispatch (§4.3, §4.4.2 rule 4). An
// irreducible primitive (wrong operand shape, unknown arity) is left in
// place per §7's Irreducible outcome rather than treated as fatal — it
// is the source program's problem, diagnosable by printing the chain.
func (m *machine) prim(n *graph.Node) (*graph.Node, bool, error) {
	result, ok := prim.Reduce(m.h, n)
	if !ok {
		return n.Prev, false, nil
	}
	m.stats.Prim++
	return result, true, nil
}

// rename collapses n, an administrative alias with exactly one incoming
// reference, by redirecting that reference straight at n's target and
// freeing n (§4.4.2 rule 5). It requires populateBackrefs to have
// already established n.Backref for this sweep; if it has not (no
// referrer was found within this chain, or n has more than one live
// referrer), n is left alone and the sweep moves on.
func (m *machine) rename(n *graph.Node) (*graph.Node, bool, error) {
	if n.Backref == nil || !n.Backref.Valid() || n.Backref.Slot().Node != n {
		return n.Prev, false, nil
	}
	target := n.Slots[0].Node
	prev := n.Prev

	slot := n.Backref.Slot()
	slot.Node = target
	target.Nref++
	n.Nref--

	if n.Prev != nil {
		n.Prev.Next = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	}
	n.Prev, n.Next = nil, nil
	m.h.Deref(n)
	m.h.Free(n)

	m.stats.Rename++
	return prev, true, nil
}

// populateBackrefs scans every slot of every node in the chain bracketed
// by left/right (including the left sentinel's own head slot), recording
// on each referenced node with Nref == 1 the one slot that names it. The
// rename rule and beta/prim's splice helpers consult this field to
// repoint or overwrite the sole incoming reference in O(1); rebuilding it
// once per sweep keeps that lookup cheap without maintaining it
// incrementally through every intervening mutation.
//
// The scan is scoped to one chain: an administrative alias whose unique
// referrer lives in a different chain (an externally captured closure)
// is a case the rename rule conservatively leaves uncollapsed.
func populateBackrefs(left, right *graph.Node) {
	left.Backref = nil
	for n := left.Next; n != right && n != nil; n = n.Next {
		n.Backref = nil
	}
	scan := func(owner *graph.Node) {
		for i := range owner.Slots {
			s := &owner.Slots[i]
			if s.Tag == graph.Subst && s.Node != nil && s.Node.Nref == 1 {
				s.Node.Backref = &graph.Backref{Owner: owner, Index: i}
			}
		}
	}
	scan(left)
	for n := left.Next; n != right && n != nil; n = n.Next {
		scan(n)
	}
}
