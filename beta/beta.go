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

// Package beta implements the single graph-rewriting primitive: given an
// application (or let-) redex and the body it applies to, substitute the
// redex's argument slots into the body, either by copying the body (when
// it may still be used elsewhere) or by rewriting it destructively in
// place (when it has no other users).
package beta

import "github.com/arborlang/redex/graph"

// Redex describes the inputs to a beta step, grounded on §4.2's shared
// contract: a node whose slots beyond index 0 are arguments, the body
// sentinel those arguments substitute into, the reducer's current depth,
// and delta = redex.Depth - abstraction.Depth.
type Redex struct {
	Node  *graph.Node // the APP or LET node being eliminated
	Args  []graph.Slot
	Body  *graph.Node // the body's LEFT sentinel
	Depth int
	Delta int

	// Abs is the separate ABS/FIX node owning Body, for an APP redex.
	// It is nil for a LET redex, where Node itself owns Body directly
	// (§4.2's LET slot layout, see construct.go) and there is no
	// independent abstraction node to account for.
	Abs *graph.Node

	// SelfRef, when non-nil, is substituted for a BOUND(0, len(Args))
	// reference inside Body: this is how FIX's implicit self-binder
	// (§9.4) is realized without a separate unrolling step. ABS/LET
	// redexes leave this nil.
	SelfRef *graph.Node
}

func (r *Redex) args(h *graph.Heap) []*graph.Node {
	out := make([]*graph.Node, len(r.Args), len(r.Args)+1)
	for i, s := range r.Args {
		out[i] = wrap(h, s)
	}
	if r.SelfRef != nil {
		out = append(out, r.SelfRef)
	}
	return out
}

// wrap returns a stable node identity for an argument slot: the slot's
// own SUBST target if it already has one, or a freshly allocated VAR/VAL
// node otherwise. Per §4.2/§9.4, a freshly wrapped argument that ends up
// unreferenced after substitution is eligible for the eager-free pass.
func wrap(h *graph.Heap, s graph.Slot) *graph.Node {
	if s.Tag == graph.Subst {
		return s.Node
	}
	n := h.Alloc(1)
	switch s.Tag {
	case graph.Bound, graph.Constant:
		n.Variety = graph.Var
	default:
		n.Variety = graph.Val
	}
	n.Slots[0] = s
	return n
}

// Copy performs beta_copy: it produces a fresh copy of r.Body with
// substitution applied, splices the copy into r.Node's chain in its
// place, retires r.Node (freed, or kept as an alias when shared; see
// splice), releases the original (now superseded) body, and
// returns the rightmost node of the spliced-in chain — the new "value"
// identity that any back-reference into r.Node now resolves to.
func Copy(h *graph.Heap, r *Redex) *graph.Node {
	args := r.args(h)
	internal := collectInternal(r.Body)
	memo := make(map[*graph.Node]*graph.Node)

	newLeft := copyChain(h, r.Body, 0, args, r.Delta, r.Depth, internal, memo)
	result := splice(h, r.Node, newLeft, args)

	if r.Abs != nil {
		// The abstraction may or may not have died from losing this one
		// use; CollectZero is a no-op if it still has other referrers.
		h.CollectZero(r.Abs)
	} else {
		// LET: the original body had exactly one owner (this redex) and
		// is now fully superseded by the copy spliced above.
		graph.ReleaseChain(h, r.Body)
	}
	return result
}

// NoCopy performs beta_nocopy: it rewrites r.Body destructively in
// place (no new node identities beyond the fresh argument wrappers),
// splices it into r.Node's chain, retires r.Node (freed, or kept as an
// alias when shared; see splice), and returns the rightmost node.
//
// The caller (package reduce) is responsible for having established
// that r.Abs (or, for a LET redex, r.Node itself) has no other users;
// NoCopy does not re-check that precondition.
func NoCopy(h *graph.Heap, r *Redex) *graph.Node {
	args := r.args(h)
	internal := collectInternal(r.Body)
	rewriteInPlace(r.Body, 0, args, r.Delta, r.Depth, internal)

	if r.Abs != nil {
		// Sever ownership before the abstraction is freed below: the
		// body is being reused, not released.
		r.Abs.Slots[0] = graph.Slot{Tag: graph.Null}
	}
	result := splice(h, r.Node, r.Body, args)
	if r.Abs != nil {
		h.CollectZero(r.Abs)
	}
	return result
}

// EmptyBody reports a FatalBug (§7): a redex's body sub-chain had no
// real nodes, which should never occur for a well-formed program (every
// abstraction body and let continuation must yield a value).
type EmptyBody struct {
	Node *graph.Node
}

func (e *EmptyBody) Error() string { return "beta: redex body is empty" }

// splice grafts the chain bracketed by newLeft/newLeft's matching right
// sentinel into r.Node's position in its surrounding chain and retires
// the redex.
//
// When the redex has at most one referrer (a chain head pointer or an
// ordinary back-reference), that single pointer is repointed directly at
// the spliced-in result and the redex node is freed. When the redex is
// shared (Nref > 1, or its one referrer lives in a chain populateBackrefs
// never scanned), there is no single pointer left to patch cheaply;
// instead of chasing down every referrer, the redex's own *Node identity
// is reused as a one-hop administrative alias to the result (§4.2's
// "any back-reference into the redex now refers to the new root"), so
// every existing pointer into it — however many, wherever they live —
// keeps resolving correctly without being touched. The alias is threaded
// back into the chain immediately after the result so later sweeps can
// still collapse it via the rename rule, or collect it once its own
// Nref eventually reaches zero.
func splice(h *graph.Heap, redex, newLeft *graph.Node, args []*graph.Node) *graph.Node {
	newRight := newLeft.Next
	for newRight.Variety != graph.Sentinel {
		newRight = newRight.Next
	}
	first := newLeft.Next
	last := newRight.Prev
	if first == newRight {
		panic(&EmptyBody{Node: redex})
	}

	outerPrev, outerNext := redex.Prev, redex.Next

	isHead := outerPrev != nil && outerPrev.Variety == graph.Sentinel &&
		outerPrev.Slots[0].Tag == graph.Subst && outerPrev.Slots[0].Node == redex

	h.Deref(newLeft)
	h.Free(newLeft)
	h.Free(newRight)

	switch {
	case redex.Nref <= 1 && isHead:
		// The chain's own head pointer must keep pointing at the start
		// of the spliced-in sequence, not just its final value, so that
		// walking the chain still visits every copied node.
		outerPrev.Slots[0].Node = first
		first.Nref++
		redex.Nref--
		h.Deref(redex)

		first.Prev = outerPrev
		outerPrev.Next = first
		last.Next = outerNext
		if outerNext != nil {
			outerNext.Prev = last
		}
		redex.Prev, redex.Next = nil, nil
		h.Free(redex)

	case redex.Nref <= 1 && redex.Backref != nil && redex.Backref.Valid() && redex.Backref.Slot().Node == redex:
		// An ordinary reference from elsewhere cares only about the
		// result value, which is the rightmost node of the sequence.
		redex.Backref.Slot().Node = last
		last.Nref++
		redex.Nref--
		h.Deref(redex)

		first.Prev = outerPrev
		if outerPrev != nil {
			outerPrev.Next = first
		}
		last.Next = outerNext
		if outerNext != nil {
			outerNext.Prev = last
		}
		redex.Prev, redex.Next = nil, nil
		h.Free(redex)

	default:
		if isHead {
			outerPrev.Slots[0].Node = first
			first.Nref++
			redex.Nref--
		}
		h.Deref(redex)
		redex.Variety = graph.Var
		redex.Slots = []graph.Slot{{Tag: graph.Subst, Node: last}}
		redex.Backref = nil
		redex.Forward = nil
		redex.Outer = nil
		redex.IsFresh = false
		last.Nref++

		first.Prev = outerPrev
		if outerPrev != nil {
			outerPrev.Next = first
		}
		// redex keeps its old Next (and whatever followed it keeps
		// pointing back at redex); only its Prev link moves, to sit
		// right after last.
		last.Next = redex
		redex.Prev = last
	}

	h.CollectZero(args...)
	return last
}

// collectInternal walks the body sub-chain (recursively through any
// nested owned BODY chains) and returns the set of node pointers that
// belong to it. A SUBST slot whose target is *not* in this set refers
// to something outside the region being copied/rewritten (a captured
// closure) and must be shared, not duplicated.
func collectInternal(left *graph.Node) map[*graph.Node]bool {
	set := make(map[*graph.Node]bool)
	var walkChain func(*graph.Node)
	walkChain = func(left *graph.Node) {
		for n := left.Next; n != nil && n.Variety != graph.Sentinel; n = n.Next {
			if set[n] {
				continue
			}
			set[n] = true
			for i := range n.Slots {
				if n.Slots[i].Tag == graph.Body && n.Slots[i].Node != nil {
					walkChain(n.Slots[i].Node)
				}
			}
		}
	}
	walkChain(left)
	return set
}

// copyChain copies every real node of the chain starting at left
// (local nesting depth ld relative to the redex), returning the left
// sentinel of a freshly assembled chain holding the copies in the same
// order, at absolute depth base+ld.
func copyChain(h *graph.Heap, left *graph.Node, ld int, args []*graph.Node, delta, base int, internal map[*graph.Node]bool, memo map[*graph.Node]*graph.Node) *graph.Node {
	var nodes []*graph.Node
	for n := left.Next; n != nil && n.Variety != graph.Sentinel; n = n.Next {
		nodes = append(nodes, copyNode(h, n, ld, args, delta, base, internal, memo))
	}
	return assembleChain(h, base+ld, nodes)
}

func assembleChain(h *graph.Heap, depth int, nodes []*graph.Node) *graph.Node {
	newLeft := graph.NewSentinel(h, depth)
	newRight := graph.NewSentinel(h, depth)
	if len(nodes) == 0 {
		newLeft.Slots[0] = graph.Slot{Tag: graph.Subst, Node: newRight}
		newRight.Nref++
		newLeft.Next = newRight
		newRight.Prev = newLeft
		return newLeft
	}
	for i := 1; i < len(nodes); i++ {
		nodes[i-1].Next = nodes[i]
		nodes[i].Prev = nodes[i-1]
	}
	head, tail := nodes[0], nodes[len(nodes)-1]
	newLeft.Slots[0] = graph.Slot{Tag: graph.Subst, Node: head}
	head.Nref++
	newLeft.Next = head
	head.Prev = newLeft
	tail.Next = newRight
	newRight.Prev = tail
	return newLeft
}

// copyNode copies a single node's shape and slots, consulting/populating
// memo so a node referenced more than once within the region being
// copied (a shared sub-DAG, not just a tree) is copied exactly once.
func copyNode(h *graph.Heap, n *graph.Node, ld int, args []*graph.Node, delta, base int, internal map[*graph.Node]bool, memo map[*graph.Node]*graph.Node) *graph.Node {
	if cp, ok := memo[n]; ok {
		return cp
	}
	cp := h.Alloc(len(n.Slots))
	cp.Variety = n.Variety
	cp.Depth = base + ld
	memo[n] = cp
	for i := range n.Slots {
		cp.Slots[i] = copySlot(h, &n.Slots[i], ld, args, delta, base, internal, memo)
	}
	return cp
}

func copySlot(h *graph.Heap, s *graph.Slot, ld int, args []*graph.Node, delta, base int, internal map[*graph.Node]bool, memo map[*graph.Node]*graph.Node) graph.Slot {
	switch s.Tag {
	case graph.Body:
		if s.Node == nil {
			return graph.Slot{Tag: graph.Body}
		}
		return graph.Slot{Tag: graph.Body, Node: copyChain(h, s.Node, ld+1, args, delta, base, internal, memo)}
	case graph.Subst:
		if s.Node == nil {
			return graph.Slot{Tag: graph.Subst}
		}
		if internal[s.Node] {
			target := copyNode(h, s.Node, ld, args, delta, base, internal, memo)
			target.Nref++
			return graph.Slot{Tag: graph.Subst, Node: target}
		}
		// External reference (a captured closure): share, don't copy.
		s.Node.Nref++
		return graph.Slot{Tag: graph.Subst, Node: s.Node}
	case graph.Bound:
		return substBound(s.Up, s.Across, ld, args, delta)
	default:
		return *s
	}
}

// rewriteInPlace is copyChain's destructive twin, used by NoCopy: it
// mutates the existing nodes rather than allocating copies.
func rewriteInPlace(left *graph.Node, ld int, args []*graph.Node, delta, base int, internal map[*graph.Node]bool) {
	for n := left.Next; n != nil && n.Variety != graph.Sentinel; n = n.Next {
		n.Depth = base + ld
		for i := range n.Slots {
			s := &n.Slots[i]
			switch s.Tag {
			case graph.Body:
				if s.Node != nil {
					rewriteInPlace(s.Node, ld+1, args, delta, base, internal)
				}
			case graph.Bound:
				*s = substBound(s.Up, s.Across, ld, args, delta)
			}
			// SUBST slots, internal or external, keep their target node
			// identity unchanged; only their depth context moved, which
			// does not affect a pointer.
		}
	}
}

// substBound applies the §4.2 de Bruijn reindexing rule to a single
// BOUND(up, across) slot encountered at local nesting depth ld within
// the body being substituted into:
//
//   - up < ld:  the binder is internal to the region being copied; the
//     index is unaffected by the splice.
//   - up == ld: this is exactly the binder being eliminated; substitute
//     the corresponding argument.
//   - up > ld:  the reference escapes the eliminated binder into an
//     enclosing context; one binder (the eliminated one) is gone, and
//     the whole reference has moved delta levels, so the index becomes
//     up-1+delta.
func substBound(up, across, ld int, args []*graph.Node, delta int) graph.Slot {
	switch {
	case up < ld:
		return graph.Slot{Tag: graph.Bound, Up: up, Across: across}
	case up == ld:
		if across < 0 || across >= len(args) {
			return graph.Slot{Tag: graph.Bound, Up: up, Across: across}
		}
		target := args[across]
		target.Nref++
		return graph.Slot{Tag: graph.Subst, Node: target}
	default:
		return graph.Slot{Tag: graph.Bound, Up: up - 1 + delta, Across: across}
	}
}
