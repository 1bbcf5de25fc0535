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

// ReleaseChain frees an entire owned sub-chain: the left sentinel given,
// its right sentinel, and every real node in between, recursively
// releasing any BODY sub-chains those nodes in turn own (an ABS/FIX
// body, a LET continuation, a TEST's two branches). Per §3.4's ownership
// invariant, exactly one BODY slot refers to each non-top sentinel, so
// nothing outside this sub-chain can hold a live reference into its
// interior; it is always safe to release the whole thing at once.
//
// ReleaseChain does not touch the Nref of nodes *outside* the sub-chain
// that are referenced from within it (captured free variables/closures)
// except through the ordinary Deref bookkeeping, which is still applied
// to every node released.
func ReleaseChain(h *Heap, left *Node) {
	right := left.Next
	for right != nil && right.Variety != Sentinel {
		right = right.Next
	}
	var nodes []*Node
	for n := left.Next; n != right && n != nil; n = n.Next {
		releaseOwned(h, n)
		nodes = append(nodes, n)
	}
	for _, n := range nodes {
		h.Deref(n)
	}
	for _, n := range nodes {
		h.Free(n)
	}
	if right != nil {
		h.Free(right)
	}
	h.Free(left)
}

// releaseOwned recursively releases the BODY sub-chains owned by n,
// before n itself is Deref'd/Freed by the caller.
func releaseOwned(h *Heap, n *Node) {
	switch n.Variety {
	case Abs, Fix, Let:
		if body := n.Slots[0]; body.Tag == Body && body.Node != nil {
			ReleaseChain(h, body.Node)
		}
	case Test:
		for _, i := range [2]int{1, 2} {
			if b := n.Slots[i]; b.Tag == Body && b.Node != nil {
				ReleaseChain(h, b.Node)
			}
		}
	}
}

// CollectZero frees every node reachable (through SUBST chains) from the
// given candidates whose Nref has reached zero, cascading: freeing a
// node may drop another node's Nref to zero in turn. It is the shared
// implementation behind the beta engine's eager-free optimization
// (§4.2, §9.4) and the reducer's left-to-right "collect" rule (§4.4.3).
func (h *Heap) CollectZero(candidates ...*Node) {
	work := append([]*Node(nil), candidates...)
	seen := make(map[*Node]bool)
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		if n == nil || n.IsSentinel() || seen[n] || n.Nref > 0 {
			continue
		}
		seen[n] = true
		// collect the nodes this one points to before freeing it, so
		// we can check whether freeing n drops them to zero too.
		var next []*Node
		for i := range n.Slots {
			if n.Slots[i].Tag == Subst && n.Slots[i].Node != nil {
				next = append(next, n.Slots[i].Node)
			}
		}
		releaseOwned(h, n)
		unlinkFromChain(n)
		h.Deref(n)
		h.Free(n)
		work = append(work, next...)
	}
}

// CollectOne applies the left-to-right sweep's single-node collect rule
// (§4.4.3 rule 1) to n alone: if n.Nref == 0 and n is not the chain's
// rightmost node (the chain's result value, which nothing else in the
// chain refers to), it releases any BODY sub-chains n owns, unlinks n
// from c, derefs n's own SUBST slots, and frees it, returning true. It
// reports false without side effects otherwise.
//
// Unlike CollectZero, CollectOne does not cascade into n's SUBST
// targets — that cascading, candidate-driven collection is reserved for
// the beta engine's eager-free optimization (§4.2, §9.4). Both the
// left-to-right sweep and the periodic pressure-triggered GC's
// chain-by-chain structural walk (§4.4.5) call CollectOne once per node
// as they walk rather than following SUBST edges.
func CollectOne(h *Heap, c *Chain, n *Node) bool {
	if n.Nref != 0 || n.Next == c.Right {
		return false
	}
	releaseOwned(h, n)
	c.Unlink(n)
	h.Deref(n)
	h.Free(n)
	return true
}

// unlinkFromChain removes n from its neighbors' Prev/Next without
// requiring a *Chain handle; used by CollectZero, which frees nodes
// found via a reference walk rather than a chain traversal and so may
// not have the owning Chain at hand.
func unlinkFromChain(n *Node) {
	if n.Prev != nil {
		n.Prev.Next = n.Next
		if n.Prev.Variety == Sentinel && len(n.Prev.Slots) > 0 && n.Prev.Slots[0].Tag == Subst && n.Prev.Slots[0].Node == n {
			n.Prev.Slots[0] = Slot{Tag: Subst, Node: n.Next}
		}
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	}
	n.Prev, n.Next = nil, nil
}
