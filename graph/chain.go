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

// Chain is a doubly-linked list bracketed at both ends by SENTINEL nodes.
// The left sentinel owns, via a single SUBST slot, a reference to the
// leftmost "real" node; the right sentinel terminates the list. A chain
// represents one evaluation context: the top-level program, an
// abstraction body, or a test branch.
type Chain struct {
	Left, Right *Node
	Depth       int
}

// NewChain allocates an empty chain at the given depth: two sentinels,
// the left one pointing at the right one via an empty SUBST slot.
func NewChain(h *Heap, depth int) *Chain {
	left := h.Alloc(1)
	left.Variety = Sentinel
	left.Depth = depth
	right := h.Alloc(0)
	right.Variety = Sentinel
	right.Depth = depth

	left.Next = right
	right.Prev = left
	left.Slots[0] = Slot{Tag: Subst, Node: right}
	right.Nref++

	return &Chain{Left: left, Right: right, Depth: depth}
}

// Head returns the leftmost real node in the chain, or the right
// sentinel if the chain is empty. The left sentinel's Next pointer and
// its Slots[0] SUBST target are kept in lock-step by SetHead/Unlink, so
// either could be consulted; Head reads the SUBST slot because that is
// the field §3.3 assigns the meaning to.
func (c *Chain) Head() *Node {
	s := c.Left.Leftmost()
	if s.Tag == Subst {
		return s.Node
	}
	return c.Right
}

// SetHead rewires the left sentinel to point at n (which may be the
// right sentinel itself, for an empty chain), maintaining nref and the
// mirrored Prev/Next pointers.
func (c *Chain) SetHead(n *Node) {
	old := c.Left.Leftmost()
	var oldHead *Node
	if old.Tag == Subst && old.Node != nil {
		oldHead = old.Node
		old.Node.Nref--
	}
	c.Left.Slots[0] = Slot{Tag: Subst, Node: n}
	n.Nref++
	c.Left.Next = n
	n.Prev = c.Left
	if n.Next == nil && n != c.Right && oldHead != nil && oldHead != n {
		// n is not yet linked: it goes in front of the old head.
		n.Next = oldHead
		oldHead.Prev = n
	}
}

// InsertBefore splices n into the chain immediately before mark, which
// must already be linked into this chain (possibly the right sentinel).
// Only an insertion at the head touches reference counts, through
// SetHead (the left sentinel's SUBST moves to n); any other reference
// counts are for the caller to manage explicitly, mirroring the spec's
// explicit ownership-transfer discipline (§5).
func (c *Chain) InsertBefore(mark, n *Node) {
	prev := mark.Prev
	n.Prev = prev
	n.Next = mark
	mark.Prev = n
	if prev == c.Left {
		c.SetHead(n)
	} else {
		prev.Next = n
	}
}

// Unlink removes n from whatever chain it is a member of, without
// touching reference counts or freeing it.
func (c *Chain) Unlink(n *Node) {
	prev, next := n.Prev, n.Next
	if prev == c.Left {
		// re-point the sentinel's SUBST slot directly, bypassing the
		// nref bookkeeping in SetHead: the caller is responsible for
		// decrementing n's nref through Heap.Deref.
		c.Left.Slots[0] = Slot{Tag: Subst, Node: next}
		c.Left.Next = next
	} else if prev != nil {
		prev.Next = next
	}
	if next != nil {
		next.Prev = prev
	}
	n.Prev, n.Next = nil, nil
}

// Walk calls fn for every non-sentinel node left to right. fn may return
// false to stop early.
func (c *Chain) Walk(fn func(*Node) bool) {
	for n := c.Head(); n != c.Right && n != nil; n = n.Next {
		if !fn(n) {
			return
		}
	}
}

// WalkRTL calls fn for every non-sentinel node right to left.
func (c *Chain) WalkRTL(fn func(*Node) bool) {
	for n := c.Right.Prev; n != c.Left && n != nil; n = n.Prev {
		if !fn(n) {
			return
		}
	}
}

// Len returns the number of non-sentinel nodes in c.
func (c *Chain) Len() int {
	n := 0
	c.Walk(func(*Node) bool { n++; return true })
	return n
}

// CheckLinks verifies doubly-linked-list integrity: n.Next.Prev == n and
// n.Prev.Next == n for every node, including the sentinels.
func (c *Chain) CheckLinks() error {
	for n := c.Left; n != nil; n = n.Next {
		if n.Next != nil && n.Next.Prev != n {
			return &ListCorruption{Node: n}
		}
		if n == c.Right {
			break
		}
	}
	return nil
}

// ListCorruption reports a broken doubly-linked-list invariant.
type ListCorruption struct {
	Node *Node
}

func (e *ListCorruption) Error() string {
	return "graph: doubly-linked list corruption at node"
}
