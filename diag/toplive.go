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

package diag

import (
	"sort"

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/heap"
)

// ChainSize names a chain (by its left sentinel and a caller-supplied
// label, since a bare *graph.Node carries no identity a human report
// can use) together with its live non-sentinel node count.
type ChainSize struct {
	Label string
	Left  *graph.Node
	Nodes int
}

// TopLiveChains returns the topN largest of the given chains by live
// node count, largest first. It maintains the running candidate set as
// a bounded min-heap (smallest-survives-longest) over package heap's
// generic slice-heap operations: every chain is measured once, pushed,
// and if that growns the heap past topN the current smallest is popped
// immediately, so memory stays O(topN) regardless of how many chains
// are scanned — the same bounded-top-K discipline a live "largest
// queries" dashboard would use, adapted here to largest live chains
// instead of largest queries.
func TopLiveChains(chains map[string]*graph.Node, topN int) []ChainSize {
	if topN < 1 {
		return nil
	}
	less := func(a, b ChainSize) bool { return a.Nodes < b.Nodes }

	var kept []ChainSize
	for label, left := range chains {
		cs := ChainSize{Label: label, Left: left, Nodes: countLive(left)}
		if len(kept) < topN {
			heap.PushSlice(&kept, cs, less)
			continue
		}
		if less(kept[0], cs) {
			heap.PopSlice(&kept, less)
			heap.PushSlice(&kept, cs, less)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Nodes > kept[j].Nodes })
	return kept
}

func countLive(left *graph.Node) int {
	n := 0
	for cur := left.Next; cur != nil && cur.Variety != graph.Sentinel; cur = cur.Next {
		n++
	}
	return n
}
