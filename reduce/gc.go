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

import "github.com/arborlang/redex/graph"

// fullGC performs the §4.4.5 pressure-triggered sweep: starting from the
// chain Reduce was originally called with, it walks every reachable
// chain (recursing into ABS/FIX bodies and TEST branches exactly as
// lrSweep's ordinary descent does) collecting any node whose Nref has
// reached zero, then calibrates the heap's pressure baseline.
//
// Unlike the per-step collect rule, this sweep runs unconditionally over
// the whole graph regardless of which nested reduceChain call happened
// to trip the step counter — a chain reducing a deeply nested body has
// no way to see garbage stranded in a sibling branch, but a full GC
// should reclaim it anyway.
func (m *machine) fullGC() {
	m.gcChain(m.rootLeft, m.rootRight, m.rootDepth)
	m.h.Calibrate()
	m.stats.GCRuns++
}

func (m *machine) gcChain(left, right *graph.Node, depth int) {
	c := &graph.Chain{Left: left, Right: right, Depth: depth}
	n := left.Next
	for n != right && n != nil {
		next := n.Next
		if graph.CollectOne(m.h, c, n) {
			m.stats.Collected++
			n = next
			continue
		}
		switch n.Variety {
		case graph.Abs, graph.Fix:
			if body := n.Slots[0].Node; body != nil {
				m.gcChain(body, findRight(body), body.Depth)
			}
		case graph.Let:
			if body := n.Slots[0].Node; body != nil {
				m.gcChain(body, findRight(body), body.Depth)
			}
		case graph.Test:
			if cons := n.Slots[1].Node; cons != nil {
				m.gcChain(cons, findRight(cons), cons.Depth)
			}
			if alt := n.Slots[2].Node; alt != nil {
				m.gcChain(alt, findRight(alt), alt.Depth)
			}
		}
		n = next
	}
}
