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
	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/redexlog"
)

// machine holds the per-call state a single Reduce invocation threads
// through every chain it visits: the heap, the requested depth (Deep vs
// Surface), the session's debug logger, and running firing statistics.
// Nesting into ABS/FIX/TEST bodies is ordinary Go-call recursion
// (reduceChain calling itself) rather than an explicit work-stack: a
// program's binder nesting is bounded by its own structure, unlike chain
// length, which is unbounded and so is walked iteratively below.
type machine struct {
	h         *graph.Heap
	mode      Mode
	log       *redexlog.Logger
	sessionID string
	stats     Stats

	rootLeft, rootRight *graph.Node
	rootDepth           int
	stepsSinceGC        int
}

// reduceChain drives one chain (the top-level program, or a binder body)
// to normal form: alternating right-to-left contraction and left-to-right
// collection/descent until one full round trip rewrites nothing (§4.4.1).
func (m *machine) reduceChain(left, right *graph.Node, depth int) error {
	for {
		rlChanged, err := m.rlSweep(left, right, depth)
		if err != nil {
			return err
		}
		lrChanged, err := m.lrSweep(left, right, depth)
		if err != nil {
			return err
		}
		if !rlChanged && !lrChanged {
			return nil
		}
	}
}

// rlSweep performs one right-to-left contraction pass over the chain
// bracketed by left/right: it walks from the right sentinel toward the
// left, firing whichever rule (§4.4.2) applies at each node, and resets
// its cursor to the newly contracted node's position so a cascade of
// redexes (e.g. curried applications) collapses within the same pass.
func (m *machine) rlSweep(left, right *graph.Node, depth int) (bool, error) {
	populateBackrefs(left, right)
	changed := false
	cur := right.Prev
	for cur != left && cur != nil {
		next, rewrote, err := m.step(cur, depth)
		if err != nil {
			return changed, err
		}
		if rewrote {
			changed = true
			m.stats.Steps++
		}
		m.maybeGC()
		cur = next
	}
	return changed, nil
}

// step applies the first matching rule at n, in the §4.4.2 priority
// order, and returns the node the sweep should continue from next.
func (m *machine) step(n *graph.Node, depth int) (*graph.Node, bool, error) {
	switch {
	case n.Variety == graph.Let:
		return m.zeta(n, depth)
	case isAbsHead(n):
		return m.beta(n, depth)
	case isPrimHead(n):
		return m.prim(n)
	case n.Variety == graph.Test && isTestReady(n):
		return m.test(n, depth)
	case isRenameVar(n):
		return m.rename(n)
	default:
		return n.Prev, false, nil
	}
}

// lrSweep performs one left-to-right collection pass: every node whose
// Nref has reached zero is unlinked and freed (§4.4.3 rule 1), and in
// Deep mode every ABS/FIX/TEST body is recursively normalized before the
// walk continues past it (§4.4.3 rule 2/3).
func (m *machine) lrSweep(left, right *graph.Node, depth int) (bool, error) {
	changed := false
	n := left.Next
	c := &graph.Chain{Left: left, Right: right, Depth: depth}
	for n != right && n != nil {
		next := n.Next
		if graph.CollectOne(m.h, c, n) {
			changed = true
			m.stats.Collected++
			m.maybeGC()
			n = next
			continue
		}
		if m.mode == Deep {
			if err := m.descend(n, depth); err != nil {
				return changed, err
			}
		}
		m.maybeGC()
		n = next
	}
	return changed, nil
}

// descend recursively normalizes the binder bodies owned by n, when n is
// one the left-to-right sweep must look inside (§4.4.3 rule 3): an
// ABS/FIX's single body, or a TEST's two branches. Each sub-chain's own
// recorded Depth is used rather than recomputing depth+1; a TEST's
// branches, like an ABS/FIX body, sit one level deeper than their owner
// (with references out of a branch bumped one higher to match), so the
// sentinel's Depth field carries that level either way.
func (m *machine) descend(n *graph.Node, depth int) error {
	switch n.Variety {
	case graph.Abs, graph.Fix:
		body := n.Slots[0].Node
		if body == nil {
			return nil
		}
		return m.reduceChain(body, findRight(body), body.Depth)
	case graph.Test:
		if cons := n.Slots[1].Node; cons != nil {
			if err := m.reduceChain(cons, findRight(cons), cons.Depth); err != nil {
				return err
			}
		}
		if alt := n.Slots[2].Node; alt != nil {
			if err := m.reduceChain(alt, findRight(alt), alt.Depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// findRight walks from a body's left sentinel to its matching right
// sentinel; bodies are only ever handed to the reducer as a left
// sentinel (the BODY slot's payload), so the chain's other end must be
// rediscovered by walking.
func findRight(left *graph.Node) *graph.Node {
	n := left.Next
	for n != nil && n.Variety != graph.Sentinel {
		n = n.Next
	}
	return n
}

// maybeGC advances the step counter and, every Config.CheckEvery steps,
// checks heap pressure, running a full structural GC sweep (§4.4.5) if it
// exceeds Config.Threshold.
func (m *machine) maybeGC() {
	m.stepsSinceGC++
	if m.h.Config.CheckEvery <= 0 || m.stepsSinceGC < m.h.Config.CheckEvery {
		return
	}
	m.stepsSinceGC = 0
	if m.h.Pressure() <= m.h.Config.Threshold {
		return
	}
	if m.log != nil {
		m.log.Debugf("session %s: heap pressure %.2f exceeds threshold %.2f, running gc", m.sessionID, m.h.Pressure(), m.h.Config.Threshold)
	}
	m.fullGC()
}
