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

// Package reduce implements the §4.4 reducer: a two-direction sweep over
// a graph.Chain that contracts redexes (beta, zeta, primitive, test)
// right-to-left, then collects garbage and recurses into binder bodies
// left-to-right, until a full round trip performs no rewrites.
package reduce

import (
	"github.com/arborlang/redex/beta"
	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/redexlog"
)

// Mode selects how deeply Reduce normalizes the graph (§4.4, external
// interface of §6).
type Mode int

const (
	// Deep recurses into every ABS/FIX/TEST body, producing full normal
	// form.
	Deep Mode = iota
	// Surface stops at the top-level chain's head normal form without
	// descending into binder bodies.
	Surface
)

func (m Mode) String() string {
	if m == Surface {
		return "SURFACE"
	}
	return "DEEP"
}

// Stats counts rule firings and collector activity during one Reduce
// call, consumed by package diag's eval_stats report.
type Stats struct {
	Beta, Zeta, Prim, Test, Rename int
	Collected                      int
	GCRuns                         int
	Steps                          int
}

// Reduce drives root to normal form (Deep) or surface weak-head form
// (Surface), per §4.4. It returns the resulting chain's head node (the
// single surviving value, for a well-formed program) and the session's
// firing statistics. log may be nil to disable debug tracing.
//
// Reduce is not reentrant on the same heap (§4.4.7): a second call while
// one is in flight on h returns a *ReentrancyError.
//
// A FatalBug detected deep inside package graph or package beta (a
// refcount underflow, an empty redex body) surfaces as a Go panic from
// those packages rather than an error return; Reduce recovers it here
// and reports it as a *FatalError, since it reflects a malformed input
// graph rather than a condition the reducer can itself recover from. A
// primitive's explicit `panic` operator (*prim.Panicked) is a distinct,
// deliberate abort the source program asked for (§4.3) and is left to
// propagate to the caller unrecovered.
func Reduce(h *graph.Heap, root *graph.Chain, mode Mode, log *redexlog.Logger) (result *graph.Node, stats Stats, err error) {
	sess, err := beginSession(h, log)
	if err != nil {
		return nil, Stats{}, err
	}
	defer sess.end(h)

	m := &machine{
		h:         h,
		mode:      mode,
		log:       log,
		sessionID: sess.ID(),
		rootLeft:  root.Left,
		rootRight: root.Right,
		rootDepth: root.Depth,
	}
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *graph.RefcountUnderflow:
				stats, err = m.stats, &FatalError{Kind: "refcount-underflow", Node: e.Node, Msg: e.Error()}
			case *beta.EmptyBody:
				stats, err = m.stats, &FatalError{Kind: "empty-body", Node: e.Node, Msg: e.Error()}
			default:
				panic(r)
			}
		}
	}()

	if rerr := m.reduceChain(root.Left, root.Right, root.Depth); rerr != nil {
		return nil, m.stats, rerr
	}
	return root.Head(), m.stats, nil
}
