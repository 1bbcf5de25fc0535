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

// Package readback interprets a reduced graph's normal form as one of a
// handful of conventional encodings (§6): Booleans, Church naturals, and
// signed Church integers. None of this is part of the reduction core
// itself — the core only produces a normal-form graph; recognizing what
// that graph "means" is an external collaborator's job, same as the
// parser building the initial graph is.
//
// Every function here returns (value, ok); a false ok is a ReadbackMiss
// (§7): the node just isn't shaped like the expected encoding, which is
// not an error the caller should treat as fatal — it may simply try a
// different readback.
package readback

import "github.com/arborlang/redex/graph"

// Bool recognizes the conventional Boolean encoding: a 2-parameter ABS
// whose body is a single VAR node directly selecting one of its two
// parameters by de Bruijn index — BOUND(0,0) for TRUE, BOUND(0,1) for
// FALSE, matching the classic \t f. t / \t f. f pair generalized to this
// Machine's multi-parameter ABS (§9.4: MLC is authoritative, so the
// curried two-abstraction shape from the untyped-lambda-calculus origin
// collapses into one 2-ary ABS rather than two nested 1-ary ones).
func Bool(n *graph.Node) (bool, bool) {
	if n.Variety != graph.Abs || len(n.Slots) != 3 {
		return false, false
	}
	sel, ok := soleResult(n.Slots[0].Node)
	if !ok || sel.Variety != graph.Var || len(sel.Slots) != 1 {
		return false, false
	}
	s := sel.Slots[0]
	if s.Tag != graph.Bound || s.Up != 0 {
		return false, false
	}
	switch s.Across {
	case 0:
		return true, true
	case 1:
		return false, true
	default:
		return false, false
	}
}

// ChurchNat recognizes a 2-parameter ABS whose body is `f^n x` —
// BOUND(0,0) is x, BOUND(0,1) is f, and the body nests n applications of
// f to x (§6). n == 0 is the bare reference to x with no application at
// all.
func ChurchNat(n *graph.Node) (int, bool) {
	if n.Variety != graph.Abs || len(n.Slots) != 3 {
		return 0, false
	}
	result, ok := soleResult(n.Slots[0].Node)
	if !ok {
		return 0, false
	}
	return countApplications(result)
}

// ChurchInt recognizes a 3-parameter ABS encoding a signed Church
// integer: the body is the unsigned ChurchNat shape built from
// parameters 0 (x) and 1 (f), optionally wrapped in one outer
// application of parameter 2 (the negation marker) when the value is
// negative (§6, §9's silence on the exact encoding resolved here — see
// DESIGN.md).
func ChurchInt(n *graph.Node) (int, bool) {
	if n.Variety != graph.Abs || len(n.Slots) != 4 {
		return 0, false
	}
	result, ok := soleResult(n.Slots[0].Node)
	if !ok {
		return 0, false
	}
	negative := false
	if result.Variety == graph.App && len(result.Slots) == 2 {
		if fn := result.Slots[0]; fn.Tag == graph.Bound && fn.Up == 0 && fn.Across == 2 {
			negative = true
			inner, ok := resolveArg(result.Slots[1])
			if !ok {
				return 0, false
			}
			result = inner
		}
	}
	mag, ok := countApplications(result)
	if !ok {
		return 0, false
	}
	if negative {
		mag = -mag
	}
	return mag, true
}

// soleResult returns the rightmost node in the chain bracketed by left,
// however many nodes precede it — the value a fully-normalized body's
// chain yields, per §4.4.1's normal-form guarantee that a round trip
// with no further rewrites leaves exactly the result node(s) behind. A
// body whose chain
// has no nodes, or whose rightmost node cannot be reached by walking
// forward from left, is not a recognizable encoding.
func soleResult(left *graph.Node) (*graph.Node, bool) {
	if left == nil {
		return nil, false
	}
	n := left.Next
	if n == nil || n.Variety == graph.Sentinel {
		return nil, false
	}
	last := n
	for last.Next != nil && last.Next.Variety != graph.Sentinel {
		last = last.Next
	}
	return last, true
}

// countApplications walks n backward through its own argument slot (not
// the chain's Prev pointer — the two happen to coincide for well-formed
// Church-numeral bodies, but the encoding is defined structurally, by
// the argument a node applies f to, not by list position) counting how
// many applications of f = BOUND(0,1) separate n from the base case
// x = BOUND(0,0).
func countApplications(n *graph.Node) (int, bool) {
	if n.Variety == graph.Var && len(n.Slots) == 1 {
		s := n.Slots[0]
		if s.Tag == graph.Bound && s.Up == 0 && s.Across == 0 {
			return 0, true
		}
		return 0, false
	}
	if n.Variety != graph.App || len(n.Slots) != 2 {
		return 0, false
	}
	fn := n.Slots[0]
	if fn.Tag != graph.Bound || fn.Up != 0 || fn.Across != 1 {
		return 0, false
	}
	argNode, ok := resolveArg(n.Slots[1])
	if !ok {
		return 0, false
	}
	rest, ok := countApplications(argNode)
	if !ok {
		return 0, false
	}
	return rest + 1, true
}

// resolveArg returns the node an argument slot denotes: either the
// SUBST target directly, or a synthetic base-case VAR node for a bare
// BOUND(0,0) argument (the innermost application's argument is x itself,
// stored inline rather than through a separate wrapper node — see
// beta.substBound, which only allocates a SUBST when the bound variable
// is being replaced, not when it is merely referenced unsubstituted).
func resolveArg(s graph.Slot) (*graph.Node, bool) {
	switch s.Tag {
	case graph.Subst:
		if s.Node == nil {
			return nil, false
		}
		return s.Node, true
	case graph.Bound:
		return &graph.Node{Variety: graph.Var, Slots: []graph.Slot{s}}, true
	default:
		return nil, false
	}
}
