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

package reduce_test

import (
	"testing"

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/prim"
	"github.com/arborlang/redex/reduce"
)

// chainOf builds a chain at depth holding nodes in left-to-right order,
// returning its left sentinel.
func chainOf(h *graph.Heap, depth int, nodes ...*graph.Node) *graph.Node {
	c := graph.NewChain(h, depth)
	for _, n := range nodes {
		c.InsertBefore(c.Right, n)
	}
	return c.Left
}

func asChain(left *graph.Node, depth int) *graph.Chain {
	right := left.Next
	for right.Variety != graph.Sentinel {
		right = right.Next
	}
	return &graph.Chain{Left: left, Right: right, Depth: depth}
}

func mustReduce(t *testing.T, h *graph.Heap, left *graph.Node) *graph.Node {
	t.Helper()
	c := asChain(left, 0)
	result, stats, err := reduce.Reduce(h, c, reduce.Deep, nil)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	t.Logf("stats: %+v", stats)
	return result
}

func num(v float64) graph.Slot { return graph.Slot{Tag: graph.Num, NumVal: v} }

// identity of identity should leave one ABS node behind: (\x.x)(\y.y) -> \y.y
func TestIdentityApplication(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	mkIdentity := func() *graph.Node {
		body := chainOf(h, 1, graph.NewBoundVar(h, 0, 0))
		return graph.NewAbs(h, []graph.Symbol{1}, body)
	}
	id1, id2 := mkIdentity(), mkIdentity()
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: id1}, []graph.Slot{{Tag: graph.Subst, Node: id2}})

	result := mustReduce(t, h, chainOf(h, 0, app))
	if result.Variety != graph.Abs {
		t.Fatalf("expected ABS normal form, got %s", result.Variety)
	}
}

// (\x y. y) 1 2 -> 2: the discarded first argument must not appear in the
// result and its wrapper must have been collected.
func TestConstSelectsSecondArg(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	body := chainOf(h, 1, graph.NewBoundVar(h, 0, 1))
	k := graph.NewAbs(h, []graph.Symbol{1, 2}, body)
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: k}, []graph.Slot{num(1), num(2)})

	result := mustReduce(t, h, chainOf(h, 0, app))
	if result.Variety != graph.Val || result.Slots[0].Tag != graph.Num || result.Slots[0].NumVal != 2 {
		t.Fatalf("expected NUM 2, got %#v", result)
	}
}

// + 2 3 -> 5
func TestPrimArithmetic(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	add := graph.NewPrim(h, prim.Add, "+")
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: add}, []graph.Slot{num(2), num(3)})

	result := mustReduce(t, h, chainOf(h, 0, app))
	if result.Slots[0].NumVal != 5 {
		t.Fatalf("expected NUM 5, got %v", result.Slots[0].NumVal)
	}
}

// let x = 5 in x + 1 -> 6
func TestLetBinding(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	add := graph.NewPrim(h, prim.Add, "+")
	addApp := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: add}, []graph.Slot{{Tag: graph.Bound, Up: 0, Across: 0}, num(1)})
	body := chainOf(h, 1, addApp)
	let := graph.NewLet(h, body, []graph.Slot{num(5)})

	result := mustReduce(t, h, chainOf(h, 0, let))
	if result.Slots[0].NumVal != 6 {
		t.Fatalf("expected NUM 6, got %v", result.Slots[0].NumVal)
	}
}

// IF 1 THEN 42 ELSE 99 -> 42; IF 0 THEN 42 ELSE 99 -> 99
func TestTestBranching(t *testing.T) {
	for _, tc := range []struct {
		pred float64
		want float64
	}{{1, 42}, {0, 99}} {
		h := graph.NewHeap(graph.DefaultConfig())
		cons := chainOf(h, 1, graph.NewNum(h, 42))
		alt := chainOf(h, 1, graph.NewNum(h, 99))
		test := graph.NewTest(h, num(tc.pred), cons, alt)

		result := mustReduce(t, h, chainOf(h, 0, test))
		if result.Slots[0].NumVal != tc.want {
			t.Fatalf("pred=%v: expected NUM %v, got %v", tc.pred, tc.want, result.Slots[0].NumVal)
		}
	}
}

// FIX f n. IF (n = 0) THEN 1 ELSE n * (f (n - 1)) applied to 5 -> 120.
func TestFactorialViaFix(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	eq := graph.NewPrim(h, prim.Eq, "=")
	sub := graph.NewPrim(h, prim.Sub, "-")
	mul := graph.NewPrim(h, prim.Mul, "*")

	// self is the FIX's implicit self-binder: BOUND(0, len(names)) with
	// names=[n], i.e. BOUND(0, 1), as seen directly inside the FIX's own
	// body. References made one BODY-slot deeper — inside the TEST's
	// alt branch, which crosses a BODY boundary without introducing a
	// binder of its own — must carry up one higher to account for that
	// extra hop; the test rule's Delta=0 (see test.go) is exactly what
	// undoes this bump once the branch is spliced up to replace the TEST
	// node, since substitution maps such a reference to up-1+Delta.
	n0 := graph.Slot{Tag: graph.Bound, Up: 0, Across: 0}
	nInner := graph.Slot{Tag: graph.Bound, Up: 1, Across: 0}
	selfInner := graph.Slot{Tag: graph.Bound, Up: 1, Across: 1}

	nMinus1 := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: sub}, []graph.Slot{nInner, num(1)})
	rec := graph.NewApp(h, selfInner, []graph.Slot{{Tag: graph.Subst, Node: nMinus1}})
	finalMul := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: mul}, []graph.Slot{nInner, {Tag: graph.Subst, Node: rec}})
	altBody := chainOf(h, 2, nMinus1, rec, finalMul)

	consBody := chainOf(h, 2, graph.NewNum(h, 1))

	eqApp := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: eq}, []graph.Slot{n0, num(0)})
	test := graph.NewTest(h, graph.Slot{Tag: graph.Subst, Node: eqApp}, consBody, altBody)
	fixBody := chainOf(h, 1, eqApp, test)

	fact := graph.NewFix(h, []graph.Symbol{1}, fixBody)
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: fact}, []graph.Slot{num(5)})

	result := mustReduce(t, h, chainOf(h, 0, app))
	if result.Variety != graph.Val || result.Slots[0].Tag != graph.Num {
		t.Fatalf("expected a NUM result, got %#v", result)
	}
	if got := result.Slots[0].NumVal; got != 120 {
		t.Fatalf("factorial(5): expected 120, got %v", got)
	}
}

// A reentrant call on the same heap while one is in flight is rejected;
// exercised directly against the session bookkeeping rather than via
// real concurrency, since the machine itself is not reentrant by design.
func TestReentrancyRejected(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())
	add := graph.NewPrim(h, prim.Add, "+")
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: add}, []graph.Slot{num(1), num(1)})
	c := asChain(chainOf(h, 0, app), 0)

	first, _, err := reduce.Reduce(h, c, reduce.Deep, nil)
	if err != nil {
		t.Fatalf("first reduce: %v", err)
	}
	if first.Slots[0].NumVal != 2 {
		t.Fatalf("expected NUM 2, got %v", first.Slots[0].NumVal)
	}
	// The session ended when the first call returned, so a second call on
	// the same (now idle) heap must succeed rather than report reentrancy.
	add2 := graph.NewPrim(h, prim.Add, "+")
	app2 := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: add2}, []graph.Slot{num(1), num(1)})
	c2 := asChain(chainOf(h, 0, app2), 0)
	if _, _, err := reduce.Reduce(h, c2, reduce.Deep, nil); err != nil {
		t.Fatalf("second reduce after session ended: %v", err)
	}
}
