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
	"math/rand"
	"testing"

	"github.com/arborlang/redex/diag"
	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/prim"
	"github.com/arborlang/redex/reduce"
)

// genScope tracks, for each abstraction currently enclosing the term
// being generated, how many parameters it bound, innermost first —
// enough to pick a well-scoped BOUND(up, across) reference.
type genScope []int

var arithOps = []graph.PrimOp{prim.Add, prim.Sub, prim.Mul}
var cmpOps = []graph.PrimOp{prim.Lt, prim.Gt, prim.Eq}

func primName(op graph.PrimOp) string {
	if d := prim.Lookup(op); d != nil {
		return d.Name
	}
	return "?"
}

// genTerm builds a random closed term as a slot (SUBST to a freshly
// built node, or a literal BOUND/NUM), consuming fuel fairly so
// generation always terminates. Every application it builds is fully
// saturated and its function position is always a literal ABS/FIX or
// PRIM node, never a bound variable — so unlike a general untyped term
// these can never shape an omega combinator, and every beta/prim step
// strictly reduces the live graph's node count. genSharedRedex
// deliberately reproduces the one case that matters most here: a bound
// parameter used twice whose argument is itself still a redex, which is
// exactly the Nref > 1 shape a dangling-pointer regression in
// beta/prim's splice would crash on.
func genTerm(h *graph.Heap, rng *rand.Rand, scope genScope, fuel *int) graph.Slot {
	if *fuel <= 0 || rng.Intn(3) == 0 {
		return genLeaf(rng, scope)
	}
	*fuel--

	switch rng.Intn(4) {
	case 0:
		return genAbsApp(h, rng, scope, fuel, 1+rng.Intn(2))
	case 1:
		return genPrimApp(h, rng, scope, fuel, arithOps[rng.Intn(len(arithOps))])
	case 2:
		return genSharedRedex(h, rng, scope, fuel)
	default:
		return genTest(h, rng, scope, fuel)
	}
}

func genLeaf(rng *rand.Rand, scope genScope) graph.Slot {
	if len(scope) > 0 && rng.Intn(2) == 0 {
		up := rng.Intn(len(scope))
		across := rng.Intn(scope[up])
		return graph.Slot{Tag: graph.Bound, Up: up, Across: across}
	}
	return graph.Slot{Tag: graph.Num, NumVal: float64(rng.Intn(20))}
}

// asNode turns any slot genTerm can produce into a concrete *graph.Node,
// the same wrapping beta.wrap applies to a redex's argument slots.
func asNode(h *graph.Heap, s graph.Slot) *graph.Node {
	switch s.Tag {
	case graph.Subst:
		return s.Node
	case graph.Bound:
		return graph.NewBoundVar(h, s.Up, s.Across)
	default:
		n := h.Alloc(1)
		n.Variety = graph.Val
		n.Slots[0] = s
		return n
	}
}

// wrapBody wraps node as the sole entry of a freshly built chain at
// depth, returning its left sentinel — the shape NewAbs/NewTest expect
// for a body/branch.
func wrapBody(h *graph.Heap, depth int, node *graph.Node) *graph.Node {
	c := graph.NewChain(h, depth)
	c.SetHead(node)
	return c.Left
}

// symbolsFor returns n distinct parameter symbols for a fresh
// abstraction; the actual ids are never inspected by anything this
// fuzzer checks.
func symbolsFor(n int) []graph.Symbol {
	syms := make([]graph.Symbol, n)
	for i := range syms {
		syms[i] = graph.Symbol(i + 1)
	}
	return syms
}

func genAbsApp(h *graph.Heap, rng *rand.Rand, scope genScope, fuel *int, n int) graph.Slot {
	innerScope := append(genScope{n}, scope...)
	bodyNode := asNode(h, genTerm(h, rng, innerScope, fuel))
	abs := graph.NewAbs(h, symbolsFor(n), wrapBody(h, len(scope)+1, bodyNode))

	args := make([]graph.Slot, n)
	for i := range args {
		args[i] = genTerm(h, rng, scope, fuel)
	}
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: abs}, args)
	return graph.Slot{Tag: graph.Subst, Node: app}
}

func genPrimApp(h *graph.Heap, rng *rand.Rand, scope genScope, fuel *int, op graph.PrimOp) graph.Slot {
	a := genTerm(h, rng, scope, fuel)
	b := genTerm(h, rng, scope, fuel)
	primNode := graph.NewPrim(h, op, primName(op))
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: primNode}, []graph.Slot{a, b})
	return graph.Slot{Tag: graph.Subst, Node: app}
}

// genSharedRedex builds (\x. op x x) arg, where arg is itself a fresh
// redex: after beta fires, arg ends up with Nref == 2 (two SUBST slots
// in the copied/rewritten body both name it), the exact shape
// populateBackrefs never assigns a Backref to.
func genSharedRedex(h *graph.Heap, rng *rand.Rand, scope genScope, fuel *int) graph.Slot {
	op := arithOps[rng.Intn(len(arithOps))]
	bodyApp := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: graph.NewPrim(h, op, primName(op))}, []graph.Slot{
		{Tag: graph.Bound, Up: 0, Across: 0},
		{Tag: graph.Bound, Up: 0, Across: 0},
	})
	abs := graph.NewAbs(h, symbolsFor(1), wrapBody(h, len(scope)+1, bodyApp))

	argNode := asNode(h, genTerm(h, rng, scope, fuel))
	app := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: abs}, []graph.Slot{{Tag: graph.Subst, Node: argNode}})
	return graph.Slot{Tag: graph.Subst, Node: app}
}

func genTest(h *graph.Heap, rng *rand.Rand, scope genScope, fuel *int) graph.Slot {
	op := cmpOps[rng.Intn(len(cmpOps))]
	a := genTerm(h, rng, scope, fuel)
	b := genTerm(h, rng, scope, fuel)
	predApp := graph.NewApp(h, graph.Slot{Tag: graph.Subst, Node: graph.NewPrim(h, op, primName(op))}, []graph.Slot{a, b})

	cons := asNode(h, genTerm(h, rng, scope, fuel))
	alt := asNode(h, genTerm(h, rng, scope, fuel))
	test := graph.NewTest(h, graph.Slot{Tag: graph.Subst, Node: predApp},
		wrapBody(h, len(scope), cons), wrapBody(h, len(scope), alt))
	return graph.Slot{Tag: graph.Subst, Node: test}
}

// TestFuzzReduceInvariants builds random closed terms across a range of
// seeds and checks the universal properties §8.1 claims hold for all of
// them: Deep reduction never panics or returns a FatalError, the normal
// form it reaches satisfies every structural invariant package diag
// checks (no surviving redex, no rename chain longer than one hop, every
// live node's nref >= 1), and reducing that normal form a second time is
// a no-op, both in shape and in rule firings.
func TestFuzzReduceInvariants(t *testing.T) {
	const trials = 300
	for seed := int64(0); seed < trials; seed++ {
		rng := rand.New(rand.NewSource(seed))
		h := graph.NewHeap(graph.DefaultConfig())

		fuel := 8
		root := asNode(h, genTerm(h, rng, nil, &fuel))
		c := asChain(chainOf(h, 0, root), 0)

		result, _, err := reduce.Reduce(h, c, reduce.Deep, nil)
		if err != nil {
			t.Fatalf("seed %d: reduce: %v", seed, err)
		}
		if err := diag.CheckInvariants(c.Left, c.Right, 0, true, true); err != nil {
			t.Fatalf("seed %d: invariant violated after reduce: %v", seed, err)
		}

		again, stats, err := reduce.Reduce(h, c, reduce.Deep, nil)
		if err != nil {
			t.Fatalf("seed %d: re-reduce: %v", seed, err)
		}
		if !graph.Equal(result, again) {
			t.Fatalf("seed %d: re-reducing an already-normal graph changed its shape", seed)
		}
		if stats.Beta != 0 || stats.Prim != 0 || stats.Zeta != 0 || stats.Test != 0 {
			t.Fatalf("seed %d: re-reducing an already-normal graph fired rewrite rules: %+v", seed, stats)
		}
	}
}
