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

package readback

import (
	"testing"

	"github.com/arborlang/redex/graph"
)

func mkBody(h *graph.Heap, depth int, node *graph.Node) *graph.Node {
	c := graph.NewChain(h, depth)
	c.SetHead(node)
	return c.Left
}

func TestBoolTrueFalse(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())

	trueBody := mkBody(h, 1, graph.NewBoundVar(h, 0, 0))
	trueAbs := graph.NewAbs(h, []graph.Symbol{1, 2}, trueBody)
	if v, ok := Bool(trueAbs); !ok || v != true {
		t.Fatalf("Bool(TRUE) = %v, %v; want true, true", v, ok)
	}

	falseBody := mkBody(h, 1, graph.NewBoundVar(h, 0, 1))
	falseAbs := graph.NewAbs(h, []graph.Symbol{1, 2}, falseBody)
	if v, ok := Bool(falseAbs); !ok || v != false {
		t.Fatalf("Bool(FALSE) = %v, %v; want false, true", v, ok)
	}
}

func TestBoolRejectsWrongArity(t *testing.T) {
	h := graph.NewHeap(graph.DefaultConfig())
	body := mkBody(h, 1, graph.NewBoundVar(h, 0, 0))
	abs := graph.NewAbs(h, []graph.Symbol{1}, body)
	if _, ok := Bool(abs); ok {
		t.Fatalf("Bool on a 1-ary ABS should miss")
	}
}

// churchNatBody builds f^n x directly (bypassing a reducer) as the body
// of a 2-ary ABS (x, f), returning the left sentinel of the body chain.
func churchNatBody(h *graph.Heap, n int) *graph.Node {
	c := graph.NewChain(h, 1)
	x := graph.Slot{Tag: graph.Bound, Up: 0, Across: 0}
	f := graph.Slot{Tag: graph.Bound, Up: 0, Across: 1}
	if n == 0 {
		c.SetHead(graph.NewBoundVar(h, 0, 0))
		return c.Left
	}
	arg := x
	var last *graph.Node
	for i := 0; i < n; i++ {
		app := graph.NewApp(h, f, []graph.Slot{arg})
		c.InsertBefore(c.Right, app)
		last = app
		arg = graph.Slot{Tag: graph.Subst, Node: app}
	}
	_ = last
	return c.Left
}

func TestChurchNat(t *testing.T) {
	for _, n := range []int{0, 1, 4, 10} {
		h := graph.NewHeap(graph.DefaultConfig())
		body := churchNatBody(h, n)
		abs := graph.NewAbs(h, []graph.Symbol{1, 2}, body)
		got, ok := ChurchNat(abs)
		if !ok || got != n {
			t.Fatalf("ChurchNat(%d) = %d, %v; want %d, true", n, got, ok, n)
		}
	}
}

func TestChurchIntSigned(t *testing.T) {
	for _, tc := range []struct{ n, want int }{{0, 0}, {3, 3}, {-5, -5}} {
		h := graph.NewHeap(graph.DefaultConfig())
		c := graph.NewChain(h, 1)
		mag := tc.want
		if mag < 0 {
			mag = -mag
		}

		x := graph.Slot{Tag: graph.Bound, Up: 0, Across: 0}
		f := graph.Slot{Tag: graph.Bound, Up: 0, Across: 1}
		arg := x
		var magResult *graph.Node
		if mag == 0 {
			magResult = graph.NewBoundVar(h, 0, 0)
			c.InsertBefore(c.Right, magResult)
		} else {
			for i := 0; i < mag; i++ {
				app := graph.NewApp(h, f, []graph.Slot{arg})
				c.InsertBefore(c.Right, app)
				magResult = app
				arg = graph.Slot{Tag: graph.Subst, Node: app}
			}
		}

		if tc.want < 0 {
			neg := graph.Slot{Tag: graph.Bound, Up: 0, Across: 2}
			wrapper := graph.NewApp(h, neg, []graph.Slot{{Tag: graph.Subst, Node: magResult}})
			c.InsertBefore(c.Right, wrapper)
		}

		abs := graph.NewAbs(h, []graph.Symbol{1, 2, 3}, c.Left)
		got, ok := ChurchInt(abs)
		if !ok || got != tc.want {
			t.Fatalf("ChurchInt(%d) = %d, %v; want %d, true", tc.n, got, ok, tc.want)
		}
	}
}
