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
	"fmt"

	"github.com/arborlang/redex/graph"
)

// Violation reports a single broken invariant found by CheckInvariants,
// naming the offending node so a caller can splice it into PrintChain
// output or a test failure message.
type Violation struct {
	Rule string
	Node *graph.Node
	Msg  string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("diag: %s: %s", v.Rule, v.Msg)
}

// CheckInvariants walks the chain bracketed by left/right (and, when
// deep is true, recurses into every ABS/FIX body and TEST branch; LET
// bodies are not entered)
// verifying the §4.5 predicates meant to hold after a reverse (or, with
// requireNormalForm, after a completed Deep reduce): no beta-redex, no
// unfired TEST, no rename chain longer than one hop, list-integrity,
// depth consistency, and — only when requireNormalForm is set, since it
// does not hold mid-reduction — nref >= 1 on every non-sentinel node.
// It returns the first violation found, or nil if none.
func CheckInvariants(left, right *graph.Node, depth int, deep, requireNormalForm bool) error {
	c := &graph.Chain{Left: left, Right: right, Depth: depth}
	if err := c.CheckLinks(); err != nil {
		return &Violation{Rule: "list-integrity", Node: left, Msg: err.Error()}
	}
	var violation error
	c.Walk(func(n *graph.Node) bool {
		if n.Depth != depth {
			violation = &Violation{Rule: "depth-consistency", Node: n, Msg: fmt.Sprintf("node depth %d != chain depth %d", n.Depth, depth)}
			return false
		}
		if requireNormalForm && n.Nref < 1 {
			violation = &Violation{Rule: "dangling-zero-ref", Node: n, Msg: "non-sentinel node has nref 0 after reduce"}
			return false
		}
		if n.Variety == graph.Let {
			violation = &Violation{Rule: "no-let", Node: n, Msg: "LET node survived past reduce"}
			return false
		}
		if isBetaRedex(n) {
			violation = &Violation{Rule: "no-redex", Node: n, Msg: "APP's leftmost slot resolves to an ABS/FIX"}
			return false
		}
		if n.Variety == graph.Test {
			if _, ok := resolveNum(n.Slots[0]); ok {
				violation = &Violation{Rule: "no-missed-test", Node: n, Msg: "TEST predicate resolves to a concrete NUM"}
				return false
			}
		}
		if isRenameVar(n) {
			if target := n.Slots[0].Node; target != nil && isRenameVar(target) {
				violation = &Violation{Rule: "rename-short-circuit", Node: n, Msg: "rename chain longer than one hop"}
				return false
			}
		}
		if deep {
			switch n.Variety {
			case graph.Abs, graph.Fix:
				if body := n.Slots[0].Node; body != nil {
					if err := CheckInvariants(body, findRight(body), body.Depth, deep, requireNormalForm); err != nil {
						violation = err
						return false
					}
				}
			case graph.Test:
				for _, i := range [2]int{1, 2} {
					if body := n.Slots[i].Node; body != nil {
						if err := CheckInvariants(body, findRight(body), body.Depth, deep, requireNormalForm); err != nil {
							violation = err
							return false
						}
					}
				}
			}
		}
		return true
	})
	return violation
}

func isBetaRedex(n *graph.Node) bool {
	if n.Variety != graph.App {
		return false
	}
	fn := n.Slots[0]
	if fn.Tag != graph.Subst || fn.Node == nil {
		return false
	}
	return fn.Node.Variety == graph.Abs || fn.Node.Variety == graph.Fix
}

func isRenameVar(n *graph.Node) bool {
	return n.Variety == graph.Var && len(n.Slots) == 1 && n.Slots[0].Tag == graph.Subst
}

func resolveNum(s graph.Slot) (float64, bool) {
	if s.Tag != graph.Subst {
		return 0, false
	}
	n := s.Node
	for n != nil && isRenameVar(n) {
		n = n.Slots[0].Node
	}
	if n == nil || n.Variety != graph.Val || n.Slots[0].Tag != graph.Num {
		return 0, false
	}
	return n.Slots[0].NumVal, true
}

func findRight(left *graph.Node) *graph.Node {
	n := left.Next
	for n != nil && n.Variety != graph.Sentinel {
		n = n.Next
	}
	return n
}
