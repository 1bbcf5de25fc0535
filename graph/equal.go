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

// Equal reports whether a and b are structurally (node-)isomorphic: same
// shape, same literal content, with SUBST/BODY targets compared
// recursively rather than by pointer identity. It is used by the
// confluence/idempotence properties of §8.1, which require comparing two
// independently-reduced graphs that are not expected to share node
// identity.
func Equal(a, b *Node) bool {
	return equal(a, b, make(map[[2]*Node]bool))
}

func equal(a, b *Node, seen map[[2]*Node]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	key := [2]*Node{a, b}
	if seen[key] {
		return true // already assumed equal higher up the recursion
	}
	seen[key] = true

	if a.Variety != b.Variety || len(a.Slots) != len(b.Slots) {
		return false
	}
	for i := range a.Slots {
		if !equalSlot(&a.Slots[i], &b.Slots[i], seen) {
			return false
		}
	}
	return true
}

func equalSlot(a, b *Slot, seen map[[2]*Node]bool) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Null:
		return true
	case Body, Subst:
		return equal(a.Node, b.Node, seen)
	case Bound:
		return a.Up == b.Up && a.Across == b.Across
	case Constant:
		return a.ConstIdx == b.ConstIdx
	case Param, SymbolLit:
		return a.Sym == b.Sym
	case Num:
		return a.NumVal == b.NumVal || (a.NumVal != a.NumVal && b.NumVal != b.NumVal) // nan == nan here
	case String:
		return a.StrVal == b.StrVal
	case Prim:
		return a.PrimOp == b.PrimOp
	default:
		return false
	}
}
