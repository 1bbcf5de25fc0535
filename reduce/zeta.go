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
	"github.com/arborlang/redex/beta"
	"github.com/arborlang/redex/graph"
)

// zeta contracts n, a LET node, by substituting its bound values into
// its continuation (§4.4.2 rule 1, named separately from beta because a
// LET owns its body directly rather than through a distinct ABS/FIX
// node). The continuation is always rewritten in place: §3.4's ownership
// invariant guarantees a LET's BODY slot is its continuation's only
// owner, so beta_copy's extra allocation would never be observed and is
// never worth paying for (§9.4's resolution of the corresponding Open
// Question).
//
// Delta is 0: unlike an ABS/FIX application, which may fire at a
// different nesting depth than where the abstraction was written, a
// LET's continuation is always contracted at exactly the depth it was
// built at.
func (m *machine) zeta(n *graph.Node, depth int) (*graph.Node, bool, error) {
	r := &beta.Redex{
		Node:  n,
		Args:  append([]graph.Slot(nil), n.Slots[1:]...),
		Body:  n.Slots[0].Node,
		Depth: n.Depth,
		Delta: 0,
	}
	result := beta.NoCopy(m.h, r)
	m.stats.Zeta++
	return result, true, nil
}
