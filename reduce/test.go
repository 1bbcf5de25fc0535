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

// test contracts n, a TEST whose predicate has resolved to a NUM, by
// discarding the branch the predicate didn't select and splicing the
// chosen one into n's place (§4.4.2 rule 3). Zero selects the
// alternative; any other value selects the consequent, matching the
// rest of the machine's "zero is falsy" convention (§4.3's compare/logic
// primitives).
//
// construct.go's NewTest bumps Nref on both cons and alt — §3.4 exempts
// BODY-tag slots from refcounting, so that bump exists purely to mark
// sentinel ownership, the same convention beta.NoCopy relies on when it
// clears an ABS's severed BODY slot without a matching Deref. The
// discarded branch is released the same way beta.Copy releases a
// superseded LET body: directly, via graph.ReleaseChain, with no
// separate Nref adjustment.
func (m *machine) test(n *graph.Node, depth int) (*graph.Node, bool, error) {
	v, _ := resolveNum(n.Slots[0])

	var chosen, discard graph.Slot
	if v != 0 {
		chosen, discard = n.Slots[1], n.Slots[2]
	} else {
		chosen, discard = n.Slots[2], n.Slots[1]
	}
	n.Slots[1] = graph.Slot{Tag: graph.Null}
	n.Slots[2] = graph.Slot{Tag: graph.Null}

	if discard.Node != nil {
		graph.ReleaseChain(m.h, discard.Node)
	}

	r := &beta.Redex{
		Node:  n,
		Body:  chosen.Node,
		Depth: n.Depth,
		Delta: 0,
	}
	result := beta.NoCopy(m.h, r)
	m.stats.Test++
	return result, true, nil
}
