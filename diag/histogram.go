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
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/arborlang/redex/graph"
)

// VarietyCount is one row of a list_chain-style breakdown: how many
// nodes of a given variety are live in a chain.
type VarietyCount struct {
	Variety graph.Variety
	Count   int
}

// VarietyHistogram tallies the non-sentinel nodes in the chain
// bracketed by left by their Variety, without recursing into nested
// BODY sub-chains — the same one-level-flat scope ListChain uses.
func VarietyHistogram(left *graph.Node) map[graph.Variety]int {
	out := make(map[graph.Variety]int)
	for n := left.Next; n != nil && n.Variety != graph.Sentinel; n = n.Next {
		out[n.Variety]++
	}
	return out
}

// SortedVarietyCounts flattens a VarietyHistogram into a slice ordered
// by Variety, so two independent runs over node-isomorphic chains
// (§8.1's confluence property) render identical heap_stats-style
// breakdowns regardless of Go's randomized map iteration order — the
// same "sorted, deterministic report" discipline §8.4's stress
// scenarios require of printed normal forms.
func SortedVarietyCounts(hist map[graph.Variety]int) []VarietyCount {
	keys := maps.Keys(hist)
	slices.Sort(keys)
	out := make([]VarietyCount, len(keys))
	for i, k := range keys {
		out[i] = VarietyCount{Variety: k, Count: hist[k]}
	}
	return out
}

// VarietyHistogramString renders SortedVarietyCounts(VarietyHistogram(left))
// as space-separated "variety=count" tokens, the flattened-report counterpart
// to PrintChain's nested dump.
func VarietyHistogramString(left *graph.Node) string {
	counts := SortedVarietyCounts(VarietyHistogram(left))
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s=%d", c.Variety, c.Count)
	}
	return strings.Join(parts, " ")
}
