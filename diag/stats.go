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

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/reduce"
)

// EvalStats renders a reduce.Stats snapshot as the §6 "eval_stats"
// report: one line per rule-firing counter plus the collector/GC
// activity observed during the call it was returned from.
func EvalStats(s reduce.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "steps=%d beta=%d zeta=%d prim=%d test=%d rename=%d collected=%d gc_runs=%d",
		s.Steps, s.Beta, s.Zeta, s.Prim, s.Test, s.Rename, s.Collected, s.GCRuns)
	return sb.String()
}

// HeapStats renders a graph.Heap's current occupancy as the §6
// "heap_stats" report.
func HeapStats(h *graph.Heap) string {
	snap := h.Snapshot()
	return fmt.Sprintf("live=%d total=%d peak=%d reused=%d pressure=%.3f",
		snap.Live, snap.Total, snap.Peak, snap.Reused, snap.Pressure)
}
