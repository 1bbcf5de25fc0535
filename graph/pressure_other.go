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

//go:build !linux

package graph

import "runtime"

// blendWithSystemPressure is the portable fallback: it folds the Go
// runtime's own heap occupancy (which at least reflects real allocator
// behavior, even without kernel-level free-memory visibility) into the
// local estimate.
func blendWithSystemPressure(local float64) float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.HeapSys == 0 {
		return local
	}
	used := float64(m.HeapAlloc) / float64(m.HeapSys)
	if used > local {
		return used
	}
	return local
}
