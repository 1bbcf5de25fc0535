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

//go:build linux

package graph

import "golang.org/x/sys/unix"

// blendWithSystemPressure folds the kernel's free-memory counters into
// the local live/total estimate, the same way a long-running daemon
// would fold rusage/sysinfo stats into an application-level GC trigger:
// the local ratio alone can stay "healthy" while the process is actually
// minutes from an OOM kill on a loaded host.
func blendWithSystemPressure(local float64) float64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return local
	}
	if info.Totalram == 0 {
		return local
	}
	used := float64(info.Totalram-info.Freeram) / float64(info.Totalram)
	if used > local {
		return used
	}
	return local
}
