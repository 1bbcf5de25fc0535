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

import "sync/atomic"

// Config controls the heap's allocation and GC-pressure behavior. Zero
// value is usable; see DefaultConfig for the values the reducer assumes
// when none are loaded from YAML (package config does that loading; the
// caller passes the result in here, keeping package graph free of a YAML
// dependency it does not otherwise need).
type Config struct {
	// Threshold is the pressure (0..1) above which the reducer should
	// run a full GC sweep (§4.4.5).
	Threshold float64
	// CheckEvery is how many reducer steps elapse between pressure
	// checks; purely advisory, read by package reduce.
	CheckEvery int
	// MaxBucket bounds the per-nslots freelist bucket count kept
	// around after a GC, to avoid unbounded freelist growth following
	// a large transient spike.
	MaxBucket int
}

// DefaultConfig matches the spec's suggested "every 256 steps" check
// interval and a conservative 0.7 pressure threshold.
func DefaultConfig() Config {
	return Config{Threshold: 0.7, CheckEvery: 256, MaxBucket: 4096}
}

// Heap allocates variable-length node records and maintains an
// approximate live/total pressure estimate. No compaction is needed:
// all node addresses are stable once allocated, and a node is never
// relocated while live.
type Heap struct {
	Config Config

	freelist map[int][]*Node // bucket by nslots

	live   int64 // nodes currently allocated and not freed
	total  int64 // nodes allocated since the last calibrate (Calibrate rebases it to live)
	seq    uint64
	peak   int64 // live high-water mark since the last calibrate
	reused int64 // allocations satisfied from a freelist bucket
}

// NewHeap constructs a heap with the given configuration.
func NewHeap(cfg Config) *Heap {
	return &Heap{Config: cfg, freelist: make(map[int][]*Node)}
}

// Alloc returns a zero-initialized node with room for nslots slots, a
// fresh allocation sequence number, Variety == Invalid, Nref == 0. It is
// satisfied from the matching freelist bucket when possible.
func (h *Heap) Alloc(nslots int) *Node {
	h.seq++
	var n *Node
	if bucket := h.freelist[nslots]; len(bucket) > 0 {
		n = bucket[len(bucket)-1]
		h.freelist[nslots] = bucket[:len(bucket)-1]
		*n = Node{}
		h.reused++
	} else {
		n = &Node{}
	}
	n.Slots = make([]Slot, nslots)
	n.AllocSeq = h.seq
	n.IsFresh = true
	atomic.AddInt64(&h.live, 1)
	atomic.AddInt64(&h.total, 1)
	if atomic.LoadInt64(&h.live) > h.peak {
		h.peak = h.live
	}
	return n
}

// Deref decrements the Nref of every node referenced by a SUBST slot in
// n, asserting the result never goes negative (a negative refcount is a
// FatalBug precondition violation by the caller, not something package
// graph silently tolerates).
func (h *Heap) Deref(n *Node) {
	for i := range n.Slots {
		s := &n.Slots[i]
		if s.Tag == Subst && s.Node != nil {
			s.Node.Nref--
			if s.Node.Nref < 0 {
				panic(&RefcountUnderflow{Node: s.Node})
			}
		}
	}
}

// Free returns n's storage to the pool. The caller must already have
// called Deref(n) (or otherwise accounted for n's outgoing references).
func (h *Heap) Free(n *Node) {
	nslots := len(n.Slots)
	n.Slots = nil
	n.Prev, n.Next, n.Backref, n.Forward, n.Outer = nil, nil, nil, nil, nil
	if len(h.freelist[nslots]) < h.Config.MaxBucket {
		h.freelist[nslots] = append(h.freelist[nslots], n)
	}
	atomic.AddInt64(&h.live, -1)
}

// Pressure returns a 0..1 estimate of live-heap / total-heap, optionally
// blended with an OS-level signal (see pressure_linux.go/pressure_other.go).
func (h *Heap) Pressure() float64 {
	total := atomic.LoadInt64(&h.total)
	if total == 0 {
		return 0
	}
	local := float64(atomic.LoadInt64(&h.live)) / float64(total)
	return blendWithSystemPressure(local)
}

// Calibrate resets the pressure baseline after a GC: the allocation
// counters are rebased so Pressure() reflects post-GC occupancy rather
// than lifetime totals, and the peak high-water mark is reset.
func (h *Heap) Calibrate() {
	live := atomic.LoadInt64(&h.live)
	atomic.StoreInt64(&h.total, live)
	if live == 0 {
		atomic.StoreInt64(&h.total, 1)
	}
	h.peak = live
}

// Stats is a snapshot of heap occupancy, consumed by package diag's
// heap_stats operation.
type Stats struct {
	Live, Total, Peak, Reused int64
	Pressure                  float64
}

// Snapshot returns the current heap statistics.
func (h *Heap) Snapshot() Stats {
	return Stats{
		Live:     atomic.LoadInt64(&h.live),
		Total:    atomic.LoadInt64(&h.total),
		Peak:     h.peak,
		Reused:   h.reused,
		Pressure: h.Pressure(),
	}
}

// RefcountUnderflow is a FatalBug (§7): a slot was dereferenced against a
// node whose Nref was already zero.
type RefcountUnderflow struct {
	Node *Node
}

func (e *RefcountUnderflow) Error() string {
	return "graph: reference count underflow"
}
