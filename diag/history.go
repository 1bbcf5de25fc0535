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
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/reduce"
)

// Snapshot is one recorded eval_stats/heap_stats pair, labeled by the
// caller (typically the session id a reduction was running under).
type Snapshot struct {
	Label string
	Heap  string
	Eval  string
}

// History is a bounded ring buffer of flate-compressed Snapshots, kept
// for postmortem dumps across the long-running stress scenarios of
// §8.4, where heap snapshots taken every GC cycle would otherwise
// accumulate without bound across thousands of cycles. Compression
// matters here because a Snapshot's two text lines are highly
// repetitive (the same field names every time), exactly the shape
// flate's LZ77+Huffman stage is good at.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  [][]byte // flate-compressed, oldest-first within the live window
	start    int       // logical index of entries[0]
}

// NewHistory returns an empty History holding at most capacity
// snapshots; recording past capacity evicts the oldest entry.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Record compresses and appends a snapshot labeled label, capturing h's
// current occupancy and stats' rule-firing counters. It never returns an
// error from the flate writer in practice (an in-memory bytes.Buffer
// sink cannot fail to write), but the signature surfaces one anyway
// rather than papering over a compressor failure with a panic.
func (hist *History) Record(label string, h *graph.Heap, stats reduce.Stats) error {
	var plain bytes.Buffer
	fmt.Fprintf(&plain, "%s\n%s\n", HeapStats(h), EvalStats(stats))

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(label + "\x00" + plain.String())); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	hist.mu.Lock()
	defer hist.mu.Unlock()
	if len(hist.entries) >= hist.capacity {
		hist.entries = hist.entries[1:]
		hist.start++
	}
	hist.entries = append(hist.entries, compressed.Bytes())
	return nil
}

// Len returns the number of snapshots currently retained (<= capacity).
func (hist *History) Len() int {
	hist.mu.Lock()
	defer hist.mu.Unlock()
	return len(hist.entries)
}

// Snapshots decompresses and returns every retained entry, oldest
// first.
func (hist *History) Snapshots() ([]Snapshot, error) {
	hist.mu.Lock()
	raw := append([][]byte(nil), hist.entries...)
	hist.mu.Unlock()

	out := make([]Snapshot, 0, len(raw))
	for _, b := range raw {
		r := flate.NewReader(bytes.NewReader(b))
		text, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, err
		}
		parts := strings.SplitN(string(text), "\x00", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("diag: malformed history entry")
		}
		lines := strings.SplitN(parts[1], "\n", 3)
		s := Snapshot{Label: parts[0]}
		if len(lines) > 0 {
			s.Heap = lines[0]
		}
		if len(lines) > 1 {
			s.Eval = lines[1]
		}
		out = append(out, s)
	}
	return out, nil
}
