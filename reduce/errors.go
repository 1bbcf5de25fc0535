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
	"fmt"
	"io"

	"github.com/arborlang/redex/graph"
)

// FatalError reports an invariant violation observed by the reducer
// itself (§7 FatalBug): a malformed backref, a list-corruption, a depth
// mismatch, an unexpected node variety during descent/ascent. It pairs a
// message with the offending node, mirroring the teacher's
// pir.CompileError (message + AST node + io.WriterTo), and is never
// recovered from within the reducer — the caller passed in a malformed
// graph.
type FatalError struct {
	Kind string
	Node *graph.Node
	Msg  string
}

func (e *FatalError) Error() string { return fmt.Sprintf("reduce: fatal %s: %s", e.Kind, e.Msg) }

func (e *FatalError) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "fatal %s: %s (node variety=%s depth=%d)\n", e.Kind, e.Msg, e.Node.Variety, e.Node.Depth)
	return int64(n), err
}

// TypeError reports a FatalType (§7): an APP's argument count did not
// match the ABS/FIX it was applying. The Machine assumes prior type
// checking; this is a precondition violation, not a recoverable state.
type TypeError struct {
	App    *graph.Node
	Abs    *graph.Node
	Wanted int
	Got    int
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("reduce: arity mismatch: abstraction wants %d argument(s), application supplies %d", e.Wanted, e.Got)
}

func (e *TypeError) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%s\n", e.Error())
	return int64(n), err
}

// ResourceError reports a FatalResource (§7): the heap could not satisfy
// an allocation even after a full GC sweep.
type ResourceError struct {
	Requested int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("reduce: heap exhausted (requested %d slots after GC)", e.Requested)
}

// ReentrancyError reports an attempt to invoke Reduce on a heap already
// undergoing reduction (§4.4.7: reduction is non-reentrant).
type ReentrancyError struct {
	Active string // the correlation id of the in-progress session
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("reduce: heap is already being reduced by session %s", e.Active)
}
