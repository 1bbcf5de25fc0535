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
	"sync"

	"github.com/google/uuid"

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/redexlog"
)

// session tracks the single in-flight reduction a *graph.Heap may have
// at a time (§4.4.7: "reduction is non-reentrant... it may not be
// invoked while another reduction is in progress on the same heap").
// The correlation id is logged at entry/exit the way
// cmd/snellerd/handler_query.go tags each HTTP query with a uuid for log
// correlation, so a reentrancy violation (or a slow reduction) is
// diagnosable from logs alone.
type session struct {
	id  string
	log *redexlog.Logger
}

var sessionsMu sync.Mutex
var active = map[*graph.Heap]string{}

func beginSession(h *graph.Heap, log *redexlog.Logger) (*session, error) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	if id, ok := active[h]; ok {
		return nil, &ReentrancyError{Active: id}
	}
	s := &session{id: uuid.New().String(), log: log}
	active[h] = s.id
	if log != nil {
		log.Debugf("session %s: begin", s.id)
	}
	return s, nil
}

func (s *session) end(h *graph.Heap) {
	sessionsMu.Lock()
	delete(active, h)
	sessionsMu.Unlock()
	if s.log != nil {
		s.log.Debugf("session %s: end", s.id)
	}
}

// ID returns the session's correlation id, for embedding in diagnostics
// or error messages emitted while a reduction is in flight.
func (s *session) ID() string { return s.id }
