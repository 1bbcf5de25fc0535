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

import (
	"encoding/binary"
	"math"

	"github.com/dchest/siphash"
)

// hashKey is a fixed, process-wide siphash key. It does not need to be
// secret or random across runs: its only job is to avoid pathological
// hash-bucket collisions on adversarially-shaped graphs (deeply nested,
// highly self-similar chains), the same threat model a content-addressed
// cache keyed on attacker-influenced input faces.
var hashKey0, hashKey1 = uint64(0x5ea1e5caf3babe), uint64(0x9e3779b97f4a7c15)

// StructuralHash computes a cheap, non-cryptographic fingerprint of n's
// immediate shape (variety, depth, and slot tags/scalars) without
// recursing into referenced nodes. A SUBST/BODY slot contributes only
// its target's AllocSeq, and the node's Depth is hashed too, so two
// nodes that Equal treats as structurally identical can still hash
// differently; two nodes with the same hash still need a full Equal
// check before being treated as shareable.
func StructuralHash(n *Node) uint64 {
	var buf [9]byte
	buf[0] = byte(n.Variety)
	binary.LittleEndian.PutUint64(buf[1:], uint64(n.Depth))
	h := siphash.Hash(hashKey0, hashKey1, buf[:])
	for i := range n.Slots {
		h ^= hashSlot(&n.Slots[i], uint64(i))
	}
	return h
}

func hashSlot(s *Slot, salt uint64) uint64 {
	var buf [32]byte
	buf[0] = byte(s.Tag)
	binary.LittleEndian.PutUint64(buf[1:9], salt)
	switch s.Tag {
	case Body, Subst:
		if s.Node != nil {
			binary.LittleEndian.PutUint64(buf[9:17], s.Node.AllocSeq)
		}
	case Bound:
		binary.LittleEndian.PutUint64(buf[9:17], uint64(s.Up))
		binary.LittleEndian.PutUint64(buf[17:25], uint64(s.Across))
	case Constant:
		binary.LittleEndian.PutUint64(buf[9:17], uint64(s.ConstIdx))
	case Param, SymbolLit:
		binary.LittleEndian.PutUint64(buf[9:17], uint64(s.Sym))
	case Num:
		binary.LittleEndian.PutUint64(buf[9:17], math.Float64bits(s.NumVal))
	case String:
		return siphash.Hash(hashKey0, hashKey1^salt, []byte(s.StrVal))
	case Prim:
		binary.LittleEndian.PutUint64(buf[9:17], uint64(s.PrimOp))
	}
	return siphash.Hash(hashKey0, hashKey1^salt, buf[:])
}
