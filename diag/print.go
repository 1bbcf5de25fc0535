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

// Package diag implements the §4.5 invariant checkers and the §6
// print_chain/list_chain/eval_stats/heap_stats diagnostic consumers:
// none of it participates in reduction, all of it reads state the
// reducer and heap already maintain.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/arborlang/redex/graph"
	"github.com/arborlang/redex/symtab"
)

// PrintChain writes a plain-text, non-reparseable dump of the chain
// bracketed by left to dst, naming PARAM slots and free-variable
// CONSTANT slots from tab (tab may be nil, in which case raw symbol/
// constant indices are printed instead of names). It recurses into
// ABS/FIX/LET bodies and TEST branches, indenting each nested chain,
// mirroring plan/pir.Trace.Describe's "write to an io.Writer, indent
// nested sub-traces by replacing newlines with a tab prefix" style.
func PrintChain(dst io.Writer, tab *symtab.Table, left *graph.Node) {
	p := &printer{tab: tab}
	p.chain(dst, left)
}

// ChainString is the io.Writer-free convenience form of PrintChain,
// matching plan/pir.Trace.String's "build a strings.Builder, call the
// Describe form, return the string" shape.
func ChainString(tab *symtab.Table, left *graph.Node) string {
	var sb strings.Builder
	PrintChain(&sb, tab, left)
	return sb.String()
}

type printer struct {
	tab *symtab.Table
}

func (p *printer) chain(dst io.Writer, left *graph.Node) {
	n := left.Next
	first := true
	for n != nil && n.Variety != graph.Sentinel {
		if !first {
			io.WriteString(dst, "\n")
		}
		first = false
		p.node(dst, n)
		n = n.Next
	}
	if first {
		io.WriteString(dst, "<empty>")
	}
}

func (p *printer) node(dst io.Writer, n *graph.Node) {
	fmt.Fprintf(dst, "#%d[%s d=%d nref=%d]", n.AllocSeq, n.Variety, n.Depth, n.Nref)
	switch n.Variety {
	case graph.App:
		io.WriteString(dst, " (")
		p.slot(dst, &n.Slots[0])
		for _, s := range n.Slots[1:] {
			io.WriteString(dst, " ")
			p.slot(dst, &s)
		}
		io.WriteString(dst, ")")
	case graph.Abs, graph.Fix:
		io.WriteString(dst, " params=(")
		for i, s := range n.Slots[1:] {
			if i > 0 {
				io.WriteString(dst, " ")
			}
			io.WriteString(dst, p.symName(s.Sym))
		}
		io.WriteString(dst, ") body=\n")
		p.nested(dst, n.Slots[0].Node)
	case graph.Let:
		io.WriteString(dst, " values=(")
		for i, s := range n.Slots[1:] {
			if i > 0 {
				io.WriteString(dst, " ")
			}
			p.slot(dst, &s)
		}
		io.WriteString(dst, ") in=\n")
		p.nested(dst, n.Slots[0].Node)
	case graph.Test:
		io.WriteString(dst, " pred=")
		p.slot(dst, &n.Slots[0])
		io.WriteString(dst, " then=\n")
		p.nested(dst, n.Slots[1].Node)
		io.WriteString(dst, "\n     else=\n")
		p.nested(dst, n.Slots[2].Node)
	case graph.Cell:
		io.WriteString(dst, " (")
		for i, s := range n.Slots {
			if i > 0 {
				io.WriteString(dst, " ")
			}
			p.slot(dst, &s)
		}
		io.WriteString(dst, ")")
	case graph.Var, graph.Val:
		io.WriteString(dst, " ")
		p.slot(dst, &n.Slots[0])
	}
}

func (p *printer) nested(dst io.Writer, left *graph.Node) {
	if left == nil {
		io.WriteString(dst, "    <nil body>")
		return
	}
	var tmp bytes.Buffer
	p.chain(&tmp, left)
	for _, line := range strings.Split(strings.TrimRight(tmp.String(), "\n"), "\n") {
		fmt.Fprintf(dst, "    %s\n", line)
	}
}

func (p *printer) slot(dst io.Writer, s *graph.Slot) {
	switch s.Tag {
	case graph.Null:
		io.WriteString(dst, "NULL")
	case graph.Body:
		io.WriteString(dst, "<body>")
	case graph.Subst:
		if s.Node == nil {
			io.WriteString(dst, "SUBST(nil)")
		} else {
			fmt.Fprintf(dst, "#%d", s.Node.AllocSeq)
		}
	case graph.Bound:
		fmt.Fprintf(dst, "^%d.%d", s.Up, s.Across)
	case graph.Constant:
		fmt.Fprintf(dst, "const#%d", s.ConstIdx)
	case graph.Param:
		io.WriteString(dst, p.symName(s.Sym))
	case graph.Num:
		fmt.Fprintf(dst, "%g", s.NumVal)
	case graph.String:
		fmt.Fprintf(dst, "%q", s.StrVal)
	case graph.SymbolLit:
		io.WriteString(dst, "'"+p.symName(s.Sym))
	case graph.Prim:
		io.WriteString(dst, s.PrimName)
	default:
		io.WriteString(dst, "?")
	}
}

func (p *printer) symName(s graph.Symbol) string {
	if p.tab == nil {
		return fmt.Sprintf("sym#%d", s)
	}
	if name := p.tab.Name(s); name != "" {
		return name
	}
	return fmt.Sprintf("sym#%d", s)
}

// NodeInfo is one row of a ListChain report: a flattened, non-recursive
// summary of a single node, for the external "list_chain" consumer
// (§6) that wants tabular rather than nested-text output (e.g. a test
// harness asserting on node counts per variety).
type NodeInfo struct {
	Seq     uint64
	Variety graph.Variety
	Depth   int
	Nref    int
	NSlots  int
}

// ListChain returns one NodeInfo per non-sentinel node in the chain
// bracketed by left, left to right. Unlike PrintChain it does not
// recurse into nested bodies; callers wanting those call ListChain
// again on the body's own left sentinel.
func ListChain(left *graph.Node) []NodeInfo {
	var out []NodeInfo
	for n := left.Next; n != nil && n.Variety != graph.Sentinel; n = n.Next {
		out = append(out, NodeInfo{
			Seq:     n.AllocSeq,
			Variety: n.Variety,
			Depth:   n.Depth,
			Nref:    n.Nref,
			NSlots:  len(n.Slots),
		})
	}
	return out
}
