// Fusion
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

//go:build !root

package pgraph

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

// names converts a list of vertices into their string names for comparisons.
func names(vs []Vertex) []string {
	out := []string{}
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

func TestCount1(t *testing.T) {
	G := &Graph{}

	if i := G.NumVertices(); i != 0 {
		t.Errorf("should have 0 vertices instead of: %d", i)
	}

	if i := G.NumEdges(); i != 0 {
		t.Errorf("should have 0 edges instead of: %d", i)
	}

	v1 := StrVertex("v1")
	v2 := StrVertex("v2")
	G.AddEdge(v1, v2, StrEdge("e1"))

	if i := G.NumVertices(); i != 2 {
		t.Errorf("should have 2 vertices instead of: %d", i)
	}

	if i := G.NumEdges(); i != 1 {
		t.Errorf("should have 1 edges instead of: %d", i)
	}
}

func TestDFS1(t *testing.T) {
	G, _ := NewGraph("g3")
	G.AddEdge(StrVertex("v1"), StrVertex("v2"), StrEdge("e1"))
	G.AddEdge(StrVertex("v2"), StrVertex("v3"), StrEdge("e2"))
	G.AddEdge(StrVertex("v1"), StrVertex("v4"), StrEdge("e3"))
	G.AddVertex(StrVertex("v5"))

	out := names(G.DFS(StrVertex("v1")))
	exp := []string{"v1", "v2", "v3", "v4"}
	if diff := pretty.Compare(exp, out); diff != "" {
		t.Errorf("dfs mismatch (-want +got):\n%s", diff)
	}
	if G.DFS(StrVertex("nope")) != nil {
		t.Errorf("expected nil for a missing start vertex")
	}
}

func TestTopoSort1(t *testing.T) {
	G, _ := NewGraph("topo")
	G.AddEdge(StrVertex("c"), StrVertex("d"), StrEdge("e1"))
	G.AddEdge(StrVertex("a"), StrVertex("b"), StrEdge("e2"))
	G.AddEdge(StrVertex("b"), StrVertex("d"), StrEdge("e3"))

	s, err := G.TopologicalSort()
	if err != nil {
		t.Errorf("topological sort failed with: %+v", err)
		return
	}
	exp := []string{"a", "b", "c", "d"}
	if diff := pretty.Compare(exp, names(s)); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
}

func TestTopoSortCycle1(t *testing.T) {
	G, _ := NewGraph("cycle")
	G.AddEdge(StrVertex("a"), StrVertex("b"), StrEdge("e1"))
	G.AddEdge(StrVertex("b"), StrVertex("c"), StrEdge("e2"))
	G.AddEdge(StrVertex("c"), StrVertex("a"), StrEdge("e3"))
	G.AddEdge(StrVertex("x"), StrVertex("a"), StrEdge("e4"))

	_, err := G.TopologicalSort()
	if err == nil {
		t.Errorf("topological sort passed, expected a cycle")
		return
	}
	cerr, ok := err.(*CycleError)
	if !ok {
		t.Errorf("unexpected error type: %T", err)
		return
	}
	if s := strings.Join(names(cerr.Cycle), ","); s != "a,b,c,a" {
		t.Errorf("unexpected cycle: %s", s)
	}
	if G.FindCycle() == nil {
		t.Errorf("expected a cycle")
	}
}

func TestFindCycleNone(t *testing.T) {
	G, _ := NewGraph("dag")
	G.AddEdge(StrVertex("a"), StrVertex("b"), StrEdge("e1"))
	if c := G.FindCycle(); c != nil {
		t.Errorf("unexpected cycle: %v", c)
	}
}
