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

// Package pgraph represents the internal "pointer graph" that we use. It is a
// small directed graph library which the language uses to order and validate
// relationships such as prototype inheritance and key positioning.
package pgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Vertex is the primary vertex interface in this library. The string form must
// be unique within a graph since it is used for deterministic ordering.
type Vertex interface {
	fmt.Stringer // String() string
}

// Edge is the primary edge interface in this library.
type Edge interface {
	fmt.Stringer // String() string
}

// Graph is the graph structure in this library. The graph abstract data type
// (ADT) is defined as follows:
// * the directed graph arrows point from left to right ( -> )
// * the arrows point away from their dependencies (eg: arrows mean "before")
// * IOW, for inheritance you might see child -> parent (where child is seen
// first when walking the chain)
type Graph struct {
	Name string

	adjacency map[Vertex]map[Vertex]Edge // Vertex -> Vertex (edge)
}

// NewGraph builds a new graph.
func NewGraph(name string) (*Graph, error) {
	g := &Graph{
		Name: name,
	}
	g.init()
	return g, nil
}

// init initializes the graph which wasn't initialized using the constructor.
func (g *Graph) init() {
	if g.adjacency == nil {
		g.adjacency = make(map[Vertex]map[Vertex]Edge)
	}
}

// String makes the graph pretty print.
func (g *Graph) String() string {
	return fmt.Sprintf("%s: Vertices(%d), Edges(%d)", g.Name, g.NumVertices(), g.NumEdges())
}

// AddVertex uses variadic input to add all listed vertices to the graph.
func (g *Graph) AddVertex(xv ...Vertex) {
	g.init()
	for _, v := range xv {
		if _, exists := g.adjacency[v]; !exists {
			g.adjacency[v] = make(map[Vertex]Edge)
		}
	}
}

// AddEdge adds a directed edge to the graph from v1 to v2. Both vertices are
// added if they are not already present.
func (g *Graph) AddEdge(v1, v2 Vertex, e Edge) {
	g.AddVertex(v1, v2)
	g.adjacency[v1][v2] = e
}

// HasVertex returns if the input vertex exists in the graph.
func (g *Graph) HasVertex(v Vertex) bool {
	if g.adjacency == nil {
		return false
	}
	_, exists := g.adjacency[v]
	return exists
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int {
	return len(g.adjacency)
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	count := 0
	for k := range g.adjacency {
		count += len(g.adjacency[k])
	}
	return count
}

// VerticesSorted returns a sorted slice of all vertices in the graph. The order
// is sorted by String() to avoid the non-determinism found in the map.
func (g *Graph) VerticesSorted() []Vertex {
	vertices := make([]Vertex, 0, len(g.adjacency))
	for v := range g.adjacency {
		vertices = append(vertices, v)
	}
	sort.Sort(VertexSlice(vertices))
	return vertices
}

// OutgoingGraphVertices returns an array (slice) of all vertices that the
// vertex points to (v -> ???), sorted by String().
func (g *Graph) OutgoingGraphVertices(v Vertex) []Vertex {
	vertices := []Vertex{}
	for k := range g.adjacency[v] {
		vertices = append(vertices, k)
	}
	sort.Sort(VertexSlice(vertices))
	return vertices
}

// InDegree returns the count of vertices that point to me in one big lookup
// map.
func (g *Graph) InDegree() map[Vertex]int {
	result := make(map[Vertex]int)
	for k := range g.adjacency {
		result[k] = 0 // initialize
	}

	for k := range g.adjacency {
		for z := range g.adjacency[k] {
			result[z]++
		}
	}
	return result
}

// DFS returns a depth first search for the graph, starting at the input vertex.
// It follows outgoing edges only.
func (g *Graph) DFS(start Vertex) []Vertex {
	if !g.HasVertex(start) {
		return nil
	}
	var d []Vertex // discovered
	seen := make(map[Vertex]struct{})
	s := []Vertex{start} // stack
	for len(s) > 0 {
		var v Vertex
		v, s = s[len(s)-1], s[:len(s)-1] // s.pop()
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		d = append(d, v) // label as discovered

		out := g.OutgoingGraphVertices(v)
		for i := len(out) - 1; i >= 0; i-- { // visit in sorted order
			s = append(s, out[i])
		}
	}
	return d
}

// TopologicalSort returns the sort of graph vertices in that order. It is based
// on descriptions and code from wikipedia and rosetta code. Ties are broken by
// String() so that the result is deterministic. If the graph is not a DAG, then
// a *CycleError listing one of the cycles is returned.
func (g *Graph) TopologicalSort() ([]Vertex, error) { // kahn's algorithm
	var L []Vertex                    // empty list that will contain the sorted elements
	var S []Vertex                    // set of all nodes with no incoming edges
	remaining := make(map[Vertex]int) // amount of edges remaining

	for v, d := range g.InDegree() {
		if d == 0 {
			// accumulate set of all nodes with no incoming edges
			S = append(S, v)
		} else {
			// initialize remaining edge count from indegree
			remaining[v] = d
		}
	}
	sort.Sort(sort.Reverse(VertexSlice(S))) // pop from the end in order

	for len(S) > 0 {
		last := len(S) - 1 // remove a node v from S
		v := S[last]
		S = S[:last]
		L = append(L, v) // add v to tail of L
		next := []Vertex{}
		for _, n := range g.OutgoingGraphVertices(v) {
			// for each node n remaining in the graph, consume from
			// remaining, so for remaining[n] > 0
			if remaining[n] > 0 {
				remaining[n]--         // remove edge from the graph
				if remaining[n] == 0 { // if n has no other incoming edges
					next = append(next, n)
				}
			}
		}
		S = append(S, next...)
		sort.Sort(sort.Reverse(VertexSlice(S)))
	}

	if len(L) != g.NumVertices() {
		return nil, &CycleError{Cycle: g.FindCycle()}
	}
	return L, nil
}

// FindCycle returns the vertices of one cycle in the graph, starting and ending
// with the same vertex. It returns nil if the graph is acyclic.
func (g *Graph) FindCycle() []Vertex {
	const (
		white = iota
		grey
		black
	)
	color := make(map[Vertex]int)
	stack := []Vertex{}

	var visit func(Vertex) []Vertex
	visit = func(v Vertex) []Vertex {
		color[v] = grey
		stack = append(stack, v)
		for _, n := range g.OutgoingGraphVertices(v) {
			switch color[n] {
			case grey: // back edge, slice the cycle out of the stack
				for i := range stack {
					if stack[i] == n {
						cycle := append([]Vertex{}, stack[i:]...)
						return append(cycle, n)
					}
				}
			case white:
				if cycle := visit(n); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[v] = black
		return nil
	}

	for _, v := range g.VerticesSorted() {
		if color[v] != white {
			continue
		}
		if cycle := visit(v); cycle != nil {
			return cycle
		}
	}
	return nil
}

// CycleError is returned when an operation requires a DAG but found a cycle.
type CycleError struct {
	Cycle []Vertex
}

// Error fulfills the error interface of this type.
func (obj *CycleError) Error() string {
	names := []string{}
	for _, v := range obj.Cycle {
		names = append(names, v.String())
	}
	return fmt.Sprintf("not a dag, found cycle: %s", strings.Join(names, " -> "))
}

// VertexSlice is a linear list of vertices. It can be sorted.
type VertexSlice []Vertex

// Len returns the length of the slice of vertices.
func (vs VertexSlice) Len() int { return len(vs) }

// Swap swaps two elements in the slice.
func (vs VertexSlice) Swap(i, j int) { vs[i], vs[j] = vs[j], vs[i] }

// Less returns the smaller element in the sort order.
func (vs VertexSlice) Less(i, j int) bool { return vs[i].String() < vs[j].String() }

// StrVertex is a simple vertex which is identified by its string. It is handy
// for graphs of names, such as the prototype inheritance graph.
type StrVertex string

// String returns the name of this vertex.
func (obj StrVertex) String() string { return string(obj) }

// StrEdge is a simple named edge.
type StrEdge string

// String returns the name of this edge.
func (obj StrEdge) String() string { return string(obj) }
