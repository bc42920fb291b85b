// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graphutil

import (
	"fmt"

	"github.com/awslabs/ar-php-tools/internal/funcutil"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
)

// DGraph is an abstraction over a directed graph with integer node identifiers, so that existing
// graph libraries can work with it. It implements the methods to satisfy yourbasic's graph.Iterator
// and Gonum's graph.Directed.
// Node identifiers must be in [0, order).
type DGraph struct {
	// The order of the graph
	order int

	// IDMap maps from node IDs to DNodes
	IDMap map[int64]DNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool

	// reverse holds the edges in the other direction
	reverse map[int64]map[int64]bool
}

// NewDirected returns a graph over the nodes ids. succ returns the successors of a node; label is
// used to print the nodes and may be nil.
func NewDirected(ids []int64, succ func(int64) []int64, label func(int64) string) DGraph {
	idmap := make(map[int64]DNode, len(ids))
	edges := make(map[int64]map[int64]bool, len(ids))
	reverse := make(map[int64]map[int64]bool, len(ids))
	keys := make([]int64, len(ids))
	copy(keys, ids)
	slices.Sort(keys)
	order := 0
	for _, id := range keys {
		idmap[id] = DNode{id: id, label: label}
		if int(id)+1 > order {
			order = int(id) + 1
		}
	}
	for _, id := range keys {
		edges[id] = map[int64]bool{}
		for _, s := range succ(id) {
			if _, ok := idmap[s]; !ok {
				continue
			}
			edges[id][s] = true
			if reverse[s] == nil {
				reverse[s] = map[int64]bool{}
			}
			reverse[s][id] = true
		}
	}
	return DGraph{order: order, IDMap: idmap, Keys: keys, Edges: edges, reverse: reverse}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order is the same as in origin, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original DGraph, include []int64) DGraph {
	idmap := make(map[int64]DNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	reverse := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		idmap[i] = original.IDMap[i]
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
				if reverse[e] == nil {
					reverse[e] = map[int64]bool{}
				}
				reverse[e][i] = true
			}
		}
	}

	return DGraph{
		order:   original.Order(),
		IDMap:   idmap,
		Edges:   edges,
		Keys:    keys,
		reverse: reverse,
	}
}

// Order implements the order of the graph.Iterator interface for the DGraph
func (c DGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the DGraph
func (c DGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for _, w := range funcutil.SetToOrderedSlice(c.Edges[int64(v)]) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c DGraph) Node(id int64) graph.Node {
	n, ok := c.IDMap[id]
	if !ok {
		return nil
	}
	return n
}

// Nodes returns the set of nodes in the graph
func (c DGraph) Nodes() graph.Nodes {
	return &NodeSet{nodes: c.IDMap, ids: c.Keys, cur: -1}
}

// From returns the set of nodes reachable from the id in one step
func (c DGraph) From(id int64) graph.Nodes {
	return &NodeSet{nodes: c.IDMap, ids: funcutil.SetToOrderedSlice(c.Edges[id]), cur: -1}
}

// To returns the set of nodes that reach id in one step
func (c DGraph) To(id int64) graph.Nodes {
	return &NodeSet{nodes: c.IDMap, ids: funcutil.SetToOrderedSlice(c.reverse[id]), cur: -1}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c DGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.HasEdgeFromTo(xid, yid) || c.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns whether an edge goes from uid to vid
func (c DGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c DGraph) Edge(uid, vid int64) graph.Edge {
	if c.HasEdgeFromTo(uid, vid) {
		return DEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

var _ graph.Directed = DGraph{}

// *************** Nodes implementation **********************

// DNode implements the graph.Node interface
type DNode struct {
	id    int64
	label func(int64) string
}

// ID returns the id of the node
func (n DNode) ID() int64 {
	return n.id
}

func (n DNode) String() string {
	if n.label == nil {
		return fmt.Sprintf("%d", n.id)
	}
	return n.label(n.id)
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]DNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]. The iterator
	// starts before the first node, as required by graph.Nodes.
	cur int
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise, returns false
// and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of nodes left in the set
func (ns *NodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

// Reset resets the id of the current node in the set
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// DEdge implements the graph.Edge interface
type DEdge struct {
	from DNode
	to   DNode
}

// From returns the origin of the edge
func (e DEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e DEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e DEdge) ReversedEdge() graph.Edge {
	return DEdge{from: e.to, to: e.from}
}
