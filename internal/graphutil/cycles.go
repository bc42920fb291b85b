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
	"sort"

	"github.com/awslabs/ar-php-tools/internal/funcutil"
	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles returns the elementary cycles of cg, each starting and ending with its
// least node, using Johnson's algorithm ("Finding All The Elementary Circuits of a Directed
// Graph", 1975). A graph of program points may hold exponentially many cycles: the search stops
// once limit cycles are found, unless limit is not positive.
func FindAllElementaryCycles(cg DGraph, limit int) [][]int64 {
	s := &johnson{limit: limit}
	position := make(map[int64]int, len(cg.Keys))
	for i, k := range cg.Keys {
		position[k] = i
	}
	for start := 0; start < len(cg.Keys) && !s.full(); {
		fg := Subgraph(cg, cg.Keys[start:])
		least := leastCyclicComponent(fg)
		if least == nil {
			break
		}
		node := int64(least[0])
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(node, node, Subgraph(fg, funcutil.Map(least, func(x int) int64 { return int64(x) })))
		start = position[node] + 1
	}
	return s.cycles
}

// leastCyclicComponent returns, sorted, the strong component of g holding the least node among
// the components that hold a cycle.
func leastCyclicComponent(g DGraph) []int {
	var least []int
	for _, component := range graph.StrongComponents(g) {
		if len(component) == 1 && !g.Edges[int64(component[0])][int64(component[0])] {
			continue
		}
		sort.Ints(component)
		if least == nil || component[0] < least[0] {
			least = component
		}
	}
	return least
}

type johnson struct {
	limit   int
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *johnson) full() bool { return s.limit > 0 && len(s.cycles) >= s.limit }

func (s *johnson) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

// circuit searches the cycles through start that extend the current path with v.
func (s *johnson) circuit(v int64, start int64, g DGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	succ := funcutil.SetToOrderedSlice(g.Edges[v])
	for _, w := range succ {
		if s.full() {
			break
		}
		if w == start {
			cycle := append(append([]int64{}, s.stack...), w)
			s.cycles = append(s.cycles, cycle)
			found = true
		} else if !s.blocked[w] && s.circuit(w, start, g) {
			found = true
		}
	}
	if found {
		s.unblock(v)
	} else {
		for _, w := range succ {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}
