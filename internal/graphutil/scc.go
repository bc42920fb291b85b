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

// StronglyConnectedComponents computes the strongly connected components of the graph given by
// nodes and successors, with Tarjan's algorithm run over an explicit stack so that long chains of
// program points do not exhaust the goroutine stack.
// Components come out in reverse topological order: a component is listed before every component
// that can reach it.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) [][]T {
	type frame struct {
		node T
		succ []T
		next int
	}
	var (
		sccs    [][]T
		stack   []T
		frames  []frame
		index   = map[T]int{}
		lowlink = map[T]int{}
		onStack = map[T]bool{}
	)
	push := func(v T) {
		index[v] = len(index)
		lowlink[v] = index[v]
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, frame{node: v, succ: successors(v)})
	}
	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}
		push(root)
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.next < len(f.succ) {
				w := f.succ[f.next]
				f.next++
				if _, seen := index[w]; !seen {
					push(w)
				} else if onStack[w] && index[w] < lowlink[f.node] {
					lowlink[f.node] = index[w]
				}
				continue
			}
			v := f.node
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
			if lowlink[v] != index[v] {
				continue
			}
			var scc []T
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}
	return sccs
}

// CyclicNodes returns the set of nodes lying on at least one cycle: members of a component with
// more than one node, and nodes with an edge to themselves.
func CyclicNodes[T comparable](nodes []T, successors func(T) []T) map[T]bool {
	res := map[T]bool{}
	for _, scc := range StronglyConnectedComponents(nodes, successors) {
		if len(scc) > 1 {
			for _, n := range scc {
				res[n] = true
			}
			continue
		}
		for _, w := range successors(scc[0]) {
			if w == scc[0] {
				res[w] = true
				break
			}
		}
	}
	return res
}
