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

package ppg

import (
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/internal/graphutil"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// Graph is the program-point graph of a program. Instances are built on demand, when the driver
// discovers the calls reaching them.
type Graph struct {
	Program *cfg.Program

	// Unsupported lists the constructs approximated while building the instances
	Unsupported []*cfg.UnsupportedError

	// depth is the length of the call strings distinguishing instances
	depth     int
	points    []*Point
	instances []*Instance
	byKey     map[string]*Instance
	callees   map[*Point][]*Instance
	callers   map[*Instance][]*Point
	sites     map[cfg.Expr]int
}

// New returns the graph of prog with the instance of the main script. depth is the number of
// call sites kept in the contexts of the instances; with 0 every function has one instance.
func New(prog *cfg.Program, depth int) *Graph {
	if depth < 0 {
		depth = 0
	}
	g := &Graph{
		Program: prog,
		depth:   depth,
		byKey:   map[string]*Instance{},
		callees: map[*Point][]*Instance{},
		callers: map[*Instance][]*Point{},
		sites:   map[cfg.Expr]int{},
	}
	g.Instance(prog.Main, nil, nil)
	return g
}

// Main returns the instance of the main script.
func (g *Graph) Main() *Instance { return g.instances[0] }

// Instances returns all the instances built so far, by identifier.
func (g *Graph) Instances() []*Instance { return g.instances }

// Points returns all the points built so far, by identifier.
func (g *Graph) Points() []*Point { return g.points }

// Point returns the point with identifier id.
func (g *Graph) Point(id int) *Point { return g.points[id] }

// ContextFor returns the context of the instances called from call.
func (g *Graph) ContextFor(call *Point) Context {
	if g.depth == 0 {
		return nil
	}
	ctx := append(append(Context{}, call.Instance.Context...), g.Site(call))
	if len(ctx) > g.depth {
		ctx = ctx[len(ctx)-g.depth:]
	}
	return ctx
}

// Site returns the identifier of the call site of a call point.
func (g *Graph) Site(call *Point) int {
	id, ok := g.sites[call.Call]
	if !ok {
		id = len(g.sites)
		g.sites[call.Call] = id
	}
	return id
}

func instanceKey(fn *cfg.Function, ctx Context) string {
	return strings.ToLower(fn.QualifiedName()) + ctx.String()
}

// Instance returns the instance of fn in context ctx, building it if needed; created is true in
// that case. A new instance is placed under the instance of from in the instance tree.
func (g *Graph) Instance(fn *cfg.Function, ctx Context, from *Point) (inst *Instance, created bool) {
	key := instanceKey(fn, ctx)
	if inst, ok := g.byKey[key]; ok {
		return inst, false
	}
	inst = &Instance{
		ID:       len(g.instances),
		Function: fn,
		Context:  ctx,
		calls:    map[cfg.Expr]*Point{},
	}
	g.instances = append(g.instances, inst)
	g.byKey[key] = inst
	b := &builder{g: g, inst: inst, first: map[*cfg.Block]*Point{}, last: map[*cfg.Block]*Point{}}
	b.build()
	if from != nil {
		inst.Node = from.Instance.Node.AddChild(inst)
	} else {
		inst.Node = graphutil.NewTree(inst)
	}
	return inst, true
}

// AddCall records that call may enter callee. It returns false when the edge was already known.
func (g *Graph) AddCall(call *Point, callee *Instance) bool {
	for _, c := range g.callees[call] {
		if c == callee {
			return false
		}
	}
	g.callees[call] = append(g.callees[call], callee)
	g.callers[callee] = append(g.callers[callee], call)
	g.markRecursive()
	return true
}

// Callees returns the instances call may enter.
func (g *Graph) Callees(call *Point) []*Instance { return g.callees[call] }

// Callers returns the call points entering inst.
func (g *Graph) Callers(inst *Instance) []*Point { return g.callers[inst] }

// markRecursive flags the instances belonging to a cycle of the instance call graph.
func (g *Graph) markRecursive() {
	succ := func(inst *Instance) []*Instance {
		var res []*Instance
		for _, call := range inst.Calls() {
			res = append(res, g.callees[call]...)
		}
		return res
	}
	for inst := range graphutil.CyclicNodes(g.instances, succ) {
		inst.Recursive = true
	}
}

// Directed returns a view of the graph as a directed graph over point identifiers, including the
// edges entering and leaving callees.
func (g *Graph) Directed() graphutil.DGraph {
	ids := make([]int64, len(g.points))
	for i := range g.points {
		ids[i] = int64(i)
	}
	return graphutil.NewDirected(ids, func(id int64) []int64 {
		p := g.points[id]
		var res []int64
		for _, s := range p.Succs {
			res = append(res, int64(s.ID))
		}
		if p.Kind == CallPoint {
			for _, c := range g.callees[p] {
				res = append(res, int64(c.Entry.ID))
			}
		}
		if p.Kind == ExitPoint {
			for _, call := range g.callers[p.Instance] {
				res = append(res, int64(call.Pair.ID))
			}
		}
		return res
	}, func(id int64) string { return g.points[id].String() })
}

// Reachable returns the points reachable from start in the graph, start included, in breadth
// first order.
func (g *Graph) Reachable(start *Point) []*Point {
	view := g.Directed()
	var res []*Point
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { res = append(res, g.points[n.ID()]) },
	}
	bf.Walk(view, view.Node(int64(start.ID)), nil)
	return res
}
