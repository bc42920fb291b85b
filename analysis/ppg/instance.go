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
	"strconv"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/internal/funcutil"
	"github.com/awslabs/ar-php-tools/internal/graphutil"
	"github.com/yourbasic/graph"
)

// Context is a call string: the identifiers of the last call sites leading to an instance, the
// most recent last. A call site is a call expression of the program; its call points in the
// instances of its function share the site.
type Context []int

func (c Context) String() string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = "s" + strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Instance is the program-point graph of a function in one call context.
type Instance struct {
	// ID is the call level of the instance; the main script is 0
	ID int

	Function *cfg.Function
	Context  Context

	Entry  *Point
	Exit   *Point
	Points []*Point

	// LoopHeads are the points entering a cycle of the instance, where the driver widens
	LoopHeads map[*Point]bool

	// Recursive is set when the instance may call itself, directly or not. The driver widens at
	// the entry of recursive instances.
	Recursive bool

	// Node places the instance in the tree of instances, under the instance that created it
	Node *graphutil.Tree[*Instance]

	// calls maps every call expression of the function to its call point
	calls map[cfg.Expr]*Point
}

// CallPoint returns the call point of the call expression e.
func (inst *Instance) CallPoint(e cfg.Expr) (*Point, bool) {
	p, ok := inst.calls[e]
	return p, ok
}

// Calls returns the call points of the instance.
func (inst *Instance) Calls() []*Point {
	var res []*Point
	for _, p := range inst.Points {
		if p.Kind == CallPoint {
			res = append(res, p)
		}
	}
	return res
}

// IsMain returns true for the instance of the main script.
func (inst *Instance) IsMain() bool { return inst.ID == 0 }

// CallChain returns the names of the instances leading to inst from the main script.
func (inst *Instance) CallChain() []string {
	return funcutil.Map(inst.Node.Path(), (*Instance).String)
}

func (inst *Instance) String() string {
	if len(inst.Context) == 0 {
		return inst.Function.QualifiedName()
	}
	return inst.Function.QualifiedName() + inst.Context.String()
}

// builder accumulates the points of one instance.
type builder struct {
	g     *Graph
	inst  *Instance
	first map[*cfg.Block]*Point
	last  map[*cfg.Block]*Point
}

func (b *builder) add(kind Kind, pos cfg.Position) *Point {
	p := &Point{ID: len(b.g.points), Index: len(b.inst.Points), Kind: kind, Instance: b.inst, Pos: pos}
	b.g.points = append(b.g.points, p)
	b.inst.Points = append(b.inst.Points, p)
	return p
}

// chain appends p after the current last point of block.
func (b *builder) chain(block *cfg.Block, p *Point) {
	if last, ok := b.last[block]; ok {
		link(last, p)
	} else {
		b.first[block] = p
	}
	b.last[block] = p
}

// hoist adds the call and return points of the calls of e, in evaluation order.
func (b *builder) hoist(block *cfg.Block, e cfg.Expr) {
	cfg.Inspect(e, func(x cfg.Expr) {
		if !cfg.IsCall(x) {
			return
		}
		if _, done := b.inst.calls[x]; done {
			return
		}
		call := b.add(CallPoint, x.Position())
		ret := b.add(ReturnPoint, x.Position())
		call.Call, ret.Call = x, x
		call.Pair, ret.Pair = ret, call
		b.inst.calls[x] = call
		b.chain(block, call)
		b.chain(block, ret)
	})
}

func (b *builder) checkSupported(s cfg.Stmt) {
	report := func(construct string) {
		b.g.Unsupported = append(b.g.Unsupported,
			&cfg.UnsupportedError{Construct: construct, Pos: s.Position(), Function: b.inst.Function.QualifiedName()})
	}
	switch s := s.(type) {
	case *cfg.AssignRef:
		if cfg.IsCall(s.Source) {
			report("reference to a call result")
		}
	case *cfg.Assign:
		cfg.Inspect(s.Value, func(e cfg.Expr) {
			if lit, ok := e.(*cfg.ArrayLit); ok {
				for _, it := range lit.Items {
					if it.ByRef {
						report("reference in array literal")
						return
					}
				}
			}
		})
	}
}

// build creates the points of inst.
func (b *builder) build() {
	fn := b.inst.Function
	b.inst.Entry = b.add(EntryPoint, fn.Pos)
	b.inst.Exit = b.add(ExitPoint, fn.Pos)

	returns := map[*cfg.Block]bool{}
	for _, block := range fn.Blocks {
		if block == fn.Exit {
			continue
		}
		for _, s := range block.Stmts {
			b.checkSupported(s)
			for _, e := range cfg.Exprs(s) {
				b.hoist(block, e)
			}
			if x, ok := s.(*cfg.ExprStmt); ok && cfg.IsCall(x.X) {
				continue
			}
			p := b.add(StatementPoint, s.Position())
			p.Stmt = s
			b.chain(block, p)
			if _, ok := s.(*cfg.Return); ok {
				returns[block] = true
				break
			}
		}
		if !returns[block] {
			for _, e := range block.Succs {
				if e.Cond != nil {
					b.hoist(block, e.Cond)
				}
			}
		}
		if _, ok := b.last[block]; !ok {
			b.chain(block, b.add(JoinPoint, fn.Pos))
		}
	}
	b.first[fn.Exit] = b.inst.Exit

	link(b.inst.Entry, b.first[fn.Entry])
	for _, block := range fn.Blocks {
		if block == fn.Exit {
			continue
		}
		last := b.last[block]
		if returns[block] || len(block.Succs) == 0 {
			link(last, b.inst.Exit)
			continue
		}
		for _, e := range block.Succs {
			if !e.IsConditional() {
				link(last, b.first[e.To])
				continue
			}
			a := b.add(AssumePoint, edgePosition(e))
			a.Cond, a.Negated, a.Siblings = e.Cond, e.Negated, e.Default
			link(last, a)
			link(a, b.first[e.To])
		}
	}
	b.inst.LoopHeads = loopHeads(b.inst)
}

func edgePosition(e *cfg.Edge) cfg.Position {
	if e.Cond != nil {
		return e.Cond.Position()
	}
	if len(e.Default) > 0 {
		return e.Default[0].Position()
	}
	return e.From.Parent.Pos
}

// loopHeads returns the points of inst that enter a cycle from outside of it.
func loopHeads(inst *Instance) map[*Point]bool {
	ids := make([]int64, len(inst.Points))
	for i := range inst.Points {
		ids[i] = int64(i)
	}
	g := graphutil.NewDirected(ids, func(id int64) []int64 {
		var res []int64
		for _, s := range inst.Points[id].Succs {
			res = append(res, int64(s.Index))
		}
		return res
	}, nil)
	heads := map[*Point]bool{}
	for _, component := range graph.StrongComponents(g) {
		inCycle := map[int]bool{}
		for _, i := range component {
			inCycle[i] = true
		}
		if len(component) == 1 {
			p := inst.Points[component[0]]
			if !g.HasEdgeFromTo(int64(p.Index), int64(p.Index)) {
				continue
			}
		}
		for _, i := range component {
			p := inst.Points[i]
			for _, pred := range p.Preds {
				if !inCycle[pred.Index] {
					heads[p] = true
				}
			}
		}
	}
	return heads
}
