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

package engine

import (
	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
)

// assume returns the truth of the assumption of p in s. When it is unknown, the variables the
// condition tests are narrowed to the values satisfying it. AlwaysFalse means no execution goes
// past p.
func (w *walker) assume(p *ppg.Point) Truth {
	if p.Cond == nil {
		t := AlwaysTrue
		for _, sib := range p.Siblings {
			t = t.And(w.truth(sib).Not())
		}
		if t == Unknown {
			for _, sib := range p.Siblings {
				if !w.narrow(sib, false) {
					return AlwaysFalse
				}
			}
		}
		return t
	}
	holds := !p.Negated
	t := w.truth(p.Cond)
	if !holds {
		t = t.Not()
	}
	if t == Unknown && !w.narrow(p.Cond, holds) {
		return AlwaysFalse
	}
	return t
}

// truth returns what s proves about e.
func (w *walker) truth(e cfg.Expr) Truth {
	switch e := e.(type) {
	case *cfg.Unary:
		if e.Op == cfg.OpNot {
			return w.truth(e.X).Not()
		}
	case *cfg.Binary:
		switch {
		case e.Op == cfg.OpAnd:
			return w.truth(e.Left).And(w.truth(e.Right))
		case e.Op == cfg.OpOr:
			return w.truth(e.Left).Or(w.truth(e.Right))
		case e.Op.IsComparison():
			l, r := w.eval(e.Left), w.eval(e.Right)
			return w.d.eval.Compare(e.Op, l.Values, r.Values)
		}
	case *cfg.Isset:
		return w.isset(e)
	case *cfg.ForeachValid:
		return w.valid(e)
	}
	return w.d.eval.Truthiness(w.eval(e).Values)
}

func (w *walker) isset(e *cfg.Isset) Truth {
	t := AlwaysTrue
	for _, a := range e.Args {
		p, ok := w.path(a, false)
		if !ok {
			t = t.And(Unknown)
			continue
		}
		t = t.And(setTruth(w.s.ReadPath(p).Values))
	}
	return t
}

// setTruth returns whether values are neither null nor undefined.
func setTruth(values memory.MemoryEntry) Truth {
	set := values.Filter(func(v memory.Value) bool { return !isNullish(v) })
	switch {
	case set.IsEmpty():
		return AlwaysFalse
	case set.Count() == values.Count() && !set.Contains(memory.Any):
		return AlwaysTrue
	}
	return Unknown
}

// valid returns whether an iteration has elements left. It is false only for empty arrays.
func (w *walker) valid(e *cfg.ForeachValid) Truth {
	values := w.s.ReadPath(memory.TemporaryPath(e.Iter)).Values
	for _, v := range values.Values() {
		a, ok := v.(memory.ArrayValue)
		if !ok {
			if v == memory.Any {
				return Unknown
			}
			continue
		}
		desc, ok := w.s.Structure().Array(a.Owner)
		if !ok {
			continue
		}
		if desc.Len() > 0 || !w.s.ReadValue(desc.UnknownIndex()).IsEmpty() {
			return Unknown
		}
	}
	return AlwaysFalse
}

// mirror returns the operator op' such that "a op b" is "b op' a".
func mirror(op cfg.BinaryOp) cfg.BinaryOp {
	switch op {
	case cfg.OpLess:
		return cfg.OpGreater
	case cfg.OpLessEq:
		return cfg.OpGreaterEq
	case cfg.OpGreater:
		return cfg.OpLess
	case cfg.OpGreaterEq:
		return cfg.OpLessEq
	}
	return op
}

// narrow restricts the variables tested by cond to the values for which cond evaluates to holds.
// It returns false when no value does.
func (w *walker) narrow(cond cfg.Expr, holds bool) bool {
	switch e := cond.(type) {
	case *cfg.Unary:
		if e.Op == cfg.OpNot {
			return w.narrow(e.X, !holds)
		}
	case *cfg.Binary:
		switch {
		case e.Op == cfg.OpAnd && holds, e.Op == cfg.OpOr && !holds:
			return w.narrow(e.Left, holds) && w.narrow(e.Right, holds)
		case e.Op.IsComparison():
			l, r := w.eval(e.Left), w.eval(e.Right)
			return w.refine(e.Left, Condition{Op: e.Op, Other: r.Values, Holds: holds}) &&
				w.refine(e.Right, Condition{Op: mirror(e.Op), Other: l.Values, Holds: holds})
		}
	case *cfg.Isset:
		if holds {
			for _, a := range e.Args {
				if !w.restrict(a, func(v memory.MemoryEntry) memory.MemoryEntry {
					return v.Filter(func(x memory.Value) bool { return !isNullish(x) })
				}) {
					return false
				}
			}
		} else if len(e.Args) == 1 {
			return w.restrict(e.Args[0], func(v memory.MemoryEntry) memory.MemoryEntry {
				return v.Filter(func(x memory.Value) bool { return isNullish(x) || x == memory.Any })
			})
		}
	case *cfg.Var, *cfg.Index, *cfg.Prop, *cfg.Temp:
		return w.refine(cond, Condition{Holds: holds})
	}
	return true
}

func (w *walker) refine(target cfg.Expr, cond Condition) bool {
	return w.restrict(target, func(v memory.MemoryEntry) memory.MemoryEntry {
		return w.d.eval.Assume(cond, v)
	})
}

// restrict applies f to the values of target. The location is only updated when target denotes a
// single defined index: narrowing a location that might not be the tested one is unsound.
func (w *walker) restrict(target cfg.Expr, f func(memory.MemoryEntry) memory.MemoryEntry) bool {
	switch target.(type) {
	case *cfg.Var, *cfg.Index, *cfg.Prop, *cfg.Temp:
	default:
		return true
	}
	p, ok := w.path(target, false)
	if !ok {
		return true
	}
	res := w.s.ReadPath(p)
	narrowed := f(res.Values)
	if narrowed.IsEmpty() {
		return false
	}
	targets := res.Indexes
	if !res.IsDefined || targets.Must.Len() != 1 || targets.MayOnly().Len() != 0 ||
		narrowed.Equal(res.Values) {
		return true
	}
	idx := targets.Must.Items()[0]
	if idx.IsUnknown() {
		return true
	}
	w.s.Assign(idx, narrowed)
	return true
}
