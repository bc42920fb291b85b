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
	"fmt"
	"strconv"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
)

// walker applies the transfer function of one point to a snapshot with a transaction in progress.
type walker struct {
	d     *driver
	s     *memory.Snapshot
	point *ppg.Point
	// temps are released once the point is processed
	temps []memory.MemoryIndex
}

func anyVal() Val {
	return Val{Values: memory.NewEntry(memory.Any)}
}

func truthValues(t Truth) memory.MemoryEntry {
	switch t {
	case AlwaysTrue:
		return memory.NewEntry(memory.True)
	case AlwaysFalse:
		return memory.NewEntry(memory.False)
	}
	return memory.NewEntry(memory.True, memory.False)
}

func (w *walker) fail(format string, args ...any) {
	w.d.addError(&TransferError{
		Point:  fmt.Sprintf("%s at %s", w.point, w.point.Pos),
		Reason: fmt.Sprintf(format, args...),
	})
}

func (w *walker) site(name, class string, pos cfg.Position) CallSite {
	return CallSite{
		Name:     name,
		Class:    class,
		Function: w.point.Instance.Function.QualifiedName(),
		Point:    w.point,
		Pos:      pos,
	}
}

func (w *walker) release() {
	for _, t := range w.temps {
		w.s.ReleaseTemporary(t)
	}
	w.temps = nil
}

// releaseSlots drops the results of the calls of st, which are only read by st.
func (w *walker) releaseSlots(st cfg.Stmt) {
	for _, e := range cfg.Exprs(st) {
		cfg.Inspect(e, func(x cfg.Expr) {
			if cp, ok := w.point.Instance.CallPoint(x); ok {
				w.s.ReleaseTemporary(memory.NewTemporaryIndex(cp.Slot(), w.s.CallLevel()))
			}
		})
	}
}

// names returns the segment of the names a value may denote.
func names(v memory.MemoryEntry) memory.Segment {
	if strs, ok := v.Strings(); ok {
		return memory.Names(strs...)
	}
	return memory.AnySegment()
}

// path returns the path denoted by an lvalue. Appending paths such as $a[] only exist for writes.
func (w *walker) path(e cfg.Expr, write bool) (memory.Path, bool) {
	switch e := e.(type) {
	case *cfg.Var:
		if isSuperglobal(e.Name) {
			return memory.GlobalVariablePath(memory.Single(e.Name)), true
		}
		return memory.VariablePath(memory.Single(e.Name)), true
	case *cfg.VarVar:
		return memory.VariablePath(names(w.eval(e.Name).Values)), true
	case *cfg.Temp:
		return memory.TemporaryPath(e.Name), true
	case *cfg.Index:
		base, ok := w.path(e.Base, write)
		if !ok {
			return base, false
		}
		if e.Key == nil {
			if !write {
				return base, false
			}
			return base.Element(w.nextKey(base)), true
		}
		return base.Element(w.d.eval.ArrayKey(w.eval(e.Key).Values)), true
	case *cfg.Prop:
		base, ok := w.path(e.Base, write)
		if !ok {
			return base, false
		}
		if e.Dynamic != nil {
			return base.Field(names(w.eval(e.Dynamic).Values)), true
		}
		return base.Field(memory.Single(e.Name)), true
	}
	if cp, ok := w.point.Instance.CallPoint(e); ok {
		return memory.TemporaryPath(cp.Slot()), true
	}
	return memory.Path{}, false
}

// nextKey returns the keys an append to the arrays of base may use: one more than the greatest
// integer key, or any key when the arrays have unknown elements.
func (w *walker) nextKey(base memory.Path) memory.Segment {
	values := w.s.ReadPath(base).Values
	var keys []string
	for _, v := range values.Values() {
		a, ok := v.(memory.ArrayValue)
		if !ok {
			keys = append(keys, "0")
			continue
		}
		desc, ok := w.s.Structure().Array(a.Owner)
		if !ok {
			keys = append(keys, "0")
			continue
		}
		if !w.s.ReadValue(desc.UnknownIndex()).IsEmpty() {
			return memory.AnySegment()
		}
		next := 0
		for _, n := range desc.Names() {
			if i, err := strconv.Atoi(n); err == nil && i >= next {
				next = i + 1
			}
		}
		keys = append(keys, strconv.Itoa(next))
	}
	if len(keys) == 0 {
		keys = append(keys, "0")
	}
	return memory.Names(keys...)
}

// read returns the values at p. The info flags of every container on the way are included: a
// value read from a flagged array is flagged.
func (w *walker) read(p memory.Path) Val {
	res := w.s.ReadPath(p)
	infos := res.Infos
	for n := 0; n < len(p.Steps()); n++ {
		infos = infos.Union(w.s.ReadPath(p.Prefix(n)).Infos)
	}
	return Val{Values: res.Values, Infos: infos}
}

func (w *walker) write(target cfg.Expr, v Val) {
	p, ok := w.path(target, true)
	if !ok {
		w.fail("cannot assign to %s", target)
		return
	}
	w.s.WritePath(p, v.Values, v.Infos)
}

// eval returns the value of e. Calls are not evaluated: their results were written by their
// return points.
func (w *walker) eval(e cfg.Expr) Val {
	switch e := e.(type) {
	case *cfg.Literal:
		return Val{Values: w.d.eval.Literal(e)}
	case *cfg.Const:
		return Val{Values: w.d.eval.Constant(e.Name)}
	case *cfg.Var, *cfg.VarVar, *cfg.Index, *cfg.Prop, *cfg.Temp,
		*cfg.Call, *cfg.MethodCall, *cfg.StaticCall, *cfg.New:
		p, ok := w.path(e, false)
		if !ok {
			w.fail("cannot read %s", e)
			return anyVal()
		}
		return w.read(p)
	case *cfg.Binary:
		return w.binary(e)
	case *cfg.Unary:
		x := w.eval(e.X)
		return Val{Values: w.d.eval.UnaryOp(e.Op, x.Values), Infos: x.Infos}
	case *cfg.Cast:
		x := w.eval(e.X)
		return Val{Values: w.d.eval.Cast(e.Type, x.Values), Infos: x.Infos}
	case *cfg.ArrayLit:
		return w.arrayLiteral(e)
	case *cfg.Isset:
		return Val{Values: truthValues(w.isset(e))}
	case *cfg.Empty:
		x := w.eval(e.X)
		return Val{Values: truthValues(w.d.eval.Truthiness(x.Values).Not()), Infos: x.Infos}
	case *cfg.Ternary:
		return w.ternary(e)
	case *cfg.ForeachValid:
		return Val{Values: truthValues(w.truth(e))}
	}
	w.fail("cannot evaluate %s", e)
	return anyVal()
}

func (w *walker) binary(e *cfg.Binary) Val {
	switch e.Op {
	case cfg.OpAnd, cfg.OpOr:
		l, r := w.eval(e.Left), w.eval(e.Right)
		return Val{Values: truthValues(w.truth(e)), Infos: l.Infos.Union(r.Infos)}
	case cfg.OpCoalesce:
		return w.coalesce(w.eval(e.Left), e.Right)
	}
	l, r := w.eval(e.Left), w.eval(e.Right)
	return Val{Values: w.d.eval.BinaryOp(e.Op, l.Values, r.Values), Infos: l.Infos.Union(r.Infos)}
}

func isNullish(v memory.Value) bool {
	return v == memory.Null || v == memory.Undefined
}

// coalesce returns l ?? right. right is only evaluated when l may be null.
func (w *walker) coalesce(l Val, right cfg.Expr) Val {
	set := l.Values.Filter(func(v memory.Value) bool { return !isNullish(v) })
	if set.Count() == l.Values.Count() {
		return l
	}
	r := w.eval(right)
	return Val{Values: set.Union(r.Values), Infos: l.Infos.Union(r.Infos)}
}

func (w *walker) ternary(e *cfg.Ternary) Val {
	t := w.truth(e.Cond)
	if e.Then == nil {
		c := w.eval(e.Cond)
		switch t {
		case AlwaysTrue:
			return c
		case AlwaysFalse:
			return w.eval(e.Else)
		}
		r := w.eval(e.Else)
		return Val{Values: c.Values.Union(r.Values), Infos: c.Infos.Union(r.Infos)}
	}
	switch t {
	case AlwaysTrue:
		return w.eval(e.Then)
	case AlwaysFalse:
		return w.eval(e.Else)
	}
	l, r := w.eval(e.Then), w.eval(e.Else)
	return Val{Values: l.Values.Union(r.Values), Infos: l.Infos.Union(r.Infos)}
}

// arrayLiteral builds the array of lit in a temporary released with the point.
func (w *walker) arrayLiteral(lit *cfg.ArrayLit) Val {
	name, ok := w.d.literals[lit]
	if !ok {
		name = "arr" + strconv.Itoa(len(w.d.literals))
		w.d.literals[lit] = name
	}
	idx := memory.NewTemporaryIndex(name, w.s.CallLevel())
	w.temps = append(w.temps, idx)
	w.s.Assign(idx, memory.NewEntry(w.s.CreateArray(idx)))
	var infos memory.MemoryEntry
	next := 0
	for _, it := range lit.Items {
		var key memory.Segment
		if it.Key == nil {
			key = memory.Single(strconv.Itoa(next))
			next++
		} else {
			key = w.d.eval.ArrayKey(w.eval(it.Key).Values)
			if k, ok := key.Single(); ok {
				if i, err := strconv.Atoi(k); err == nil && i >= next {
					next = i + 1
				}
			}
		}
		v := w.eval(it.Value)
		infos = infos.Union(v.Infos)
		w.s.WritePath(memory.IndexPath(idx).Element(key), v.Values, v.Infos)
	}
	return Val{Values: w.s.ReadValue(idx), Infos: infos}
}

// statement applies the effect of st.
func (w *walker) statement(st cfg.Stmt) {
	switch st := st.(type) {
	case *cfg.Assign:
		w.write(st.Target, w.eval(st.Value))
	case *cfg.AssignRef:
		src, ok := w.path(st.Source, true)
		if !ok {
			w.fail("cannot take a reference to %s", st.Source)
			return
		}
		dst, ok := w.path(st.Target, true)
		if !ok {
			w.fail("cannot assign to %s", st.Target)
			return
		}
		w.s.WriteAlias(dst, w.s.CreateAlias(src))
	case *cfg.CompoundAssign:
		p, ok := w.path(st.Target, true)
		if !ok {
			w.fail("cannot assign to %s", st.Target)
			return
		}
		cur := w.read(p)
		var res Val
		if st.Op == cfg.OpCoalesce {
			res = w.coalesce(cur, st.Value)
		} else {
			v := w.eval(st.Value)
			res = Val{Values: w.d.eval.BinaryOp(st.Op, cur.Values, v.Values), Infos: cur.Infos.Union(v.Infos)}
		}
		w.s.WritePath(p, res.Values, res.Infos)
	case *cfg.ExprStmt:
		w.eval(st.X)
	case *cfg.Echo:
		args := make([]Val, len(st.Args))
		values := make([]memory.MemoryEntry, len(st.Args))
		for i, a := range st.Args {
			args[i] = w.eval(a)
			values[i] = args[i].Values
		}
		w.d.eval.Echo(values)
		w.d.policy.Sink(w.site("echo", "", st.Pos), args)
	case *cfg.Return:
		v := Val{Values: memory.NewEntry(memory.Null)}
		if st.Value != nil {
			v = w.eval(st.Value)
		}
		w.s.WritePath(memory.ControlPath("return"), v.Values, v.Infos)
	case *cfg.Global:
		for _, n := range st.Names {
			w.s.SetGlobalAlias(n)
		}
	case *cfg.Unset:
		for _, t := range st.Targets {
			if p, ok := w.path(t, false); ok {
				w.s.Unset(p)
			}
		}
	case *cfg.ForeachInit:
		v := w.eval(st.Subject)
		w.s.WritePath(memory.TemporaryPath(st.Iter), v.Values, v.Infos)
	case *cfg.ForeachNext:
		w.foreachNext(st)
	default:
		w.fail("unsupported statement %T", st)
	}
}

func (w *walker) foreachNext(st *cfg.ForeachNext) {
	it := memory.TemporaryPath(st.Iter)
	subject := w.read(it)
	var keys []string
	unknown := false
	for _, a := range subject.Values.Arrays() {
		desc, ok := w.s.Structure().Array(a.Owner)
		if !ok {
			continue
		}
		keys = append(keys, desc.Names()...)
		if !w.s.ReadValue(desc.UnknownIndex()).IsEmpty() {
			unknown = true
		}
	}
	elems := w.read(it.Element(memory.AnySegment()))
	key, value := w.d.eval.Foreach(subject.Values, keys, unknown, elems.Values)
	if st.Key != nil {
		w.write(st.Key, Val{Values: key, Infos: subject.Infos})
	}
	if st.ByRef && st.Subject != nil {
		src, ok := w.path(st.Subject, true)
		dst, ok2 := w.path(st.Value, true)
		if ok && ok2 {
			w.s.WriteAlias(dst, w.s.CreateAlias(src.Element(memory.AnySegment())))
			return
		}
	}
	w.write(st.Value, Val{Values: value, Infos: elems.Infos})
}
