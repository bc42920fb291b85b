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
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
)

// callee is what a call point enters.
type callee struct {
	name       string
	class      string
	targets    []*cfg.Function
	unresolved bool
	receiver   *Val
	isNew      bool
}

// call evaluates the arguments of the call of p and builds the entry state of every instance the
// call may enter. The results of the targets without declaration are computed by the evaluator.
func (w *walker) call(p *ppg.Point) {
	level := w.s.CallLevel()
	slot := memory.NewTemporaryIndex(p.Slot(), level)
	c := w.resolve(p, slot)
	args := cfg.CallArgs(p.Call)

	if len(c.targets) > 0 && w.d.cfg.ExceedsMaxCallDepth(p.Instance.Node.Depth()+1) {
		w.d.logger.Debugf("call %s at %s exceeds the maximum call depth", p.Call, p.Pos)
		c.targets, c.unresolved = nil, true
	}

	vals := make([]Val, len(args))
	values := make([]memory.MemoryEntry, len(args))
	temps := make([]memory.MemoryIndex, len(args))
	for i, a := range args {
		vals[i] = w.eval(a)
		values[i] = vals[i].Values
		temps[i] = memory.NewTemporaryIndex(fmt.Sprintf("arg#%d#%d", p.ID, i), level)
		w.s.Assign(temps[i], vals[i].Values)
		w.s.AssignInfo(temps[i], vals[i].Infos)
		w.temps = append(w.temps, temps[i])
	}
	site := w.site(c.name, c.class, p.Call.Position())
	w.d.sites[p], w.d.args[p] = site, vals

	if len(c.targets) == 0 || c.unresolved {
		res := memory.NewEntry(memory.Any)
		if _, ok := p.Call.(*cfg.Call); ok {
			if v, ok := w.d.eval.NativeCall(c.name, values); ok {
				res = v
			}
		}
		infos, ok := w.d.policy.CallInfo(site, vals)
		if !ok {
			infos = memory.EmptyEntry
			for _, v := range vals {
				infos = infos.Union(v.Infos)
			}
			if c.receiver != nil {
				infos = infos.Union(c.receiver.Infos)
			}
		}
		switch {
		case c.isNew:
			delete(w.d.natives, p)
		case len(c.targets) == 0:
			w.s.Assign(slot, res)
			w.s.AssignInfo(slot, infos)
			delete(w.d.natives, p)
		default:
			w.d.natives[p] = Val{Values: res, Infos: infos}
		}
	} else {
		delete(w.d.natives, p)
	}
	w.d.policy.Sink(site, vals)

	var recvTemp memory.MemoryIndex
	if c.receiver != nil {
		recvTemp = memory.NewTemporaryIndex(fmt.Sprintf("this#%d", p.ID), level)
		w.s.Assign(recvTemp, c.receiver.Values)
		w.s.AssignInfo(recvTemp, c.receiver.Infos)
		w.temps = append(w.temps, recvTemp)
	}

	for _, fn := range c.targets {
		inst, created := w.d.graph.Instance(fn, w.d.graph.ContextFor(p), p)
		if created {
			w.d.logger.Debugf("new instance %s for %s", inst, strings.Join(inst.CallChain(), " > "))
		}
		w.d.graph.AddCall(p, inst)
		entry := w.s.CreateCall(inst.ID)
		w.bind(entry, inst, args, temps, c.receiver != nil, recvTemp)
		entry.CommitTransaction()
		entry.Freeze()
		byInst, ok := w.d.entries[p]
		if !ok {
			byInst = map[*ppg.Instance]*memory.Snapshot{}
			w.d.entries[p] = byInst
		}
		if old, ok := byInst[inst]; !ok || old.Differs(entry) {
			byInst[inst] = entry
			w.d.enqueue(inst.Entry)
		}
	}
}

// bind initializes the parameters of inst in entry, a snapshot at the level of inst.
func (w *walker) bind(entry *memory.Snapshot, inst *ppg.Instance, args []cfg.Expr,
	temps []memory.MemoryIndex, hasReceiver bool, recvTemp memory.MemoryIndex) {
	fn := inst.Function
	for i, param := range fn.Params {
		target := memory.NewVariableIndex(param.Name, inst.ID)
		switch {
		case i < len(args) && param.ByRef:
			if src, ok := w.path(args[i], true); ok {
				if anchored, ok := src.Anchor(w.s.CallLevel()); ok {
					entry.WriteAlias(memory.IndexPath(target), entry.CreateAlias(anchored))
					continue
				}
			}
			entry.AssignFrom(target, w.s, temps[i])
		case i < len(args):
			entry.AssignFrom(target, w.s, temps[i])
		case param.Default != nil:
			dw := &walker{d: w.d, s: entry, point: w.point}
			v := dw.eval(param.Default)
			entry.Assign(target, v.Values)
			entry.AssignInfo(target, v.Infos)
			dw.release()
		default:
			entry.Assign(target, memory.NewEntry(memory.Null))
		}
	}
	if hasReceiver && fn.Class != "" {
		entry.AssignFrom(memory.NewVariableIndex("this", inst.ID), w.s, recvTemp)
	}
}

// resolve finds the targets of the call of p. The object of a new expression is allocated here
// and stored in slot.
func (w *walker) resolve(p *ppg.Point, slot memory.MemoryIndex) callee {
	r := w.d.resolver
	var c callee
	switch e := p.Call.(type) {
	case *cfg.Call:
		if e.Dynamic != nil {
			fn := w.eval(e.Dynamic)
			c.targets, c.unresolved = r.ResolveIndirect(fn.Values)
			if strs, ok := fn.Values.Strings(); ok && len(strs) == 1 {
				c.name = strs[0]
			}
			return c
		}
		c.name = e.Name
		if fn, ok := r.ResolveFunction(e.Name); ok {
			c.targets = []*cfg.Function{fn}
		}
	case *cfg.MethodCall:
		recv := w.eval(e.Receiver)
		c.name, c.receiver = e.Method, &recv
		c.class = singleClass(recv.Values)
		c.targets, c.unresolved = r.ResolveMethod(recv.Values, e.Method)
	case *cfg.StaticCall:
		c.name, c.class = e.Method, w.className(e.Class)
		if fn, ok := r.ResolveStatic(c.class, e.Method); ok {
			c.targets = []*cfg.Function{fn}
		}
		if isRelativeClass(e.Class) && w.point.Instance.Function.Class != "" {
			recv := w.read(memory.VariablePath(memory.Single("this")))
			recv.Values = recv.Values.Filter(func(v memory.Value) bool { return v != memory.Undefined })
			if !recv.Values.IsEmpty() {
				c.receiver = &recv
			}
		}
	case *cfg.New:
		c.name, c.class, c.isNew = "__construct", w.className(e.Class), true
		obj := w.newObject(p, c.class)
		w.s.Assign(slot, memory.NewEntry(obj))
		w.s.AssignInfo(slot, memory.EmptyEntry)
		c.receiver = &Val{Values: memory.NewEntry(obj)}
		if fn, ok := r.ResolveConstructor(c.class); ok {
			c.targets = []*cfg.Function{fn}
		}
	}
	return c
}

func isRelativeClass(name string) bool {
	switch strings.ToLower(name) {
	case "self", "static", "parent":
		return true
	}
	return false
}

// className resolves self, static and parent against the class of the current function.
func (w *walker) className(name string) string {
	current := w.point.Instance.Function.Class
	switch strings.ToLower(name) {
	case "self", "static":
		return current
	case "parent":
		if c, ok := w.d.graph.Program.Class(current); ok {
			return c.Parent
		}
	}
	return strings.TrimPrefix(name, "\\")
}

// singleClass returns the class of the objects of v when they all have the same.
func singleClass(v memory.MemoryEntry) string {
	class := ""
	for _, o := range v.Objects() {
		if class != "" && !strings.EqualFold(class, o.Class) {
			return ""
		}
		class = o.Class
	}
	return class
}

// newObject allocates the object of the new expression of p and initializes its properties. The
// object stands for every object created at p: once it exists, properties are weakly updated.
func (w *walker) newObject(p *ppg.Point, class string) memory.ObjectValue {
	site := fmt.Sprintf("new#%d", p.ID)
	_, existed := w.s.Structure().Object(memory.ObjectID(site))
	obj := w.s.CreateObject(site, class)
	done := map[string]bool{}
	prog := w.d.graph.Program
	for c, ok := prog.Class(class); ok && !done["class "+strings.ToLower(c.Name)]; c, ok = prog.Class(c.Parent) {
		done["class "+strings.ToLower(c.Name)] = true
		for _, prop := range c.Props {
			if done[prop.Name] {
				continue
			}
			done[prop.Name] = true
			v := Val{Values: memory.NewEntry(memory.Null)}
			if prop.Default != nil {
				v = w.eval(prop.Default)
			}
			idx := obj.ID.FieldIndex(prop.Name)
			if existed {
				w.s.AssignWeak(idx, v.Values)
				w.s.AssignInfoWeak(idx, v.Infos)
			} else {
				w.s.Assign(idx, v.Values)
				w.s.AssignInfo(idx, v.Infos)
			}
		}
	}
	return obj
}
