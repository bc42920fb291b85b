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
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/tools/container/intsets"
)

// Superglobals are the arrays every script starts with, at the global level. Their elements are
// unknown.
var Superglobals = []string{"_GET", "_POST", "_COOKIE", "_REQUEST", "_SERVER", "_FILES", "_ENV", "GLOBALS"}

func isSuperglobal(name string) bool {
	for _, s := range Superglobals {
		if s == name {
			return true
		}
	}
	return false
}

// An Analyzer computes the abstract states of every program point of a program.
type Analyzer struct {
	// Config holds the limits of the analysis; the defaults are used when it is nil
	Config *config.Config

	// Logger receives the progress of the analysis; a logger of Config is used when it is nil
	Logger *config.LogGroup

	// Evaluator gives the meaning of values and operators. It is required.
	Evaluator Evaluator

	// Resolver resolves call targets; the declarations of the program are used when it is nil
	Resolver Resolver

	// InfoPolicy maintains the info layer; the info layer is left empty when it is nil
	InfoPolicy InfoPolicy
}

// Run computes the fixpoint of prog. Errors that do not stop the analysis, such as unsupported
// constructs, are returned by Result.Errors. Run returns a *NonConvergenceError with the partial
// result when the iteration cap is reached, and an error wrapping the context error when ctx is
// done.
func (a *Analyzer) Run(ctx context.Context, prog *cfg.Program) (res *Result, err error) {
	if a.Evaluator == nil {
		return nil, errors.New("analyzer has no evaluator")
	}
	if prog == nil || prog.Main == nil {
		return nil, errors.New("program has no main script")
	}
	d, err := a.newDriver(prog)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(*memory.ContractViolation)
			if !ok {
				panic(r)
			}
			res, err = nil, fmt.Errorf("analysis aborted: %w", cv)
		}
	}()
	d.seed()
	err = d.loop(ctx)
	if err != nil && !errors.As(err, new(*NonConvergenceError)) {
		return nil, err
	}
	return d.result(), err
}

// driver holds the state of one run.
type driver struct {
	cfg      *config.Config
	logger   *config.LogGroup
	eval     Evaluator
	resolver Resolver
	policy   InfoPolicy
	graph    *ppg.Graph
	stats    *memory.Statistics
	asst     memory.Assistant

	queue  []*ppg.Point
	queued intsets.Sparse

	in      map[*ppg.Point]*memory.Snapshot
	out     map[*ppg.Point]*memory.Snapshot
	pruned  map[*ppg.Point]bool
	version map[*ppg.Point]int
	visits  map[*ppg.Point]int

	// entries are the entry states of the instances, per call point
	entries map[*ppg.Point]map[*ppg.Instance]*memory.Snapshot
	// natives are the results of the unresolved parts of calls that also have user targets
	natives map[*ppg.Point]Val
	// args are the arguments of the last evaluation of each call point
	args  map[*ppg.Point][]Val
	sites map[*ppg.Point]CallSite
	memo  *lru.Cache[string, *memory.Snapshot]

	mainSeed   *memory.Snapshot
	literals   map[*cfg.ArrayLit]string
	iterations int
	errs       *multierror.Error
	reported   map[string]bool
}

func (a *Analyzer) newDriver(prog *cfg.Program) (*driver, error) {
	c := a.Config
	if c == nil {
		c = config.NewDefault()
	}
	logger := a.Logger
	if logger == nil {
		logger = config.NewLogGroup(c)
	}
	resolver := a.Resolver
	if resolver == nil {
		resolver = NewProgramResolver(prog)
	}
	policy := a.InfoPolicy
	if policy == nil {
		policy = NoInfo{}
	}
	size := c.CalleeCacheSize
	if size <= 0 {
		size = config.DefaultCalleeCacheSize
	}
	memo, err := lru.New[string, *memory.Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("could not create callee cache: %w", err)
	}
	d := &driver{
		cfg:      c,
		logger:   logger,
		eval:     a.Evaluator,
		resolver: resolver,
		policy:   policy,
		graph:    ppg.New(prog, c.CallContextDepth),
		stats:    memory.NewStatistics(),
		asst:     memory.NewDefaultAssistant(c.SimplifyLimit, c.WideningLimit),
		in:       map[*ppg.Point]*memory.Snapshot{},
		out:      map[*ppg.Point]*memory.Snapshot{},
		pruned:   map[*ppg.Point]bool{},
		version:  map[*ppg.Point]int{},
		visits:   map[*ppg.Point]int{},
		entries:  map[*ppg.Point]map[*ppg.Instance]*memory.Snapshot{},
		natives:  map[*ppg.Point]Val{},
		args:     map[*ppg.Point][]Val{},
		sites:    map[*ppg.Point]CallSite{},
		memo:     memo,
		literals: map[*cfg.ArrayLit]string{},
		reported: map[string]bool{},
	}
	for _, u := range prog.Unsupported {
		d.errs = multierror.Append(d.errs, u)
	}
	return d, nil
}

// seed builds the initial state of the main script and queues its entry point.
func (d *driver) seed() {
	s := memory.NewSnapshot(d.asst, d.stats)
	s.StartTransaction()
	for _, name := range Superglobals {
		idx := memory.NewVariableIndex(name, memory.GlobalLevel)
		arr := s.CreateArray(idx)
		s.Assign(idx, memory.NewEntry(arr))
		s.Assign(idx.UnknownElementIndex(), memory.NewEntry(memory.Any))
	}
	d.policy.Seed(s)
	s.CommitTransaction()
	s.Freeze()
	d.mainSeed = s
	d.enqueue(d.graph.Main().Entry)
}

func (d *driver) enqueue(p *ppg.Point) {
	if d.queued.Insert(p.ID) {
		d.queue = append(d.queue, p)
	}
}

// addError records an error once, as points are processed many times.
func (d *driver) addError(err error) {
	if d.reported[err.Error()] {
		return
	}
	d.reported[err.Error()] = true
	d.logger.Warnf("%v", err)
	d.errs = multierror.Append(d.errs, err)
}

// loop processes points until the worklist is empty.
func (d *driver) loop(ctx context.Context) error {
	for len(d.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("analysis interrupted after %d iterations: %w", d.iterations, err)
		}
		if d.cfg.MaxIterations > 0 && d.iterations >= d.cfg.MaxIterations {
			return d.nonConvergence()
		}
		p := d.queue[0]
		d.queue = d.queue[1:]
		d.queued.Remove(p.ID)
		d.iterations++
		d.visits[p]++
		if d.logger.LogsTrace() {
			d.logger.Tracef("processing %s in %s", p, p.Instance)
		}
		d.process(p)
	}
	d.logger.Debugf("fixpoint reached after %d iterations", d.iterations)
	return nil
}

func (d *driver) nonConvergence() error {
	points := make([]*ppg.Point, 0, len(d.visits))
	for p := range d.visits {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if d.visits[points[i]] != d.visits[points[j]] {
			return d.visits[points[i]] > d.visits[points[j]]
		}
		return points[i].ID < points[j].ID
	})
	if len(points) > 5 {
		points = points[:5]
	}
	e := &NonConvergenceError{Iterations: d.iterations}
	for _, p := range points {
		e.Hottest = append(e.Hottest, fmt.Sprintf("%s (%d)", p, d.visits[p]))
		if p.Instance.LoopHeads[p] {
			e.LoopHeads = append(e.LoopHeads, fmt.Sprintf("p%d in %s at %s", p.ID, p.Instance, p.Pos))
		}
	}
	d.logger.Errorf("%v", e)
	return e
}

// snapshot returns the snapshot of p in states, creating it on first use.
func (d *driver) snapshot(states map[*ppg.Point]*memory.Snapshot, p *ppg.Point) *memory.Snapshot {
	s, ok := states[p]
	if !ok {
		s = memory.NewSnapshot(d.asst, d.stats)
		states[p] = s
	}
	return s
}

// inputs returns the states flowing into p. It returns false when p cannot be processed yet.
func (d *driver) inputs(p *ppg.Point) ([]*memory.Snapshot, bool) {
	var res []*memory.Snapshot
	switch p.Kind {
	case ppg.EntryPoint:
		if p.Instance.IsMain() {
			return []*memory.Snapshot{d.mainSeed}, true
		}
		for _, call := range d.graph.Callers(p.Instance) {
			if e, ok := d.entries[call][p.Instance]; ok {
				res = append(res, e)
			}
		}
	case ppg.ReturnPoint:
		call := p.Pair
		if d.out[call] == nil {
			return nil, false
		}
		callees := d.graph.Callees(call)
		if len(callees) == 0 {
			return []*memory.Snapshot{d.out[call]}, true
		}
		for _, inst := range callees {
			if exit := d.out[inst.Exit]; exit != nil {
				res = append(res, exit)
			}
		}
	default:
		for _, q := range p.Preds {
			if s := d.out[q]; s != nil && !d.pruned[q] {
				res = append(res, s)
			}
		}
	}
	return res, len(res) > 0
}

// process recomputes the states of p and queues the points depending on them.
func (d *driver) process(p *ppg.Point) {
	inputs, ok := d.inputs(p)
	if !ok {
		return
	}
	first := d.out[p] == nil
	in := d.snapshot(d.in, p)
	in.StartTransaction()
	switch {
	case p.Kind == ppg.ReturnPoint:
		d.mergeReturn(in, p)
	case p.Instance.LoopHeads[p] || (p.Kind == ppg.EntryPoint && p.Instance.Recursive):
		in.Widen(inputs...)
	default:
		in.Extend(inputs...)
	}
	in.CommitTransaction()

	out := d.snapshot(d.out, p)
	out.StartTransaction()
	out.Extend(in)
	truth := d.transfer(out, p)
	changed := out.CommitTransaction()
	if changed {
		d.version[p]++
	}

	wasPruned := d.pruned[p]
	d.pruned[p] = truth == AlwaysFalse
	if d.pruned[p] {
		return
	}
	if !changed && !first && !wasPruned {
		return
	}
	for _, s := range p.Succs {
		d.enqueue(s)
	}
	if p.Kind == ppg.ExitPoint {
		for _, call := range d.graph.Callers(p.Instance) {
			d.enqueue(call.Pair)
		}
	}
}

// transfer applies the effect of p to s. It returns AlwaysFalse when no execution goes past p.
func (d *driver) transfer(s *memory.Snapshot, p *ppg.Point) Truth {
	w := &walker{d: d, s: s, point: p}
	defer w.release()
	switch p.Kind {
	case ppg.StatementPoint:
		w.statement(p.Stmt)
		w.releaseSlots(p.Stmt)
	case ppg.AssumePoint:
		return w.assume(p)
	case ppg.CallPoint:
		w.call(p)
	}
	return Unknown
}

// mergeReturn builds in, the state after the call of ret, from the exit states of its callees.
func (d *driver) mergeReturn(in *memory.Snapshot, ret *ppg.Point) {
	call := ret.Pair
	callOut := d.out[call]
	slot := memory.NewTemporaryIndex(call.Slot(), callOut.CallLevel())
	_, isNew := call.Call.(*cfg.New)
	callees := d.graph.Callees(call)
	var parts []*memory.Snapshot
	for _, inst := range callees {
		exit := d.out[inst.Exit]
		if exit == nil {
			continue
		}
		key := fmt.Sprintf("%d:%d:%d:%d", ret.ID, inst.ID, d.version[call], d.version[inst.Exit])
		if r, ok := d.memo.Get(key); ok {
			parts = append(parts, r)
			continue
		}
		r := callOut.NewChild()
		r.StartTransaction()
		r.MergeWithCall(callOut, exit)
		if !isNew {
			r.AssignFrom(slot, exit, memory.NewControlIndex("return", inst.ID))
		}
		r.CommitTransaction()
		r.Freeze()
		d.memo.Add(key, r)
		parts = append(parts, r)
	}
	if len(parts) == 0 {
		in.Extend(callOut)
		return
	}
	in.Extend(parts...)
	if nv, ok := d.natives[call]; ok {
		in.AssignWeak(slot, nv.Values)
		in.AssignInfoWeak(slot, nv.Infos)
	}
	if infos, ok := d.policy.CallInfo(d.sites[call], d.args[call]); ok {
		in.AssignInfo(slot, infos)
	}
}

// result freezes the states and reports what the analysis found.
func (d *driver) result() *Result {
	for _, s := range d.in {
		s.Freeze()
	}
	for _, s := range d.out {
		s.Freeze()
	}
	for _, u := range d.graph.Unsupported {
		d.logger.Warnf("%v", u)
		d.errs = multierror.Append(d.errs, u)
	}
	r := &Result{
		Graph:      d.graph,
		Stats:      d.stats,
		Iterations: d.iterations,
		Flows:      d.policy.Flows(),
		errs:       d.errs,
		in:         d.in,
		out:        d.out,
		pruned:     d.pruned,
	}
	if d.cfg.ReportUnreachable {
		for _, p := range r.Unreachable() {
			if p.Kind == ppg.StatementPoint || p.Kind == ppg.CallPoint {
				d.logger.Infof("unreachable: %s at %s", p, p.Pos)
			}
		}
	}
	return r
}
