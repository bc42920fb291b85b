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

package taint

import (
	"fmt"
	"sort"

	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
)

// Policy is the engine.InfoPolicy of the taint tracking problems of a configuration. The taint
// of the i-th problem is the info flag named by Flag(i).
type Policy struct {
	specs  []config.TaintSpec
	logger *config.LogGroup
	flows  map[flowKey]*engine.Flow
}

type flowKey struct {
	point int
	arg   int
	sink  string
}

var _ engine.InfoPolicy = (*Policy)(nil)

// NewPolicy returns the policy of the taint tracking problems of c.
func NewPolicy(c *config.Config, logger *config.LogGroup) *Policy {
	return &Policy{
		specs:  c.TaintTrackingProblems,
		logger: logger,
		flows:  map[flowKey]*engine.Flow{},
	}
}

// Flag returns the name of the info flag of the i-th taint tracking problem.
func Flag(i int) string {
	return fmt.Sprintf("taint#%d", i)
}

func hasFlag(flag string) func(memory.Value) bool {
	return func(v memory.Value) bool {
		info, ok := v.(memory.InfoValue)
		return ok && info.Flag == flag
	}
}

// Seed taints the superglobals that are sources, and their elements.
func (p *Policy) Seed(s *memory.Snapshot) {
	for i := range p.specs {
		for _, name := range engine.Superglobals {
			if !isSourceVariable(&p.specs[i], name) {
				continue
			}
			idx := memory.NewVariableIndex(name, memory.GlobalLevel)
			info := memory.NewEntry(memory.InfoValue{Flag: Flag(i), Origin: "$" + name})
			s.AssignInfoWeak(idx, info)
			s.AssignInfoWeak(idx.UnknownElementIndex(), info)
			p.logger.Debugf("source: $%s", name)
		}
	}
}

// CallInfo returns the taint of the result of sources and sanitizers. The result of a sanitizer
// carries the taint of its arguments, minus the taint it sanitizes.
func (p *Policy) CallInfo(site engine.CallSite, args []engine.Val) (memory.MemoryEntry, bool) {
	res := memory.EmptyEntry
	for _, a := range args {
		res = res.Union(a.Infos)
	}
	matched := false
	for i := range p.specs {
		ts := &p.specs[i]
		if isSanitizer(ts, site) {
			matched = true
			res = res.Filter(func(v memory.Value) bool { return !hasFlag(Flag(i))(v) })
		}
		if isSourceCall(ts, site) {
			matched = true
			res = res.With(memory.InfoValue{Flag: Flag(i), Origin: site.Name + "@" + site.Pos.String()})
		}
	}
	return res, matched
}

// Sink records the tainted arguments of the calls to sinks.
func (p *Policy) Sink(site engine.CallSite, args []engine.Val) {
	for i := range p.specs {
		if !isSink(&p.specs[i], site) {
			continue
		}
		for j, a := range args {
			tainted := a.Infos.Filter(hasFlag(Flag(i)))
			if tainted.IsEmpty() {
				continue
			}
			key := flowKey{point: site.Point.ID, arg: j, sink: site.Name}
			if f, ok := p.flows[key]; ok {
				f.Infos = f.Infos.Union(tainted)
				continue
			}
			f := &engine.Flow{
				Sink:     site.Name,
				Function: site.Function,
				Pos:      site.Pos,
				Point:    site.Point.ID,
				Arg:      j,
				Infos:    tainted,
			}
			p.flows[key] = f
			ReportTaintFlow(p.logger, *f)
		}
	}
}

// Flows returns the flows found, ordered by position.
func (p *Policy) Flows() []engine.Flow {
	res := make([]engine.Flow, 0, len(p.flows))
	for _, f := range p.flows {
		res = append(res, *f)
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		switch {
		case a.Pos.File != b.Pos.File:
			return a.Pos.File < b.Pos.File
		case a.Pos.Line != b.Pos.Line:
			return a.Pos.Line < b.Pos.Line
		case a.Pos.Col != b.Pos.Col:
			return a.Pos.Col < b.Pos.Col
		case a.Point != b.Point:
			return a.Point < b.Point
		case a.Arg != b.Arg:
			return a.Arg < b.Arg
		}
		return a.Sink < b.Sink
	})
	return res
}
