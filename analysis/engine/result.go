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
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
	"github.com/hashicorp/go-multierror"
)

// Result holds the fixpoint computed by Analyzer.Run. All its snapshots are frozen.
type Result struct {
	// Graph is the program-point graph, with every instance the analysis reached
	Graph *ppg.Graph

	// Stats counts the operations on snapshots
	Stats *memory.Statistics

	// Iterations is the number of points processed
	Iterations int

	// Flows are the flows reported by the info policy
	Flows []Flow

	errs   *multierror.Error
	in     map[*ppg.Point]*memory.Snapshot
	out    map[*ppg.Point]*memory.Snapshot
	pruned map[*ppg.Point]bool
}

// InSet returns the merged state before p, nil when p was never reached.
func (r *Result) InSet(p *ppg.Point) *memory.Snapshot { return r.in[p] }

// OutSet returns the committed state after p, nil when p was never reached.
func (r *Result) OutSet(p *ppg.Point) *memory.Snapshot { return r.out[p] }

// Reachable returns true when some execution may go through p: p was reached and, for an
// assumption, its condition may hold.
func (r *Result) Reachable(p *ppg.Point) bool {
	return r.out[p] != nil && !r.pruned[p]
}

// Unreachable returns the points of the reached instances that no execution goes through.
func (r *Result) Unreachable() []*ppg.Point {
	var res []*ppg.Point
	for _, p := range r.Graph.Points() {
		if !r.Reachable(p) {
			res = append(res, p)
		}
	}
	return res
}

// Final returns the state at the exit of the main script, nil when the script never exits.
func (r *Result) Final() *memory.Snapshot {
	return r.out[r.Graph.Main().Exit]
}

// Errors returns the errors collected during the analysis, nil if there were none.
func (r *Result) Errors() error {
	return r.errs.ErrorOrNil()
}

// Read returns the values and info flags of the variable name at the exit of the main script.
func (r *Result) Read(name string) Val {
	final := r.Final()
	if final == nil {
		return Val{}
	}
	res := final.ReadPath(memory.VariablePath(memory.Single(name)))
	return Val{Values: res.Values, Infos: res.Infos}
}
