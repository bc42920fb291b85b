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

// Package points implements the phpa points command, which lists the program points of the
// instances the analysis reached and marks the unreachable ones.
package points

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
	"github.com/awslabs/ar-php-tools/analysis/valueset"
	"github.com/awslabs/ar-php-tools/cmd/phpa/tools"
	"github.com/awslabs/ar-php-tools/internal/formatutil"
	"github.com/awslabs/ar-php-tools/internal/graphutil"
)

// Usage is the usage message of the command.
const Usage = ` List the program points of PHP scripts, and the points the analysis proves unreachable.
Usage:
  phpa points [options] <PHP file(s)>
Examples:
  % phpa points -function login -cycles index.php
`

// Flags represents the parsed flags of the points command.
type Flags struct {
	tools.CommonFlags
	function string
	cycles   bool
}

// NewFlags returns the parsed flags of the points command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("points")
	function := flags.FlagSet.String("function", "", "only list the instances of this function")
	cycles := flags.FlagSet.Bool("cycles", false, "print the elementary cycles of each instance")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, function: *function, cycles: *cycles}, nil
}

// Run analyzes the files and lists the points.
func Run(flags Flags) error {
	c, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(c)
	ctx, cancel := tools.Context(flags.CommonFlags)
	defer cancel()
	prog, err := tools.LoadProgram(ctx, logger, flags.CommonFlags)
	if err != nil {
		return err
	}
	a := &engine.Analyzer{Config: c, Logger: logger, Evaluator: valueset.New(logger)}
	res, err := a.Run(ctx, prog)
	if res == nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if werr := WritePoints(os.Stdout, res, flags.function, flags.cycles); werr != nil {
		return werr
	}
	return err
}

// WritePoints writes the points of the instances of function, or of every instance when function
// is empty. Unreachable points are marked.
func WritePoints(w io.Writer, res *engine.Result, function string, cycles bool) error {
	for _, inst := range res.Graph.Instances() {
		if function != "" && !strings.EqualFold(inst.Function.QualifiedName(), function) {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", formatutil.Bold(inst)); err != nil {
			return fmt.Errorf("could not write points: %w", err)
		}
		for _, p := range inst.Points {
			mark := " "
			if !res.Reachable(p) {
				mark = formatutil.Red("x")
			} else if inst.LoopHeads[p] {
				mark = formatutil.Cyan("@")
			}
			fmt.Fprintf(w, " %s %s %s\n", mark, p, formatutil.Faint(p.Pos))
		}
		if cycles {
			writeCycles(w, res.Graph, inst)
		}
	}
	return nil
}

// maxCycles bounds the number of cycles printed per instance.
const maxCycles = 100

func writeCycles(w io.Writer, g *ppg.Graph, inst *ppg.Instance) {
	ids := make([]int64, len(inst.Points))
	for i, p := range inst.Points {
		ids[i] = int64(p.ID)
	}
	view := graphutil.Subgraph(g.Directed(), ids)
	for _, cycle := range graphutil.FindAllElementaryCycles(view, maxCycles) {
		parts := make([]string, len(cycle))
		for i, id := range cycle {
			parts[i] = fmt.Sprintf("p%d", id)
		}
		fmt.Fprintf(w, "   cycle: %s\n", strings.Join(parts, " -> "))
	}
}
