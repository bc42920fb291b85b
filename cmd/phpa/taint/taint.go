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
	"os"
	"strings"
	"time"

	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/taint"
	"github.com/awslabs/ar-php-tools/cmd/phpa/tools"
	"github.com/awslabs/ar-php-tools/internal/formatutil"
)

// Usage is the usage message of the command.
const Usage = ` Perform taint analysis on PHP scripts.
Usage:
  phpa taint [options] <PHP file(s)>
Examples:
  % phpa taint -config config.yaml index.php lib.php
`

// Flags represents the parsed flags for the taint analysis.
type Flags struct {
	tools.CommonFlags
	reportPath string
}

// NewFlags returns the parsed flags for the taint analysis with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("taint")
	reportPath := flags.FlagSet.String("report", "", "write the taint flows to this file")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, reportPath: *reportPath}, nil
}

// Run runs the taint analysis with flags.
func Run(flags Flags) error {
	if flags.ConfigPath == "" {
		return fmt.Errorf("the taint analysis needs a config file with taint tracking problems (-config)")
	}
	c, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	if len(c.TaintTrackingProblems) == 0 {
		return fmt.Errorf("%s defines no taint tracking problem", flags.ConfigPath)
	}
	ctx, cancel := tools.Context(flags.CommonFlags)
	defer cancel()

	prog, err := tools.LoadProgram(ctx, config.NewLogGroup(c), flags.CommonFlags)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := taint.Analyze(ctx, c, prog)
	duration := time.Since(start)
	if result.Result == nil {
		return fmt.Errorf("taint analysis failed: %w", err)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "\twarning: %v\n", e)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("*", 80))
	fmt.Printf("Analysis took %3.4f s\n\n", duration.Seconds())
	if len(result.TaintFlows) == 0 {
		fmt.Printf("RESULT:\n\t\t%s\n", formatutil.Green("No taint flows detected ✓"))
	} else {
		fmt.Printf("RESULT:\n\t\t%s\n", formatutil.Red(fmt.Sprintf("%d taint flows detected!", len(result.TaintFlows))))
		if err := taint.WriteReport(os.Stdout, result.TaintFlows); err != nil {
			return err
		}
	}
	if flags.reportPath != "" {
		if werr := writeReport(flags.reportPath, result); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("taint analysis is incomplete: %w", err)
	}
	return nil
}

func writeReport(path string, result taint.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report: %w", err)
	}
	defer f.Close()
	return taint.WriteReport(f, result.TaintFlows)
}
