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

// Package analyze implements the phpa analyze command, which prints the possible values of the
// variables of the main script at its end.
package analyze

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/valueset"
	"github.com/awslabs/ar-php-tools/cmd/phpa/tools"
	"github.com/awslabs/ar-php-tools/internal/formatutil"
	"golang.org/x/exp/slices"
)

// Usage is the usage message of the command.
const Usage = ` Compute the possible values of the variables of PHP scripts.
Usage:
  phpa analyze [options] <PHP file(s)>
Examples:
  % phpa analyze -config config.yaml index.php
`

// Run analyzes the files named by the flags and prints the final values of the variables.
func Run(flags tools.CommonFlags) error {
	c, err := tools.LoadConfig(flags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(c)
	ctx, cancel := tools.Context(flags)
	defer cancel()

	logger.Infof(formatutil.Faint("phpa analyze - " + tools.Version))
	logger.Infof(formatutil.Faint("Reading sources"))
	prog, err := tools.LoadProgram(ctx, logger, flags)
	if err != nil {
		return err
	}

	a := &engine.Analyzer{Config: c, Logger: logger, Evaluator: valueset.New(logger)}
	start := time.Now()
	res, err := a.Run(ctx, prog)
	if res == nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.Infof("Analysis took %3.4f s, %d points processed", time.Since(start).Seconds(), res.Iterations)
	var nc *engine.NonConvergenceError
	if errors.As(err, &nc) {
		logger.Warnf("%s", formatutil.Yellow("the values below are partial"))
	}
	if err := WriteValues(os.Stdout, res); err != nil {
		return err
	}
	return err
}

// WriteValues writes one line per variable, superglobals aside, of the main script at its end, in name order.
func WriteValues(w io.Writer, res *engine.Result) error {
	final := res.Final()
	if final == nil {
		_, err := fmt.Fprintln(w, formatutil.Red("the end of the script is unreachable"))
		return err
	}
	names := final.Variables()
	sort.Strings(names)
	for _, name := range names {
		if slices.Contains(engine.Superglobals, name) {
			continue
		}
		v := res.Read(name)
		line := fmt.Sprintf("$%s = %s", formatutil.Sanitize(name), v.Values)
		if !v.Infos.IsEmpty() {
			line += " " + formatutil.Red(infoList(v.Infos))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("could not write values: %w", err)
		}
	}
	return nil
}

func infoList(infos memory.MemoryEntry) string {
	var parts []string
	for _, v := range infos.Values() {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
