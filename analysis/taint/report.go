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
	"io"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/internal/formatutil"
)

// Origins returns the sources of the taint reaching a sink.
func Origins(flow engine.Flow) []string {
	var res []string
	for _, v := range flow.Infos.Values() {
		res = append(res, v.String())
	}
	return res
}

// ReportTaintFlow logs a new flow.
func ReportTaintFlow(logger *config.LogGroup, flow engine.Flow) {
	logger.Infof(" 💀 Sink reached at %s\n", formatutil.Red(flow.Pos))
	logger.Infof(" Add new path from %s to %s <== \n",
		formatutil.Green(strings.Join(Origins(flow), ", ")), formatutil.Red(flow.Sink))
}

// WriteReport writes one paragraph per flow to w.
func WriteReport(w io.Writer, flows []engine.Flow) error {
	for _, f := range flows {
		_, err := fmt.Fprintf(w, "Source: %s\nSink: %s (argument %d) in %s\nAt: %s\n\n",
			strings.Join(Origins(f), ", "), f.Sink, f.Arg+1, f.Function, f.Pos)
		if err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}
	}
	return nil
}
