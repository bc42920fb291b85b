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
	"context"
	"errors"
	"time"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/valueset"
	"github.com/hashicorp/go-multierror"
)

// AnalysisResult is the result of a taint analysis.
type AnalysisResult struct {
	// TaintFlows contains all the flows from the sources to the sinks detected during the analysis
	TaintFlows []engine.Flow

	// Result is the fixpoint computed by the abstract interpreter, if you need to query the states
	Result *engine.Result

	// Errors contains the errors that did not stop the analysis, such as unsupported constructs
	Errors []error
}

// Analyze runs the taint analysis of the problems of c on prog. A partial result is returned with
// the error when the analysis does not converge.
func Analyze(ctx context.Context, c *config.Config, prog *cfg.Program) (AnalysisResult, error) {
	logger := config.NewLogGroup(c)
	policy := NewPolicy(c, logger)
	analyzer := &engine.Analyzer{
		Config:     c,
		Logger:     logger,
		Evaluator:  valueset.New(logger),
		InfoPolicy: policy,
	}

	logger.Infof("Starting taint analysis of %d problem(s) ...", len(c.TaintTrackingProblems))
	start := time.Now()
	res, err := analyzer.Run(ctx, prog)
	if res == nil {
		return AnalysisResult{}, err
	}
	logger.Infof("Taint analysis done (%.2f s, %d iterations).", time.Since(start).Seconds(), res.Iterations)

	result := AnalysisResult{TaintFlows: res.Flows, Result: res}
	var merr *multierror.Error
	if errors.As(res.Errors(), &merr) {
		result.Errors = merr.Errors
	}
	return result, err
}
