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
)

// NonConvergenceError is returned when the driver reaches its iteration cap before the fixpoint.
type NonConvergenceError struct {
	// Iterations is the number of points processed
	Iterations int
	// Hottest are the points processed the most, with their counts
	Hottest []string
	// LoopHeads are the loop heads among the hottest points
	LoopHeads []string
}

func (e *NonConvergenceError) Error() string {
	msg := fmt.Sprintf("analysis did not converge after %d iterations; hottest points: %s",
		e.Iterations, strings.Join(e.Hottest, ", "))
	if len(e.LoopHeads) > 0 {
		msg += "; loop heads: " + strings.Join(e.LoopHeads, ", ")
	}
	return msg
}

// TransferError is an analysis-time error located at a program point. It does not stop the
// analysis.
type TransferError struct {
	Point  string
	Reason string
}

func (e *TransferError) Error() string {
	return e.Point + ": " + e.Reason
}
