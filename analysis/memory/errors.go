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

package memory

import "fmt"

// ContractViolation is the value the snapshot panics with when it is used against its protocol:
// mutation outside a transaction, mutation of a frozen snapshot, a second StartTransaction, a
// commit without start, or a merge of snapshots with different call levels.
// It signals a bug in the caller, never a property of the analyzed program.
type ContractViolation struct {
	Op     string
	Reason string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("memory contract violation in %s: %s", c.Op, c.Reason)
}

func violation(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)})
}
