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

// Package ppg builds program-point graphs: the graphs the fixpoint driver iterates over.
//
// A program point is one step of the analysis: a statement, an assumption guarding a conditional
// edge, or one of the two halves of a call. Calls are hoisted out of the statements and conditions
// containing them, in evaluation order, so that a statement point never makes a call: its call
// point evaluates the arguments and enters the callees, and its return point merges the callee
// exits back and stores the result in a control slot the statement then reads.
//
// The points of a function are built once per call context, in an Instance. The identifier of an
// instance is the call level of its variables, so two instances of the same function never share
// local variables.
package ppg
