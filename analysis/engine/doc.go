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

// Package engine implements the worklist fixpoint driver of the abstract interpreter.
//
// The driver iterates over the program-point graph of a program, keeping one committed OutSet
// snapshot per point. A point's InSet is the merge of the OutSets of its processed predecessors;
// its OutSet is the InSet transformed by the point: a statement, an assumption that may prune the
// branch it guards or narrow the values it tests, or one half of a call. When an OutSet changes,
// the successors of the point are queued again. Merges at loop heads and at the entry of recursive
// instances widen, which bounds the number of states an index can go through.
//
// The semantics of values are pluggable: an Evaluator gives the meaning of operators, literals and
// native functions, a Resolver finds the targets of calls, and an InfoPolicy maintains the info
// layer of the snapshots, such as taint marks, and reports flows to sinks.
package engine
