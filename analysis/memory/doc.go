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

// Package memory implements the heap model used by the abstract interpreter.
//
// A Snapshot is the unit of analysis state at one program point. It is split into a Structure
// (scopes, array and object descriptors, alias records) and two Data layers (index to possible
// values, index to info flags). All maps are persistent radix trees, so extending a snapshot from
// a predecessor shares every unchanged subtree.
//
// Storage locations are identified by MemoryIndex values. Arrays and objects are handles: their
// contents live under child indexes derived from the handle, never inside the value itself.
//
// Snapshots are mutated only inside a StartTransaction/CommitTransaction bracket. Misuse of that
// protocol panics with a *ContractViolation.
package memory
