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

import (
	"fmt"
	"io"
)

// Statistic is one of the counters kept by Statistics.
type Statistic int

const (
	SnapshotCreated Statistic = iota
	TransactionStarted
	TransactionCommitted
	ArrayCreated
	ObjectCreated
	AliasCreated
	StrongAssign
	WeakAssign
	InfoAssign
	PathRead
	PathWrite
	Merge
	MergeFastPath
	CallExtend
	CallMerge
	Simplified
	numStatistics
)

var statisticNames = [numStatistics]string{
	"snapshots created",
	"transactions started",
	"transactions committed",
	"arrays created",
	"objects created",
	"aliases created",
	"strong assignments",
	"weak assignments",
	"info assignments",
	"path reads",
	"path writes",
	"merges",
	"merge fast paths",
	"call extensions",
	"call merges",
	"simplified entries",
}

func (s Statistic) String() string {
	if s < 0 || s >= numStatistics {
		return "unknown statistic"
	}
	return statisticNames[s]
}

// Statistics counts the operations performed on the snapshots sharing it. It is used for
// profiling only. A nil *Statistics is valid and counts nothing.
type Statistics struct {
	counts [numStatistics]int
	nextID int
}

// NewStatistics returns an empty set of counters.
func NewStatistics() *Statistics { return &Statistics{} }

// Add increments the counter s.
func (st *Statistics) Add(s Statistic) {
	if st == nil {
		return
	}
	st.counts[s]++
}

// Get returns the value of the counter s.
func (st *Statistics) Get(s Statistic) int {
	if st == nil {
		return 0
	}
	return st.counts[s]
}

func (st *Statistics) newID() int {
	if st == nil {
		return 0
	}
	st.nextID++
	return st.nextID
}

// Report writes every non-zero counter to w.
func (st *Statistics) Report(w io.Writer) {
	if st == nil {
		return
	}
	for s := Statistic(0); s < numStatistics; s++ {
		if st.counts[s] > 0 {
			fmt.Fprintf(w, "%-24s %d\n", s.String()+":", st.counts[s])
		}
	}
}
