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

// MemoryAlias is the alias record of one index. A write through any must-alias is observed by the
// index; a write through a may-alias might be. The two sets are disjoint and never contain the
// index itself. Must-alias groups are closed under transitivity: if a and b are must-aliases of i,
// they are must-aliases of each other.
type MemoryAlias struct {
	Index MemoryIndex
	Must  IndexSet
	May   IndexSet
}

// IsEmpty returns true when the record has no aliases.
func (a *MemoryAlias) IsEmpty() bool {
	return a == nil || a.Must.Len() == 0 && a.May.Len() == 0
}

// Equal returns true if both records have the same sets.
func (a *MemoryAlias) Equal(o *MemoryAlias) bool {
	if a.IsEmpty() || o.IsEmpty() {
		return a.IsEmpty() && o.IsEmpty()
	}
	return a == o || a.Index == o.Index && a.Must.Equal(o.Must) && a.May.Equal(o.May)
}

func (a *MemoryAlias) must() IndexSet {
	if a == nil {
		return IndexSet{}
	}
	return a.Must
}

func (a *MemoryAlias) may() IndexSet {
	if a == nil {
		return IndexSet{}
	}
	return a.May
}

// newAlias returns a record whose may-set excludes the must-set and the index itself.
func newAlias(index MemoryIndex, must, may IndexSet) *MemoryAlias {
	must = must.Remove(index)
	may = may.Remove(index).Minus(must)
	if must.Len() == 0 && may.Len() == 0 {
		return nil
	}
	return &MemoryAlias{Index: index, Must: must, May: may}
}

func (a *MemoryAlias) String() string {
	if a.IsEmpty() {
		return "no aliases"
	}
	return fmt.Sprintf("%s must=%v may=%v", a.Index, a.Must.Items(), a.May.Items())
}
