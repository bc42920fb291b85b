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

// Assistant bounds the size of entries. The merge engine hands every entry whose cardinality
// exceeds the limit to Simplify.
type Assistant interface {
	// SimplifyLimit is the largest entry kept as is by ordinary merges.
	SimplifyLimit() int
	// WideningLimit is the largest entry kept as is by merges at loop heads, and the largest
	// number of named elements a widened array keeps.
	WideningLimit() int
	// Simplify returns a coarser entry covering entry.
	Simplify(entry MemoryEntry) MemoryEntry
}

// DefaultAssistant collapses the scalars of an entry into the AnyValue of their kind, or into
// Any when they have several kinds. Containers, Undefined and info flags are preserved.
type DefaultAssistant struct {
	Limit    int
	Widening int
}

// NewDefaultAssistant returns an assistant with the given limits. Non-positive limits default to
// 5 for simplification and 3 for widening.
func NewDefaultAssistant(simplify, widening int) *DefaultAssistant {
	if simplify <= 0 {
		simplify = 5
	}
	if widening <= 0 {
		widening = 3
	}
	return &DefaultAssistant{Limit: simplify, Widening: widening}
}

// SimplifyLimit returns the largest entry ordinary merges keep as is.
func (a *DefaultAssistant) SimplifyLimit() int { return a.Limit }

// WideningLimit returns the largest entry merges at loop heads keep as is. It also bounds the
// number of named elements an array keeps when widened.
func (a *DefaultAssistant) WideningLimit() int { return a.Widening }

// Simplify replaces the scalars of entry by the AnyValue of their kind, or by Any when they
// have several kinds.
func (a *DefaultAssistant) Simplify(entry MemoryEntry) MemoryEntry {
	kinds := map[ValueKind]bool{}
	var kept []Value
	for _, v := range entry.Values() {
		if k := scalarKind(v); k != KindAny || v.Kind() == KindAny {
			kinds[k] = true
			continue
		}
		kept = append(kept, v)
	}
	switch len(kinds) {
	case 0:
		return entry
	case 1:
		for k := range kinds {
			if k == KindNull {
				kept = append(kept, Null)
			} else {
				kept = append(kept, AnyValue{Type: k})
			}
		}
	default:
		kept = append(kept, Any)
	}
	return NewEntry(kept...)
}
