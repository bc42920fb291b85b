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

package funcutil

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Map returns a new slice b such that b[i] = f(a[i]) for every index i of a.
func Map[T any, S any](a []T, f func(T) S) []S {
	b := make([]S, 0, len(a))
	for _, x := range a {
		b = append(b, f(x))
	}
	return b
}

// MapInPlace replaces every element x of a by f(x).
func MapInPlace[T any](a []T, f func(T) T) {
	for i, x := range a {
		a[i] = f(x)
	}
}

// Exists returns true when f holds for some element of a.
func Exists[T any](a []T, f func(T) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}

// SortedKeys returns the keys of m in increasing order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// SetToOrderedSlice returns the members of a set represented as a map to booleans, in increasing
// order. Keys mapped to false are not members.
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	s := make([]T, 0, len(set))
	for x, in := range set {
		if in {
			s = append(s, x)
		}
	}
	slices.Sort(s)
	return s
}
