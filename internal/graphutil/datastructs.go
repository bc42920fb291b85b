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

package graphutil

// Tree is a generic rooted tree whose nodes know their parent. Call-context instances are
// arranged in one, each under the instance that first entered it.
type Tree[T any] struct {
	Parent   *Tree[T]
	Children []*Tree[T]
	Label    T
	depth    int
}

// NewTree returns a tree made of a single root labelled rootLabel.
func NewTree[T any](rootLabel T) *Tree[T] {
	return &Tree[T]{Label: rootLabel}
}

// AddChild adds a new leaf labelled label under t and returns it.
func (t *Tree[T]) AddChild(label T) *Tree[T] {
	child := &Tree[T]{Parent: t, Label: label, depth: t.depth + 1}
	t.Children = append(t.Children, child)
	return child
}

// Depth is the number of edges between t and the root.
func (t *Tree[T]) Depth() int { return t.depth }

// Path returns the labels from the root down to t, both included.
func (t *Tree[T]) Path() []T {
	res := make([]T, t.depth+1)
	for cur, i := t, t.depth; cur != nil; cur, i = cur.Parent, i-1 {
		res[i] = cur.Label
	}
	return res
}
