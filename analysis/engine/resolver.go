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
	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/memory"
)

// ProgramResolver resolves calls against the declarations of a program.
type ProgramResolver struct {
	Program *cfg.Program
}

// NewProgramResolver returns the resolver of the declarations of prog.
func NewProgramResolver(prog *cfg.Program) *ProgramResolver {
	return &ProgramResolver{Program: prog}
}

// ResolveFunction looks name up, ignoring case.
func (r *ProgramResolver) ResolveFunction(name string) (*cfg.Function, bool) {
	return r.Program.Function(name)
}

// ResolveMethod returns the methods of the classes of the objects of receiver. A receiver that may
// be any object may call the method of any class.
func (r *ProgramResolver) ResolveMethod(receiver memory.MemoryEntry, method string) ([]*cfg.Function, bool) {
	var res []*cfg.Function
	seen := map[*cfg.Function]bool{}
	add := func(f *cfg.Function) {
		if !seen[f] {
			seen[f] = true
			res = append(res, f)
		}
	}
	unresolved := false
	for _, v := range receiver.Values() {
		switch x := v.(type) {
		case memory.ObjectValue:
			if m, ok := r.Program.Method(x.Class, method); ok {
				add(m)
			} else {
				unresolved = true
			}
		case memory.AnyValue:
			if x.Type == memory.KindAny {
				for _, m := range r.Program.Implementations(method) {
					add(m)
				}
			}
			unresolved = true
		}
	}
	return res, unresolved
}

// ResolveStatic returns the method of class, looking up its parents.
func (r *ProgramResolver) ResolveStatic(class string, method string) (*cfg.Function, bool) {
	return r.Program.Method(class, method)
}

// ResolveConstructor returns the __construct method of class or of its parents.
func (r *ProgramResolver) ResolveConstructor(class string) (*cfg.Function, bool) {
	return r.Program.Method(class, "__construct")
}

// ResolveIndirect returns the functions named by the strings of callee.
func (r *ProgramResolver) ResolveIndirect(callee memory.MemoryEntry) ([]*cfg.Function, bool) {
	var res []*cfg.Function
	unresolved := false
	for _, v := range callee.Values() {
		s, ok := v.(memory.StringValue)
		if !ok {
			unresolved = true
			continue
		}
		if f, ok := r.Program.Function(s.V); ok {
			res = append(res, f)
		} else {
			unresolved = true
		}
	}
	return res, unresolved
}
