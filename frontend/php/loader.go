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

package php

import (
	"context"
	"fmt"
	"os"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// A Loader lowers PHP files into one program.
type Loader struct {
	logger *config.LogGroup
	prog   *cfg.Program

	// main lowers the top-level code of every file into the main script
	main *lowerer

	// temps numbers the temporaries of the whole program
	temps int
}

// NewLoader returns a loader with an empty program. logger may be nil.
func NewLoader(logger *config.LogGroup) *Loader {
	l := &Loader{logger: logger, prog: cfg.NewProgram()}
	l.main = &lowerer{ld: l, fn: l.prog.Main}
	l.main.cur = l.prog.Main.Entry
	return l
}

// Program returns the program lowered so far.
func (ld *Loader) Program() *cfg.Program { return ld.prog }

// AddFile reads and lowers the file at path.
func (ld *Loader) AddFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	return ld.AddSource(ctx, path, src)
}

// AddSource lowers src, the content of file. A script with syntax errors is still lowered: the
// erroneous regions are reported as unsupported constructs.
func (ld *Loader) AddSource(ctx context.Context, file string, src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("tree-sitter failed to parse %s: %w", file, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && ld.logger != nil {
		ld.logger.Warnf("%s has syntax errors, its analysis may be incomplete", file)
	}
	ld.main.file, ld.main.src = file, src
	for _, n := range named(root) {
		ld.main.stmt(n)
	}
	if ld.logger != nil {
		ld.logger.Debugf("lowered %s: %d functions, %d classes so far", file, len(ld.prog.Functions), len(ld.prog.Classes))
	}
	return nil
}

// Parse lowers the script src of file into a program.
func Parse(ctx context.Context, file string, src []byte) (*cfg.Program, error) {
	ld := NewLoader(nil)
	if err := ld.AddSource(ctx, file, src); err != nil {
		return nil, err
	}
	return ld.Program(), nil
}

// Load lowers the files at paths, in order, into one program.
func Load(ctx context.Context, logger *config.LogGroup, paths ...string) (*cfg.Program, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no file to load")
	}
	ld := NewLoader(logger)
	for _, p := range paths {
		if err := ld.AddFile(ctx, p); err != nil {
			return nil, err
		}
	}
	return ld.Program(), nil
}

// named returns the named children of n, without comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var res []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "comment" {
			res = append(res, c)
		}
	}
	return res
}

// hasToken returns true when n has an anonymous child spelled tok.
func hasToken(n *sitter.Node, tok string, src []byte) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Content(src) == tok {
			return true
		}
	}
	return false
}
