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
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	sitter "github.com/smacker/go-tree-sitter"
)

// function lowers a function definition or a method declaration. The body of an abstract method
// is empty.
func (l *lowerer) function(n *sitter.Node, class string) *cfg.Function {
	name := "{anonymous}"
	if nn := n.ChildByFieldName("name"); nn != nil {
		name = l.text(nn)
	}
	fn := cfg.NewFunction(name, l.pos(n))
	fn.Class = class
	inner := &lowerer{ld: l.ld, file: l.file, src: l.src, fn: fn}
	inner.cur = fn.Entry

	var promoted []string
	for _, p := range named(n.ChildByFieldName("parameters")) {
		param, ok := inner.param(p)
		if !ok {
			continue
		}
		fn.Params = append(fn.Params, param)
		if p.Type() == "property_promotion_parameter" {
			promoted = append(promoted, param.Name)
		}
	}
	for _, prop := range promoted {
		inner.emit(&cfg.Assign{
			Pos:    fn.Pos,
			Target: &cfg.Prop{Pos: fn.Pos, Base: cfg.NewVar("this"), Name: prop},
			Value:  cfg.NewVar(prop),
		})
	}
	if body := n.ChildByFieldName("body"); body != nil {
		inner.stmt(body)
	}
	return fn
}

func (l *lowerer) param(n *sitter.Node) (cfg.Param, bool) {
	switch n.Type() {
	case "simple_parameter", "property_promotion_parameter":
	case "variadic_parameter":
		l.unsupported(n, "variadic parameter")
	default:
		return cfg.Param{}, false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return cfg.Param{}, false
	}
	p := cfg.Param{Name: varName(l.text(name)), ByRef: hasToken(n, "&", l.src)}
	for _, c := range named(n) {
		if c.Type() == "reference_modifier" {
			p.ByRef = true
		}
	}
	if d := n.ChildByFieldName("default_value"); d != nil {
		p.Default = l.constant(d)
	}
	return p, true
}

// constant lowers an initializer, such as a parameter default value. Initializers have no
// effects; anything they would emit is dropped.
func (l *lowerer) constant(n *sitter.Node) cfg.Expr {
	scratch := &lowerer{ld: l.ld, file: l.file, src: l.src, fn: cfg.NewFunction("", l.pos(n))}
	scratch.cur = scratch.fn.Entry
	return scratch.expr(n)
}

func (l *lowerer) class(n *sitter.Node) {
	nn := n.ChildByFieldName("name")
	if nn == nil {
		l.unsupported(n, "anonymous class")
		return
	}
	parent := ""
	for _, c := range named(n) {
		if c.Type() != "base_clause" {
			continue
		}
		if bs := named(c); len(bs) > 0 {
			parent = className(l.text(bs[0]))
		}
	}
	class := cfg.NewClass(l.text(nn), parent, l.pos(n))
	for _, m := range named(n.ChildByFieldName("body")) {
		switch m.Type() {
		case "method_declaration":
			class.AddMethod(l.function(m, class.Name))
		case "property_declaration":
			for _, el := range named(m) {
				if el.Type() == "property_element" {
					class.Props = append(class.Props, l.property(el))
				}
			}
		case "use_declaration":
			l.unsupported(m, "trait use")
		}
	}
	l.ld.prog.AddClass(class)
}

func (l *lowerer) property(n *sitter.Node) cfg.Property {
	var p cfg.Property
	for _, c := range named(n) {
		switch c.Type() {
		case "variable_name":
			p.Name = varName(l.text(c))
		case "property_initializer":
			if v := named(c); len(v) > 0 {
				p.Default = l.constant(v[0])
			}
		default:
			p.Default = l.constant(c)
		}
	}
	return p
}

// varName strips the sigil of a variable name.
func varName(s string) string { return strings.TrimPrefix(s, "$") }

// className returns the unqualified name of a possibly namespaced class or function name.
func className(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, `\`); i >= 0 {
		return s[i+1:]
	}
	return s
}
