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
	"fmt"
	"strconv"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	sitter "github.com/smacker/go-tree-sitter"
)

// lowerer lowers the statements of one function body.
type lowerer struct {
	ld   *Loader
	file string
	src  []byte
	fn   *cfg.Function

	// cur is the block receiving the statements, nil after a jump
	cur *cfg.Block

	// jumps are the targets of break and continue, innermost last
	jumps []jumpTargets
}

type jumpTargets struct {
	brk  *cfg.Block
	cont *cfg.Block
}

func (l *lowerer) text(n *sitter.Node) string { return n.Content(l.src) }

func (l *lowerer) pos(n *sitter.Node) cfg.Position {
	p := n.StartPoint()
	return cfg.Position{File: l.file, Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

func (l *lowerer) unsupported(n *sitter.Node, construct string) {
	fn := ""
	if l.fn != l.ld.prog.Main {
		fn = l.fn.QualifiedName()
	}
	l.ld.prog.Unsupported = append(l.ld.prog.Unsupported,
		&cfg.UnsupportedError{Construct: construct, Pos: l.pos(n), Function: fn})
}

// block returns the current block, starting an unreachable one after a jump.
func (l *lowerer) block() *cfg.Block {
	if l.cur == nil {
		l.cur = l.fn.NewBlock()
	}
	return l.cur
}

func (l *lowerer) emit(s cfg.Stmt) { l.block().Add(s) }

// jump ends the current block with an edge to to.
func (l *lowerer) jump(to *cfg.Block) {
	if l.cur != nil {
		l.fn.Jump(l.cur, to)
	}
	l.cur = nil
}

// land continues in b when some edge leads to it.
func (l *lowerer) land(b *cfg.Block) {
	if len(b.Preds) > 0 {
		l.cur = b
	} else {
		l.cur = nil
	}
}

func (l *lowerer) temp(prefix string) string {
	l.ld.temps++
	return prefix + strconv.Itoa(l.ld.temps)
}

func (l *lowerer) stmts(nodes []*sitter.Node) {
	for _, n := range nodes {
		l.stmt(n)
	}
}

func (l *lowerer) stmt(n *sitter.Node) {
	switch n.Type() {
	case "php_tag", "text", "text_interpolation", "comment", "empty_statement",
		"namespace_use_declaration", "declare_statement", "interface_declaration":
	case "expression_statement":
		for _, c := range named(n) {
			l.exprStmt(c)
		}
	case "echo_statement":
		var args []cfg.Expr
		for _, c := range named(n) {
			for _, x := range sequence(c) {
				args = append(args, l.expr(x))
			}
		}
		l.emit(&cfg.Echo{Pos: l.pos(n), Args: args})
	case "compound_statement", "colon_block":
		l.stmts(named(n))
	case "namespace_definition":
		if body := n.ChildByFieldName("body"); body != nil {
			l.stmt(body)
		}
	case "if_statement":
		l.ifStmt(n)
	case "while_statement":
		l.whileStmt(n)
	case "do_statement":
		l.doStmt(n)
	case "for_statement":
		l.forStmt(n)
	case "foreach_statement":
		l.foreachStmt(n)
	case "switch_statement":
		l.switchStmt(n)
	case "break_statement", "continue_statement":
		l.breakStmt(n)
	case "return_statement":
		var value cfg.Expr
		if cs := named(n); len(cs) > 0 {
			value = l.expr(cs[0])
		}
		l.emit(&cfg.Return{Pos: l.pos(n), Value: value})
		l.cur = nil
	case "function_definition":
		l.ld.prog.AddFunction(l.function(n, ""))
	case "class_declaration":
		l.class(n)
	case "global_declaration":
		var names []string
		for _, c := range named(n) {
			if c.Type() == "variable_name" {
				names = append(names, varName(l.text(c)))
			} else {
				l.unsupported(c, "dynamic global")
			}
		}
		l.emit(&cfg.Global{Pos: l.pos(n), Names: names})
	case "unset_statement":
		var targets []cfg.Expr
		for _, c := range named(n) {
			targets = append(targets, l.expr(c))
		}
		l.emit(&cfg.Unset{Pos: l.pos(n), Targets: targets})
	case "function_static_declaration", "static_variable_declaration":
		l.staticVars(n)
	case "try_statement":
		l.tryStmt(n)
	case "exit_statement":
		for _, c := range named(n) {
			l.exprStmt(c)
		}
		l.jump(l.fn.Exit)
	case "const_declaration":
		l.unsupported(n, "constant declaration")
	case "ERROR":
		l.unsupported(n, "syntax error")
	default:
		l.unsupported(n, strings.ReplaceAll(n.Type(), "_", " "))
	}
}

// exprStmt lowers an expression evaluated for its effects.
func (l *lowerer) exprStmt(n *sitter.Node) {
	switch n.Type() {
	case "update_expression":
		l.update(n, false)
		return
	case "sequence_expression":
		for _, c := range named(n) {
			l.exprStmt(c)
		}
		return
	case "exit_statement":
		l.stmt(n)
		return
	}
	x := l.expr(n)
	if hasCall(x) {
		l.emit(&cfg.ExprStmt{Pos: l.pos(n), X: x})
	}
	if call, ok := x.(*cfg.Call); ok && call.Dynamic == nil && isExit(call.Name) {
		l.jump(l.fn.Exit)
	}
}

func isExit(name string) bool {
	name = strings.ToLower(name)
	return name == "exit" || name == "die"
}

func hasCall(x cfg.Expr) bool {
	found := false
	cfg.Inspect(x, func(e cfg.Expr) {
		if cfg.IsCall(e) {
			found = true
		}
	})
	return found
}

// sequence flattens the comma-separated expressions of n.
func sequence(n *sitter.Node) []*sitter.Node {
	if n.Type() != "sequence_expression" {
		return []*sitter.Node{n}
	}
	var res []*sitter.Node
	for _, c := range named(n) {
		res = append(res, sequence(c)...)
	}
	return res
}

func (l *lowerer) ifStmt(n *sitter.Node) {
	after := l.fn.NewBlock()
	l.branch(n, after)
	for _, c := range named(n) {
		switch c.Type() {
		case "else_if_clause":
			l.branch(c, after)
		case "else_clause":
			l.stmt(c.ChildByFieldName("body"))
		}
	}
	l.jump(after)
	l.land(after)
}

// branch lowers the condition and body of an if or elseif, leaving the current block on the
// path where the condition does not hold.
func (l *lowerer) branch(n *sitter.Node, after *cfg.Block) {
	cond := l.expr(n.ChildByFieldName("condition"))
	then, next := l.fn.NewBlock(), l.fn.NewBlock()
	l.fn.Branch(l.block(), cond, then, next)
	l.cur = then
	if body := n.ChildByFieldName("body"); body != nil {
		l.stmt(body)
	}
	l.jump(after)
	l.cur = next
}

func (l *lowerer) loop(brk, cont *cfg.Block, body func()) {
	l.jumps = append(l.jumps, jumpTargets{brk: brk, cont: cont})
	body()
	l.jumps = l.jumps[:len(l.jumps)-1]
}

func (l *lowerer) whileStmt(n *sitter.Node) {
	head, body, after := l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock()
	l.jump(head)
	l.cur = head
	cond := l.expr(n.ChildByFieldName("condition"))
	l.fn.Branch(l.block(), cond, body, after)
	l.cur = body
	l.loop(after, head, func() { l.stmt(n.ChildByFieldName("body")) })
	l.jump(head)
	l.land(after)
}

func (l *lowerer) doStmt(n *sitter.Node) {
	body, check, after := l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock()
	l.jump(body)
	l.cur = body
	l.loop(after, check, func() { l.stmt(n.ChildByFieldName("body")) })
	l.jump(check)
	l.cur = check
	cond := l.expr(n.ChildByFieldName("condition"))
	l.fn.Branch(l.block(), cond, body, after)
	l.land(after)
}

// header splits the children of a for or foreach statement: the named children between the
// parentheses, grouped by the semicolons separating them, and the statements after.
func (l *lowerer) header(n *sitter.Node) (parts [][]*sitter.Node, body []*sitter.Node) {
	parts = [][]*sitter.Node{nil}
	closed := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "comment":
		case !c.IsNamed() && !closed && l.text(c) == ";":
			parts = append(parts, nil)
		case !c.IsNamed() && l.text(c) == ")":
			closed = true
		case c.IsNamed() && closed:
			body = append(body, c)
		case c.IsNamed():
			parts[len(parts)-1] = append(parts[len(parts)-1], c)
		}
	}
	return parts, body
}

func (l *lowerer) forStmt(n *sitter.Node) {
	parts, bodies := l.header(n)
	for len(parts) < 3 {
		parts = append(parts, nil)
	}
	for _, c := range parts[0] {
		l.exprStmt(c)
	}
	head, body, update, after := l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock()
	l.jump(head)
	l.cur = head

	var conds []*sitter.Node
	for _, c := range parts[1] {
		conds = append(conds, sequence(c)...)
	}
	if len(conds) == 0 {
		l.jump(body)
	} else {
		for _, c := range conds[:len(conds)-1] {
			l.exprStmt(c)
		}
		cond := l.expr(conds[len(conds)-1])
		l.fn.Branch(l.block(), cond, body, after)
	}

	l.cur = body
	l.loop(after, update, func() { l.stmts(bodies) })
	l.jump(update)
	l.cur = update
	for _, c := range parts[2] {
		l.exprStmt(c)
	}
	l.jump(head)
	l.land(after)
}

func (l *lowerer) foreachStmt(n *sitter.Node) {
	parts, bodies := l.header(n)
	if len(parts[0]) < 2 {
		l.unsupported(n, "foreach without value")
		return
	}
	subject := l.expr(parts[0][0])
	binding := parts[0][1]
	byRef := hasToken(n, "&", l.src)
	var keyNode, valueNode *sitter.Node
	switch binding.Type() {
	case "pair", "foreach_pair":
		kv := named(binding)
		if len(kv) < 2 {
			l.unsupported(binding, "foreach binding")
			return
		}
		keyNode, valueNode = kv[0], kv[1]
		byRef = byRef || hasToken(binding, "&", l.src)
	default:
		valueNode = binding
	}
	if valueNode.Type() == "by_ref" {
		byRef = true
		if inner := named(valueNode); len(inner) > 0 {
			valueNode = inner[0]
		}
	}

	iter := l.temp("it")
	l.emit(&cfg.ForeachInit{Pos: l.pos(n), Iter: iter, Subject: subject})
	head, body, after := l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock()
	l.jump(head)
	l.fn.Branch(head, &cfg.ForeachValid{Pos: l.pos(n), Iter: iter}, body, after)
	l.cur = body

	next := &cfg.ForeachNext{Pos: l.pos(binding), Iter: iter, ByRef: byRef}
	if keyNode != nil {
		next.Key = l.expr(keyNode)
	}
	if valueNode.Type() == "list_literal" || valueNode.Type() == "array_creation_expression" {
		l.unsupported(valueNode, "list destructuring")
		next.Value = &cfg.Temp{Pos: l.pos(valueNode), Name: l.temp("list")}
	} else {
		next.Value = l.expr(valueNode)
	}
	if byRef {
		next.Subject = subject
	}
	l.emit(next)

	l.loop(after, head, func() { l.stmts(bodies) })
	l.jump(head)
	l.land(after)
}

// switchStmt branches to the first case whose value equals the selector. Cases without break fall
// through to the next one. A selector that reads a location without side effects is compared
// directly, so that the case conditions narrow that location; any other selector is evaluated
// once into a temporary.
func (l *lowerer) switchStmt(n *sitter.Node) {
	sel := l.expr(n.ChildByFieldName("condition"))
	if !stable(sel) {
		tmp := &cfg.Temp{Pos: l.pos(n), Name: l.temp("sw")}
		l.emit(&cfg.Assign{Pos: l.pos(n), Target: tmp, Value: sel})
		sel = tmp
	}

	var cases []*sitter.Node
	if body := n.ChildByFieldName("body"); body != nil {
		for _, c := range named(body) {
			if c.Type() == "case_statement" || c.Type() == "default_statement" {
				cases = append(cases, c)
			}
		}
	}
	after := l.fn.NewBlock()
	var conds []cfg.Expr
	var targets []*cfg.Block
	blocks := make([]*cfg.Block, len(cases))
	bodies := make([][]*sitter.Node, len(cases))
	def := after
	for i, c := range cases {
		blocks[i] = l.fn.NewBlock()
		cs := named(c)
		if c.Type() == "default_statement" {
			def = blocks[i]
			bodies[i] = cs
			continue
		}
		if len(cs) == 0 {
			continue
		}
		conds = append(conds, &cfg.Binary{Pos: l.pos(c), Op: cfg.OpEq, Left: sel, Right: l.expr(cs[0])})
		targets = append(targets, blocks[i])
		bodies[i] = cs[1:]
	}
	l.fn.Switch(l.block(), conds, targets, def)
	l.cur = nil

	l.loop(after, after, func() {
		for i := range cases {
			if l.cur != nil {
				l.fn.Jump(l.cur, blocks[i])
			}
			l.cur = blocks[i]
			l.stmts(bodies[i])
		}
	})
	l.jump(after)
	l.land(after)
}

// stable returns true when evaluating e reads a location and has no effect, so that e may be
// evaluated once per case.
func stable(e cfg.Expr) bool {
	switch e := e.(type) {
	case *cfg.Var, *cfg.Temp:
		return true
	case *cfg.Index:
		if e.Key == nil {
			return false
		}
		_, lit := e.Key.(*cfg.Literal)
		return stable(e.Base) && (lit || stable(e.Key))
	case *cfg.Prop:
		return e.Dynamic == nil && stable(e.Base)
	}
	return false
}

func (l *lowerer) breakStmt(n *sitter.Node) {
	level := 1
	if cs := named(n); len(cs) > 0 {
		v, err := strconv.Atoi(l.text(cs[0]))
		if err != nil || v < 1 {
			l.unsupported(n, "computed break level")
		} else {
			level = v
		}
	}
	if level > len(l.jumps) {
		l.unsupported(n, fmt.Sprintf("break %d outside of %d loops", level, len(l.jumps)))
		l.jump(l.fn.Exit)
		return
	}
	t := l.jumps[len(l.jumps)-level]
	if n.Type() == "continue_statement" {
		l.jump(t.cont)
	} else {
		l.jump(t.brk)
	}
}

// tryStmt approximates exceptions: a catch clause may run after the try block or instead of it,
// and the finally clause runs after both.
func (l *lowerer) tryStmt(n *sitter.Node) {
	l.unsupported(n, "try/catch")
	fork, body, after := l.fn.NewBlock(), l.fn.NewBlock(), l.fn.NewBlock()
	l.jump(fork)
	l.fn.Jump(fork, body)
	l.cur = body
	l.stmt(n.ChildByFieldName("body"))
	end := l.cur
	l.jump(after)

	var finally *sitter.Node
	for _, c := range named(n) {
		switch c.Type() {
		case "catch_clause":
			start := l.fn.NewBlock()
			l.fn.Jump(fork, start)
			if end != nil {
				l.fn.Jump(end, start)
			}
			l.cur = start
			if v := c.ChildByFieldName("name"); v != nil {
				l.emit(&cfg.Assign{Pos: l.pos(v), Target: l.expr(v), Value: cfg.NewNull()})
			}
			l.stmt(c.ChildByFieldName("body"))
			l.jump(after)
		case "finally_clause":
			finally = c
		}
	}
	l.land(after)
	if finally != nil {
		l.stmt(finally.ChildByFieldName("body"))
	}
}

// staticVars lowers static variables as local variables initialized on every call.
func (l *lowerer) staticVars(n *sitter.Node) {
	if n.Type() == "function_static_declaration" {
		for _, c := range named(n) {
			l.staticVars(c)
		}
		return
	}
	if n.Type() != "static_variable_declaration" {
		return
	}
	l.unsupported(n, "static variable")
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	var value cfg.Expr = cfg.NewNull()
	if v := n.ChildByFieldName("value"); v != nil {
		value = l.expr(v)
	}
	l.emit(&cfg.Assign{Pos: l.pos(n), Target: l.expr(name), Value: value})
}
