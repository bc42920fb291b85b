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
	"strconv"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	sitter "github.com/smacker/go-tree-sitter"
)

var binaryOps = map[string]cfg.BinaryOp{
	"+": cfg.OpAdd, "-": cfg.OpSub, "*": cfg.OpMul, "/": cfg.OpDiv, "%": cfg.OpMod, "**": cfg.OpPow,
	".":  cfg.OpConcat,
	"==": cfg.OpEq, "!=": cfg.OpNotEq, "<>": cfg.OpNotEq, "===": cfg.OpIdentical, "!==": cfg.OpNotIdent,
	"<": cfg.OpLess, "<=": cfg.OpLessEq, ">": cfg.OpGreater, ">=": cfg.OpGreaterEq, "<=>": cfg.OpSpaceship,
	"&&": cfg.OpAnd, "and": cfg.OpAnd, "||": cfg.OpOr, "or": cfg.OpOr, "xor": cfg.OpXor,
	"??": cfg.OpCoalesce,
	"&":  cfg.OpBitAnd, "|": cfg.OpBitOr, "^": cfg.OpBitXor, "<<": cfg.OpShl, ">>": cfg.OpShr,
}

var unaryOps = map[string]cfg.UnaryOp{"!": cfg.OpNot, "-": cfg.OpNeg, "+": cfg.OpPlus, "~": cfg.OpBitNot}

// expr lowers the expression n. The effects of nested assignments are emitted in the current
// block; the returned expression reads their result.
func (l *lowerer) expr(n *sitter.Node) cfg.Expr {
	if n == nil {
		return cfg.NewNull()
	}
	pos := l.pos(n)
	switch n.Type() {
	case "parenthesized_expression", "error_suppression_expression", "expression":
		if cs := named(n); len(cs) > 0 {
			return l.expr(cs[len(cs)-1])
		}
		return cfg.NewNull()
	case "variable_name":
		return &cfg.Var{Pos: pos, Name: varName(l.text(n))}
	case "dynamic_variable_name":
		cs := named(n)
		if len(cs) == 0 {
			return cfg.NewNull()
		}
		return &cfg.VarVar{Pos: pos, Name: l.expr(cs[0])}
	case "integer":
		return withPos(intLiteral(l.text(n)), pos)
	case "float":
		f, _ := strconv.ParseFloat(strings.ReplaceAll(l.text(n), "_", ""), 64)
		return withPos(cfg.NewFloat(f), pos)
	case "boolean":
		return withPos(cfg.NewBool(strings.EqualFold(l.text(n), "true")), pos)
	case "null":
		return withPos(cfg.NewNull(), pos)
	case "string", "encapsed_string", "heredoc", "nowdoc", "shell_command_expression":
		return l.stringExpr(n)
	case "name", "qualified_name":
		return l.constName(n)
	case "class_constant_access_expression":
		return &cfg.Const{Pos: pos, Name: l.text(n)}
	case "assignment_expression":
		return l.assign(n)
	case "reference_assignment_expression":
		target := l.expr(n.ChildByFieldName("left"))
		l.emit(&cfg.AssignRef{Pos: pos, Target: target, Source: l.expr(n.ChildByFieldName("right"))})
		return target
	case "augmented_assignment_expression":
		op := strings.TrimSuffix(l.text(n.ChildByFieldName("operator")), "=")
		target := l.expr(n.ChildByFieldName("left"))
		value := l.expr(n.ChildByFieldName("right"))
		bop, ok := binaryOps[op]
		if !ok {
			l.unsupported(n, "assignment operator "+op+"=")
			l.emit(&cfg.Assign{Pos: pos, Target: target, Value: value})
			return target
		}
		l.emit(&cfg.CompoundAssign{Pos: pos, Op: bop, Target: target, Value: value})
		return target
	case "update_expression":
		return l.update(n, true)
	case "binary_expression":
		return l.binary(n)
	case "unary_op_expression":
		return l.unary(n)
	case "cast_expression":
		typ := strings.Trim(l.text(n.ChildByFieldName("type")), "() \t")
		return &cfg.Cast{Pos: pos, Type: strings.ToLower(typ), X: l.expr(n.ChildByFieldName("value"))}
	case "conditional_expression":
		t := &cfg.Ternary{Pos: pos, Cond: l.expr(n.ChildByFieldName("condition"))}
		if body := n.ChildByFieldName("body"); body != nil {
			t.Then = l.expr(body)
		}
		t.Else = l.expr(n.ChildByFieldName("alternative"))
		return t
	case "function_call_expression":
		return l.call(n)
	case "member_call_expression", "nullsafe_member_call_expression":
		return l.methodCall(n)
	case "scoped_call_expression":
		return l.staticCall(n)
	case "object_creation_expression":
		return l.newObject(n)
	case "member_access_expression", "nullsafe_member_access_expression":
		return l.prop(n)
	case "scoped_property_access_expression":
		l.unsupported(n, "static property")
		return &cfg.Var{Pos: pos, Name: l.text(n)}
	case "subscript_expression":
		return l.index(n, false)
	case "array_creation_expression":
		return l.array(n)
	case "print_intrinsic":
		var args []cfg.Expr
		for _, c := range named(n) {
			args = append(args, l.expr(c))
		}
		l.emit(&cfg.Echo{Pos: pos, Args: args})
		return withPos(cfg.NewInt(1), pos)
	case "include_expression", "include_once_expression", "require_expression", "require_once_expression":
		l.unsupported(n, "file inclusion")
		return &cfg.Call{Pos: pos, Name: strings.TrimSuffix(n.Type(), "_expression"), Args: l.exprs(named(n))}
	case "clone_expression":
		cs := named(n)
		if len(cs) == 0 {
			return cfg.NewNull()
		}
		l.unsupported(n, "clone")
		return l.expr(cs[0])
	case "sequence_expression":
		cs := named(n)
		if len(cs) == 0 {
			return cfg.NewNull()
		}
		for _, c := range cs[:len(cs)-1] {
			l.exprStmt(c)
		}
		return l.expr(cs[len(cs)-1])
	case "throw_expression":
		for _, c := range named(n) {
			l.exprStmt(c)
		}
		l.unsupported(n, "throw")
		l.jump(l.fn.Exit)
		return cfg.NewNull()
	case "anonymous_function_creation_expression", "anonymous_function", "arrow_function":
		l.unsupported(n, "closure")
		return cfg.NewNull()
	case "ERROR":
		l.unsupported(n, "syntax error")
		return cfg.NewNull()
	}
	l.unsupported(n, strings.ReplaceAll(n.Type(), "_", " "))
	return cfg.NewNull()
}

func (l *lowerer) exprs(nodes []*sitter.Node) []cfg.Expr {
	var res []cfg.Expr
	for _, n := range nodes {
		res = append(res, l.expr(n))
	}
	return res
}

func withPos(lit *cfg.Literal, pos cfg.Position) *cfg.Literal {
	lit.Pos = pos
	return lit
}

// intLiteral parses a decimal, hexadecimal, octal or binary integer. Integers overflowing int64
// are floats.
func intLiteral(s string) *cfg.Literal {
	s = strings.ReplaceAll(s, "_", "")
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return cfg.NewInt(i)
	}
	if u, err := strconv.ParseUint(s, 0, 64); err == nil {
		return cfg.NewFloat(float64(u))
	}
	f, _ := strconv.ParseFloat(s, 64)
	return cfg.NewFloat(f)
}

// constName lowers a bare name, which is a constant.
func (l *lowerer) constName(n *sitter.Node) cfg.Expr {
	name := className(l.text(n))
	switch strings.ToLower(name) {
	case "true", "false":
		return withPos(cfg.NewBool(strings.EqualFold(name, "true")), l.pos(n))
	case "null":
		return withPos(cfg.NewNull(), l.pos(n))
	}
	return &cfg.Const{Pos: l.pos(n), Name: name}
}

func (l *lowerer) assign(n *sitter.Node) cfg.Expr {
	left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
	value := l.expr(right)
	if left.Type() == "list_literal" || left.Type() == "array_creation_expression" {
		l.unsupported(left, "list destructuring")
		return value
	}
	target := l.expr(left)
	l.emit(&cfg.Assign{Pos: l.pos(n), Target: target, Value: value})
	return target
}

// update lowers an increment or a decrement. When its value is used, a postfix update returns
// the value before the update, saved in a temporary.
func (l *lowerer) update(n *sitter.Node, used bool) cfg.Expr {
	pos := l.pos(n)
	cs := named(n)
	if len(cs) == 0 {
		return cfg.NewNull()
	}
	target := l.expr(cs[0])
	op := cfg.OpAdd
	if strings.Contains(l.text(n), "--") {
		op = cfg.OpSub
	}
	postfix := n.Child(0).IsNamed()
	var res cfg.Expr = target
	if used && postfix {
		tmp := &cfg.Temp{Pos: pos, Name: l.temp("old")}
		l.emit(&cfg.Assign{Pos: pos, Target: tmp, Value: target})
		res = tmp
	}
	l.emit(&cfg.CompoundAssign{Pos: pos, Op: op, Target: target, Value: cfg.NewInt(1)})
	return res
}

func (l *lowerer) binary(n *sitter.Node) cfg.Expr {
	pos := l.pos(n)
	opNode := n.ChildByFieldName("operator")
	op := ""
	if opNode != nil {
		op = strings.ToLower(l.text(opNode))
	}
	left := l.expr(n.ChildByFieldName("left"))
	rightNode := n.ChildByFieldName("right")
	if op == "instanceof" {
		return &cfg.Call{Pos: pos, Name: "is_a", Args: []cfg.Expr{left, cfg.NewString(className(l.text(rightNode)))}}
	}
	bop, ok := binaryOps[op]
	if !ok {
		l.unsupported(n, "operator "+op)
		return cfg.NewNull()
	}
	return &cfg.Binary{Pos: pos, Op: bop, Left: left, Right: l.expr(rightNode)}
}

func (l *lowerer) unary(n *sitter.Node) cfg.Expr {
	cs := named(n)
	if len(cs) == 0 {
		return cfg.NewNull()
	}
	x := l.expr(cs[len(cs)-1])
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = l.text(opNode)
	} else if first := n.Child(0); !first.IsNamed() {
		op = l.text(first)
	}
	if op == "@" {
		return x
	}
	uop, ok := unaryOps[op]
	if !ok {
		l.unsupported(n, "operator "+op)
		return x
	}
	return &cfg.Unary{Pos: l.pos(n), Op: uop, X: x}
}

// args lowers the arguments of a call. Argument names are ignored.
func (l *lowerer) args(n *sitter.Node) []cfg.Expr {
	var res []cfg.Expr
	for _, a := range named(n) {
		if a.Type() == "argument" {
			cs := named(a)
			if len(cs) == 0 {
				continue
			}
			a = cs[len(cs)-1]
		}
		if a.Type() == "variadic_unpacking" {
			l.unsupported(a, "argument unpacking")
			if cs := named(a); len(cs) > 0 {
				a = cs[0]
			}
		}
		res = append(res, l.expr(a))
	}
	return res
}

func (l *lowerer) call(n *sitter.Node) cfg.Expr {
	pos := l.pos(n)
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil {
		return cfg.NewNull()
	}
	if fn.Type() != "name" && fn.Type() != "qualified_name" {
		callee := l.expr(fn)
		return &cfg.Call{Pos: pos, Dynamic: callee, Args: l.args(args)}
	}
	name := className(l.text(fn))
	switch strings.ToLower(name) {
	case "isset":
		return &cfg.Isset{Pos: pos, Args: l.args(args)}
	case "empty":
		xs := l.args(args)
		if len(xs) != 1 {
			l.unsupported(n, "empty with several arguments")
			return cfg.NewBool(true)
		}
		return &cfg.Empty{Pos: pos, X: xs[0]}
	}
	return &cfg.Call{Pos: pos, Name: name, Args: l.args(args)}
}

func (l *lowerer) methodCall(n *sitter.Node) cfg.Expr {
	receiver := l.expr(n.ChildByFieldName("object"))
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() != "name" {
		l.unsupported(n, "dynamic method call")
		return cfg.NewNull()
	}
	return &cfg.MethodCall{Pos: l.pos(n), Receiver: receiver, Method: l.text(name), Args: l.args(n.ChildByFieldName("arguments"))}
}

func (l *lowerer) staticCall(n *sitter.Node) cfg.Expr {
	scope, name := n.ChildByFieldName("scope"), n.ChildByFieldName("name")
	if scope == nil || name == nil || name.Type() != "name" {
		l.unsupported(n, "dynamic static call")
		return cfg.NewNull()
	}
	switch scope.Type() {
	case "name", "qualified_name", "relative_scope":
	default:
		l.unsupported(n, "static call on an expression")
		return cfg.NewNull()
	}
	return &cfg.StaticCall{Pos: l.pos(n), Class: className(l.text(scope)), Method: l.text(name),
		Args: l.args(n.ChildByFieldName("arguments"))}
}

func (l *lowerer) newObject(n *sitter.Node) cfg.Expr {
	var class string
	var args []cfg.Expr
	for _, c := range named(n) {
		switch c.Type() {
		case "name", "qualified_name":
			class = className(l.text(c))
		case "arguments":
			args = l.args(c)
		case "anonymous_class":
			l.unsupported(c, "anonymous class")
			return cfg.NewNull()
		default:
			if class == "" {
				l.unsupported(c, "dynamic class instantiation")
				return cfg.NewNull()
			}
		}
	}
	return &cfg.New{Pos: l.pos(n), Class: class, Args: args}
}

func (l *lowerer) prop(n *sitter.Node) cfg.Expr {
	p := &cfg.Prop{Pos: l.pos(n), Base: l.expr(n.ChildByFieldName("object"))}
	name := n.ChildByFieldName("name")
	switch {
	case name == nil:
		l.unsupported(n, "property access")
	case name.Type() == "name":
		p.Name = l.text(name)
	default:
		p.Dynamic = l.expr(name)
	}
	return p
}

// index lowers $a[k], or $a[] which appends. Inside strings, a bare key is a string.
func (l *lowerer) index(n *sitter.Node, interpolated bool) cfg.Expr {
	cs := named(n)
	if len(cs) == 0 {
		return cfg.NewNull()
	}
	idx := &cfg.Index{Pos: l.pos(n), Base: l.expr(cs[0])}
	if len(cs) > 1 {
		key := cs[1]
		if interpolated && key.Type() == "name" {
			idx.Key = cfg.NewString(l.text(key))
		} else {
			idx.Key = l.expr(key)
		}
	}
	return idx
}

func (l *lowerer) array(n *sitter.Node) cfg.Expr {
	lit := &cfg.ArrayLit{Pos: l.pos(n)}
	for _, el := range named(n) {
		if el.Type() != "array_element_initializer" {
			continue
		}
		var item cfg.ArrayItem
		item.ByRef = hasToken(el, "&", l.src)
		cs := named(el)
		for i, c := range cs {
			switch c.Type() {
			case "by_ref":
				item.ByRef = true
				if inner := named(c); len(inner) > 0 {
					c = inner[0]
				}
			case "variadic_unpacking":
				l.unsupported(c, "array unpacking")
				continue
			}
			if i == 0 && len(cs) > 1 {
				item.Key = l.expr(c)
			} else {
				item.Value = l.expr(c)
			}
		}
		if item.Value != nil {
			lit.Items = append(lit.Items, item)
		}
	}
	return lit
}
