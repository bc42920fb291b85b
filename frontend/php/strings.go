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
	"unicode/utf8"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	sitter "github.com/smacker/go-tree-sitter"
)

// stringExpr lowers a string literal. Interpolated strings are lowered to concatenations.
func (l *lowerer) stringExpr(n *sitter.Node) cfg.Expr {
	pos := l.pos(n)
	switch n.Type() {
	case "string":
		return withPos(cfg.NewString(quoted(l.text(n))), pos)
	case "encapsed_string":
		if len(named(n)) == 0 {
			return withPos(cfg.NewString(quoted(l.text(n))), pos)
		}
	case "nowdoc":
		var b strings.Builder
		for _, c := range named(n) {
			if c.Type() == "nowdoc_body" {
				b.WriteString(l.text(c))
			}
		}
		return withPos(cfg.NewString(strings.TrimPrefix(b.String(), "\n")), pos)
	case "shell_command_expression":
		l.unsupported(n, "shell command")
		return &cfg.Call{Pos: pos, Name: "shell_exec", Args: []cfg.Expr{l.interpolate(n, pos)}}
	case "heredoc":
		for _, c := range named(n) {
			if c.Type() == "heredoc_body" {
				return l.interpolate(c, pos)
			}
		}
		return withPos(cfg.NewString(""), pos)
	}
	return l.interpolate(n, pos)
}

// interpolate lowers the parts of a double-quoted string or of a heredoc body.
func (l *lowerer) interpolate(n *sitter.Node, pos cfg.Position) cfg.Expr {
	var parts []cfg.Expr
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, withPos(cfg.NewString(text.String()), pos))
			text.Reset()
		}
	}
	for _, c := range named(n) {
		switch c.Type() {
		case "string_content", "string_value", "escape_sequence", "string":
			text.WriteString(unescape(l.text(c)))
		case "subscript_expression":
			flush()
			parts = append(parts, l.index(c, true))
		default:
			flush()
			parts = append(parts, l.expr(c))
		}
	}
	flush()
	if len(parts) == 0 {
		return withPos(cfg.NewString(""), pos)
	}
	res := parts[0]
	if len(parts) == 1 {
		if _, ok := res.(*cfg.Literal); !ok {
			res = &cfg.Binary{Pos: pos, Op: cfg.OpConcat, Left: withPos(cfg.NewString(""), pos), Right: res}
		}
		return res
	}
	for _, p := range parts[1:] {
		res = &cfg.Binary{Pos: pos, Op: cfg.OpConcat, Left: res, Right: p}
	}
	return res
}

// quoted returns the value of a string literal with its quotes, and its binary prefix if any.
func quoted(s string) string {
	s = strings.TrimLeft(s, "bB")
	if len(s) < 2 {
		return s
	}
	q := s[0]
	body := s[1 : len(s)-1]
	if q == '"' {
		return unescape(body)
	}
	if q != '\'' {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

var simpleEscapes = map[byte]string{
	'n': "\n", 't': "\t", 'r': "\r", 'v': "\v", 'e': "\x1b", 'f': "\f", '\\': `\`, '$': "$", '"': `"`,
}

// unescape decodes the escape sequences of a double-quoted string. Unknown sequences are kept
// as written.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		c := s[i+1]
		if r, ok := simpleEscapes[c]; ok {
			b.WriteString(r)
			i++
			continue
		}
		switch {
		case c >= '0' && c <= '7':
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 16)
			b.WriteByte(byte(v))
			i = j - 1
		case c == 'x' && i+2 < len(s) && isHex(s[i+2]):
			j := i + 2
			for j < len(s) && j < i+4 && isHex(s[j]) {
				j++
			}
			v, _ := strconv.ParseUint(s[i+2:j], 16, 8)
			b.WriteByte(byte(v))
			i = j - 1
		case c == 'u' && i+2 < len(s) && s[i+2] == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteByte(s[i])
				continue
			}
			v, err := strconv.ParseUint(s[i+3:i+2+end], 16, 32)
			if err != nil {
				b.WriteByte(s[i])
				continue
			}
			var buf [utf8.UTFMax]byte
			b.Write(buf[:utf8.EncodeRune(buf[:], rune(v))])
			i = i + 2 + end
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
