// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rust rewrites the calling convention of Rust items annotated with an abi attribute, e.g.
//
//	#[abi(linux64 = "sysv64", win64 = "win64")]
//	fn callback(x: u32) -> u32 { x }
//
// Each annotated item gets the ABI selected for the target platform and the attribute itself is removed, the rest of
// the file is reproduced byte for byte.
package rust

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/EngFlow/fn_abi/internal/collections"
	"github.com/EngFlow/fn_abi/language/internal/platform"
	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
	"github.com/EngFlow/fn_abi/language/internal/rust/parser"
)

var (
	ErrMalformedAttribute = errors.New("malformed abi attribute")
	ErrMissingItem        = errors.New("abi attribute is not followed by an item")
)

// Paths under which the abi attribute is recognized.
var attributePaths = collections.SetOf("abi", "fn_abi::abi")

// Rewrite describes a single annotated item processed by RewriteSource.
type Rewrite struct {
	Location lexer.Cursor // position of the abi attribute
	Kind     parser.Kind
	Name     string
	ABI      string // resolved ABI of the item
	Changed  bool   // whether the ABI marker of the item was modified
}

func (r Rewrite) String() string {
	name := r.Name
	if name == "" {
		name = "<anonymous>"
	}
	status := "unchanged"
	if r.Changed {
		status = "rewritten"
	}
	return fmt.Sprintf("%v: %v %s: extern %q (%s)", r.Location, r.Kind, name, r.ABI, status)
}

// An abi attribute found in the source, together with the item it is attached to.
type annotatedItem struct {
	attribute lexer.Token // the leading '#'
	arguments []lexer.Token
	closing   lexer.Token // ')' closing the argument list
	itemStart int         // index into the tokens of the file
	itemEnd   int         // exclusive
}

// RewriteSource rewrites every item of the source annotated with an abi attribute. All errors found in the file are
// reported together, the output is nil unless every item was rewritten successfully.
func RewriteSource(source []byte, matcher *platform.Matcher) ([]byte, []Rewrite, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, nil, err
	}

	var errs []error
	var rewrites []Rewrite
	var output bytes.Buffer
	copied := 0
	for position := 0; position < len(tokens); {
		item, next, err := findAnnotatedItem(tokens, position)
		if err != nil {
			errs = append(errs, err)
		}
		if item == nil {
			position = next
			continue
		}
		position = item.itemEnd

		rewrite, rewritten, err := rewriteItem(source, tokens, *item, matcher)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rewrites = append(rewrites, rewrite)
		output.Write(source[copied:item.attribute.Location.Offset])
		output.WriteString(rewritten)
		copied = tokens[item.itemEnd-1].End()
	}
	if len(errs) > 0 {
		return nil, rewrites, errors.Join(errs...)
	}
	output.Write(source[copied:])
	return output.Bytes(), rewrites, nil
}

func rewriteItem(source []byte, tokens []lexer.Token, item annotatedItem, matcher *platform.Matcher) (Rewrite, string, error) {
	directive, err := parser.ParseDirective(item.arguments, item.closing.Location)
	if err != nil {
		return Rewrite{}, "", err
	}
	first, last := tokens[item.itemStart], tokens[item.itemEnd-1]
	decl, err := parser.ClassifyAt(source[first.Location.Offset:last.End()], first.Location)
	if err != nil {
		return Rewrite{}, "", err
	}
	abi, changed, err := decl.Apply(directive, matcher)
	if err != nil {
		return Rewrite{}, "", err
	}
	rewrite := Rewrite{
		Location: item.attribute.Location,
		Kind:     decl.Kind,
		Name:     decl.Name,
		ABI:      abi,
		Changed:  changed,
	}
	return rewrite, decl.String(), nil
}

// Return the index of the next significant token at or after position, or len(tokens).
func skipTrivia(tokens []lexer.Token, position int) int {
	for position < len(tokens) && tokens[position].Type.IsTrivia() {
		position++
	}
	return position
}

// Return the index right after the group opened at position, or -1 if the group is never closed.
func skipGroup(tokens []lexer.Token, position int) int {
	depth := 0
	for ; position < len(tokens); position++ {
		switch tokens[position].Type {
		case lexer.TokenType_ParenthesisLeft, lexer.TokenType_BracketLeft, lexer.TokenType_BraceLeft:
			depth++
		case lexer.TokenType_ParenthesisRight, lexer.TokenType_BracketRight, lexer.TokenType_BraceRight:
			depth--
			if depth == 0 {
				return position + 1
			}
		}
	}
	return -1
}

// Search for the next abi attribute starting at position. Returns the annotated item, or nil together with the
// position the search should continue from.
func findAnnotatedItem(tokens []lexer.Token, position int) (*annotatedItem, int, error) {
	hash := skipTrivia(tokens, position)
	if hash >= len(tokens) {
		return nil, len(tokens), nil
	}
	if tokens[hash].Type != lexer.TokenType_Hash {
		return nil, hash + 1, nil
	}
	bracket := skipTrivia(tokens, hash+1)
	if bracket >= len(tokens) || tokens[bracket].Type != lexer.TokenType_BracketLeft {
		return nil, hash + 1, nil // inner attribute or macro syntax
	}

	path, pathEnd := readPath(tokens, bracket+1)
	if !attributePaths.Contains(path) {
		return nil, bracket + 1, nil
	}
	attribute := tokens[hash]
	malformed := fmt.Errorf("%v: %w", attribute.Location, ErrMalformedAttribute)
	open := skipTrivia(tokens, pathEnd)
	if open >= len(tokens) || tokens[open].Type != lexer.TokenType_ParenthesisLeft {
		return nil, open, malformed
	}
	argumentsEnd := skipGroup(tokens, open)
	if argumentsEnd < 0 {
		return nil, len(tokens), malformed
	}
	closeBracket := skipTrivia(tokens, argumentsEnd)
	if closeBracket >= len(tokens) || tokens[closeBracket].Type != lexer.TokenType_BracketRight {
		return nil, argumentsEnd, malformed
	}

	// Whitespace following the attribute goes away together with it, comments and other attributes stay.
	itemStart := closeBracket + 1
	for itemStart < len(tokens) && isBlank(tokens[itemStart]) {
		itemStart++
	}
	itemEnd, ok := findItemEnd(tokens, itemStart)
	if !ok {
		return nil, len(tokens), fmt.Errorf("%v: %w", attribute.Location, ErrMissingItem)
	}
	return &annotatedItem{
		attribute: attribute,
		arguments: tokens[open+1 : argumentsEnd-1],
		closing:   tokens[argumentsEnd-1],
		itemStart: itemStart,
		itemEnd:   itemEnd,
	}, itemEnd, nil
}

func isBlank(token lexer.Token) bool {
	return token.Type == lexer.TokenType_Whitespace || token.Type == lexer.TokenType_Newline
}

// Read a path such as fn_abi::abi starting at position. Returns the path and the index right after it.
func readPath(tokens []lexer.Token, position int) (string, int) {
	var segments []string
	for {
		position = skipTrivia(tokens, position)
		if position >= len(tokens) || tokens[position].Type != lexer.TokenType_Identifier {
			break
		}
		segments = append(segments, tokens[position].Content)
		separator := skipTrivia(tokens, position+1)
		if separator >= len(tokens) || tokens[separator].Type != lexer.TokenType_PathSeparator {
			return strings.Join(segments, "::"), position + 1
		}
		position = separator + 1
	}
	return strings.Join(segments, "::"), position
}

// Find the end of the item starting at position (exclusive token index). Items declaring a type or a binding end at
// their semicolon, functions and extern blocks at the end of their body.
func findItemEnd(tokens []lexer.Token, position int) (int, bool) {
	position = skipTrivia(tokens, position)
	// Other attributes of the item.
	for position < len(tokens) && tokens[position].Type == lexer.TokenType_Hash {
		bracket := skipTrivia(tokens, position+1)
		if bracket >= len(tokens) || tokens[bracket].Type != lexer.TokenType_BracketLeft {
			return 0, false
		}
		if position = skipGroup(tokens, bracket); position < 0 {
			return 0, false
		}
		position = skipTrivia(tokens, position)
	}
	if position >= len(tokens) {
		return 0, false
	}

	endsAtSemicolon := isBindingOrType(tokens, position)
	for position < len(tokens) {
		token := tokens[position]
		switch {
		case token.Type == lexer.TokenType_Semicolon:
			return position + 1, true
		case token.Type == lexer.TokenType_BraceLeft && !endsAtSemicolon:
			end := skipGroup(tokens, position)
			return end, end >= 0
		case token.Type == lexer.TokenType_ParenthesisLeft || token.Type == lexer.TokenType_BracketLeft || token.Type == lexer.TokenType_BraceLeft:
			if position = skipGroup(tokens, position); position < 0 {
				return 0, false
			}
		case token.Type == lexer.TokenType_ParenthesisRight || token.Type == lexer.TokenType_BracketRight || token.Type == lexer.TokenType_BraceRight:
			return 0, false
		default:
			position++
		}
	}
	return 0, false
}

// Reports whether the item starting at position is a type alias, a static or a const binding (but not a const fn).
func isBindingOrType(tokens []lexer.Token, position int) bool {
	keyword := func(position int) string {
		if position < len(tokens) && tokens[position].Type == lexer.TokenType_Identifier {
			return tokens[position].Content
		}
		return ""
	}
	if keyword(position) == "pub" {
		position = skipTrivia(tokens, position+1)
		if position < len(tokens) && tokens[position].Type == lexer.TokenType_ParenthesisLeft {
			if position = skipGroup(tokens, position); position < 0 {
				return false
			}
			position = skipTrivia(tokens, position)
		}
	}
	switch keyword(position) {
	case "type", "static":
		return true
	case "const":
		switch keyword(skipTrivia(tokens, position+1)) {
		case "fn", "unsafe", "async", "extern":
			return false
		default:
			return true
		}
	default:
		return false
	}
}
