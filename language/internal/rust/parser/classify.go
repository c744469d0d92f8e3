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

package parser

import (
	"fmt"

	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
)

// A classifier recognizes one kind of declaration. It reports false when the tokens do not have the shape of its
// kind, or an error when they do but the declaration still cannot carry an ABI marker.
type classifier func(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error)

// Classifiers in order of priority, the first match wins.
var classifiers = []classifier{
	classifyFunction,
	classifyBareFunctionType,
	classifyTypeAlias,
	classifyBinding,
	classifyForeignBlock,
}

func classifyTokens(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, error) {
	for _, classify := range classifiers {
		decl, ok, err := classify(source, origin, tokens)
		if err != nil {
			return nil, err
		}
		if ok {
			return decl, nil
		}
	}
	return nil, fmt.Errorf("%v: %w", origin, ErrUnsupportedItem)
}

// Parse an optional extern keyword followed by an optional ABI string literal.
func (r *tokenReader) parseMarker() Marker {
	keyword, ok := r.acceptKeyword("extern")
	if !ok {
		return Marker{}
	}
	marker := Marker{Present: true, keyword: keyword}
	if literal := r.peek(); isABILiteral(literal) {
		r.drop(1)
		marker.Named = true
		marker.Name = unquoteABI(literal)
		marker.literal = literal
	}
	return marker
}

// [attributes] [visibility] [const] [async] [unsafe] [extern ["abi"]] fn name [<generics>] (params) [-> T] [where ...] { body }
func classifyFunction(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error) {
	r := newTokenReader(tokens, origin)
	if !r.skipOuterAttributes() || !r.skipVisibility() {
		return nil, false, nil
	}
	for _, qualifier := range []string{"const", "async", "unsafe"} {
		r.acceptKeyword(qualifier)
	}
	marker := r.parseMarker()
	fn, ok := r.acceptKeyword("fn")
	if !ok {
		return nil, false, nil
	}
	marker.fn = fn
	name, ok := r.accept(lexer.TokenType_Identifier)
	if !ok {
		return nil, false, nil
	}
	if r.peek().Type == lexer.TokenType_Less && !r.skipAngles() {
		return nil, false, nil
	}
	if r.peek().Type != lexer.TokenType_ParenthesisLeft {
		return nil, false, nil
	}
	if _, ok := r.skipGroup(); !ok {
		return nil, false, nil
	}
	// Return type and where clause.
	isBodyStart := func(token lexer.Token) bool {
		return token.Type == lexer.TokenType_BraceLeft || token.Type == lexer.TokenType_Semicolon
	}
	if _, ok := r.skipUntil(isBodyStart, true); !ok {
		return nil, false, nil
	}
	if _, ok := r.accept(lexer.TokenType_Semicolon); !ok {
		if _, ok := r.skipGroup(); !ok {
			return nil, false, nil
		}
	}
	if !r.atEOF() {
		return nil, false, nil
	}
	return &Declaration{Kind: Kind_Function, Name: name.Content, source: source, origin: origin, marker: marker}, true, nil
}

// Parse [for<lifetimes>] [unsafe] [extern ["abi"]] fn (params) [-> T], consuming all of the input.
func (r *tokenReader) parseBareFunctionType() (Marker, bool) {
	if _, ok := r.acceptKeyword("for"); ok && !r.skipAngles() {
		return Marker{}, false
	}
	r.acceptKeyword("unsafe")
	marker := r.parseMarker()
	fn, ok := r.acceptKeyword("fn")
	if !ok || r.peek().Type != lexer.TokenType_ParenthesisLeft {
		return Marker{}, false
	}
	marker.fn = fn
	if _, ok := r.skipGroup(); !ok {
		return Marker{}, false
	}
	if _, ok := r.accept(lexer.TokenType_Arrow); ok {
		returnType, ok := r.skipUntil(func(lexer.Token) bool { return false }, true)
		if !ok || len(returnType) == 0 {
			return Marker{}, false
		}
	}
	return marker, r.atEOF()
}

func classifyBareFunctionType(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error) {
	marker, ok := newTokenReader(tokens, origin).parseBareFunctionType()
	if !ok {
		return nil, false, nil
	}
	return &Declaration{Kind: Kind_BareFunctionType, source: source, origin: origin, marker: marker}, true, nil
}

// [attributes] [visibility] type Name [<generics>] = <function pointer type>;
func classifyTypeAlias(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error) {
	r := newTokenReader(tokens, origin)
	if !r.skipOuterAttributes() || !r.skipVisibility() {
		return nil, false, nil
	}
	if _, ok := r.acceptKeyword("type"); !ok {
		return nil, false, nil
	}
	name, ok := r.accept(lexer.TokenType_Identifier)
	if !ok {
		return nil, false, nil
	}
	if r.peek().Type == lexer.TokenType_Less && !r.skipAngles() {
		return nil, false, nil
	}
	if _, ok := r.accept(lexer.TokenType_Equal); !ok {
		return nil, false, nil
	}
	isSemicolon := func(token lexer.Token) bool { return token.Type == lexer.TokenType_Semicolon }
	aliasedTokens, ok := r.skipUntil(isSemicolon, true)
	if !ok || len(aliasedTokens) == 0 {
		return nil, false, nil
	}
	if _, ok := r.accept(lexer.TokenType_Semicolon); !ok || !r.atEOF() {
		return nil, false, nil
	}

	first, last := aliasedTokens[0], aliasedTokens[len(aliasedTokens)-1]
	decl := &Declaration{
		Kind:         Kind_TypeAlias,
		Name:         name.Content,
		source:       source,
		origin:       origin,
		aliasedBegin: first.Location.Offset,
		aliasedEnd:   last.End(),
	}
	aliasedSource := source[decl.local(decl.aliasedBegin):decl.local(decl.aliasedEnd)]
	aliasedLexed, err := lexer.NewLexerAt([]byte(aliasedSource), first.Location).Tokenize()
	if err != nil {
		return nil, false, err
	}
	aliased, ok, _ := classifyBareFunctionType(aliasedSource, first.Location, aliasedLexed)
	if !ok {
		return nil, false, fmt.Errorf("%v: %w: type alias %s does not alias a function pointer type such as `extern \"C\" fn()`", first.Location, ErrUnsupportedType, name.Content)
	}
	decl.aliased = aliased
	return decl, true, nil
}

// [attributes] [visibility] const NAME: <function pointer type> = value; or the static [mut] counterpart.
func classifyBinding(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error) {
	r := newTokenReader(tokens, origin)
	if !r.skipOuterAttributes() || !r.skipVisibility() {
		return nil, false, nil
	}
	if _, ok := r.acceptKeyword("const"); !ok {
		if _, ok := r.acceptKeyword("static"); !ok {
			return nil, false, nil
		}
		r.acceptKeyword("mut")
	}
	name, ok := r.accept(lexer.TokenType_Identifier)
	if !ok {
		return nil, false, nil
	}
	if _, ok := r.accept(lexer.TokenType_Colon); !ok {
		return nil, false, nil
	}
	isTypeEnd := func(token lexer.Token) bool {
		return token.Type == lexer.TokenType_Equal || token.Type == lexer.TokenType_Semicolon
	}
	typeTokens, ok := r.skipUntil(isTypeEnd, true)
	if !ok || len(typeTokens) == 0 {
		return nil, false, nil
	}
	if _, ok := r.accept(lexer.TokenType_Equal); ok {
		isSemicolon := func(token lexer.Token) bool { return token.Type == lexer.TokenType_Semicolon }
		if value, ok := r.skipUntil(isSemicolon, false); !ok || len(value) == 0 {
			return nil, false, nil
		}
	}
	if _, ok := r.accept(lexer.TokenType_Semicolon); !ok || !r.atEOF() {
		return nil, false, nil
	}

	marker, ok := newTokenReader(typeTokens, typeTokens[0].Location).parseBareFunctionType()
	if !ok {
		return nil, false, fmt.Errorf("%v: %w: %s is not of a function pointer type, use a type alias instead", typeTokens[0].Location, ErrUnsupportedType, name.Content)
	}
	return &Declaration{Kind: Kind_Binding, Name: name.Content, source: source, origin: origin, marker: marker}, true, nil
}

// [attributes] [unsafe] extern ["abi"] { items }
func classifyForeignBlock(source string, origin lexer.Cursor, tokens []lexer.Token) (*Declaration, bool, error) {
	r := newTokenReader(tokens, origin)
	if !r.skipOuterAttributes() {
		return nil, false, nil
	}
	r.acceptKeyword("unsafe")
	marker := r.parseMarker()
	if !marker.Present || r.peek().Type != lexer.TokenType_BraceLeft {
		return nil, false, nil
	}
	if _, ok := r.skipGroup(); !ok || !r.atEOF() {
		return nil, false, nil
	}
	marker.Required = true
	return &Declaration{Kind: Kind_ForeignBlock, source: source, origin: origin, marker: marker}, true, nil
}
