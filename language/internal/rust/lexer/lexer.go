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

// Package lexer provides a lossless lexical analyzer for Rust item syntax. It breaks the input into a sequence of
// tokens, which can then be processed by a parser.
//
// Every byte of the input ends up in exactly one token, whitespace and comments included, so concatenating the
// contents of all tokens reproduces the input. Tokens track their location in the source code (for accurate error
// reporting and for splicing rewritten text back into place).
package lexer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrMultiLineCommentUnterminated = errors.New("unterminated multi-line comment")
	ErrRawStringLiteralUnterminated = errors.New("unterminated raw string literal")
	ErrStringLiteralUnterminated    = errors.New("unterminated string literal")
)

// Lexer breaks the input source code into a sequence of tokens.
type Lexer struct {
	dataLeft []byte
	cursor   Cursor
}

func NewLexer(sourceCode []byte) *Lexer {
	return NewLexerAt(sourceCode, CursorInit)
}

// NewLexerAt creates a Lexer for a fragment of a larger source which starts at the given position. Locations of the
// produced tokens, offsets included, refer to the enclosing source.
func NewLexerAt(sourceCode []byte, start Cursor) *Lexer {
	return &Lexer{dataLeft: sourceCode, cursor: start}
}

// Update the lexer state accordingly to the extracted token content.
func (lx *Lexer) consume(content string) {
	lx.dataLeft = lx.dataLeft[len(content):]
	lx.cursor = lx.cursor.AdvancedBy(content)
}

// Return the next token extracted from the beginning of the input data left to process. If no more tokens are left,
// returns TokenEOF.
func (lx *Lexer) NextToken() (Token, error) {
	if len(lx.dataLeft) == 0 {
		return TokenEOF, nil
	}

	// Try each matchingRule looking for the longest match.
	tokenEnd := 0
	tokenType := TokenType_Unassigned
	for _, rule := range matchingRules {
		if match := rule.matchingImpl.FindIndex(lx.dataLeft); match != nil && match[1] > tokenEnd {
			tokenEnd = match[1]
			tokenType = rule.matchedType
		}
	}

	if err := lx.checkUnterminated(tokenType); err != nil {
		return TokenEOF, fmt.Errorf("%v: %w", lx.cursor, err)
	}

	if tokenEnd == 0 {
		// Nothing matched, return a single character so that the parser can report it.
		_, tokenEnd = utf8.DecodeRune(lx.dataLeft)
	}

	result := Token{Type: tokenType, Location: lx.cursor, Content: string(lx.dataLeft[:tokenEnd])}
	lx.consume(result.Content)
	return result, nil
}

// Reports literals and comments which were opened but never closed. Without this check the opening characters would
// silently become unrelated tokens.
func (lx *Lexer) checkUnterminated(matched TokenType) error {
	switch {
	case matched != TokenType_CommentMultiLine && bytes.HasPrefix(lx.dataLeft, []byte("/*")):
		return ErrMultiLineCommentUnterminated
	case matched != TokenType_LiteralRawString && unterminatedRawString.Match(lx.dataLeft):
		return ErrRawStringLiteralUnterminated
	case matched != TokenType_LiteralString && unterminatedString.Match(lx.dataLeft):
		return ErrStringLiteralUnterminated
	default:
		return nil
	}
}

// Return all tokens extracted from the input data.
func (lx *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for len(lx.dataLeft) > 0 {
		token, err := lx.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Tokenize is a shorthand for NewLexer(sourceCode).Tokenize().
func Tokenize(sourceCode []byte) ([]Token, error) {
	return NewLexer(sourceCode).Tokenize()
}

// Join concatenates contents of the tokens. For a complete token sequence it returns the original source.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, token := range tokens {
		sb.WriteString(token.Content)
	}
	return sb.String()
}
