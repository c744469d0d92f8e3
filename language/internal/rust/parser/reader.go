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
	"github.com/EngFlow/fn_abi/internal/collections"
	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
)

func isSignificant(token lexer.Token) bool {
	return !token.Type.IsTrivia()
}

// tokenReader walks a sequence of significant tokens (whitespace and comments filtered out). Offsets of the tokens
// still point into the source the tokens were taken from.
type tokenReader struct {
	tokensLeft []lexer.Token
	end        lexer.Cursor // position right after the last token, reported for the end of input
}

// The start position is reported as the end of input when there are no tokens at all.
func newTokenReader(tokens []lexer.Token, start lexer.Cursor) *tokenReader {
	end := start
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		end = last.Location.AdvancedBy(last.Content)
	}
	return &tokenReader{tokensLeft: collections.FilterSlice(tokens, isSignificant), end: end}
}

// Drop n tokens from the front of the input stream (or all if number of tokens < n).
func (r *tokenReader) drop(n int) {
	r.tokensLeft = r.tokensLeft[min(n, len(r.tokensLeft)):]
}

// Return the n-th token ahead without consuming anything. Past the end of input an EOF token located at the end of
// input is returned.
func (r *tokenReader) peekN(n int) lexer.Token {
	if n >= len(r.tokensLeft) {
		return lexer.Token{Type: lexer.TokenType_EOF, Location: r.end}
	}
	return r.tokensLeft[n]
}

func (r *tokenReader) peek() lexer.Token {
	return r.peekN(0)
}

// Return the next token and consume it.
func (r *tokenReader) next() lexer.Token {
	token := r.peek()
	r.drop(1)
	return token
}

func (r *tokenReader) atEOF() bool {
	return len(r.tokensLeft) == 0
}

func isKeyword(token lexer.Token, keyword string) bool {
	return token.Type == lexer.TokenType_Identifier && token.Content == keyword
}

// Consume the next token if it is the given keyword.
func (r *tokenReader) acceptKeyword(keyword string) (lexer.Token, bool) {
	if token := r.peek(); isKeyword(token, keyword) {
		r.drop(1)
		return token, true
	}
	return lexer.Token{}, false
}

// Consume the next token if it has the given type.
func (r *tokenReader) accept(tokenType lexer.TokenType) (lexer.Token, bool) {
	if token := r.peek(); token.Type == tokenType {
		r.drop(1)
		return token, true
	}
	return lexer.Token{}, false
}

func closingOf(tokenType lexer.TokenType) (lexer.TokenType, bool) {
	switch tokenType {
	case lexer.TokenType_ParenthesisLeft:
		return lexer.TokenType_ParenthesisRight, true
	case lexer.TokenType_BracketLeft:
		return lexer.TokenType_BracketRight, true
	case lexer.TokenType_BraceLeft:
		return lexer.TokenType_BraceRight, true
	default:
		return lexer.TokenType_EOF, false
	}
}

func isClosing(tokenType lexer.TokenType) bool {
	switch tokenType {
	case lexer.TokenType_ParenthesisRight, lexer.TokenType_BracketRight, lexer.TokenType_BraceRight:
		return true
	default:
		return false
	}
}

// Consume a delimited group: an opening bracket, everything nested inside and the matching closing bracket. Returns
// the closing token, or false if the next token does not open a group or the group is never closed.
func (r *tokenReader) skipGroup() (lexer.Token, bool) {
	closing, ok := closingOf(r.peek().Type)
	if !ok {
		return lexer.Token{}, false
	}
	r.drop(1)
	for !r.atEOF() {
		token := r.peek()
		switch {
		case token.Type == closing:
			r.drop(1)
			return token, true
		case isClosing(token.Type):
			return lexer.Token{}, false // mismatched bracket
		default:
			if _, nested := closingOf(token.Type); nested {
				if _, ok := r.skipGroup(); !ok {
					return lexer.Token{}, false
				}
			} else {
				r.drop(1)
			}
		}
	}
	return lexer.Token{}, false
}

// Consume generic parameters or arguments: '<' up to the matching '>'. Groups nested inside are skipped as a whole.
func (r *tokenReader) skipAngles() bool {
	if _, ok := r.accept(lexer.TokenType_Less); !ok {
		return false
	}
	depth := 1
	for !r.atEOF() {
		switch token := r.peek(); {
		case token.Type == lexer.TokenType_Less:
			depth++
			r.drop(1)
		case token.Type == lexer.TokenType_Greater:
			depth--
			r.drop(1)
			if depth == 0 {
				return true
			}
		case isClosing(token.Type):
			return false
		default:
			if _, nested := closingOf(token.Type); nested {
				if _, ok := r.skipGroup(); !ok {
					return false
				}
			} else {
				r.drop(1)
			}
		}
	}
	return false
}

// Consume tokens until stop reports true for a token outside of any group (the stopping token is not consumed).
// With trackAngles, tokens between '<' and '>' are treated as a group too, which is right inside types but not inside
// expressions. Returns the consumed tokens, or false when a group is left unbalanced.
func (r *tokenReader) skipUntil(stop func(lexer.Token) bool, trackAngles bool) ([]lexer.Token, bool) {
	start := r.tokensLeft
	for !r.atEOF() && !stop(r.peek()) {
		token := r.peek()
		switch {
		case trackAngles && token.Type == lexer.TokenType_Less:
			if !r.skipAngles() {
				return nil, false
			}
		case isClosing(token.Type):
			return nil, false
		default:
			if _, nested := closingOf(token.Type); nested {
				if _, ok := r.skipGroup(); !ok {
					return nil, false
				}
			} else {
				r.drop(1)
			}
		}
	}
	return start[:len(start)-len(r.tokensLeft)], true
}

// Consume outer attributes, e.g. #[inline] or #[cfg(unix)].
func (r *tokenReader) skipOuterAttributes() bool {
	for r.peek().Type == lexer.TokenType_Hash && r.peekN(1).Type == lexer.TokenType_BracketLeft {
		r.drop(1)
		if _, ok := r.skipGroup(); !ok {
			return false
		}
	}
	return true
}

// Consume a visibility qualifier, e.g. pub, pub(crate) or pub(in some::path).
func (r *tokenReader) skipVisibility() bool {
	if _, ok := r.acceptKeyword("pub"); ok && r.peek().Type == lexer.TokenType_ParenthesisLeft {
		_, ok := r.skipGroup()
		return ok
	}
	return true
}
