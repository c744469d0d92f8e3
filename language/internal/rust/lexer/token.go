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

package lexer

type TokenType int

const (
	// Special token type indicating the end of the input stream (or default
	// value when an error is returned).
	TokenType_EOF TokenType = iota

	// A single character that no other rule accepts, e.g. a stray '$'.
	TokenType_Unassigned

	// Single newline character '\n'.
	TokenType_Newline

	// One or more whitespace characters, other than newlines.
	TokenType_Whitespace

	// Identifier or keyword, including raw identifiers such as r#type.
	TokenType_Identifier

	// Lifetime or loop label, e.g. 'a or 'static.
	TokenType_Lifetime

	// String literal enclosed in double quotes, e.g. "C" or b"bytes".
	TokenType_LiteralString

	// Raw string literal, e.g. r"C" or r#"say "hi""#.
	TokenType_LiteralRawString

	// Character literal, e.g. 'x' or '\n'.
	TokenType_LiteralChar

	// Integer or floating point literal with an optional suffix, e.g. 64,
	// 0xFFu8 or 1.5e3.
	TokenType_LiteralNumber

	// Single-line comment (including doc comments), starting with // and
	// ending at the end of the line.
	TokenType_CommentSingleLine

	// Block comment, starting with /* and ending with the matching */. Block
	// comments nest.
	TokenType_CommentMultiLine

	// Symbols the item parser cares about.

	TokenType_BraceLeft
	TokenType_BraceRight
	TokenType_BracketLeft
	TokenType_BracketRight
	TokenType_ParenthesisLeft
	TokenType_ParenthesisRight
	TokenType_Comma
	TokenType_Semicolon
	TokenType_Colon
	TokenType_PathSeparator
	TokenType_Equal
	TokenType_Arrow
	TokenType_FatArrow
	TokenType_Hash
	TokenType_Bang
	TokenType_Less
	TokenType_Greater
	TokenType_Ampersand
	TokenType_Star

	// Every other operator, e.g. "+", "==" or "..=".
	TokenType_Punctuation
)

func (t TokenType) String() string {
	switch t {
	case TokenType_EOF:
		return "end of input"
	case TokenType_Unassigned:
		return "unknown character"
	case TokenType_Newline:
		return "newline"
	case TokenType_Whitespace:
		return "whitespace"
	case TokenType_Identifier:
		return "identifier"
	case TokenType_Lifetime:
		return "lifetime"
	case TokenType_LiteralString:
		return `"string literal"`
	case TokenType_LiteralRawString:
		return `r"raw string literal"`
	case TokenType_LiteralChar:
		return "character literal"
	case TokenType_LiteralNumber:
		return "number literal"
	case TokenType_CommentSingleLine:
		return "single-line comment"
	case TokenType_CommentMultiLine:
		return "multi-line comment"
	case TokenType_BraceLeft:
		return "symbol '{'"
	case TokenType_BraceRight:
		return "symbol '}'"
	case TokenType_BracketLeft:
		return "symbol '['"
	case TokenType_BracketRight:
		return "symbol ']'"
	case TokenType_ParenthesisLeft:
		return "symbol '('"
	case TokenType_ParenthesisRight:
		return "symbol ')'"
	case TokenType_Comma:
		return "symbol ','"
	case TokenType_Semicolon:
		return "symbol ';'"
	case TokenType_Colon:
		return "symbol ':'"
	case TokenType_PathSeparator:
		return "symbol '::'"
	case TokenType_Equal:
		return "symbol '='"
	case TokenType_Arrow:
		return "symbol '->'"
	case TokenType_FatArrow:
		return "symbol '=>'"
	case TokenType_Hash:
		return "symbol '#'"
	case TokenType_Bang:
		return "symbol '!'"
	case TokenType_Less:
		return "symbol '<'"
	case TokenType_Greater:
		return "symbol '>'"
	case TokenType_Ampersand:
		return "symbol '&'"
	case TokenType_Star:
		return "symbol '*'"
	case TokenType_Punctuation:
		return "operator"
	default:
		return "unknown token"
	}
}

// IsTrivia reports whether tokens of this type carry no syntactic meaning
// (whitespace, newlines and comments).
func (t TokenType) IsTrivia() bool {
	switch t {
	case TokenType_Newline, TokenType_Whitespace, TokenType_CommentSingleLine, TokenType_CommentMultiLine:
		return true
	default:
		return false
	}
}

// IsStringLiteral reports whether the token is a plain or raw string literal.
func (t TokenType) IsStringLiteral() bool {
	return t == TokenType_LiteralString || t == TokenType_LiteralRawString
}

type Token struct {
	Type     TokenType
	Location Cursor
	Content  string
}

var TokenEOF = Token{Type: TokenType_EOF}

// End returns the byte offset right after the token.
func (t Token) End() int {
	return t.Location.Offset + len(t.Content)
}

// Describe renders the token for error messages, e.g. `identifier "foo"`.
func (t Token) Describe() string {
	if t.Type == TokenType_EOF {
		return t.Type.String()
	}
	return t.Type.String() + " " + quoteContent(t.Content)
}

func quoteContent(content string) string {
	if runes := []rune(content); len(runes) > 32 {
		content = string(runes[:29]) + "..."
	}
	return "`" + content + "`"
}
