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

import (
	"bytes"
	"regexp"
)

type (
	// Abstraction over regexp.Regexp allows providing an alternative implementation.
	matcher interface {
		// Return a two-element slice of integers defining the location of the leftmost match in content of this
		// matcher. The match itself is at content[indices[0]:indices[1]]. A return value of nil indicates no match.
		FindIndex(content []byte) (indices []int)
	}

	// Matcher for fixed strings. No need to use regexp.Regexp for such simple cases.
	fixedStringMatcher string

	// Matcher for raw string literals: r"...", r#"..."#, br##"..."##. The number of hashes closing the literal must
	// equal the number opening it, which a regular expression cannot express.
	rawStringMatcher struct{}

	// Matcher for block comments. Block comments nest, so /* a /* b */ c */ is one comment.
	nestedCommentMatcher struct{}

	// Represents a way of matching a specific token type.
	matchingRule struct {
		matchedType  TokenType
		matchingImpl matcher
	}
)

// All matchers are anchored: they report a match only at the very beginning of content. This keeps tokenizing linear
// in the input size.
func (fs fixedStringMatcher) FindIndex(content []byte) []int {
	if bytes.HasPrefix(content, []byte(fs)) {
		return []int{0, len(fs)}
	}
	return nil
}

func (rawStringMatcher) FindIndex(content []byte) []int {
	i := 0
	if i < len(content) && content[i] == 'b' {
		i++
	}
	if i >= len(content) || content[i] != 'r' {
		return nil
	}
	i++
	hashes := 0
	for i < len(content) && content[i] == '#' {
		hashes++
		i++
	}
	if i >= len(content) || content[i] != '"' {
		return nil
	}
	i++

	closing := append([]byte{'"'}, bytes.Repeat([]byte{'#'}, hashes)...)
	end := bytes.Index(content[i:], closing)
	if end < 0 {
		return nil
	}
	return []int{0, i + end + len(closing)}
}

func (nestedCommentMatcher) FindIndex(content []byte) []int {
	if !bytes.HasPrefix(content, []byte("/*")) {
		return nil
	}
	depth := 0
	for i := 0; i+1 < len(content); {
		switch {
		case content[i] == '/' && content[i+1] == '*':
			depth++
			i += 2
		case content[i] == '*' && content[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return []int{0, i}
			}
		default:
			i++
		}
	}
	return nil
}

func anchored(expr string) matcher {
	return regexp.MustCompile(`^(?:` + expr + `)`)
}

// Matching logic for all token types apart from:
//
// - TokenType_EOF which is returned when no input data is left to process and it is never used for another purpose.
// - TokenType_Unassigned which is the default fallback type when no other matchingRule apply.
//
// The longest match wins. When two rules match the same length, the earlier one wins, e.g. "->" is an Arrow and not
// Punctuation followed by Greater, while 'a' is a character literal and not the lifetime 'a followed by a quote.
var matchingRules = []matchingRule{
	{matchedType: TokenType_Newline, matchingImpl: fixedStringMatcher("\n")},
	{matchedType: TokenType_Whitespace, matchingImpl: anchored(`[\t\v\f\r ]+`)},
	{matchedType: TokenType_CommentSingleLine, matchingImpl: anchored(`//[^\n]*`)},
	{matchedType: TokenType_CommentMultiLine, matchingImpl: nestedCommentMatcher{}},
	{matchedType: TokenType_LiteralRawString, matchingImpl: rawStringMatcher{}},
	{matchedType: TokenType_LiteralString, matchingImpl: anchored(`(?s)b?"(?:[^"\\]|\\.)*"`)},
	{matchedType: TokenType_LiteralChar, matchingImpl: anchored(`b?'(?:[^'\\\n]|\\[^\n][^'\n]*)'`)},
	{matchedType: TokenType_Identifier, matchingImpl: anchored(`(?:r#)?[\p{L}_][\p{L}\p{N}_]*`)},
	{matchedType: TokenType_Lifetime, matchingImpl: anchored(`'[\p{L}_][\p{L}\p{N}_]*`)},
	{matchedType: TokenType_LiteralNumber, matchingImpl: anchored(`[0-9][0-9_]*(?:\.[0-9][0-9_]*)?(?:[eE][+-]?[0-9_]+)?[\p{L}\p{N}_]*`)},
	{matchedType: TokenType_BraceLeft, matchingImpl: fixedStringMatcher("{")},
	{matchedType: TokenType_BraceRight, matchingImpl: fixedStringMatcher("}")},
	{matchedType: TokenType_BracketLeft, matchingImpl: fixedStringMatcher("[")},
	{matchedType: TokenType_BracketRight, matchingImpl: fixedStringMatcher("]")},
	{matchedType: TokenType_ParenthesisLeft, matchingImpl: fixedStringMatcher("(")},
	{matchedType: TokenType_ParenthesisRight, matchingImpl: fixedStringMatcher(")")},
	{matchedType: TokenType_Comma, matchingImpl: fixedStringMatcher(",")},
	{matchedType: TokenType_Semicolon, matchingImpl: fixedStringMatcher(";")},
	{matchedType: TokenType_PathSeparator, matchingImpl: fixedStringMatcher("::")},
	{matchedType: TokenType_Colon, matchingImpl: fixedStringMatcher(":")},
	{matchedType: TokenType_Arrow, matchingImpl: fixedStringMatcher("->")},
	{matchedType: TokenType_FatArrow, matchingImpl: fixedStringMatcher("=>")},
	{matchedType: TokenType_Equal, matchingImpl: fixedStringMatcher("=")},
	{matchedType: TokenType_Hash, matchingImpl: fixedStringMatcher("#")},
	{matchedType: TokenType_Bang, matchingImpl: fixedStringMatcher("!")},
	{matchedType: TokenType_Less, matchingImpl: fixedStringMatcher("<")},
	{matchedType: TokenType_Greater, matchingImpl: fixedStringMatcher(">")},
	{matchedType: TokenType_Ampersand, matchingImpl: fixedStringMatcher("&")},
	{matchedType: TokenType_Star, matchingImpl: fixedStringMatcher("*")},
	{matchedType: TokenType_Punctuation, matchingImpl: anchored(`==|!=|<=|>=|&&|\|\||\.\.=|\.\.\.|\.\.|<<=|>>=|[-+*/%^&|]=|[-+/%^|.?@~$]`)},
}

// Prefixes of tokens that were started but never finished. Checked only when no rule matched.
var (
	unterminatedRawString = regexp.MustCompile(`^b?r#*"`)
	unterminatedString    = regexp.MustCompile(`^b?"`)
)
