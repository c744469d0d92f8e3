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
	"strings"

	"github.com/EngFlow/fn_abi/language/internal/platform"
	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
)

// Directive tells which ABI a declaration should get. It is parsed from the argument list of an abi attribute, either
// a single ABI string literal or a table mapping target shortcuts to ABI names.
type Directive interface {
	fmt.Stringer
	// Resolve returns the ABI the declaration with the existing marker should get on the matcher's platform, and
	// whether that differs from the existing marker.
	Resolve(matcher *platform.Matcher, existing Marker) (abi string, changed bool, err error)
}

// DirectABI sets the same ABI on every platform: #[abi("C")]
type DirectABI struct {
	ABI      string
	Location lexer.Cursor
}

// ABITable picks the ABI of the first entry whose shortcut matches the platform: #[abi(win64 = "win64", 64 = "C")]
type ABITable struct {
	Entries []TableEntry
}

type TableEntry struct {
	Shortcut string
	ABI      string
	Location lexer.Cursor
}

func (d DirectABI) String() string {
	return quoteABI(d.ABI)
}

func (d DirectABI) Resolve(_ *platform.Matcher, existing Marker) (string, bool, error) {
	return d.ABI, !existing.Named || existing.Name != d.ABI, nil
}

func (t ABITable) String() string {
	entries := make([]string, len(t.Entries))
	for i, entry := range t.Entries {
		entries[i] = entry.Shortcut + " = " + quoteABI(entry.ABI)
	}
	return strings.Join(entries, ", ")
}

// Resolve tries entries in order and stops at the first match. When nothing matches, a declaration which already
// names an ABI keeps it, any other declaration is an error.
func (t ABITable) Resolve(matcher *platform.Matcher, existing Marker) (string, bool, error) {
	for _, entry := range t.Entries {
		if matcher.Matches(entry.Shortcut) {
			return entry.ABI, !existing.Named || existing.Name != entry.ABI, nil
		}
	}
	if existing.Named {
		return existing.Name, false, nil
	}
	return "", false, fmt.Errorf("%v: %w", t.Entries[0].Location, ErrMissingABI)
}

// ParseDirectiveString parses the argument list of an abi attribute given as text, without the enclosing parentheses.
func ParseDirectiveString(arguments string) (Directive, error) {
	tokens, err := lexer.Tokenize([]byte(arguments))
	if err != nil {
		return nil, err
	}
	end := lexer.CursorInit
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		end = last.Location.AdvancedBy(last.Content)
	}
	return ParseDirective(tokens, end)
}

// ParseDirective parses the tokens of an abi attribute argument list. The end cursor is the position reported when the
// arguments end too early, typically the closing parenthesis. The whole list is validated before anything is
// evaluated, so a malformed entry is reported even if an earlier entry would match.
func ParseDirective(tokens []lexer.Token, end lexer.Cursor) (Directive, error) {
	r := newTokenReader(tokens, end)
	r.end = end
	if r.atEOF() {
		return nil, fmt.Errorf("%v: %w", end, ErrNoABI)
	}
	if first := r.peek(); first.Type.IsStringLiteral() {
		literal, err := r.expectABI()
		if err != nil {
			return nil, err
		}
		if !r.atEOF() {
			return nil, fmt.Errorf("%v: %w", r.peek().Location, ErrInvalidArgument)
		}
		return DirectABI{ABI: literal, Location: first.Location}, nil
	}
	if first := r.peek(); first.Type != lexer.TokenType_Identifier && first.Type != lexer.TokenType_LiteralNumber {
		return nil, fmt.Errorf("%v: %w", first.Location, ErrInvalidArgument)
	}

	var table ABITable
	for {
		entry, err := r.parseTableEntry()
		if err != nil {
			return nil, err
		}
		table.Entries = append(table.Entries, entry)
		if r.atEOF() {
			return table, nil
		}
		if separator := r.next(); separator.Type != lexer.TokenType_Comma {
			return nil, &ArgumentError{Expected: "`,`", Found: separator}
		}
	}
}

// shortcut = "abi"
func (r *tokenReader) parseTableEntry() (TableEntry, error) {
	shortcut := r.next()
	if shortcut.Type != lexer.TokenType_Identifier && shortcut.Type != lexer.TokenType_LiteralNumber {
		return TableEntry{}, &ArgumentError{Expected: "target shortcut", Found: shortcut}
	}
	if !platform.IsShortcut(shortcut.Content) {
		expected := fmt.Sprintf("one of target shortcuts %v", strings.Join(platform.Shortcuts(), ", "))
		return TableEntry{}, &ArgumentError{Expected: expected, Found: shortcut}
	}
	if equal := r.next(); equal.Type != lexer.TokenType_Equal {
		return TableEntry{}, &ArgumentError{Expected: "`=`", Found: equal}
	}
	abi, err := r.expectABI()
	if err != nil {
		return TableEntry{}, err
	}
	return TableEntry{Shortcut: shortcut.Content, ABI: abi, Location: shortcut.Location}, nil
}

// Consume a non-empty ABI string literal and return its value.
func (r *tokenReader) expectABI() (string, error) {
	literal := r.next()
	if !isABILiteral(literal) {
		return "", &ArgumentError{Expected: "ABI string literal", Found: literal}
	}
	abi := unquoteABI(literal)
	if abi == "" {
		return "", &ArgumentError{Expected: "non-empty ABI name", Found: literal}
	}
	return abi, nil
}
