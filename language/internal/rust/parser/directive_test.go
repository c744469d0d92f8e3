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
	"errors"
	"testing"

	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	testCases := []struct {
		input    string
		expected Directive
	}{
		{
			input:    `"C"`,
			expected: DirectABI{ABI: "C", Location: lexer.CursorInit},
		},
		{
			input:    ` r"system" `,
			expected: DirectABI{ABI: "system", Location: lexer.Cursor{Line: 1, Column: 2, Offset: 1}},
		},
		{
			input: `linux = "C", win64 = "system"`,
			expected: ABITable{Entries: []TableEntry{
				{Shortcut: "linux", ABI: "C", Location: lexer.CursorInit},
				{Shortcut: "win64", ABI: "system", Location: lexer.Cursor{Line: 1, Column: 14, Offset: 13}},
			}},
		},
		{
			input: "64 = \"C\",\n32 = \"cdecl\"",
			expected: ABITable{Entries: []TableEntry{
				{Shortcut: "64", ABI: "C", Location: lexer.CursorInit},
				{Shortcut: "32", ABI: "cdecl", Location: lexer.Cursor{Line: 2, Column: 1, Offset: 10}},
			}},
		},
		{
			input: `macos = "C" /* default */`,
			expected: ABITable{Entries: []TableEntry{
				{Shortcut: "macos", ABI: "C", Location: lexer.CursorInit},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			directive, err := ParseDirectiveString(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, directive)
		})
	}
}

func TestParseDirectiveErrors(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{input: ``, expected: ErrNoABI},
		{input: `  // nothing`, expected: ErrNoABI},
		{input: `"C", "system"`, expected: ErrInvalidArgument},
		{input: `"C" linux`, expected: ErrInvalidArgument},
		{input: `= "C"`, expected: ErrInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseDirectiveString(tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestParseDirectiveArgumentErrors(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		found    lexer.TokenType
		message  string
	}{
		{input: `linux = "C",`, expected: "target shortcut", found: lexer.TokenType_EOF, message: "1:13: expected target shortcut but found end of input"},
		{input: `linux "C"`, expected: "`=`", found: lexer.TokenType_LiteralString},
		{input: `linux = C`, expected: "ABI string literal", found: lexer.TokenType_Identifier},
		{input: `linux =`, expected: "ABI string literal", found: lexer.TokenType_EOF},
		{input: `linux = b"C"`, expected: "ABI string literal", found: lexer.TokenType_LiteralString},
		{input: `linux = ""`, expected: "non-empty ABI name", found: lexer.TokenType_LiteralString},
		{input: `linux = "C" win = "system"`, expected: "`,`", found: lexer.TokenType_Identifier},
		{input: `linux = "C", "system"`, expected: "target shortcut", found: lexer.TokenType_LiteralString},
		{input: `""`, expected: "non-empty ABI name", found: lexer.TokenType_LiteralString},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseDirectiveString(tc.input)
			var argumentErr *ArgumentError
			require.True(t, errors.As(err, &argumentErr), "unexpected error: %v", err)
			assert.Equal(t, tc.expected, argumentErr.Expected)
			assert.Equal(t, tc.found, argumentErr.Found.Type)
			if tc.message != "" {
				assert.EqualError(t, err, tc.message)
			}
		})
	}
}

func TestParseDirectiveUnknownShortcut(t *testing.T) {
	_, err := ParseDirectiveString(`linux = "C", unix = "C"`)
	var argumentErr *ArgumentError
	require.ErrorAs(t, err, &argumentErr)
	assert.Equal(t, "unix", argumentErr.Found.Content)
	assert.ErrorContains(t, err, "linux64, linux32, win32, win64, macos32, macos64, linux, win, macos, 64, 32")
}

func TestParseDirectiveValidatesWholeTable(t *testing.T) {
	// The first entry would match, the malformed second entry is reported anyway.
	_, err := ParseDirectiveString(`64 = "C", 16 = "C"`)
	assert.Error(t, err)
}

func TestParseDirectiveReportsEnd(t *testing.T) {
	tokens, err := lexer.NewLexerAt([]byte(`linux = "C",`), lexer.Cursor{Line: 4, Column: 7, Offset: 60}).Tokenize()
	require.NoError(t, err)
	closing := lexer.Cursor{Line: 4, Column: 20, Offset: 73}

	_, err = ParseDirective(tokens, closing)
	assert.EqualError(t, err, "4:20: expected target shortcut but found end of input")

	_, err = ParseDirective(nil, closing)
	assert.ErrorIs(t, err, ErrNoABI)
	assert.ErrorContains(t, err, "4:20: ")
}

func TestResolve(t *testing.T) {
	table := ABITable{Entries: []TableEntry{
		{Shortcut: "win64", ABI: "win64"},
		{Shortcut: "win", ABI: "stdcall"},
		{Shortcut: "macos", ABI: "C"},
		{Shortcut: "linux32", ABI: "cdecl"},
	}}
	named := Marker{Present: true, Named: true, Name: "Rust"}

	testCases := []struct {
		platform string
		existing Marker
		abi      string
		changed  bool
		err      error
	}{
		{platform: "windows/x86_64", abi: "win64", changed: true},
		{platform: "windows/i386", abi: "stdcall", changed: true},
		{platform: "macos/aarch64", abi: "C", changed: true},
		{platform: "macos/aarch64", existing: Marker{Present: true, Named: true, Name: "C"}, abi: "C"},
		{platform: "linux/armv7", abi: "cdecl", changed: true},
		{platform: "linux/x86_64", existing: named, abi: "Rust"},
		{platform: "linux/x86_64", existing: Marker{Present: true}, err: ErrMissingABI},
		{platform: "linux/x86_64", err: ErrMissingABI},
	}

	for _, tc := range testCases {
		t.Run(tc.platform+" "+tc.existing.String(), func(t *testing.T) {
			abi, changed, err := table.Resolve(mustMatcher(t, tc.platform), tc.existing)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.abi, abi)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestDirectiveString(t *testing.T) {
	assert.Equal(t, `"C"`, DirectABI{ABI: "C"}.String())
	table := ABITable{Entries: []TableEntry{{Shortcut: "win", ABI: "system"}, {Shortcut: "64", ABI: "C"}}}
	assert.Equal(t, `win = "system", 64 = "C"`, table.String())
}
