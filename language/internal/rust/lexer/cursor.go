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
	"fmt"
	"strings"
	"unicode/utf8"
)

// Cursor locates a token. Line and Column are 1-based and count runes, they are what error messages show. Offset is
// the 0-based byte offset into the source, used for splicing rewritten text.
type Cursor struct {
	Line, Column, Offset int
}

var (
	CursorInit = Cursor{Line: 1, Column: 1}
	// Zero value, reported when no position is known.
	CursorEOF = Cursor{}
)

// String renders the cursor as line:column.
func (c Cursor) String() string {
	if c == CursorEOF {
		return "EOF"
	}
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// AdvancedBy returns the position right after text, assuming text starts at c.
func (c Cursor) AdvancedBy(text string) Cursor {
	c.Offset += len(text)
	lastNewline := strings.LastIndexByte(text, '\n')
	if lastNewline < 0 {
		c.Column += utf8.RuneCountInString(text)
		return c
	}
	c.Line += strings.Count(text, "\n")
	c.Column = 1 + utf8.RuneCountInString(text[lastNewline+1:])
	return c
}
