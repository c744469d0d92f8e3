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

// Package parser recognizes Rust items which carry a calling convention and rewrites their ABI marker in place.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EngFlow/fn_abi/language/internal/platform"
	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
)

// Kind of a declaration which carries an ABI marker.
type Kind int

const (
	// fn name() {}, optionally preceded by qualifiers and extern "abi".
	Kind_Function Kind = iota
	// A bare function pointer type on its own, e.g. unsafe extern "C" fn(i32) -> i32.
	Kind_BareFunctionType
	// type Name = <bare function pointer type>;
	Kind_TypeAlias
	// const NAME: <bare function pointer type> = value; or the static counterpart.
	Kind_Binding
	// extern "abi" { ... }
	Kind_ForeignBlock
)

func (k Kind) String() string {
	switch k {
	case Kind_Function:
		return "function"
	case Kind_BareFunctionType:
		return "function pointer type"
	case Kind_TypeAlias:
		return "type alias"
	case Kind_Binding:
		return "const or static"
	case Kind_ForeignBlock:
		return "extern block"
	default:
		return "unknown kind"
	}
}

// Marker is the calling convention of a declaration: the extern keyword and the optional ABI string literal that
// follows it.
type Marker struct {
	Present  bool   // the extern keyword is there
	Named    bool   // an ABI string literal follows the extern keyword
	Name     string // unquoted ABI name, valid when Named
	Required bool   // the declaration cannot exist without the extern keyword (extern blocks)

	keyword lexer.Token // extern, valid when Present
	literal lexer.Token // valid when Named
	fn      lexer.Token // the fn keyword a missing marker is inserted before; unset for extern blocks
}

func (m Marker) String() string {
	switch {
	case m.Named:
		return "extern " + quoteABI(m.Name)
	case m.Present:
		return "extern"
	default:
		return "<none>"
	}
}

// Declaration is a single item which carries an ABI marker. Its Kind is fixed at classification, only the marker can
// be changed afterwards. The declaration text is kept verbatim, rewriting the marker touches nothing else.
type Declaration struct {
	Kind Kind
	Name string // item name, empty for bare function pointer types and extern blocks

	source string
	origin lexer.Cursor // position of source within the enclosing file
	marker Marker       // marker of all kinds but Kind_TypeAlias

	aliased      *Declaration // Kind_TypeAlias: the aliased function pointer type, parsed on its own
	aliasedBegin int          // Kind_TypeAlias: absolute offsets of the aliased type within source
	aliasedEnd   int
}

// Classify parses source as one declaration and determines its kind.
func Classify(source []byte) (*Declaration, error) {
	return ClassifyAt(source, lexer.CursorInit)
}

// ClassifyAt is like Classify, but for a declaration which is a fragment of a larger file starting at origin. Errors
// report positions within the enclosing file.
func ClassifyAt(source []byte, origin lexer.Cursor) (*Declaration, error) {
	tokens, err := lexer.NewLexerAt(source, origin).Tokenize()
	if err != nil {
		return nil, err
	}
	return classifyTokens(string(source), origin, tokens)
}

func (d *Declaration) String() string {
	return d.source
}

// Location returns the position of the declaration within the enclosing file.
func (d *Declaration) Location() lexer.Cursor {
	return d.origin
}

// Marker returns the current ABI marker of the declaration.
func (d *Declaration) Marker() Marker {
	return *markerAccessors[d.Kind](d).marker()
}

// SetABI overwrites the ABI marker with the given ABI name, inserting the marker when the declaration has none.
func (d *Declaration) SetABI(abi string) error {
	if abi == "" {
		return fmt.Errorf("%v: cannot set an empty ABI name", d.origin)
	}
	handle := markerAccessors[d.Kind](d)
	if err := handle.holder().writeMarker(abi); err != nil {
		return err
	}
	return handle.commit()
}

// Apply resolves the directive against the current marker and sets the resulting ABI. The declaration is left
// untouched when the ABI does not change.
func (d *Declaration) Apply(directive Directive, matcher *platform.Matcher) (abi string, changed bool, err error) {
	abi, changed, err = directive.Resolve(matcher, d.Marker())
	if err != nil || !changed {
		return abi, false, err
	}
	if err := d.SetABI(abi); err != nil {
		return "", false, err
	}
	return abi, true, nil
}

// Convert an absolute offset into an index of d.source.
func (d *Declaration) local(offset int) int {
	return offset - d.origin.Offset
}

func (d *Declaration) writeMarker(abi string) error {
	literal := quoteABI(abi)
	switch m := d.marker; {
	case m.Named:
		return d.splice(m.literal.Location.Offset, m.literal.End(), literal)
	case m.Present:
		return d.splice(m.keyword.End(), m.keyword.End(), " "+literal)
	case m.fn.Type == lexer.TokenType_Identifier:
		return d.splice(m.fn.Location.Offset, m.fn.Location.Offset, "extern "+literal+" ")
	default:
		return fmt.Errorf("%v: %v has no place for an ABI marker", d.origin, d.Kind)
	}
}

// Replace the text between absolute offsets begin and end, then parse the result again so that the token positions
// stay accurate. The kind of the declaration must survive the change.
func (d *Declaration) splice(begin, end int, text string) error {
	source := d.source[:d.local(begin)] + text + d.source[d.local(end):]
	tokens, err := lexer.NewLexerAt([]byte(source), d.origin).Tokenize()
	if err != nil {
		return err
	}
	reparsed, err := classifyTokens(source, d.origin, tokens)
	if err != nil {
		return err
	}
	if reparsed.Kind != d.Kind {
		panic(fmt.Sprintf("rewriting the ABI marker changed %v into %v: %q", d.Kind, reparsed.Kind, source))
	}
	*d = *reparsed
	return nil
}

type handleKind int

const (
	// The marker lives inside the declaration being rewritten.
	handleInPlace handleKind = iota
	// The marker lives in a separately parsed copy of a part of the declaration, which has to be written back.
	handleDetached
)

// markerHandle gives access to the marker of a declaration regardless of where the marker lives.
type markerHandle struct {
	kind     handleKind
	owner    *Declaration
	detached *Declaration // valid for handleDetached
}

// The declaration whose source contains the marker.
func (h markerHandle) holder() *Declaration {
	if h.kind == handleDetached {
		return h.detached
	}
	return h.owner
}

func (h markerHandle) marker() *Marker {
	return &h.holder().marker
}

// Write the detached declaration back into its owner. No-op for in-place handles.
func (h markerHandle) commit() error {
	if h.kind == handleInPlace {
		return nil
	}
	return h.owner.splice(h.owner.aliasedBegin, h.owner.aliasedEnd, h.detached.source)
}

func inPlaceMarker(d *Declaration) markerHandle {
	return markerHandle{kind: handleInPlace, owner: d}
}

func detachedAliasedMarker(d *Declaration) markerHandle {
	aliased := *d.aliased
	return markerHandle{kind: handleDetached, owner: d, detached: &aliased}
}

// How to reach the marker of each kind of declaration.
var markerAccessors = map[Kind]func(d *Declaration) markerHandle{
	Kind_Function:         inPlaceMarker,
	Kind_BareFunctionType: inPlaceMarker,
	Kind_TypeAlias:        detachedAliasedMarker,
	Kind_Binding:          inPlaceMarker,
	Kind_ForeignBlock:     inPlaceMarker,
}

// Reports whether the token may name an ABI. Byte strings may not.
func isABILiteral(token lexer.Token) bool {
	return token.Type.IsStringLiteral() && !strings.HasPrefix(token.Content, "b")
}

// Return the value of a string literal accepted by isABILiteral.
func unquoteABI(token lexer.Token) string {
	content := token.Content
	if token.Type == lexer.TokenType_LiteralRawString {
		hashes := len(content) - len(strings.TrimLeft(content[1:], "#")) - 1
		return content[2+hashes : len(content)-1-hashes]
	}
	if value, err := strconv.Unquote(content); err == nil {
		return value
	}
	// Escape sequences Go does not know, e.g. \u{41}, are kept as written.
	return content[1 : len(content)-1]
}

var abiEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteABI(abi string) string {
	return `"` + abiEscaper.Replace(abi) + `"`
}
