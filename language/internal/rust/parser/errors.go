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
	"fmt"

	"github.com/EngFlow/fn_abi/language/internal/rust/lexer"
)

var (
	// Classification errors.
	ErrUnsupportedItem = errors.New("unsupported item kind, expected a function, a function pointer type, a type alias, a const or static of a function pointer type, or an extern block")
	ErrUnsupportedType = errors.New("not a supported type, only bare function pointer types are supported")

	// Argument shape errors.
	ErrNoABI           = errors.New("expected an ABI or target shortcut table (no ABI or target table found)")
	ErrInvalidArgument = errors.New("expected an ABI or target shortcut table (invalid argument found)")

	// Resolution miss.
	ErrMissingABI = errors.New("missing ABI for this target, and no default was specified (e.g. `extern \"Rust\"`)")
)

// ArgumentError reports a malformed directive argument list: which token was expected and what was found instead.
type ArgumentError struct {
	Expected string
	Found    lexer.Token
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: expected %s but found %s", e.Found.Location, e.Expected, e.Found.Describe())
}
