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

package platform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/EngFlow/fn_abi/internal/collections"
)

var ErrUnsupportedPlatform = errors.New("target platform is not supported by target shortcuts")

type (
	// A named condition over the target platform, e.g. "win64".
	shortcut struct {
		name      string
		predicate func(p Platform) bool
	}

	// Matcher answers whether a target shortcut denotes the platform it was created for. A Matcher is immutable and
	// safe for concurrent use.
	Matcher struct {
		platform Platform
	}
)

func onOS(os OS) func(Platform) bool {
	return func(p Platform) bool { return p.OS == os }
}

func withPointerWidth(width int) func(Platform) bool {
	return func(p Platform) bool { return p.PointerWidth() == width }
}

func onOSWithPointerWidth(os OS, width int) func(Platform) bool {
	return func(p Platform) bool { return p.OS == os && p.PointerWidth() == width }
}

// Closed vocabulary of target shortcuts accepted in ABI tables.
var shortcuts = []shortcut{
	{name: "linux64", predicate: onOSWithPointerWidth(linux, 64)},
	{name: "linux32", predicate: onOSWithPointerWidth(linux, 32)},
	{name: "win32", predicate: onOSWithPointerWidth(windows, 32)},
	{name: "win64", predicate: onOSWithPointerWidth(windows, 64)},
	{name: "macos32", predicate: onOSWithPointerWidth(osx, 32)},
	{name: "macos64", predicate: onOSWithPointerWidth(osx, 64)},

	{name: "linux", predicate: onOS(linux)},
	{name: "win", predicate: onOS(windows)},
	{name: "macos", predicate: onOS(osx)},

	{name: "64", predicate: withPointerWidth(64)},
	{name: "32", predicate: withPointerWidth(32)},
}

// Operating systems and pointer widths for which every shortcut yields a meaningful answer.
var (
	supportedOs            = []OS{linux, windows, osx}
	supportedPointerWidths = []int{32, 64}
)

// NewMatcher creates a Matcher for the given platform. Platforms outside of the supported OS families or pointer
// widths are rejected here, before any shortcut is evaluated.
func NewMatcher(p Platform) (*Matcher, error) {
	if !slices.Contains(supportedOs, p.OS) {
		return nil, fmt.Errorf("%w: OS %q of %v, expected one of %v", ErrUnsupportedPlatform, p.OS, p, supportedOs)
	}
	if !slices.Contains(supportedPointerWidths, p.PointerWidth()) {
		return nil, fmt.Errorf("%w: pointer width of %v is unknown, expected one of %v", ErrUnsupportedPlatform, p, supportedPointerWidths)
	}
	return &Matcher{platform: p}, nil
}

// Platform returns the platform the matcher was created for.
func (m *Matcher) Platform() Platform {
	return m.platform
}

// Matches reports whether the shortcut denotes the matcher's platform. Callers must validate names with IsShortcut
// first, an unknown name is a programming error and panics.
func (m *Matcher) Matches(name string) bool {
	index := slices.IndexFunc(shortcuts, func(s shortcut) bool { return s.name == name })
	if index < 0 {
		panic(fmt.Sprintf("unknown target shortcut %q", name))
	}
	return shortcuts[index].predicate(m.platform)
}

// IsShortcut reports whether name belongs to the shortcut vocabulary.
func IsShortcut(name string) bool {
	return slices.ContainsFunc(shortcuts, func(s shortcut) bool { return s.name == name })
}

// Shortcuts returns names of all known shortcuts, in their canonical order.
func Shortcuts() []string {
	return collections.MapSlice(shortcuts, func(s shortcut) string { return s.name })
}
