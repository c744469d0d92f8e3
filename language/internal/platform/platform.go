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

// Package 'platform' defines a normalized representation of the target platform a declaration is rewritten for.
//
// It provides:
//   - The Platform type, representing an OS/Arch pair and the pointer width derived from it
//   - Parsing utilities for canonicalizing platform strings (e.g., "linux/x86_64")
//   - Aliasing support for common OS/Arch names, including Go's GOOS/GOARCH spellings
//   - The Matcher evaluating target shortcuts (e.g. "win64") against a Platform
//   - Conversion of Bazel constraint values and platform() rules into a Platform
package platform

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Pair of OS/Arch combination identifing a given platform
type Platform struct {
	OS   OS
	Arch Arch
}

func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// PointerWidth returns the size of a pointer on this platform in bits, or 0 when the architecture is unknown.
func (p Platform) PointerWidth() int {
	return pointerWidth[p.Arch]
}

// Orders first by OS, then by Arch based on the string ordering
func Compare(a, b Platform) int {
	if d := cmp.Compare(a.OS, b.OS); d != 0 {
		return d
	}
	return cmp.Compare(a.Arch, b.Arch)
}

func Create(os OS, arch Arch) (Platform, error) {
	platform := Platform{
		OS:   dealias(os, osAlias),
		Arch: dealias(arch, archAlias),
	}
	if !slices.Contains(allKnownOs, platform.OS) {
		return platform, fmt.Errorf("unknown OS %v, expected one of known values %v or an alias %v", platform.OS, allKnownOs, osAlias)
	}
	if !slices.Contains(allKnownArch, platform.Arch) {
		return platform, fmt.Errorf("unknown architecture %v, expected one of known values %v or an alias %v", platform.Arch, allKnownArch, archAlias)
	}
	return platform, nil
}

// Parses string value into Platform, returns error in case of not known os/arch or if input does not follow <os>/<arch> format
func Parse(value string) (Platform, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == '/' })
	if len(fields) != 2 {
		return Platform{}, fmt.Errorf("malformed platform string: %v, expected <os>/<arch>", value)
	}
	return Create(OS(fields[0]), Arch(fields[1]))
}

// Host returns the platform this program runs on, translated from runtime.GOOS and runtime.GOARCH.
func Host() (Platform, error) {
	return Create(OS(runtime.GOOS), Arch(runtime.GOARCH))
}

// Operating system string identifier matching constraint value names defined in '@platforms//os'.
// Should match one the values defined in https://github.com/bazelbuild/platforms/blob/1.0.0/os/BUILD
type OS string

const (
	android    OS = "android"
	chromiumos OS = "chromiumos"
	emscripten OS = "emscripten"
	freebsd    OS = "freebsd"
	fuchsia    OS = "fuchsia"
	haiku      OS = "haiku"
	ios        OS = "ios"
	linux      OS = "linux"
	netbsd     OS = "netbsd"
	nixos      OS = "nixos"
	none       OS = "none" // bare-metal
	openbsd    OS = "openbsd"
	osx        OS = "osx"
	qnx        OS = "qnx"
	tvos       OS = "tvos"
	uefi       OS = "uefi"
	visionos   OS = "visionos"
	vxworks    OS = "vxworks"
	wasi       OS = "wasi"
	watchos    OS = "watchos"
	windows    OS = "windows"
)

var osAlias = map[string]OS{
	"macos":  osx,
	"darwin": osx, // GOOS
	"win":    windows,
}
var allKnownOs = []OS{
	android, chromiumos, emscripten, freebsd, fuchsia, haiku, ios,
	linux, netbsd, nixos, none, openbsd, osx, qnx, tvos,
	uefi, visionos, vxworks, wasi, watchos, windows,
}

// Architecture string identifier matching constraint value names defined in '@platforms//cpu'.
// Should match one the values defined in https://github.com/bazelbuild/platforms/blob/1.0.0/cpu/BUILD
type Arch string

const (
	aarch32   Arch = "aarch32"
	aarch64   Arch = "aarch64"
	arm64_32  Arch = "arm64_32"
	arm64e    Arch = "arm64e"
	armv6m    Arch = "armv6-m"
	armv7     Arch = "armv7"
	armv7k    Arch = "armv7k"
	armv7m    Arch = "armv7-m"
	i386      Arch = "i386"
	mips64    Arch = "mips64"
	ppc       Arch = "ppc"
	ppc32     Arch = "ppc32"
	ppc64le   Arch = "ppc64le"
	riscv32   Arch = "riscv32"
	riscv64   Arch = "riscv64"
	s390x     Arch = "s390x"
	wasm32    Arch = "wasm32"
	wasm64    Arch = "wasm64"
	x86_32    Arch = "x86_32"
	x86_64    Arch = "x86_64"
)

// GOARCH spellings are accepted as aliases, so that Host() needs no separate table.
var archAlias = map[string]Arch{
	"arm":      aarch32,
	"arm64":    aarch64,
	"amd64":    x86_64,
	"386":      i386,
	"x86":      x86_32,
	"mips64le": mips64,
	"wasm":     wasm32,
}

var allKnownArch = []Arch{
	aarch32, aarch64, arm64_32, arm64e, armv6m, armv7, armv7k, armv7m,
	i386, mips64, ppc, ppc32, ppc64le, riscv32, riscv64, s390x,
	wasm32, wasm64, x86_32, x86_64,
}

var pointerWidth = map[Arch]int{
	aarch32: 32, armv6m: 32, armv7: 32, armv7k: 32, armv7m: 32,
	arm64_32: 32, // 64-bit instructions, 32-bit pointers
	i386:     32, x86_32: 32, ppc: 32, ppc32: 32, riscv32: 32, wasm32: 32,

	aarch64: 64, arm64e: 64, mips64: 64, ppc64le: 64, riscv64: 64, s390x: 64, wasm64: 64, x86_64: 64,
}

func dealias[T ~string](value T, aliases map[string]T) T {
	if dealiased, exists := aliases[string(value)]; exists {
		return dealiased
	}
	return T(value)
}
