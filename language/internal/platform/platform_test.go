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
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected Platform
	}{
		{input: "linux/x86_64", expected: Platform{OS: linux, Arch: x86_64}},
		{input: "linux/amd64", expected: Platform{OS: linux, Arch: x86_64}},
		{input: "macos/arm64", expected: Platform{OS: osx, Arch: aarch64}},
		{input: "darwin/arm64", expected: Platform{OS: osx, Arch: aarch64}},
		{input: "win/386", expected: Platform{OS: windows, Arch: i386}},
		{input: "windows/x86_32", expected: Platform{OS: windows, Arch: x86_32}},
		{input: "freebsd/riscv64", expected: Platform{OS: freebsd, Arch: riscv64}},
	}

	for _, tc := range testCases {
		result, err := Parse(tc.input)
		require.NoError(t, err, "input: %v", tc.input)
		assert.Equal(t, tc.expected, result, "input: %v", tc.input)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "linux", "linux/x86_64/extra", "plan9/x86_64", "linux/z80"} {
		_, err := Parse(input)
		assert.Error(t, err, "input: %v", input)
	}
}

func TestPointerWidth(t *testing.T) {
	testCases := []struct {
		platform Platform
		expected int
	}{
		{platform: Platform{OS: linux, Arch: x86_64}, expected: 64},
		{platform: Platform{OS: windows, Arch: i386}, expected: 32},
		{platform: Platform{OS: watchos, Arch: arm64_32}, expected: 32},
		{platform: Platform{OS: osx, Arch: aarch64}, expected: 64},
		{platform: Platform{OS: linux, Arch: "unknown"}, expected: 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.platform.PointerWidth(), "platform: %v", tc.platform)
	}
}

func TestEveryKnownArchHasPointerWidth(t *testing.T) {
	for _, arch := range allKnownArch {
		assert.Contains(t, []int{32, 64}, Platform{Arch: arch}.PointerWidth(), "arch: %v", arch)
	}
}

func TestHost(t *testing.T) {
	host, err := Host()
	if err != nil {
		t.Skipf("host %s/%s has no platform mapping: %v", runtime.GOOS, runtime.GOARCH, err)
	}
	assert.NotZero(t, host.PointerWidth())
}

func TestCompare(t *testing.T) {
	platforms := []Platform{
		{OS: windows, Arch: x86_64},
		{OS: linux, Arch: x86_64},
		{OS: linux, Arch: aarch64},
	}
	slices.SortFunc(platforms, Compare)
	assert.Equal(t, []Platform{
		{OS: linux, Arch: aarch64},
		{OS: linux, Arch: x86_64},
		{OS: windows, Arch: x86_64},
	}, platforms)
	assert.Equal(t, "linux/aarch64", platforms[0].String())
}
