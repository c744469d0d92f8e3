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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConstraints(t *testing.T) {
	testCases := []struct {
		constraints []string
		expected    Platform
	}{
		{
			constraints: []string{"@platforms//os:linux", "@platforms//cpu:x86_64"},
			expected:    Platform{OS: linux, Arch: x86_64},
		},
		{
			constraints: []string{"@platforms//cpu:arm64", "@platforms//os:macos", "//config:opt"},
			expected:    Platform{OS: osx, Arch: aarch64},
		},
	}

	for _, tc := range testCases {
		result, err := FromConstraints(tc.constraints)
		require.NoError(t, err, "constraints: %v", tc.constraints)
		assert.Equal(t, tc.expected, result)
	}
}

func TestFromConstraintsErrors(t *testing.T) {
	for _, constraints := range [][]string{
		{"@platforms//os:linux"},
		{"@platforms//cpu:x86_64"},
		{"@platforms//os:linux", "@platforms//os:windows", "@platforms//cpu:x86_64"},
		{"@platforms//os:linux", "@platforms//cpu:x86_64", "@platforms//cpu:aarch64"},
		{"@platforms//os:plan9", "@platforms//cpu:x86_64"},
	} {
		_, err := FromConstraints(constraints)
		assert.Error(t, err, "constraints: %v", constraints)
	}
}

const buildFileContent = `
platform(
    name = "linux_x86_64",
    constraint_values = [
        "@platforms//os:linux",
        "@platforms//cpu:x86_64",
    ],
)

platform(
    name = "windows_i386",
    constraint_values = ["@platforms//os:windows", "@platforms//cpu:i386"],
)

cc_library(name = "unrelated")
`

func TestParseBuildPlatforms(t *testing.T) {
	platforms, err := ParseBuildPlatforms("BUILD.bazel", []byte(buildFileContent))
	require.NoError(t, err)
	assert.Equal(t, map[string]Platform{
		"linux_x86_64": {OS: linux, Arch: x86_64},
		"windows_i386": {OS: windows, Arch: i386},
	}, platforms)
}

func TestParseBuildPlatformsInvalid(t *testing.T) {
	_, err := ParseBuildPlatforms("BUILD.bazel", []byte(`platform(name = "broken", constraint_values = ["@platforms//os:linux"])`))
	assert.ErrorContains(t, err, `platform "broken"`)

	_, err = ParseBuildPlatforms("BUILD.bazel", []byte(`platform(`))
	assert.Error(t, err)
}

func TestLoadBuildPlatform(t *testing.T) {
	buildFile := filepath.Join(t.TempDir(), "BUILD.bazel")
	require.NoError(t, os.WriteFile(buildFile, []byte(buildFileContent), 0644))

	for _, target := range []string{"windows_i386", ":windows_i386", "//platforms:windows_i386"} {
		result, err := LoadBuildPlatform(buildFile, target)
		require.NoError(t, err, "target: %v", target)
		assert.Equal(t, Platform{OS: windows, Arch: i386}, result)
	}

	_, err := LoadBuildPlatform(buildFile, "//platforms:missing")
	assert.ErrorContains(t, err, `no platform() rule named "missing"`)

	_, err = LoadBuildPlatform(filepath.Join(t.TempDir(), "BUILD"), "linux_x86_64")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
