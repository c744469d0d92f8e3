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

package rust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EngFlow/fn_abi/language/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`
platform = "linux/x86_64"

[sources]
include = ["src/**/*.rs"]
exclude = ["src/generated/**"]

[bazel]
build_file = "platforms/BUILD.bazel"
platform = "//platforms:linux_arm64"
`))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Platform: "linux/x86_64",
		Sources:  Sources{Include: []string{"src/**/*.rs"}, Exclude: []string{"src/generated/**"}},
		Bazel:    Bazel{BuildFile: "platforms/BUILD.bazel", Platform: "//platforms:linux_arm64"},
	}, config)
}

func TestParseConfigDefaults(t *testing.T) {
	config, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(""), config)
	assert.Equal(t, []string{"**/*.rs"}, config.Sources.Include)
	assert.Equal(t, []string{"target/**", ".git/**"}, config.Sources.Exclude)

	// An explicitly empty exclude list is kept.
	config, err = ParseConfig([]byte("[sources]\nexclude = []\n"))
	require.NoError(t, err)
	assert.Empty(t, config.Sources.Exclude)
}

func TestParseConfigErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		message string
	}{
		{name: "syntax", input: `platform = `},
		{name: "unknown key", input: "platfrom = \"linux/x86_64\"\n", message: "unknown keys [platfrom]"},
		{name: "unknown platform", input: "platform = \"plan9/x86_64\"\n", message: "unknown OS plan9"},
		{name: "malformed platform", input: "platform = \"linux\"\n", message: "malformed platform string"},
		{name: "invalid pattern", input: "[sources]\ninclude = [\"src/{a,b\"]\n", message: "invalid source pattern"},
		{name: "bazel platform without BUILD file", input: "[bazel]\nplatform = \"//:linux\"\n", message: "requires bazel.build_file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.input))
			require.Error(t, err)
			if tc.message != "" {
				assert.ErrorContains(t, err, tc.message)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "crates", "ffi", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("platform = \"win/x86_64\"\n"), 0o644))

	config, err := FindConfig(nested)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, root, config.Dir)
	assert.Equal(t, "win/x86_64", config.Platform)

	_, err = LoadConfig(nested)
	assert.Error(t, err)
}

func TestConfigMatches(t *testing.T) {
	config := DefaultConfig("")
	assert.True(t, config.Matches("lib.rs"))
	assert.True(t, config.Matches("src/ffi/mod.rs"))
	assert.False(t, config.Matches("target/debug/build/out.rs"))
	assert.False(t, config.Matches("README.md"))
}

func TestResolvePlatform(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "BUILD.bazel"), []byte(`
platform(
    name = "linux_arm64",
    constraint_values = [
        "@platforms//os:linux",
        "@platforms//cpu:aarch64",
    ],
)

platform(
    name = "windows_x86",
    constraint_values = [
        "@platforms//os:windows",
        "@platforms//cpu:x86_32",
    ],
)
`), 0o644))
	host, err := platform.Host()
	require.NoError(t, err)

	testCases := []struct {
		name      string
		config    Config
		overrides PlatformOverrides
		expected  string
	}{
		{
			name:     "host",
			expected: host.String(),
		},
		{
			name:     "configured platform",
			config:   Config{Platform: "macos/arm64"},
			expected: "osx/aarch64",
		},
		{
			name:     "configured Bazel platform",
			config:   Config{Bazel: Bazel{BuildFile: "BUILD.bazel", Platform: "//:linux_arm64"}},
			expected: "linux/aarch64",
		},
		{
			name:      "flag wins over configuration",
			config:    Config{Platform: "macos/arm64"},
			overrides: PlatformOverrides{Platform: "windows/amd64"},
			expected:  "windows/x86_64",
		},
		{
			name:      "Bazel platform flag with configured BUILD file",
			config:    Config{Platform: "macos/arm64", Bazel: Bazel{BuildFile: "BUILD.bazel"}},
			overrides: PlatformOverrides{BazelPlatform: "windows_x86"},
			expected:  "windows/x86_32",
		},
		{
			name:      "Bazel platform flag with BUILD file flag",
			overrides: PlatformOverrides{BazelBuildFile: filepath.Join(root, "BUILD.bazel"), BazelPlatform: "//:linux_arm64"},
			expected:  "linux/aarch64",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := tc.config
			config.Dir = root
			resolved, err := config.ResolvePlatform(tc.overrides)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resolved.String())
		})
	}
}

func TestNewMatcher(t *testing.T) {
	config := DefaultConfig(t.TempDir())

	matcher, err := config.NewMatcher(PlatformOverrides{Platform: "win/i386"})
	require.NoError(t, err)
	assert.True(t, matcher.Matches("win32"))

	_, err = config.NewMatcher(PlatformOverrides{Platform: "freebsd/x86_64"})
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)

	_, err = config.NewMatcher(PlatformOverrides{BazelPlatform: "//:linux"})
	assert.ErrorContains(t, err, "requires a BUILD file")
}

func TestLoadConfigFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bazel]\nbuild_file = \"BUILD\"\nplatform = \"linux_x86\"\n"), 0o644))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, root, config.Dir)
	assert.Equal(t, filepath.Join(root, "BUILD"), config.buildFilePath())

	require.NoError(t, os.WriteFile(path, []byte("platform = 1\n"), 0o644))
	_, err = LoadConfigFile(path)
	assert.ErrorContains(t, err, "parse error in "+path)
}
