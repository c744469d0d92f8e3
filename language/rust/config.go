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
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/EngFlow/fn_abi/internal/collections"
	"github.com/EngFlow/fn_abi/language/internal/platform"
	"github.com/bmatcuk/doublestar/v4"
)

const ConfigFileName = "fnabi.toml"

// Config is the fnabi.toml project configuration.
type Config struct {
	// Target platform as <os>/<arch>, defaults to the host platform.
	Platform string  `toml:"platform"`
	Sources  Sources `toml:"sources"`
	Bazel    Bazel   `toml:"bazel"`

	// Dir is the directory containing the fnabi.toml file (set at load time).
	Dir string `toml:"-"`
}

// Sources selects the files to rewrite, using doublestar patterns relative to the project directory.
type Sources struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Bazel names a platform() rule the target platform is taken from.
type Bazel struct {
	BuildFile string `toml:"build_file"`
	Platform  string `toml:"platform"`
}

// DefaultConfig is used when no fnabi.toml is found.
func DefaultConfig(dir string) *Config {
	config := &Config{Dir: dir}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if len(c.Sources.Include) == 0 {
		c.Sources.Include = []string{"**/*.rs"}
	}
	if c.Sources.Exclude == nil {
		c.Sources.Exclude = []string{"target/**", ".git/**"}
	}
}

// LoadConfig parses the fnabi.toml file from the given directory.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFile(filepath.Join(dir, ConfigFileName))
}

// LoadConfigFile parses the configuration file at path. The project directory is the directory containing the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	config.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig decodes and validates fnabi.toml content. Dir of the result is left empty.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	metadata, err := toml.Decode(string(data), &config)
	if err != nil {
		return nil, err
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys %v", collections.MapSlice(undecoded, toml.Key.String))
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// FindConfig walks up from startDir to find a fnabi.toml file, then loads it. Returns nil if no file is found.
func FindConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return LoadConfig(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks the source patterns and the platform settings.
func (c *Config) Validate() error {
	for _, pattern := range slices.Concat(c.Sources.Include, c.Sources.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid source pattern %q", pattern)
		}
	}
	if c.Platform != "" {
		if _, err := platform.Parse(c.Platform); err != nil {
			return err
		}
	}
	if c.Bazel.Platform != "" && c.Bazel.BuildFile == "" {
		return fmt.Errorf("bazel.platform %v requires bazel.build_file", c.Bazel.Platform)
	}
	return nil
}

// Matches reports whether the slash separated path, relative to the project directory, is selected for rewriting.
func (c *Config) Matches(path string) bool {
	matches := func(pattern string) bool { return doublestar.MatchUnvalidated(pattern, path) }
	return slices.ContainsFunc(c.Sources.Include, matches) && !slices.ContainsFunc(c.Sources.Exclude, matches)
}

// PlatformOverrides are platform settings given on the command line, they take precedence over the configuration.
type PlatformOverrides struct {
	Platform       string
	BazelBuildFile string
	BazelPlatform  string
}

// ResolvePlatform determines the target platform: command line first, then the configuration file, then the host.
// An explicit platform string wins over a Bazel platform rule at the same level.
func (c *Config) ResolvePlatform(overrides PlatformOverrides) (platform.Platform, error) {
	switch {
	case overrides.Platform != "":
		return platform.Parse(overrides.Platform)
	case overrides.BazelPlatform != "":
		buildFile := overrides.BazelBuildFile
		if buildFile == "" {
			buildFile = c.buildFilePath()
		}
		if buildFile == "" {
			return platform.Platform{}, fmt.Errorf("bazel platform %v requires a BUILD file", overrides.BazelPlatform)
		}
		return platform.LoadBuildPlatform(buildFile, overrides.BazelPlatform)
	case c.Platform != "":
		return platform.Parse(c.Platform)
	case c.Bazel.Platform != "":
		return platform.LoadBuildPlatform(c.buildFilePath(), c.Bazel.Platform)
	default:
		return platform.Host()
	}
}

// Path of the configured BUILD file, relative paths are resolved against the project directory.
func (c *Config) buildFilePath() string {
	if c.Bazel.BuildFile == "" || filepath.IsAbs(c.Bazel.BuildFile) {
		return c.Bazel.BuildFile
	}
	return filepath.Join(c.Dir, c.Bazel.BuildFile)
}

// NewMatcher creates the target shortcut matcher for the platform resolved by ResolvePlatform.
func (c *Config) NewMatcher(overrides PlatformOverrides) (*platform.Matcher, error) {
	target, err := c.ResolvePlatform(overrides)
	if err != nil {
		return nil, err
	}
	return platform.NewMatcher(target)
}
