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
	"fmt"
	"os"

	"github.com/bazelbuild/bazel-gazelle/label"
	bzl "github.com/bazelbuild/buildtools/build"
)

const (
	platformsRepository = "platforms"
	osPackage           = "os"
	cpuPackage          = "cpu"
	platformRuleKind    = "platform"
	constraintsAttr     = "constraint_values"
)

// FromConstraints builds a Platform from Bazel constraint values, e.g. "@platforms//os:linux" and
// "@platforms//cpu:x86_64". Constraints of other settings are ignored. Exactly one OS and one CPU constraint is
// required.
func FromConstraints(constraints []string) (Platform, error) {
	var targetOS OS
	var arch Arch
	for _, constraint := range constraints {
		lbl, err := label.Parse(constraint)
		if err != nil {
			return Platform{}, fmt.Errorf("invalid constraint value %q: %w", constraint, err)
		}
		if lbl.Repo != platformsRepository {
			continue
		}
		switch lbl.Pkg {
		case osPackage:
			if targetOS != "" {
				return Platform{}, fmt.Errorf("conflicting OS constraints: %v and %v", targetOS, lbl.Name)
			}
			targetOS = OS(lbl.Name)
		case cpuPackage:
			if arch != "" {
				return Platform{}, fmt.Errorf("conflicting CPU constraints: %v and %v", arch, lbl.Name)
			}
			arch = Arch(lbl.Name)
		}
	}
	if targetOS == "" || arch == "" {
		return Platform{}, fmt.Errorf("constraint values %v must define both @%s//%s and @%s//%s", constraints, platformsRepository, osPackage, platformsRepository, cpuPackage)
	}
	return Create(targetOS, arch)
}

// ParseBuildPlatforms extracts all platform() rules defined in the BUILD file content, keyed by the rule name.
func ParseBuildPlatforms(filename string, content []byte) (map[string]Platform, error) {
	file, err := bzl.ParseBuild(filename, content)
	if err != nil {
		return nil, err
	}

	platforms := make(map[string]Platform)
	for _, rule := range file.Rules(platformRuleKind) {
		platform, err := FromConstraints(rule.AttrStrings(constraintsAttr))
		if err != nil {
			return nil, fmt.Errorf("%s: platform %q: %w", filename, rule.Name(), err)
		}
		platforms[rule.Name()] = platform
	}
	return platforms, nil
}

// LoadBuildPlatform reads the BUILD file and returns the platform() rule referenced by target. The target may be a
// full label (//platforms:linux_x86_64) or just the rule name (linux_x86_64).
func LoadBuildPlatform(buildFile string, target string) (Platform, error) {
	content, err := os.ReadFile(buildFile)
	if err != nil {
		return Platform{}, err
	}
	platforms, err := ParseBuildPlatforms(buildFile, content)
	if err != nil {
		return Platform{}, err
	}

	name := target
	if lbl, err := label.Parse(target); err == nil {
		name = lbl.Name
	}
	platform, exists := platforms[name]
	if !exists {
		return Platform{}, fmt.Errorf("%s: no platform() rule named %q", buildFile, name)
	}
	return platform, nil
}
