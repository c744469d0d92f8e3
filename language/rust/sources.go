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
	"strings"

	"github.com/EngFlow/fn_abi/internal/collections"
	"github.com/bmatcuk/doublestar/v4"
)

// CollectSources expands the given paths into the list of files to rewrite. Files are taken as they are, directories
// are searched with the include patterns of the configuration, relative to the directory, minus the excluded paths.
// The result is sorted and free of duplicates.
func CollectSources(config *Config, paths []string) ([]string, error) {
	sources := make(collections.Set[string])
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			sources.Add(path)
			continue
		}
		matched, err := globSources(config, path)
		if err != nil {
			return nil, err
		}
		sources.AddSlice(matched)
	}
	return sources.SortedValues(strings.Compare), nil
}

func globSources(config *Config, dir string) ([]string, error) {
	fsys := os.DirFS(dir)
	var sources []string
	for _, pattern := range config.Sources.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("searching %s for %q: %w", dir, pattern, err)
		}
		for _, match := range matches {
			if config.Matches(match) {
				sources = append(sources, filepath.Join(dir, filepath.FromSlash(match)))
			}
		}
	}
	slices.Sort(sources)
	return slices.Compact(sources), nil
}
