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

package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/EngFlow/fn_abi/language/rust"
)

// Rewrites the calling convention of Rust items annotated with #[abi(...)] for the target platform. Files are printed
// to stdout, or written back with -w.
func main() {
	configFile := flag.String("config", "", "Path to fnabi.toml, by default it is searched for in the working directory and its parents")
	targetPlatform := flag.String("platform", "", "Target platform as <os>/<arch>, e.g. linux/x86_64 (default: configuration file, then host)")
	bazelBuildFile := flag.String("bazel_build_file", "", "BUILD file defining the platform() rule given by -bazel_platform")
	bazelPlatform := flag.String("bazel_platform", "", "Label of a platform() rule to take the target platform from")
	write := flag.Bool("w", false, "Write the result to the source files instead of stdout")
	list := flag.Bool("l", false, "List files whose content would change, instead of printing them")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("Program requires at least 1 argument - files or directories to rewrite. Flags needs to be defined before arguments")
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	matcher, err := config.NewMatcher(rust.PlatformOverrides{
		Platform:       *targetPlatform,
		BazelBuildFile: *bazelBuildFile,
		BazelPlatform:  *bazelPlatform,
	})
	if err != nil {
		log.Fatalf("Failed to resolve target platform: %v", err)
	}
	if *verbose {
		log.Printf("Rewriting for %v", matcher.Platform())
	}

	sources, err := rust.CollectSources(config, flag.Args())
	if err != nil {
		log.Fatalf("Failed to collect source files: %v", err)
	}

	results := rewriteFiles(sources, func(content []byte) ([]byte, []rust.Rewrite, error) {
		return rust.RewriteSource(content, matcher)
	})

	var failed int
	for _, result := range results {
		if result.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", result.path, result.err)
			failed++
			continue
		}
		if *verbose {
			for _, rewrite := range result.rewrites {
				log.Printf("%s:%v", result.path, rewrite)
			}
		}
		changed := !bytes.Equal(result.original, result.output)
		switch {
		case *list:
			if changed {
				fmt.Println(result.path)
			}
		case *write:
			if changed {
				if err := os.WriteFile(result.path, result.output, result.mode); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", result.path, err)
					failed++
				}
			}
		default:
			os.Stdout.Write(result.output)
		}
	}
	if failed > 0 {
		log.Printf("Failed to rewrite %d of %d files", failed, len(results))
		os.Exit(1)
	}
}

func loadConfig(configFile string) (*rust.Config, error) {
	if configFile != "" {
		info, err := os.Stat(configFile)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return rust.LoadConfig(configFile)
		}
		return rust.LoadConfigFile(configFile)
	}
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	config, err := rust.FindConfig(workingDir)
	if err != nil || config != nil {
		return config, err
	}
	return rust.DefaultConfig(workingDir), nil
}

type fileResult struct {
	path     string
	mode     os.FileMode
	original []byte
	output   []byte
	rewrites []rust.Rewrite
	err      error
}

// Rewrite files in parallel, the results keep the order of paths.
func rewriteFiles(paths []string, rewrite func([]byte) ([]byte, []rust.Rewrite, error)) []fileResult {
	results := make([]fileResult, len(paths))
	indexes := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for index := range indexes {
			result := &results[index]
			result.path = paths[index]
			info, err := os.Stat(result.path)
			if err != nil {
				result.err = err
				continue
			}
			result.mode = info.Mode().Perm()
			if result.original, err = os.ReadFile(result.path); err != nil {
				result.err = err
				continue
			}
			result.output, result.rewrites, result.err = rewrite(result.original)
		}
	}

	workers := runtime.GOMAXPROCS(0)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}
	for index := range paths {
		indexes <- index
	}
	close(indexes)
	wg.Wait()
	return results
}
