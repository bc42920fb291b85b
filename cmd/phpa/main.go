// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-php-tools/cmd/phpa/analyze"
	"github.com/awslabs/ar-php-tools/cmd/phpa/points"
	"github.com/awslabs/ar-php-tools/cmd/phpa/taint"
	"github.com/awslabs/ar-php-tools/cmd/phpa/tools"
)

const usage = `phpa: abstract interpretation of PHP scripts
Usage:
  phpa [tool] [options] <PHP file path(s)>
Tools:
  - analyze: prints the possible values of the variables at the end of the main script
  - taint: performs a taint analysis on the scripts
  - points: lists the program points, with the unreachable ones
Examples:
  Print the values of the variables: phpa analyze index.php
  Run the taint analysis: phpa taint -config config.yaml index.php lib.php`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(tools.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		flags, err := tools.NewCommonFlags("analyze", args, analyze.Usage)
		if err != nil {
			errExit(err)
		}
		if err := analyze.Run(flags); err != nil {
			errExit(err)
		}
	case "taint":
		flags, err := taint.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := taint.Run(flags); err != nil {
			errExit(err)
		}
	case "points":
		flags, err := points.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := points.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if hint := tools.HintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
