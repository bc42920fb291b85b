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

// Package tools contains the flags and helpers shared by the phpa commands.
package tools

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/frontend/php"
	"github.com/awslabs/ar-php-tools/internal/formatutil"
)

// Version is the version of the phpa tools.
const Version = "v0.3.0"

// UnparsedCommonFlags are the flags common to all commands, before parsing.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
	Timeout    *time.Duration
}

// NewUnparsedCommonFlags returns the common flags of the command name.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	noColor := cmd.Bool("no-color", false, "disable colors in the output")
	timeout := cmd.Duration("timeout", 0, "stop the analysis after this duration (0 means no limit)")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		NoColor:    noColor,
		Timeout:    timeout,
	}
}

// CommonFlags are the parsed flags common to all commands. The files to analyze are the remaining
// arguments of FlagSet.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	NoColor    bool
	Timeout    time.Duration
}

// Parse parses args and returns the common flags.
func (u UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := u.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", u.FlagSet.Name(), args, err)
	}
	if *u.NoColor {
		formatutil.Disable()
	}
	return CommonFlags{
		FlagSet:    u.FlagSet,
		ConfigPath: *u.ConfigPath,
		Verbose:    *u.Verbose,
		NoColor:    *u.NoColor,
		Timeout:    *u.Timeout,
	}, nil
}

// NewCommonFlags returns the common flags of the command name, parsed from args.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets the usage message of cmd.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file at configPath. The default configuration is returned when
// configPath is empty. The verbose flag raises the log level to debug.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	c := config.NewDefault()
	if flags.ConfigPath != "" {
		var err error
		c, err = config.Load(flags.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %v", flags.ConfigPath, err)
		}
	}
	if flags.Verbose {
		c.LogLevel = int(config.DebugLevel)
	}
	return c, nil
}

// Context returns the context of an analysis, bounded by the timeout flag.
func Context(flags CommonFlags) (context.Context, context.CancelFunc) {
	if flags.Timeout > 0 {
		return context.WithTimeout(context.Background(), flags.Timeout)
	}
	return context.WithCancel(context.Background())
}

// LoadProgram lowers the files named by the arguments of the flags.
func LoadProgram(ctx context.Context, logger *config.LogGroup, flags CommonFlags) (*cfg.Program, error) {
	prog, err := php.Load(ctx, logger, flags.FlagSet.Args()...)
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}
	for _, u := range prog.Unsupported {
		logger.Warnf("%v", u)
	}
	return prog, nil
}
