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

package config

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-php-tools/internal/funcutil"
	"gopkg.in/yaml.v3"
)

// Config contains the options of the analyses and the taint tracking problems.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
type Config struct {
	Options

	// TaintTrackingProblems lists the taint tracking specifications
	TaintTrackingProblems []TaintSpec `yaml:"taint-tracking-problems"`
}

// TaintSpec contains code identifiers that identify a specific taint tracking problem
type TaintSpec struct {
	// Sanitizers is the list of sanitizers for the taint analysis: calls to a sanitizer return untainted data
	Sanitizers []CodeIdentifier

	// Sinks is the list of sinks for the taint analysis: tainted data must not reach their arguments
	Sinks []CodeIdentifier

	// Sources is the list of sources for the taint analysis: either functions returning tainted data, or
	// variables holding tainted data at the start of the script
	Sources []CodeIdentifier
}

// Options are the settings of the fixpoint computation and of the reports.
type Options struct {
	// MaxIterations bounds the number of program points the driver processes. Reaching it means the analysis did
	// not converge.
	MaxIterations int `yaml:"max-iterations"`

	// SimplifyLimit is the number of values an entry may hold after a merge before it is simplified
	SimplifyLimit int `yaml:"simplify-limit"`

	// WideningLimit is the number of values an entry may hold after a merge at a loop head or at the entry of a
	// recursive function before it is widened
	WideningLimit int `yaml:"widening-limit"`

	// CallContextDepth is the number of call sites distinguishing the instances of a function. With 0, each
	// function is analyzed once for all its callers.
	CallContextDepth int `yaml:"call-context-depth"`

	// MaxCallDepth sets a limit for the depth of the chains of instances the driver creates. Calls beyond that
	// depth return an unknown value.
	// If provided MaxCallDepth is <= 0, then it is ignored.
	MaxCallDepth int `yaml:"max-call-depth"`

	// CalleeCacheSize is the number of call results kept to skip the merge of unchanged calls
	CalleeCacheSize int `yaml:"callee-cache-size"`

	// ReportUnreachable specifies whether the points found unreachable should be reported
	ReportUnreachable bool `yaml:"report-unreachable"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config, without taint tracking problem.
func NewDefault() *Config {
	return &Config{
		TaintTrackingProblems: nil,
		Options: Options{
			MaxIterations:     DefaultMaxIterations,
			SimplifyLimit:     DefaultSimplifyLimit,
			WideningLimit:     DefaultWideningLimit,
			CallContextDepth:  DefaultCallContextDepth,
			MaxCallDepth:      DefaultMaxCallDepth,
			CalleeCacheSize:   DefaultCalleeCacheSize,
			ReportUnreachable: false,
			LogLevel:          int(InfoLevel),
			SilenceWarn:       false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", filename, err)
	}
	return cfg, nil
}

// Parse reads a configuration from yaml content. Options that are not set take their default value.
func Parse(content []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.SimplifyLimit <= 0 {
		cfg.SimplifyLimit = DefaultSimplifyLimit
	}
	if cfg.WideningLimit <= 0 {
		cfg.WideningLimit = DefaultWideningLimit
	}
	if cfg.CallContextDepth < 0 {
		cfg.CallContextDepth = 0
	}
	if cfg.CalleeCacheSize <= 0 {
		cfg.CalleeCacheSize = DefaultCalleeCacheSize
	}

	for i := range cfg.TaintTrackingProblems {
		tSpec := &cfg.TaintTrackingProblems[i]
		funcutil.MapInPlace(tSpec.Sanitizers, CompileRegexes)
		funcutil.MapInPlace(tSpec.Sinks, CompileRegexes)
		funcutil.MapInPlace(tSpec.Sources, CompileRegexes)
	}
	return cfg, nil
}

// IsSomeSource returns true if the code identifier matches a source of any problem of the config
func (c Config) IsSomeSource(cid CodeIdentifier) bool { return c.anyProblem(TaintSpec.IsSource, cid) }

// IsSomeSink returns true if the code identifier matches a sink of any problem of the config
func (c Config) IsSomeSink(cid CodeIdentifier) bool { return c.anyProblem(TaintSpec.IsSink, cid) }

// IsSomeSanitizer returns true if the code identifier matches a sanitizer of any problem of the config
func (c Config) IsSomeSanitizer(cid CodeIdentifier) bool {
	return c.anyProblem(TaintSpec.IsSanitizer, cid)
}

func (c Config) anyProblem(matches func(TaintSpec, CodeIdentifier) bool, cid CodeIdentifier) bool {
	return funcutil.Exists(c.TaintTrackingProblems, func(ts TaintSpec) bool { return matches(ts, cid) })
}

// IsSource returns true if the code identifier matches a source specification in the config file
func (ts TaintSpec) IsSource(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sources, cid.equalOnNonEmptyFields)
}

// IsSink returns true if the code identifier matches a sink specification in the config file
func (ts TaintSpec) IsSink(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sinks, cid.equalOnNonEmptyFields)
}

// IsSanitizer returns true if the code identifier matches a sanitizer specification in the config file
func (ts TaintSpec) IsSanitizer(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sanitizers, cid.equalOnNonEmptyFields)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxCallDepth returns true if the input exceeds the maximum call depth parameter of the configuration.
// (if the configuration setting is <= 0, then this returns false)
func (c Config) ExceedsMaxCallDepth(d int) bool {
	if c.MaxCallDepth <= 0 {
		return false
	}
	return d > c.MaxCallDepth
}
