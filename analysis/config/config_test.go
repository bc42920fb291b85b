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
	"bytes"
	"embed"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func checkEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := CompileRegexes(cid2)
	if !cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", cid1, cid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := CompileRegexes(cid2)
	if cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", cid1, cid2)
	}
}

func TestCodeIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	cid1 := CodeIdentifier{Method: "a", Variable: "b"}
	checkEqualOnNonEmptyFields(t, cid1, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	cid1 := CodeIdentifier{Context: "f", Class: "C", Method: "m", Variable: "v"}
	cid2 := CodeIdentifier{Context: "g", Class: "D", Method: "n", Variable: "w"}
	cidEmpty := CodeIdentifier{}
	checkEqualOnNonEmptyFields(t, cid1, cidEmpty)
	checkEqualOnNonEmptyFields(t, cid2, cidEmpty)
}

func TestCodeIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	cid1 := CodeIdentifier{Class: "A", Method: "b"}
	cid2 := CodeIdentifier{Class: "A"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkNotEqualOnNonEmptyFields(t, cid2, CodeIdentifier{Class: "^A$", Method: "^b$"})
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	cid1 := CodeIdentifier{Method: "mysql_query"}
	cid1bis := CodeIdentifier{Method: "MySQLi_Query"}
	cid2 := CodeIdentifier{Method: "^mysqli?_query$"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkEqualOnNonEmptyFields(t, cid1bis, cid2)
	checkNotEqualOnNonEmptyFields(t, CodeIdentifier{Method: "mysql_query_all"}, cid2)
}

func TestCodeIdentifier_variablesAreCaseSensitive(t *testing.T) {
	ref := CodeIdentifier{Variable: "^_POST$"}
	checkEqualOnNonEmptyFields(t, CodeIdentifier{Variable: "_POST"}, ref)
	checkNotEqualOnNonEmptyFields(t, CodeIdentifier{Variable: "_post"}, ref)
}

func loadTestConfig(t *testing.T, name string) *Config {
	b, err := testfsys.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("could not read %s: %v", name, err)
	}
	c, err := Parse(b)
	if err != nil {
		t.Fatalf("could not parse %s: %v", name, err)
	}
	return c
}

func TestLoadOptions(t *testing.T) {
	c := loadTestConfig(t, "config.yaml")
	if c.LogLevel != int(DebugLevel) || !c.Verbose() {
		t.Errorf("expected debug level, got %d", c.LogLevel)
	}
	if c.MaxIterations != 5000 || c.CallContextDepth != 2 || c.WideningLimit != 4 {
		t.Errorf("options not loaded: %+v", c.Options)
	}
	if c.SimplifyLimit != DefaultSimplifyLimit || c.CalleeCacheSize != DefaultCalleeCacheSize {
		t.Errorf("unset options should take their default values: %+v", c.Options)
	}
	if !c.ReportUnreachable {
		t.Errorf("report-unreachable should be set")
	}
	if c.ExceedsMaxCallDepth(1000) {
		t.Errorf("there should be no call depth limit by default")
	}
}

func TestLoadDefaults(t *testing.T) {
	c := loadTestConfig(t, "empty.yaml")
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("log level 0 should default to info, got %d", c.LogLevel)
	}
	if len(c.TaintTrackingProblems) != 0 {
		t.Errorf("expected no taint problem")
	}
}

func TestLoadTaintSpec(t *testing.T) {
	c := loadTestConfig(t, "config.yaml")
	if len(c.TaintTrackingProblems) != 1 {
		t.Fatalf("expected one taint problem, got %d", len(c.TaintTrackingProblems))
	}
	if !c.IsSomeSource(CodeIdentifier{Variable: "_GET"}) {
		t.Errorf("_GET should be a source")
	}
	if c.IsSomeSource(CodeIdentifier{Variable: "_SERVER"}) {
		t.Errorf("_SERVER should not be a source")
	}
	if !c.IsSomeSource(CodeIdentifier{Method: "file_get_contents"}) {
		t.Errorf("file_get_contents should be a source")
	}
	if !c.IsSomeSanitizer(CodeIdentifier{Method: "HtmlSpecialChars"}) {
		t.Errorf("sanitizer names should match regardless of case")
	}
	if !c.IsSomeSink(CodeIdentifier{Class: "pdo", Method: "query"}) {
		t.Errorf("PDO::query should be a sink")
	}
	if c.IsSomeSink(CodeIdentifier{Method: "query"}) {
		t.Errorf("a function named query is not the PDO method")
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse([]byte("options: [")); err == nil {
		t.Errorf("expected a parse error")
	}
	if _, err := Load(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)
	l.Infof("hidden")
	l.Warnf("shown %d", 1)
	l.Errorf("shown %d", 2)
	if got := buf.String(); got != "[WARN] shown 1\n[ERROR] shown 2\n" {
		t.Errorf("unexpected log output %q", got)
	}
	l.SetLevel(TraceLevel)
	l.Tracef("trace")
	if !strings.Contains(buf.String(), "[TRACE] trace") || !l.LogsTrace() {
		t.Errorf("trace messages should be printed at trace level")
	}
}
