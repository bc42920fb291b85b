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

// Package analysistest loads the annotated PHP scripts of the testdata directories and reads the
// flows they expect.
//
// A test directory holds an index.php, optionally other scripts, and a config.yaml. Comments of the
// form "// @Source(id1, id2)" mark the lines of taint sources, and "// @Sink(id1)" the lines of
// the sinks they reach. A "#" comment works as well.
package analysistest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/frontend/php"
	"github.com/hashicorp/go-multierror"
)

// SourceRegex matches annotations of the form "@Source(id1, id2, id3)"
var SourceRegex = regexp.MustCompile(`(?://|#).*@Source\(((?:\s*\w+\s*,?)+)\)`)

// SinkRegex matches annotations of the form "@Sink(id1, id2, id3)"
var SinkRegex = regexp.MustCompile(`(?://|#).*@Sink\(((?:\s*\w+\s*,?)+)\)`)

// LPos is a position without column.
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn drops the column of pos.
func RemoveColumn(pos cfg.Position) LPos {
	return LPos{Filename: pos.File, Line: pos.Line}
}

// LoadTest loads the index.php of dir, then the extraFiles of dir, with the config.yaml of dir.
func LoadTest(t *testing.T, dir string, extraFiles []string) (*cfg.Program, *config.Config) {
	t.Helper()
	c, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("error loading config: %v", err)
	}
	files := []string{filepath.Join(dir, "index.php")}
	for _, f := range extraFiles {
		files = append(files, filepath.Join(dir, f))
	}
	logger := config.NewLogGroup(c)
	logger.SetAllOutput(testWriter{t})
	prog, err := php.Load(context.Background(), logger, files...)
	if err != nil {
		t.Fatalf("error loading program: %v", err)
	}
	return prog, c
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type annotation struct {
	pos LPos
	ids []string
}

// GetExpectedSourceToSink reads the annotations of the PHP files of dir and returns, for every sink
// position, the positions of the sources expected to reach it. A sink whose identifiers name no
// source maps to an empty set.
func GetExpectedSourceToSink(dir string) (map[LPos]map[LPos]bool, error) {
	var sources, sinks []annotation
	var errs error
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".php" {
			return err
		}
		src, snk, err := readAnnotations(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			return nil
		}
		sources = append(sources, src...)
		sinks = append(sinks, snk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}

	sourceIds := map[string][]LPos{}
	for _, a := range sources {
		for _, id := range a.ids {
			sourceIds[id] = append(sourceIds[id], a.pos)
		}
	}
	res := map[LPos]map[LPos]bool{}
	for _, a := range sinks {
		if res[a.pos] == nil {
			res[a.pos] = map[LPos]bool{}
		}
		for _, id := range a.ids {
			for _, p := range sourceIds[id] {
				res[a.pos][p] = true
			}
		}
	}
	return res, nil
}

func readAnnotations(path string) (sources, sinks []annotation, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read annotations: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		pos := LPos{Filename: path, Line: line}
		if m := SourceRegex.FindStringSubmatch(sc.Text()); m != nil {
			sources = append(sources, annotation{pos: pos, ids: splitIds(m[1])})
		}
		if m := SinkRegex.FindStringSubmatch(sc.Text()); m != nil {
			sinks = append(sinks, annotation{pos: pos, ids: splitIds(m[1])})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return sources, sinks, nil
}

func splitIds(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
