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

package taint_test

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/taint"
	"github.com/awslabs/ar-php-tools/internal/analysistest"
	"github.com/google/go-cmp/cmp"
)

// runAnnotatedTest analyzes testdata/src/taint/name and checks that the flows found are the ones its
// annotations describe.
func runAnnotatedTest(t *testing.T, name string) {
	dir := filepath.Join("..", "..", "testdata", "src", "taint", name)
	prog, c := analysistest.LoadTest(t, dir, nil)
	expected, err := analysistest.GetExpectedSourceToSink(dir)
	if err != nil {
		t.Fatalf("could not read annotations: %v", err)
	}
	res, err := taint.Analyze(context.Background(), c, prog)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	wantSinks := map[analysistest.LPos]bool{}
	for sink := range expected {
		wantSinks[sink] = true
	}
	gotSinks := map[analysistest.LPos]bool{}
	for _, flow := range res.TaintFlows {
		sink := analysistest.RemoveColumn(flow.Pos)
		gotSinks[sink] = true
		for _, origin := range taint.Origins(flow) {
			src, ok := callOrigin(origin)
			if ok && !expected[sink][src] {
				t.Errorf("unexpected source %s reaching the sink at %s", src, sink)
			}
		}
	}
	if diff := cmp.Diff(wantSinks, gotSinks); diff != "" {
		t.Errorf("unexpected sinks reached (-want +got):\n%s", diff)
	}
}

// callOrigin returns the position of a source call recorded in an origin such as
// "file_get_contents@dir/index.php:7:8".
func callOrigin(origin string) (analysistest.LPos, bool) {
	at := strings.LastIndex(origin, "@")
	if at < 0 {
		return analysistest.LPos{}, false
	}
	parts := strings.Split(origin[at+1:], ":")
	if len(parts) < 3 {
		return analysistest.LPos{}, false
	}
	line, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return analysistest.LPos{}, false
	}
	return analysistest.LPos{Filename: strings.Join(parts[:len(parts)-2], ":"), Line: line}, true
}

func TestAnnotatedBasic(t *testing.T) {
	runAnnotatedTest(t, "basic")
}

func TestAnnotatedInterprocedural(t *testing.T) {
	runAnnotatedTest(t, "interprocedural")
}

func TestAnnotatedLoops(t *testing.T) {
	runAnnotatedTest(t, "loops")
}

func TestAnnotatedObjects(t *testing.T) {
	runAnnotatedTest(t, "objects")
}
