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

// Package taint tracks the flows of data from sources to sinks, as described by the taint tracking
// problems of the configuration. It is an info policy of the abstract interpreter: taint marks
// are info flags that the interpreter propagates through assignments, operators and calls.
//
// A source is a superglobal variable or a call whose result is tainted. A sanitizer is a call
// whose result is not tainted. A sink is a call, or a language construct such as echo, whose
// arguments must not be tainted. For example, with the configuration
//
//	taint-tracking-problems:
//	  - sources:
//	      - variable: "^_GET$"
//	    sanitizers:
//	      - method: "^htmlspecialchars$"
//	    sinks:
//	      - method: "^echo$"
//
// the script
//
//	$x = $_GET["name"];
//	echo htmlspecialchars($x);
//	echo $x;
//
// has one flow, to the second echo.
package taint
