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

const (
	// DefaultMaxIterations is the default bound on the number of program points processed by the driver
	DefaultMaxIterations = 100000
	// DefaultSimplifyLimit is the default number of values an entry holds before it is simplified
	DefaultSimplifyLimit = 5
	// DefaultWideningLimit is the default number of values an entry holds at a loop head before it is widened
	DefaultWideningLimit = 3
	// DefaultCallContextDepth distinguishes the instances of a function by their last call site
	DefaultCallContextDepth = 1
	// DefaultMaxCallDepth is the default maximum depth of a chain of instances. -1 means no limit
	DefaultMaxCallDepth = -1
	// DefaultCalleeCacheSize is the default number of call results kept by the driver
	DefaultCalleeCacheSize = 256
)
