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

// Package valueset implements the default evaluator of the analysis. Values are sets of
// constants and of kind-restricted unknown values; operators are applied to every pair of
// operands, up to a bound after which the result is only known by its kind.
//
// The semantics follow the PHP 8 rules for conversions and loose comparison.
package valueset
