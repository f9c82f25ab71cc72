// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmbf

import "github.com/pkg/errors"

// Error categories.  Errors returned by this package wrap one of these;
// errors.Cause recovers it.
var (
	// ErrConfig means the settings are invalid, or incompatible with the input.
	ErrConfig = errors.New("invalid configuration")
	// ErrParse means a chromosome stream contains a line which is not a valid
	// interval record.
	ErrParse = errors.New("unparseable record")
	// ErrDegenerateNoise means the window's noise estimate is exactly zero.
	ErrDegenerateNoise = errors.New("noise level estimated to be 0")
	// ErrConsistency means a score fell outside [0, 1], or a record was scored
	// twice.
	ErrConsistency = errors.New("inconsistent score")
	// ErrCapacity means a record was inserted into a full window.
	ErrCapacity = errors.New("window is full")
	// ErrTimeout means the run did not finish within Opts.Timeout.
	ErrTimeout = errors.New("scoring timed out")
)
