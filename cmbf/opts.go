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

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// Median methods accepted by Opts.MedianMethod.
const (
	// MedianTree keeps the window's counts in a pair of balanced trees, so each
	// slide costs O(log w).
	MedianTree = "tree"
	// MedianSort sorts a copy of the window's counts at every scored position.
	MedianSort = "sort"
)

// Opts configures a scoring run.  It is passed by pointer to every worker and
// must not be modified once Run has started.
type Opts struct {
	// WindowWidth is the width of the sliding window in bases.  It must be a
	// multiple of the input interval width.
	WindowWidth int
	// MedianMult scales the window median to produce the noise estimate.
	MedianMult float64
	// DefaultZero replaces a read count of zero.  Must lie strictly between 0
	// and 1.
	DefaultZero float64
	// Parallelism is the number of chromosomes scored concurrently.  0 means
	// runtime.NumCPU(); larger values are clamped to runtime.NumCPU().
	Parallelism int
	// Timeout bounds a whole Run.  0 disables the bound.
	Timeout time.Duration
	// MedianMethod is MedianTree or MedianSort.  Empty means MedianTree.
	MedianMethod string
	// SpillDir, if nonempty, makes Partition write each chromosome to a
	// snappy-compressed temporary file under this directory instead of
	// keeping it in memory.
	SpillDir string
}

// DefaultOpts holds the settings used by the command-line tools.
var DefaultOpts = Opts{
	WindowWidth:  10000,
	MedianMult:   1.0,
	DefaultZero:  0.5,
	Parallelism:  0,
	Timeout:      12 * time.Hour,
	MedianMethod: MedianTree,
}

// Validate returns an error wrapping ErrConfig if any setting is out of range.
// Settings which depend on the input (window width vs. interval width) are
// checked later, by NewWindow.
func (o *Opts) Validate() error {
	if o.WindowWidth <= 0 {
		return errors.Wrapf(ErrConfig, "window width %d must be positive", o.WindowWidth)
	}
	if math.IsNaN(o.MedianMult) || math.IsInf(o.MedianMult, 0) || o.MedianMult <= 0 {
		return errors.Wrapf(ErrConfig, "median multiple %v must be positive", o.MedianMult)
	}
	if !(o.DefaultZero > 0 && o.DefaultZero < 1) {
		return errors.Wrapf(ErrConfig, "default zero %v must lie in (0, 1)", o.DefaultZero)
	}
	if o.Parallelism < 0 {
		return errors.Wrapf(ErrConfig, "parallelism %d cannot be negative", o.Parallelism)
	}
	if o.Timeout < 0 {
		return errors.Wrapf(ErrConfig, "timeout %v cannot be negative", o.Timeout)
	}
	switch o.MedianMethod {
	case "", MedianTree, MedianSort:
	default:
		return errors.Wrapf(ErrConfig, "unknown median method %q", o.MedianMethod)
	}
	return nil
}
