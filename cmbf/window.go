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
	"fmt"
	"math"

	"github.com/grailbio/cmbf/circular"
	"github.com/grailbio/cmbf/interval"
	"github.com/pkg/errors"
)

// Window is the sliding window of one chromosome.  It holds up to Width()
// consecutive records and scores the record at its center against the median
// read count of all members.
//
// Positions inside the window are tracked by ordinal: the i'th record of the
// chromosome is treated as covering
//   [absStart + i*intervalWidth, absStart + (i+1)*intervalWidth)
// regardless of its actual coordinates.  With gap-free input this is the same
// thing as the record's own interval.
//
// A Window is not safe for concurrent use.
type Window struct {
	chrom         string
	intervalWidth interval.PosType
	medianMult    float64
	width         int

	members *circular.Ring
	// headSeq is the ordinal of members.Front().
	headSeq uint64
	center  int

	pos, start, end interval.PosType
	absStart        interval.PosType
	endOfChrom      bool
	shrunk          bool

	tree    *medianTree // nil when sorting at every position
	scratch []float64
}

// NewWindow creates a window for the chromosome of first, sized from
// opts.WindowWidth and first's width, and seeds it with first.
func NewWindow(first *interval.Record, opts *Opts) (*Window, error) {
	iw := first.Width()
	if iw <= 0 {
		return nil, errors.Wrapf(ErrParse, "%s:%d-%d: interval width must be positive", first.Chrom, first.Start, first.End)
	}
	if opts.WindowWidth%int(iw) != 0 {
		return nil, errors.Wrapf(ErrConfig, "window size %d must be a multiple of the interval size %d", opts.WindowWidth, iw)
	}
	width := opts.WindowWidth / int(iw)
	if width < 1 {
		return nil, errors.Wrapf(ErrConfig, "window size %d holds no %d-base interval", opts.WindowWidth, iw)
	}
	w := &Window{
		chrom:         first.Chrom,
		intervalWidth: iw,
		medianMult:    opts.MedianMult,
		width:         width,
		members:       circular.NewRing(width),
		pos:           first.Start,
		start:         first.Start,
		end:           first.Start + interval.PosType(width)*iw,
		absStart:      first.Start,
	}
	if opts.MedianMethod != MedianSort {
		w.tree = &medianTree{}
	} else {
		w.scratch = make([]float64, 0, width)
	}
	if err := w.Insert(first); err != nil {
		return nil, err
	}
	return w, nil
}

// Insert appends rec to the window.
func (w *Window) Insert(rec *interval.Record) error {
	n := w.members.Len()
	if n >= w.width {
		return errors.Wrapf(ErrCapacity, "%s: inserting %d into window of %d", w.chrom, rec.Start, w.width)
	}
	if w.tree != nil {
		w.tree.insert(medianKey{value: rec.EffectiveCount, seq: w.headSeq + uint64(n)})
	}
	w.members.PushBack(*rec)
	return nil
}

// Full returns true iff the window holds Width() records.
func (w *Window) Full() bool {
	return w.members.Len() == w.width
}

// ToFill returns the number of records the window can still accept.
func (w *Window) ToFill() int {
	return w.width - w.members.Len()
}

// SetEndOfChrom freezes the window bounds; subsequent calls to AdvanceCenter
// move the center without dropping members.
func (w *Window) SetEndOfChrom() {
	w.endOfChrom = true
}

// ShrinkToAvailable permanently sets the window width to the current member
// count, for chromosomes too short to fill the window.  It returns the new
// width.
func (w *Window) ShrinkToAvailable() int {
	if w.shrunk {
		panic("cmbf.Window: ShrinkToAvailable called twice")
	}
	w.shrunk = true
	w.width = w.members.Len()
	if w.width > 0 {
		w.end = w.members.Back().End
	}
	return w.width
}

// AdvanceCenter moves the center one interval to the right.  Unless the end
// of the chromosome has been reached, the bounds are recomputed around the
// new center and a leading member which fell out of them is dropped.
//
// The bounds are clamped at the first position of the chromosome, so the
// center sits left of the middle of the window for the first width/2
// positions.
func (w *Window) AdvanceCenter() {
	iw := w.intervalWidth
	w.pos += iw
	if !w.endOfChrom {
		half := interval.PosType(w.width / 2)
		if w.width%2 == 0 {
			half = interval.PosType((w.width - 1) / 2)
		}
		w.start = w.pos - half*iw
		w.end = w.pos + interval.PosType((w.width+1)/2)*iw
	}
	if w.start < w.absStart {
		w.end = w.end - w.start + w.absStart
		w.start = w.absStart
	}
	w.center = int((w.pos - w.start) / iw)
	if !w.endOfChrom && w.members.Len() > 0 && w.frontStart() < w.start {
		w.evict()
	}
}

// frontStart returns the ordinal start of the leading member.
func (w *Window) frontStart() interval.PosType {
	return w.absStart + interval.PosType(w.headSeq)*w.intervalWidth
}

func (w *Window) evict() {
	rec := w.members.PopFront()
	if w.tree != nil {
		w.tree.remove(medianKey{value: rec.EffectiveCount, seq: w.headSeq})
	}
	w.headSeq++
}

func (w *Window) median() float64 {
	if w.tree != nil {
		return w.tree.median()
	}
	w.scratch = w.scratch[:0]
	for i := 0; i < w.members.Len(); i++ {
		w.scratch = append(w.scratch, w.members.At(i).EffectiveCount)
	}
	return sortedMedian(w.scratch)
}

// NoiseEstimate returns MedianMult times the median effective read count of
// the window's members.
func (w *Window) NoiseEstimate() (float64, error) {
	noise := w.medianMult * w.median()
	if noise == 0 {
		return 0, errors.Wrapf(ErrDegenerateNoise, "%s\t%d\t%d\t%d", w.chrom, w.start, w.end, w.pos)
	}
	return noise, nil
}

// ScoreCenter computes 1 - exp(-Z^2/2), where Z is the center record's
// effective read count divided by the noise estimate, stores it in the center
// record, and returns it.
func (w *Window) ScoreCenter() (float64, error) {
	if w.center >= w.members.Len() {
		return 0, errors.Wrapf(ErrConsistency, "%s: center %d past last member %d", w.chrom, w.center, w.members.Len()-1)
	}
	noise, err := w.NoiseEstimate()
	if err != nil {
		return 0, err
	}
	rec := w.members.At(w.center)
	z := rec.EffectiveCount / noise
	score := 1 - math.Exp(-(z*z)/2)
	if err := rec.SetScore(score); err != nil {
		return 0, errors.Wrapf(ErrConsistency, "%v", err)
	}
	return score, nil
}

// Center returns the offset of the center within the window's members.
func (w *Window) Center() int { return w.center }

// CenterRecord returns the record at the center.  It is invalidated by the
// next AdvanceCenter.
func (w *Window) CenterRecord() *interval.Record { return w.members.At(w.center) }

// LastStart returns the start of the last member.
func (w *Window) LastStart() interval.PosType { return w.members.Back().Start }

// Bounds returns the logical window bounds [start, end).
func (w *Window) Bounds() (start, end interval.PosType) { return w.start, w.end }

// Width returns the target member count.
func (w *Window) Width() int { return w.width }

// Len returns the current member count.
func (w *Window) Len() int { return w.members.Len() }

// IntervalWidth returns the width of the chromosome's intervals.
func (w *Window) IntervalWidth() interval.PosType { return w.intervalWidth }

func (w *Window) String() string {
	return fmt.Sprintf("[%s width:%d, pos:%d, start:%d, end:%d, center:%d, members:%d]",
		w.chrom, w.width, w.pos, w.start, w.end, w.center, w.members.Len())
}
