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
	"bufio"
	"context"
	"io"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/cmbf/interval"
	"github.com/pkg/errors"
)

// ctxCheckInterval is the number of records scored between context checks.
const ctxCheckInterval = 4096

// ChromStats describes the scoring of one chromosome.
type ChromStats struct {
	Chrom string
	// Records is the number of records read, and scored.
	Records int
	// IntervalWidth is the width of the chromosome's first record.
	IntervalWidth int
	// WindowBins is the window width in intervals.
	WindowBins int
	// TailWidth is the width the window was shrunk to because the chromosome
	// was too short to fill it, or 0 if it was never shrunk.
	TailWidth int
	Elapsed   time.Duration
}

// recordReader parses the lines of one chromosome stream, with one record of
// lookahead so that the caller can tell whether the stream is exhausted
// before consuming the next record.
type recordReader struct {
	scanner     *bufio.Scanner
	chrom       string
	defaultZero float64

	lineNum   int
	nRecords  int
	prevStart interval.PosType

	pending    interval.Record
	hasPending bool
	done       bool
	err        error
}

func newRecordReader(r io.Reader, chrom string, defaultZero float64) *recordReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)
	return &recordReader{
		scanner:     scanner,
		chrom:       chrom,
		defaultZero: defaultZero,
	}
}

func (rr *recordReader) fill() {
	if rr.hasPending || rr.done || rr.err != nil {
		return
	}
	for rr.scanner.Scan() {
		rr.lineNum++
		line := rr.scanner.Bytes()
		if interval.IsBlank(line) {
			continue
		}
		rec, err := interval.ParseRecord(line, rr.defaultZero)
		if err != nil {
			rr.err = errors.Wrapf(ErrParse, "%s line %d: %v", rr.chrom, rr.lineNum, err)
			return
		}
		switch {
		case rec.Chrom != rr.chrom:
			rr.err = errors.Wrapf(ErrParse, "%s line %d: unexpected chromosome %s", rr.chrom, rr.lineNum, rec.Chrom)
			return
		case rec.End <= rec.Start:
			rr.err = errors.Wrapf(ErrParse, "%s line %d: interval width must be positive", rr.chrom, rr.lineNum)
			return
		case rr.nRecords > 0 && rec.Start <= rr.prevStart:
			rr.err = errors.Wrapf(ErrParse, "%s line %d: start %d does not follow %d", rr.chrom, rr.lineNum, rec.Start, rr.prevStart)
			return
		}
		rr.prevStart = rec.Start
		rr.nRecords++
		rr.pending = rec
		rr.hasPending = true
		return
	}
	if err := rr.scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			rr.err = errors.Wrapf(ErrParse, "%s line %d: line longer than %d bytes", rr.chrom, rr.lineNum+1, maxLineLen)
			return
		}
		rr.err = errors.Wrapf(err, "%s: read", rr.chrom)
		return
	}
	rr.done = true
}

// more returns true iff next will return a record or an error.
func (rr *recordReader) more() bool {
	rr.fill()
	return rr.hasPending || rr.err != nil
}

// next returns the next record, or io.EOF at the end of the stream.
func (rr *recordReader) next() (interval.Record, error) {
	rr.fill()
	if rr.err != nil {
		return interval.Record{}, rr.err
	}
	if !rr.hasPending {
		return interval.Record{}, io.EOF
	}
	rr.hasPending = false
	return rr.pending, nil
}

// ScoreChrom scores every record of one chromosome stream, returning the
// scored records in input order.  It fails on the first unparseable line.
func ScoreChrom(ctx context.Context, stream LineStream, opts *Opts) (out []interval.Record, stats ChromStats, err error) {
	t0 := time.Now()
	stats.Chrom = stream.Chrom()
	var in io.ReadCloser
	if in, err = stream.Open(); err != nil {
		return
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
		stats.Elapsed = time.Since(t0)
	}()

	rr := newRecordReader(in, stats.Chrom, opts.DefaultZero)
	first, err := rr.next()
	if err == io.EOF {
		err = nil
		return
	}
	if err != nil {
		return
	}
	var w *Window
	if w, err = NewWindow(&first, opts); err != nil {
		err = errors.Wrapf(err, "%s", stats.Chrom)
		return
	}
	stats.IntervalWidth = int(w.IntervalWidth())
	stats.WindowBins = w.Width()
	out = make([]interval.Record, 0, stream.Lines())

	scoreCenter := func() error {
		if len(out)%ctxCheckInterval == 0 {
			if e := ctx.Err(); e != nil {
				return errors.Wrapf(e, "%s: scored %d records", stats.Chrom, len(out))
			}
		}
		if _, e := w.ScoreCenter(); e != nil {
			return e
		}
		out = append(out, *w.CenterRecord())
		return nil
	}

	for rr.more() {
		if w.ToFill() > 0 {
			var rec interval.Record
			if rec, err = rr.next(); err != nil {
				return
			}
			if err = w.Insert(&rec); err != nil {
				return
			}
		}
		if w.Full() {
			if err = scoreCenter(); err != nil {
				return
			}
			if !rr.more() {
				w.SetEndOfChrom()
			}
			w.AdvanceCenter()
		}
	}
	// Drain the tail.
	w.SetEndOfChrom()
	if !w.Full() {
		stats.TailWidth = w.ShrinkToAvailable()
		log.Debug.Printf("%s: window shrunk to %d intervals", stats.Chrom, stats.TailWidth)
	}
	for w.Center() < w.Len() {
		if err = scoreCenter(); err != nil {
			return
		}
		w.AdvanceCenter()
	}
	stats.Records = rr.nRecords
	if len(out) != stats.Records {
		err = errors.Wrapf(ErrConsistency, "%s: %d records in, %d scores out", stats.Chrom, stats.Records, len(out))
	}
	return
}
