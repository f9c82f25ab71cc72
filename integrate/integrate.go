// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package integrate combines several cMBF score files computed over the same
// intervals into one, by multiplying the scores row by row.
package integrate

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/cmbf/cmbf"
	"github.com/pkg/errors"
)

var (
	// ErrRegionMismatch means two inputs disagree on the interval of a row.
	ErrRegionMismatch = errors.New("file regions do not match")
	// ErrScoreRange means an input score is outside [0, 1].
	ErrScoreRange = errors.New("score must be within 0-1, inclusive")
	// ErrTooFewInputs means fewer than two inputs were given.
	ErrTooFewInputs = errors.New("at least two files are needed to integrate")
)

// ScoreRow is one line of a score file.
type ScoreRow struct {
	Chrom string  `tsv:"chrom"`
	Start int64   `tsv:"start"`
	End   int64   `tsv:"end"`
	Score float64 `tsv:"score"`
}

type scoreReader struct {
	path string
	rc   io.ReadCloser
	tsv  *tsv.Reader
	line int
}

func openScoreReader(ctx context.Context, path string) (*scoreReader, error) {
	rc, err := cmbf.OpenInput(ctx, path)
	if err != nil {
		return nil, err
	}
	r := tsv.NewReader(rc)
	r.Comment = '#'
	return &scoreReader{path: path, rc: rc, tsv: r}, nil
}

// read returns io.EOF at the end of the file.
func (r *scoreReader) read(row *ScoreRow) error {
	r.line++
	if err := r.tsv.Read(row); err != nil {
		if err == io.EOF {
			return err
		}
		return errors.Wrapf(err, "%s:%d", r.path, r.line)
	}
	if !(row.Score >= 0 && row.Score <= 1) {
		return errors.Wrapf(ErrScoreRange, "%s:%d: %v", r.path, r.line, row.Score)
	}
	return nil
}

// Integrate reads the score files inPaths in lockstep and writes
// "chrom\tstart\tend\tproduct" rows to outPath, where product is the product
// of the inputs' scores for the row.  Every input must list the same
// intervals in the same order as the first one.  Output stops at the end of
// the shortest input.  It returns the number of rows written.
func Integrate(ctx context.Context, outPath string, inPaths []string) (nRow int, err error) {
	if len(inPaths) < 2 {
		return 0, errors.Wrapf(ErrTooFewInputs, "got %d", len(inPaths))
	}
	readers := make([]*scoreReader, 0, len(inPaths))
	defer func() {
		for _, r := range readers {
			if e := r.rc.Close(); e != nil && err == nil {
				err = e
			}
		}
	}()
	for _, path := range inPaths {
		var r *scoreReader
		if r, err = openScoreReader(ctx, path); err != nil {
			return
		}
		readers = append(readers, r)
	}

	var out file.File
	if out, err = file.Create(ctx, outPath); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))

	var first, row ScoreRow
	for {
		product := 1.0
		for i, r := range readers {
			dst := &row
			if i == 0 {
				dst = &first
			}
			if err = r.read(dst); err != nil {
				if err == io.EOF {
					err = w.Flush()
					log.Printf("integrate: wrote %d rows to %s", nRow, outPath)
					return
				}
				return
			}
			if i > 0 && (row.Chrom != first.Chrom || row.Start != first.Start || row.End != first.End) {
				err = errors.Wrapf(ErrRegionMismatch, "%s:%d: %s\t%d\t%d, want %s\t%d\t%d",
					r.path, r.line, row.Chrom, row.Start, row.End, first.Chrom, first.Start, first.End)
				return
			}
			product *= dst.Score
		}
		w.WriteString(first.Chrom)
		w.WriteString(strconv.FormatInt(first.Start, 10))
		w.WriteString(strconv.FormatInt(first.End, 10))
		w.WriteString(strconv.FormatFloat(product, 'f', cmbf.ScorePrecision, 64))
		if err = w.EndLine(); err != nil {
			return
		}
		nRow++
	}
}
