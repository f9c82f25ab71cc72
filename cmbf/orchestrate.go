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
	"context"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	gerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/cmbf/interval"
	"github.com/pkg/errors"
)

// ChromResult is the output of one chromosome.
type ChromResult struct {
	Chrom   string
	Records []interval.Record
	Stats   ChromStats
	// Done is true iff the chromosome was scored completely.
	Done bool
}

// Result is the output of Run.
type Result struct {
	// Chroms has one entry per input stream, in stream order.  Entries of
	// chromosomes which were not scored have Done == false.
	Chroms []ChromResult
}

// Records returns the records of all completed chromosomes, in stream order.
func (r *Result) Records() []interval.Record {
	n := 0
	for i := range r.Chroms {
		if r.Chroms[i].Done {
			n += len(r.Chroms[i].Records)
		}
	}
	recs := make([]interval.Record, 0, n)
	for i := range r.Chroms {
		if r.Chroms[i].Done {
			recs = append(recs, r.Chroms[i].Records...)
		}
	}
	return recs
}

// Stats returns the stats of all completed chromosomes, in stream order.
func (r *Result) Stats() []ChromStats {
	var stats []ChromStats
	for i := range r.Chroms {
		if r.Chroms[i].Done {
			stats = append(stats, r.Chroms[i].Stats)
		}
	}
	return stats
}

// poolSize returns the number of workers used for n chromosomes.  It never
// exceeds runtime.NumCPU() or n.
func poolSize(parallelism, n int) int {
	if ncpu := runtime.NumCPU(); parallelism == 0 || parallelism > ncpu {
		parallelism = ncpu
	}
	if parallelism > n {
		parallelism = n
	}
	return parallelism
}

// Run scores every stream on a pool of opts.Parallelism workers, one
// chromosome per task.  After the first failure no further chromosomes are
// started, and the first error is returned.  The returned Result is non-nil
// even on error; it holds the chromosomes which completed.
func Run(ctx context.Context, streams []LineStream, opts *Opts) (*Result, error) {
	result := &Result{Chroms: make([]ChromResult, len(streams))}
	for i, s := range streams {
		result.Chroms[i].Chrom = s.Chrom()
	}
	if err := opts.Validate(); err != nil {
		return result, err
	}
	if len(streams) == 0 {
		return result, nil
	}
	parallelism := poolSize(opts.Parallelism, len(streams))
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		mu      sync.Mutex
		nextIdx int64 = -1
		errs    gerrors.Once
	)
	log.Printf("cmbf.Run: scoring %d chromosomes (%d jobs)", len(streams), parallelism)
	done := make(chan error, 1)
	go func() {
		done <- traverse.Each(parallelism, func(jobIdx int) error {
			for errs.Err() == nil {
				idx := int(atomic.AddInt64(&nextIdx, 1))
				if idx >= len(streams) {
					return nil
				}
				recs, stats, err := ScoreChrom(ctx, streams[idx], opts)
				if err != nil {
					errs.Set(errors.Wrapf(err, "chromosome %s", streams[idx].Chrom()))
					return nil
				}
				log.Debug.Printf("cmbf.Run: job %d finished %s (%d records, %v)", jobIdx, stats.Chrom, stats.Records, stats.Elapsed)
				mu.Lock()
				result.Chroms[idx] = ChromResult{
					Chrom:   stats.Chrom,
					Records: recs,
					Stats:   stats,
					Done:    true,
				}
				mu.Unlock()
			}
			return nil
		})
	}()

	var err error
	select {
	case err = <-done:
		if err == nil {
			err = errs.Err()
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = errors.Wrapf(ErrTimeout, "after %v: %v", opts.Timeout, ctx.Err())
	}

	// Hand back a snapshot; workers may still be running after a timeout.
	mu.Lock()
	snapshot := &Result{Chroms: append([]ChromResult(nil), result.Chroms...)}
	mu.Unlock()
	if err != nil {
		log.Error.Printf("cmbf.Run: %v", err)
	}
	return snapshot, err
}

// Score partitions the input read from r and scores it with Run.
func Score(ctx context.Context, r io.Reader, opts *Opts) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p, err := Partition(r, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := p.Close(); e != nil {
			log.Error.Printf("cmbf.Score: removing partitions: %v", e)
		}
	}()
	return Run(ctx, p.Streams(), opts)
}
