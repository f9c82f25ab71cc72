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
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/cmbf/interval"
	"github.com/grailbio/hts/bgzf"
)

// ScorePrecision is the number of decimals written for each score.
const ScorePrecision = 5

// outputFile is a TSV destination, bgzf-compressed when its path ends in
// ".gz".
type outputFile struct {
	path string
	f    file.File
	bgzf *bgzf.Writer
	tsv  *tsv.Writer
}

func createOutput(ctx context.Context, path string, parallelism int) (*outputFile, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't create", path)
	}
	out := &outputFile{path: path, f: f}
	if strings.HasSuffix(path, ".gz") {
		if parallelism <= 0 {
			parallelism = 1
		}
		out.bgzf = bgzf.NewWriter(f.Writer(ctx), parallelism)
		out.tsv = tsv.NewWriter(out.bgzf)
	} else {
		out.tsv = tsv.NewWriter(f.Writer(ctx))
	}
	return out, nil
}

// close flushes and closes the file, keeping the first error in *errp.
func (o *outputFile) close(ctx context.Context, errp *error) {
	if err := o.tsv.Flush(); err != nil && *errp == nil {
		*errp = errors.E(err, "couldn't flush", o.path)
	}
	if o.bgzf != nil {
		if err := o.bgzf.Close(); err != nil && *errp == nil {
			*errp = errors.E(err, "couldn't close bgzf writer for", o.path)
		}
	}
	file.CloseAndReport(ctx, o.f, errp)
}

func writeScoreRow(w *tsv.Writer, rec *interval.Record) error {
	score, ok := rec.Score()
	if !ok {
		return fmt.Errorf("cmbf: %v was not scored", rec)
	}
	w.WriteString(rec.Chrom)
	w.WriteUint32(uint32(rec.Start))
	w.WriteUint32(uint32(rec.End))
	w.WriteString(strconv.FormatFloat(score, 'f', ScorePrecision, 64))
	return w.EndLine()
}

// WriteScores writes recs as "chrom\tstart\tend\tscore" lines to path.
func WriteScores(ctx context.Context, path string, recs []interval.Record, parallelism int) (err error) {
	var out *outputFile
	if out, err = createOutput(ctx, path, parallelism); err != nil {
		return
	}
	defer out.close(ctx, &err)
	for i := range recs {
		if err = writeScoreRow(out.tsv, &recs[i]); err != nil {
			return
		}
	}
	return
}

// ChromFilePath returns the path WriteChromFiles uses for chrom.
func ChromFilePath(dir, prefix, chrom string) string {
	if prefix == "" {
		prefix = "out"
	}
	return filepath.Join(dir, prefix+"_"+chrom+".bed")
}

// WriteChromFiles writes one score file per completed chromosome of result,
// named by ChromFilePath.  It returns the paths written, in chromosome order.
func WriteChromFiles(ctx context.Context, dir, prefix string, result *Result) (paths []string, err error) {
	for i := range result.Chroms {
		c := &result.Chroms[i]
		if !c.Done {
			continue
		}
		path := ChromFilePath(dir, prefix, c.Chrom)
		if err = WriteScores(ctx, path, c.Records, 1); err != nil {
			return
		}
		paths = append(paths, path)
	}
	return
}

// WriteStats writes one line per chromosome, with a header, to path.
func WriteStats(ctx context.Context, path string, stats []ChromStats) (err error) {
	var out *outputFile
	if out, err = createOutput(ctx, path, 1); err != nil {
		return
	}
	defer out.close(ctx, &err)
	out.tsv.WriteString("#CHROM\tRECORDS\tINTERVAL_WIDTH\tWINDOW_BINS\tTAIL_WIDTH\tELAPSED_MS")
	if err = out.tsv.EndLine(); err != nil {
		return
	}
	for _, s := range stats {
		out.tsv.WriteString(s.Chrom)
		out.tsv.WriteUint32(uint32(s.Records))
		out.tsv.WriteUint32(uint32(s.IntervalWidth))
		out.tsv.WriteUint32(uint32(s.WindowBins))
		out.tsv.WriteUint32(uint32(s.TailWidth))
		out.tsv.WriteString(strconv.FormatInt(s.Elapsed.Nanoseconds()/1e6, 10))
		if err = out.tsv.EndLine(); err != nil {
			return
		}
	}
	return
}
