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
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/cmbf/interval"
	"github.com/klauspost/compress/gzip"
)

// maxLineLen bounds the length of one input line.
const maxLineLen = 1 << 20

// Partitions is a genome-wide input split by chromosome.
type Partitions struct {
	stores   []partitionStore
	spillDir string
	// Skipped is the number of lines which were not recognized as data.
	Skipped int
}

// Streams returns one stream per chromosome, in order of first appearance in
// the input.
func (p *Partitions) Streams() []LineStream {
	streams := make([]LineStream, len(p.stores))
	for i, s := range p.stores {
		streams[i] = s
	}
	return streams
}

// Close releases the partitions, deleting spill files if any.
func (p *Partitions) Close() error {
	var firstErr error
	for _, s := range p.stores {
		if err := s.remove(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.spillDir != "" {
		if err := os.RemoveAll(p.spillDir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Partition reads a genome-wide interval file and groups its data lines by
// chromosome.  A line is treated as data if its first token starts with
// "chr", or if its second through fourth tokens are integers; everything
// else (headers, track lines, blank lines) is dropped.  Data lines are not
// validated here; that happens when the chromosome is scored.
//
// Lines of a chromosome keep their input order.  A chromosome which
// reappears after another one is appended to its first group.
func Partition(r io.Reader, opts *Opts) (p *Partitions, err error) {
	p = &Partitions{}
	if opts.SpillDir != "" {
		if p.spillDir, err = ioutil.TempDir(opts.SpillDir, "cmbf-partition-"); err != nil {
			return nil, errors.E(err, "couldn't create spill directory under", opts.SpillDir)
		}
	}
	defer func() {
		if err != nil {
			_ = p.Close()
			p = nil
		}
	}()

	byChrom := map[string]partitionStore{}
	// cur is the only store that may hold an open file.
	var cur partitionStore
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)
	nLine := 0
	for scanner.Scan() {
		nLine++
		line := scanner.Bytes()
		chrom, ok := interval.DataChrom(line)
		if !ok {
			p.Skipped++
			continue
		}
		store, found := byChrom[chrom]
		if cur != nil && (!found || store != cur) {
			if err = cur.closeWriter(); err != nil {
				return
			}
		}
		if !found {
			// chrom aliases the scanner's buffer.
			name := string([]byte(chrom))
			if p.spillDir != "" {
				if store, err = newDiskStream(name, p.spillDir, len(p.stores)); err != nil {
					return
				}
			} else {
				store = newMemStream(name)
			}
			byChrom[name] = store
			p.stores = append(p.stores, store)
		}
		cur = store
		if err = store.add(line); err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		err = errors.E(err, fmt.Sprintf("reading input at line %d", nLine+1))
		return
	}
	for _, s := range p.stores {
		if err = s.closeWriter(); err != nil {
			return
		}
	}
	if p.Skipped > 0 {
		log.Debug.Printf("cmbf.Partition: skipped %d of %d lines", p.Skipped, nLine)
	}
	log.Printf("cmbf.Partition: %d chromosomes in %d lines", len(p.stores), nLine)
	return p, nil
}

type inputReader struct {
	io.Reader
	ctx context.Context
	f   file.File
	gz  *gzip.Reader
}

func (r *inputReader) Close() error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	if e := r.f.Close(r.ctx); e != nil && err == nil {
		err = e
	}
	return err
}

// OpenInput opens a plain or gzip-compressed (".gz") interval file.
func OpenInput(ctx context.Context, path string) (io.ReadCloser, error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't open", path)
	}
	r := &inputReader{Reader: infile.Reader(ctx), ctx: ctx, f: infile}
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if r.gz, err = gzip.NewReader(r.Reader); err != nil {
			_ = infile.Close(ctx)
			return nil, errors.E(err, "couldn't decompress", path)
		}
		r.Reader = r.gz
	}
	return r, nil
}
