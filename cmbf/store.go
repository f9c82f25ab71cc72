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
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// LineStream is the sequence of input lines belonging to one chromosome.
type LineStream interface {
	// Chrom returns the chromosome name shared by all lines of the stream.
	Chrom() string
	// Lines returns the number of lines in the stream.
	Lines() int
	// Open returns a reader positioned at the first line.  Each line is
	// newline-terminated.  Open may be called more than once.
	Open() (io.ReadCloser, error)
}

// partitionStore is a LineStream under construction.
//
// add() is not threadsafe.  closeWriter() must be called after the last
// add(), and before Open().  closeWriter() may also be called between adds to
// release the store's file; a later add() reopens it.
type partitionStore interface {
	LineStream
	add(line []byte) error
	closeWriter() error
	// remove releases any resources backing the stream.
	remove() error
}

// memStream keeps all lines of a chromosome in one buffer.
type memStream struct {
	chrom string
	n     int
	data  []byte
}

// NewLineStream returns an in-memory LineStream over data, which holds
// newline-separated lines of chromosome chrom.  data is not copied.
func NewLineStream(chrom string, data []byte) LineStream {
	s := &memStream{chrom: chrom, data: data}
	s.n = bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		s.n++
	}
	return s
}

func newMemStream(chrom string) *memStream {
	return &memStream{chrom: chrom}
}

func (s *memStream) Chrom() string { return s.chrom }
func (s *memStream) Lines() int    { return s.n }

func (s *memStream) Open() (io.ReadCloser, error) {
	return ioutil.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *memStream) add(line []byte) error {
	s.data = append(s.data, line...)
	s.data = append(s.data, '\n')
	s.n++
	return nil
}

func (s *memStream) closeWriter() error { return nil }

// remove is a no-op: a late reader may still hold the buffer.
func (s *memStream) remove() error { return nil }

// diskStream is a chromosome spilled to a snappy-compressed temporary file.
// At most one diskStream of a partitioning holds an open file: the writer is
// closed when the input moves to another chromosome, and reopened in append
// mode if the chromosome comes back.  Each reopening starts a new framed
// snappy stream, which snappy.Reader reads as a continuation of the previous
// one.
type diskStream struct {
	chrom  string
	n      int
	path   string
	f      *os.File
	writer *snappy.Writer
}

func newDiskStream(chrom, dir string, idx int) (*diskStream, error) {
	s := &diskStream{
		chrom: chrom,
		path:  filepath.Join(dir, fmt.Sprintf("chrom_%04d.snappy", idx)),
	}
	if err := s.openWriter(os.O_CREATE | os.O_TRUNC | os.O_WRONLY); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *diskStream) openWriter(flag int) error {
	f, err := os.OpenFile(s.path, flag, 0600)
	if err != nil {
		return fmt.Errorf("error opening partition %s: %v", s.path, err)
	}
	s.f = f
	s.writer = snappy.NewBufferedWriter(f)
	return nil
}

func (s *diskStream) Chrom() string { return s.chrom }
func (s *diskStream) Lines() int    { return s.n }

func (s *diskStream) add(line []byte) error {
	if s.writer == nil {
		if err := s.openWriter(os.O_APPEND | os.O_WRONLY); err != nil {
			return err
		}
	}
	if _, err := s.writer.Write(line); err != nil {
		return fmt.Errorf("error writing to partition %s: %v", s.path, err)
	}
	if _, err := s.writer.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("error writing to partition %s: %v", s.path, err)
	}
	s.n++
	return nil
}

// closeWriter flushes and closes the open file, if any.  It may be called
// more than once.
func (s *diskStream) closeWriter() error {
	if s.writer == nil {
		return nil
	}
	w, f := s.writer, s.f
	s.writer, s.f = nil, nil
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to close snappy writer for partition %s: %v", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close partition %s: %v", s.path, err)
	}
	return nil
}

type diskStreamReader struct {
	io.Reader
	f *os.File
}

func (r *diskStreamReader) Close() error { return r.f.Close() }

func (s *diskStream) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %v", s.path, err)
	}
	return &diskStreamReader{Reader: snappy.NewReader(f), f: f}, nil
}

func (s *diskStream) remove() error {
	if s.f != nil {
		_ = s.f.Close()
		s.writer, s.f = nil, nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
