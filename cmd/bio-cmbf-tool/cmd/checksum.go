package cmd

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/cmbf/cmbf"
	"github.com/grailbio/cmbf/interval"
)

// chromChecksum is the checksum of the rows for one chromosome.
type chromChecksum struct {
	// Name is the chromosome name.
	Name string
	// NRows is the # of rows found for this chromosome.
	NRows int64
	// SumRows is the sum of the hashes of all rows, each salted with its
	// ordinal within the chromosome.
	SumRows uint64
}

func (c *chromChecksum) add(line []byte, h hash.Hash64) {
	ordinal := [8]byte{}
	binary.LittleEndian.PutUint64(ordinal[:], uint64(c.NRows))
	h.Reset()
	h.Write(ordinal[:])
	h.Write(line)
	c.SumRows += h.Sum64()
	c.NRows++
}

// fileChecksum represents the checksum of a file.
type fileChecksum struct {
	// Chroms lists chromosomes in order of first appearance.
	Chroms  []chromChecksum
	Skipped int64 // Lines that don't look like data.
	err     errors.Once
}

func checksumReader(r io.Reader) *fileChecksum {
	csum := &fileChecksum{}
	h := seahash.New()
	byName := map[string]int{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		chrom, ok := interval.DataChrom(line)
		if !ok {
			csum.Skipped++
			continue
		}
		idx, found := byName[chrom]
		if !found {
			idx = len(csum.Chroms)
			name := string(unsafe.StringToBytes(chrom))
			byName[name] = idx
			csum.Chroms = append(csum.Chroms, chromChecksum{Name: name})
		}
		csum.Chroms[idx].add(line, h)
	}
	csum.err.Set(scanner.Err())
	return csum
}

func checksum(w io.Writer, path string) error {
	ctx := vcontext.Background()
	in, err := cmbf.OpenInput(ctx, path)
	if err != nil {
		return err
	}
	csum := checksumReader(in)
	csum.err.Set(in.Close())
	if csum.err.Err() != nil {
		return csum.err.Err()
	}
	js, err := json.MarshalIndent(csum, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(js))
	return err
}
