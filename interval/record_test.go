// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

func TestGetTokens(t *testing.T) {
	var tokens [4][]byte
	n := getTokens(tokens[:], []byte("  chr1\t100 \t200   7  extra"))
	expect.EQ(t, n, 4)
	expect.EQ(t, string(tokens[0]), "chr1")
	expect.EQ(t, string(tokens[1]), "100")
	expect.EQ(t, string(tokens[2]), "200")
	expect.EQ(t, string(tokens[3]), "7")

	n = getTokens(tokens[:], []byte("chr1 5"))
	expect.EQ(t, n, 2)
	expect.EQ(t, getTokens(tokens[:], []byte(" \t ")), 0)
}

func TestDataChrom(t *testing.T) {
	tests := []struct {
		line  string
		chrom string
		ok    bool
	}{
		{"chr1\t0\t100\t5", "chr1", true},
		{"chrX 0 100 abc", "chrX", true}, // lenient: fails later, in the worker
		{"scaffold_1\t0\t100\t5", "scaffold_1", true},
		{"2 0 100 5", "2", true},
		{"track type=bedGraph name=foo", "", false},
		{"#chrom\tstart\tend\tcount", "", false},
		// An uncommented column header is taken for chromosome "chrom".
		{"chrom\tstart\tend\tcount", "chrom", true},
		{"scaffold_1\t0\t100", "", false},
		{"scaffold_1\t0\tx\t4", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		chrom, ok := DataChrom([]byte(tt.line))
		expect.EQ(t, ok, tt.ok, "line %q", tt.line)
		expect.EQ(t, chrom, tt.chrom, "line %q", tt.line)
	}
	expect.True(t, IsBlank([]byte(" \t")))
	expect.False(t, IsBlank([]byte(" x")))
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord([]byte("chr2\t300\t400\t12"), 0.5)
	expect.NoError(t, err)
	expect.EQ(t, rec.Chrom, "chr2")
	expect.EQ(t, rec.Start, PosType(300))
	expect.EQ(t, rec.End, PosType(400))
	expect.EQ(t, rec.Width(), PosType(100))
	expect.EQ(t, rec.RawCount, 12)
	expect.EQ(t, rec.EffectiveCount, 12.0)
	_, scored := rec.Score()
	expect.False(t, scored)

	rec, err = ParseRecord([]byte("chr2 400 500 0 trailing"), 0.25)
	expect.NoError(t, err)
	expect.EQ(t, rec.RawCount, 0)
	expect.EQ(t, rec.EffectiveCount, 0.25)

	for _, line := range []string{
		"chr1\t0\t100",
		"chr1\tzero\t100\t1",
		"chr1\t0\t1e2\t1",
		"chr1\t0\t100\t1.5",
		"chr1\t0\t100\t-1",
		"chr1\t-5\t100\t1",
		"chr1\t0\t99999999999\t1",
	} {
		_, err := ParseRecord([]byte(line), 0.5)
		expect.EQ(t, errors.Cause(err), ErrMalformed, "line %q", line)
	}
}

func TestSetScore(t *testing.T) {
	rec := NewRecord("chr1", 0, 10, 3, 0.5)
	expect.NoError(t, rec.SetScore(0.75))
	score, scored := rec.Score()
	expect.True(t, scored)
	expect.EQ(t, score, 0.75)
	expect.NotNil(t, rec.SetScore(0.5))

	for _, bad := range []float64{-0.1, 1.0001, math.NaN()} {
		r := NewRecord("chr1", 0, 10, 3, 0.5)
		expect.NotNil(t, r.SetScore(bad), "score %v", bad)
	}
	r := NewRecord("chr1", 0, 10, 3, 0.5)
	expect.NoError(t, r.SetScore(1))
}
