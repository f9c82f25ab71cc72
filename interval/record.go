// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
	"math"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// PosType is the coordinate type of a Record.
type PosType int32

const posTypeMax = math.MaxInt32

// ErrMalformed is the cause of every error returned by ParseRecord.
var ErrMalformed = errors.New("malformed interval record")

// Record is a single fixed-width genomic bin with its read count.  The score
// is unset until the bin has been scored.
type Record struct {
	Chrom string
	Start PosType
	End   PosType
	// RawCount is the read count as given in the input.
	RawCount int
	// EffectiveCount is RawCount, or the configured default-zero substitute
	// when RawCount is zero.
	EffectiveCount float64

	score  float64
	scored bool
}

// NewRecord returns a record with its effective read count derived from
// rawCount and defaultZero.
func NewRecord(chrom string, start, end PosType, rawCount int, defaultZero float64) Record {
	r := Record{
		Chrom:    chrom,
		Start:    start,
		End:      end,
		RawCount: rawCount,
	}
	r.EffectiveCount = float64(rawCount)
	if rawCount == 0 {
		r.EffectiveCount = defaultZero
	}
	return r
}

// Width returns End - Start.
func (r *Record) Width() PosType {
	return r.End - r.Start
}

// Score returns the score of r, and whether it has been set.
func (r *Record) Score() (float64, bool) {
	return r.score, r.scored
}

// SetScore sets the score of r.  A score may only be set once, and must lie
// in [0, 1].
func (r *Record) SetScore(score float64) error {
	if r.scored {
		return fmt.Errorf("interval.SetScore: %s:%d-%d already scored", r.Chrom, r.Start, r.End)
	}
	if !(score >= 0 && score <= 1) {
		return fmt.Errorf("interval.SetScore: score %v outside of [0, 1] at %s\t%d\t%d\t%v",
			score, r.Chrom, r.Start, r.End, r.EffectiveCount)
	}
	r.score = score
	r.scored = true
	return nil
}

func (r Record) String() string {
	return fmt.Sprintf("[%s start:%d, end:%d, readCount:%v, score:%v]", r.Chrom, r.Start, r.End, r.EffectiveCount, r.score)
}

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// IsBlank returns true iff line contains no token at all.
func IsBlank(line []byte) bool {
	var tokens [1][]byte
	return getTokens(tokens[:], line) == 0
}

// DataChrom checks whether line looks like an interval data line, and returns
// its chromosome name if so.  A line qualifies if its first token starts with
// "chr", or if its second, third and fourth tokens all parse as integers.
// Headers, track lines and blank lines do not qualify.  The returned string
// aliases line.
func DataChrom(line []byte) (string, bool) {
	var tokens [4][]byte
	nToken := getTokens(tokens[:], line)
	if nToken == 0 {
		return "", false
	}
	chrom := gunsafe.BytesToString(tokens[0])
	if len(tokens[0]) >= 3 && chrom[:3] == "chr" {
		return chrom, true
	}
	if nToken < 4 {
		return "", false
	}
	for _, tok := range tokens[1:] {
		if _, err := strconv.Atoi(gunsafe.BytesToString(tok)); err != nil {
			return "", false
		}
	}
	return chrom, true
}

// ParseRecord parses a "chrom start end readCount" line.  Tokens past the
// fourth are ignored.  The chromosome name is copied, so line may be reused
// after the call.
func ParseRecord(line []byte, defaultZero float64) (rec Record, err error) {
	var tokens [4][]byte
	if nToken := getTokens(tokens[:], line); nToken != 4 {
		err = errors.Wrapf(ErrMalformed, "%q has %d tokens, want 4", line, nToken)
		return
	}
	var start, end int64
	if start, err = strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 32); err != nil {
		err = errors.Wrapf(ErrMalformed, "%q: start: %v", line, err)
		return
	}
	if end, err = strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 32); err != nil {
		err = errors.Wrapf(ErrMalformed, "%q: end: %v", line, err)
		return
	}
	if start < 0 || end >= posTypeMax {
		err = errors.Wrapf(ErrMalformed, "%q: coordinates out of range", line)
		return
	}
	var count int
	if count, err = strconv.Atoi(gunsafe.BytesToString(tokens[3])); err != nil {
		err = errors.Wrapf(ErrMalformed, "%q: read count: %v", line, err)
		return
	}
	if count < 0 {
		err = errors.Wrapf(ErrMalformed, "%q: read count cannot be negative", line)
		return
	}
	return NewRecord(string(tokens[0]), PosType(start), PosType(end), count, defaultZero), nil
}
