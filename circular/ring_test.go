// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular_test

import (
	"math/rand"
	"testing"

	"github.com/grailbio/cmbf/circular"
	bi "github.com/grailbio/cmbf/interval"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestNextExp2(t *testing.T) {
	expect.EQ(t, circular.NextExp2(1), 2)
	expect.EQ(t, circular.NextExp2(2), 4)
	expect.EQ(t, circular.NextExp2(3), 4)
	expect.EQ(t, circular.NextExp2(511), 512)
	expect.EQ(t, circular.NextExp2(512), 1024)
}

func TestRing(t *testing.T) {
	maxSize := 300
	nIter := 100
	for iter := 0; iter < nIter; iter++ {
		capacity := rand.Intn(maxSize) + 1
		r := circular.NewRing(capacity)
		assert.True(t, r.Cap() >= capacity)

		// Slide a window of random occupancy along a synthetic chromosome and
		// check that the ring always mirrors a plain slice.
		var want []bi.PosType
		next := bi.PosType(0)
		for step := 0; step < 5*capacity; step++ {
			if len(want) < capacity && (len(want) == 0 || rand.Intn(3) != 0) {
				r.PushBack(bi.NewRecord("chr1", next, next+10, int(next), 0.5))
				want = append(want, next)
				next += 10
			} else {
				rec := r.PopFront()
				assert.EQ(t, rec.Start, want[0])
				want = want[1:]
			}
			assert.EQ(t, r.Len(), len(want))
			for i, start := range want {
				assert.EQ(t, r.At(i).Start, start)
			}
			if len(want) > 0 {
				assert.EQ(t, r.Front().Start, want[0])
				assert.EQ(t, r.Back().Start, want[len(want)-1])
			}
		}
	}
}

func TestRingMutateInPlace(t *testing.T) {
	r := circular.NewRing(3)
	for i := 0; i < 3; i++ {
		r.PushBack(bi.NewRecord("chr1", bi.PosType(i), bi.PosType(i+1), 1, 0.5))
	}
	expect.NoError(t, r.At(1).SetScore(0.5))
	rec := r.PopFront()
	_, scored := rec.Score()
	expect.False(t, scored)
	score, scored := r.Front().Score()
	expect.True(t, scored)
	expect.EQ(t, score, 0.5)
}
