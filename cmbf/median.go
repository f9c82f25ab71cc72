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
	"math"
	"sort"

	"github.com/biogo/store/llrb"
)

// sortedMedian returns the median of vals, averaging the two central values
// when len(vals) is even.  vals is sorted in place.  NaN is returned for an
// empty slice.
func sortedMedian(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	if n%2 == 0 {
		return (vals[n/2-1] + vals[n/2]) / 2
	}
	return vals[n/2]
}

// medianKey is a window member as seen by medianTree.  seq is the member's
// ordinal within the chromosome; it disambiguates equal counts.
type medianKey struct {
	value float64
	seq   uint64
}

// Compare compares two medianKey objects for use in llrb.
func (k medianKey) Compare(c2 llrb.Comparable) int {
	k2 := c2.(medianKey)
	switch {
	case k.value < k2.value:
		return -1
	case k.value > k2.value:
		return 1
	case k.seq < k2.seq:
		return -1
	case k.seq > k2.seq:
		return 1
	}
	return 0
}

// medianTree maintains the median of a multiset under insertion and removal.
// The lower half lives in low and the upper half in high, with
// low.Len() == high.Len() or low.Len() == high.Len()+1.
type medianTree struct {
	low  llrb.Tree
	high llrb.Tree
}

func (m *medianTree) len() int {
	return m.low.Len() + m.high.Len()
}

func (m *medianTree) insert(k medianKey) {
	if m.low.Len() == 0 || k.Compare(m.low.Max()) <= 0 {
		m.low.Insert(k)
	} else {
		m.high.Insert(k)
	}
	m.rebalance()
}

// remove deletes k, which must have been inserted earlier.
func (m *medianTree) remove(k medianKey) {
	if m.low.Get(k) != nil {
		m.low.Delete(k)
	} else {
		m.high.Delete(k)
	}
	m.rebalance()
}

func (m *medianTree) rebalance() {
	for m.low.Len() > m.high.Len()+1 {
		k := m.low.Max()
		m.low.DeleteMax()
		m.high.Insert(k)
	}
	for m.high.Len() > m.low.Len() {
		k := m.high.Min()
		m.high.DeleteMin()
		m.low.Insert(k)
	}
}

// median returns the same value sortedMedian would for the current members.
func (m *medianTree) median() float64 {
	n := m.len()
	if n == 0 {
		return math.NaN()
	}
	lowMax := m.low.Max().(medianKey).value
	if n%2 == 1 {
		return lowMax
	}
	return (lowMax + m.high.Min().(medianKey).value) / 2
}
