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

// Package cmbf computes cMBF scores for binned read-depth data.
//
// Each input record is a fixed-width genomic interval with a read count.  A
// window of WindowWidth bases slides along each chromosome; the median read
// count of the window, scaled by MedianMult, estimates the local noise level,
// and the record at the window's center is scored as
//   1 - exp(-Z^2/2),  Z = count / noise.
// Read counts of zero are replaced by DefaultZero first.
//
// The window is clamped at the start of each chromosome, so the first width/2
// records are scored against a window extending to their right.  At the end
// of a chromosome the window stops sliding and the remaining records are
// scored against the last full window, or against all records if the
// chromosome is too short to fill one.
//
// Chromosomes are independent.  Partition splits a genome-wide input by
// chromosome, Run scores the chromosomes on a fixed-size worker pool, and the
// results are returned in order of first appearance in the input.
package cmbf
