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

/*
Given a BED-like file of fixed-width genomic intervals and their read counts,
bio-cmbf scores each interval against the median read count of the window of
intervals surrounding it.  The score is 1 - exp(-Z^2/2), where Z is the
interval's read count divided by the window median (times -median-mult).

Input lines are "chrom start end readCount", separated by whitespace, sorted by
position within each chromosome.  Lines which don't look like data (track
lines, headers) are ignored.  Chromosomes are scored in parallel and written in
the order they first appear in the input.

Sample usage:
bio-cmbf \
    --window-size 10000 \
    --out sample \
    --chrom-files \
    sample.bed

writes sample_out/sample_allChr.bed, and sample_out/sample_<chrom>.bed for
each chromosome.
*/
package main
