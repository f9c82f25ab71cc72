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
package main

/*
bio-cmbf computes a cMBF score for every interval of a binned read-depth file.
*/

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/cmbf/cmbf"
)

var (
	windowSize   = flag.Int("window-size", cmbf.DefaultOpts.WindowWidth, "Window size in bases; must be a multiple of the interval size")
	medianMult   = flag.Float64("median-mult", cmbf.DefaultOpts.MedianMult, "Median multiple; must be greater than 0")
	defaultZero  = flag.Float64("default-zero", cmbf.DefaultOpts.DefaultZero, "Value replacing a read count of zero; must satisfy 0 < v < 1")
	parallelism  = flag.Int("parallelism", cmbf.DefaultOpts.Parallelism, "Maximum number of chromosomes scored at once; 0 = runtime.NumCPU()")
	timeout      = flag.Duration("timeout", cmbf.DefaultOpts.Timeout, "Give up if scoring takes longer than this; 0 = no limit")
	medianMethod = flag.String("median-method", cmbf.DefaultOpts.MedianMethod, "Window median implementation; 'tree' or 'sort'")
	spillDir     = flag.String("spill-dir", "", "If set, chromosomes are staged in temporary files under this directory instead of memory")
	outDir       = flag.String("out-dir", "", "Output directory (default <input path without extension>_out)")
	outPrefix    = flag.String("out", "out", "Output file name prefix")
	bgzip        = flag.Bool("bgzip", false, "bgzip the genome-wide output")
	chromFiles   = flag.Bool("chrom-files", false, "Also write one output file per chromosome")
	statsPath    = flag.String("stats", "", "If set, write per-chromosome statistics to this TSV")
)

func bioCMBFUsage() {
	fmt.Printf("Usage: %s [OPTIONS] input.bed[.gz]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// defaultOutDir returns "<input path minus extensions>_out".
func defaultOutDir(inPath string) string {
	base := strings.TrimSuffix(inPath, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_out"
}

// allChromPath returns the path of the genome-wide output.
func allChromPath(dir, prefix string, bgzip bool) string {
	path := filepath.Join(dir, prefix+"_allChr.bed")
	if bgzip {
		path += ".gz"
	}
	return path
}

func main() {
	flag.Usage = bioCMBFUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("Expected exactly one positional argument (input path), got '%s'", strings.Join(flag.Args(), " "))
	}
	inPath := flag.Arg(0)
	opts := cmbf.Opts{
		WindowWidth:  *windowSize,
		MedianMult:   *medianMult,
		DefaultZero:  *defaultZero,
		Parallelism:  *parallelism,
		Timeout:      *timeout,
		MedianMethod: *medianMethod,
		SpillDir:     *spillDir,
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	dir := *outDir
	if dir == "" {
		dir = defaultOutDir(inPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := vcontext.Background()
	in, err := cmbf.OpenInput(ctx, inPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	result, err := cmbf.Score(ctx, in, &opts)
	if e := in.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *chromFiles {
		paths, err := cmbf.WriteChromFiles(ctx, dir, *outPrefix, result)
		if err != nil {
			log.Fatalf("%v", err)
		}
		for _, p := range paths {
			log.Printf("%s completed", p)
		}
	}
	outPath := allChromPath(dir, *outPrefix, *bgzip)
	if err := cmbf.WriteScores(ctx, outPath, result.Records(), *parallelism); err != nil {
		log.Fatalf("%v", err)
	}
	if *statsPath != "" {
		if err := cmbf.WriteStats(ctx, *statsPath, result.Stats()); err != nil {
			log.Fatalf("%v", err)
		}
	}
	log.Printf("wrote %s", outPath)
	log.Debug.Printf("exiting")
}
