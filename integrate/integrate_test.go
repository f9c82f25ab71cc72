// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package integrate_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/cmbf/integrate"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

func writeFiles(t *testing.T, dir string, contents ...string) []string {
	var paths []string
	for i, c := range contents {
		path := filepath.Join(dir, string(rune('a'+i))+".bed")
		assert.NoError(t, ioutil.WriteFile(path, []byte(c), 0644))
		paths = append(paths, path)
	}
	return paths
}

func TestIntegrate(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	paths := writeFiles(t, tmpdir,
		"chr1\t0\t10\t0.50000\nchr1\t10\t20\t1.00000\nchr1\t20\t30\t0.00000\n",
		"chr1\t0\t10\t0.50000\nchr1\t10\t20\t0.25000\nchr1\t20\t30\t0.90000\n",
		"chr1\t0\t10\t0.40000\nchr1\t10\t20\t0.10000\n")
	outPath := filepath.Join(tmpdir, "out.bed")
	n, err := integrate.Integrate(ctx, outPath, paths)
	assert.NoError(t, err)
	expect.EQ(t, n, 2)
	got, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	expect.EQ(t, string(got), "chr1\t0\t10\t0.10000\nchr1\t10\t20\t0.02500\n")
}

func TestIntegrateErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()
	outPath := filepath.Join(tmpdir, "out.bed")

	tests := []struct {
		files []string
		want  error
	}{
		{[]string{"chr1\t0\t10\t0.5\n"}, integrate.ErrTooFewInputs},
		{[]string{"chr1\t0\t10\t0.5\n", "chr1\t0\t11\t0.5\n"}, integrate.ErrRegionMismatch},
		{[]string{"chr1\t0\t10\t0.5\n", "chr2\t0\t10\t0.5\n"}, integrate.ErrRegionMismatch},
		{[]string{"chr1\t0\t10\t0.5\n", "chr1\t0\t10\t1.5\n"}, integrate.ErrScoreRange},
		{[]string{"chr1\t0\t10\t-0.1\n", "chr1\t0\t10\t0.5\n"}, integrate.ErrScoreRange},
	}
	for i, test := range tests {
		paths := writeFiles(t, tmpdir, test.files...)
		_, err := integrate.Integrate(ctx, outPath, paths)
		expect.EQ(t, errors.Cause(err), test.want, "case %d: %v", i, err)
	}
}
