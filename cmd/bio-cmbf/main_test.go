package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		in      string
		wantDir string
	}{
		{"sample.bed", "sample_out"},
		{"/data/run1/sample.bed.gz", "/data/run1/sample_out"},
		{"depth", "depth_out"},
	}
	for _, test := range tests {
		assert.Equal(t, test.wantDir, defaultOutDir(test.in))
	}
	assert.Equal(t, "d/x_allChr.bed", allChromPath("d", "x", false))
	assert.Equal(t, "d/x_allChr.bed.gz", allChromPath("d", "x", true))
}
