package main

import "github.com/grailbio/cmbf/cmd/bio-cmbf-tool/cmd"

func main() {
	cmd.Run()
}
