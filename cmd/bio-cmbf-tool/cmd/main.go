package cmd

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/cmbf/integrate"
	"v.io/x/lib/cmdline"
)

func newCmdIntegrate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "integrate",
		Short: `Multiply the scores of several score files row by row.
All inputs must list the same intervals in the same order.`,
		ArgsName: "outpath inpath inpath...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 3 {
			return fmt.Errorf("integrate takes an output path and at least two input paths, but got %v", argv)
		}
		_, err := integrate.Integrate(vcontext.Background(), argv[0], argv[1:])
		return err
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of a score file.
The checksum is a JSON string summarizing the rows of each chromosome`,
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes a path, but found %v", argv)
		}
		return checksum(env.Stdout, argv[0])
	})
	return cmd
}

// Run runs the bio-cmbf-tool command line.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-cmbf-tool",
			Short:    "Tools for working with cMBF score files",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdIntegrate(),
				newCmdChecksum(),
			},
		})
}
