// Command t2fsutil is a small command-line client for creating, formatting,
// and inspecting T2FS disk images, in the spirit of the teacher's own
// cmd-line debugging helpers for disk images.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func main() {
	root := &cobra.Command{
		Use:   "t2fsutil",
		Short: "Inspect and manipulate T2FS disk images",
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	}

	root.AddCommand(
		newCreateCmd(),
		newFormatCmd(),
		newInfoCmd(),
		newLsCmd(),
		newCatCmd(),
		newWriteCmd(),
		newRmCmd(),
		newDumpCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
