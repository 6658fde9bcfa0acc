package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat PATH NAME",
		Short: "Print a file's contents to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, storage, err := openMounted(args[0], getPartitionFlag(cmd))
			if err != nil {
				return err
			}
			defer closeQuiet(storage)

			handle, err := fsys.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer fsys.Close(handle)

			buf := make([]byte, 4096)
			for {
				n, err := fsys.Read(handle, buf)
				if n > 0 {
					if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
						return werr
					}
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
			}
		},
	}
	return partitionFlag(cmd)
}
