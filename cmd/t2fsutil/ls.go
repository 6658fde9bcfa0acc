package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/directory"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls PATH",
		Short: "List the files in the root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, storage, err := openMounted(args[0], getPartitionFlag(cmd))
			if err != nil {
				return err
			}
			defer closeQuiet(storage)

			if err := fsys.Opendir(); err != nil {
				return err
			}
			for {
				rec, err := fsys.Readdir()
				if err != nil {
					var eod *directory.EndOfDirectoryError
					if errors.As(err, &eod) {
						break
					}
					return err
				}
				kind := "f"
				if rec.TypeVal == directory.Dir {
					kind = "d"
				}
				fmt.Printf("%s %8d bytes  %s\n", kind, rec.BytesFileSize, rec.Name)
			}
			return fsys.Closedir()
		},
	}
	return partitionFlag(cmd)
}
