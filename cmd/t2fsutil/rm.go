package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm PATH NAME",
		Short: "Delete a file from the root directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, storage, err := openMounted(args[0], getPartitionFlag(cmd))
			if err != nil {
				return err
			}
			defer closeQuiet(storage)

			if err := fsys.Delete(args[1]); err != nil {
				return fmt.Errorf("delete %s: %w", args[1], err)
			}
			log.Infof("deleted %s", args[1])
			return nil
		},
	}
	return partitionFlag(cmd)
}
