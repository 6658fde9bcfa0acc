package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/fs"
)

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format PATH",
		Short: "Format a partition with a fresh superblock and root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition := getPartitionFlag(cmd)
			blockSize, _ := cmd.Flags().GetUint16("block-size")

			storage, err := blockdev.OpenImage(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer closeQuiet(storage)

			fsys, err := fs.New(storage)
			if err != nil {
				return fmt.Errorf("read MBR: %w", err)
			}
			if err := fsys.Format(partition, blockSize); err != nil {
				return fmt.Errorf("format partition %d: %w", partition, err)
			}
			log.Infof("formatted partition %d with block size %d", partition, blockSize)
			return nil
		},
	}
	partitionFlag(cmd)
	cmd.Flags().Uint16("block-size", 1, "sectors per block")
	return cmd
}
