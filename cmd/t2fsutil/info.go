package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/fs"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info PATH",
		Short: "Print a partition's superblock and derived geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partition := getPartitionFlag(cmd)

			storage, err := blockdev.OpenImage(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer closeQuiet(storage)

			fsys, err := fs.New(storage)
			if err != nil {
				return fmt.Errorf("read MBR: %w", err)
			}
			sb, geom, err := fsys.PartitionInfo(partition)
			if err != nil {
				return fmt.Errorf("read superblock for partition %d: %w", partition, err)
			}
			fmt.Printf("volume UUID:            %s\n", fsys.Table().VolumeUUID)
			fmt.Printf("partition:              %d\n", partition)
			fmt.Printf("block size (sectors):   %d\n", sb.BlockSize)
			fmt.Printf("disk size (blocks):     %d\n", sb.DiskSize)
			fmt.Printf("inode area (blocks):    %d\n", sb.InodeAreaSize)
			fmt.Printf("inode count:            %d\n", geom.InodeCount)
			fmt.Printf("free inode bitmap:      %d block(s) at sector %d\n", sb.FreeInodeBitmapSize, geom.InodeBitmapStart)
			fmt.Printf("free block bitmap:      %d block(s) at sector %d\n", sb.FreeBlocksBitmapSize, geom.BlockBitmapStart)
			fmt.Printf("inode table starts:     sector %d\n", geom.InodeTableStart)
			fmt.Printf("data area starts:       sector %d\n", geom.DataAreaStart)
			fmt.Printf("data area (blocks):     %d\n", geom.DataAreaBlocks)
			return nil
		},
	}
	return partitionFlag(cmd)
}
