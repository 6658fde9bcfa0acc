package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/fs"
	"github.com/t2fs-go/t2fs/mbr"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create PATH SIZE",
		Short: "Create a new zero-filled disk image with a single whole-device partition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizeBytes, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[1], err)
			}
			storage, err := blockdev.CreateImage(args[0], sizeBytes)
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer closeQuiet(storage)

			totalSectors := uint32(sizeBytes / blockdev.SectorSize)
			if totalSectors < 2 {
				return fmt.Errorf("image too small: need at least 2 sectors, got %d", totalSectors)
			}
			table := mbr.NewTable()
			if err := table.SetPartition(0, mbr.Partition{
				FirstSector: 1,
				LastSector:  totalSectors - 1,
				Name:        "t2fs",
			}); err != nil {
				return err
			}
			if err := fs.InitMBR(storage, table); err != nil {
				return fmt.Errorf("write MBR: %w", err)
			}
			log.Infof("created %s: %d bytes, partition 0 spans sectors 1-%d", args[0], sizeBytes, totalSectors-1)
			return nil
		},
	}
	return cmd
}
