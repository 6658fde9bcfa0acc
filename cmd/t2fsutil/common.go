package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/fs"
)

// openMounted opens the image at path, mounts partition, and returns a
// FileSystem ready for file/directory operations plus the underlying
// storage so the caller can Close it when done.
func openMounted(path string, partition int) (*fs.FileSystem, blockdev.Storage, error) {
	storage, err := blockdev.OpenImage(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	fsys, err := fs.New(storage)
	if err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("read MBR: %w", err)
	}
	if err := fsys.Mount(partition); err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("mount partition %d: %w", partition, err)
	}
	return fsys, storage, nil
}

func closeQuiet(storage blockdev.Storage) {
	_ = storage.Close()
}

func partitionFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().IntP("partition", "p", 0, "partition index (0-3)")
	return cmd
}

func getPartitionFlag(cmd *cobra.Command) int {
	p, _ := cmd.Flags().GetInt("partition")
	return p
}
