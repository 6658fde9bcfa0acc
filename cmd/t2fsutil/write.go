package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write PATH NAME LOCAL_FILE",
		Short: "Create NAME and write LOCAL_FILE's contents into it (use - for stdin)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, storage, err := openMounted(args[0], getPartitionFlag(cmd))
			if err != nil {
				return err
			}
			defer closeQuiet(storage)

			src := os.Stdin
			if args[2] != "-" {
				f, err := os.Open(args[2])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[2], err)
				}
				defer f.Close()
				src = f
			}
			data, err := io.ReadAll(src)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[2], err)
			}

			handle, err := fsys.Create(args[1])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[1], err)
			}
			defer fsys.Close(handle)

			if _, err := fsys.Write(handle, data); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			log.Infof("wrote %d bytes to %s", len(data), args[1])
			return nil
		},
	}
	return partitionFlag(cmd)
}
