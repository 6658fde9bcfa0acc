package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t2fs-go/t2fs/blockdev"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump PATH",
		Short: "Hex-dump a sector range of the raw image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startSector, _ := cmd.Flags().GetUint32("sector")
			count, _ := cmd.Flags().GetUint32("count")
			if count == 0 {
				count = 1
			}

			storage, err := blockdev.OpenImage(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer closeQuiet(storage)
			dev := blockdev.New(storage)

			buf := make([]byte, blockdev.SectorSize)
			raw := make([]byte, 0, int(count)*blockdev.SectorSize)
			for s := uint32(0); s < count; s++ {
				if err := dev.ReadSector(startSector+s, buf); err != nil {
					return fmt.Errorf("read sector %d: %w", startSector+s, err)
				}
				raw = append(raw, buf...)
			}

			fmt.Print(dumpHex(raw, 16))
			return nil
		},
	}
	cmd.Flags().Uint32("sector", 0, "first sector to dump")
	cmd.Flags().Uint32("count", 1, "number of sectors to dump")
	return cmd
}

// dumpHex renders b as xxd-style rows: an 8-digit hex offset, the bytes in
// hex, and their ASCII representation (unprintable bytes shown as '.').
func dumpHex(b []byte, bytesPerRow int) string {
	var out string
	var ascii []byte
	numRows := len(b) / bytesPerRow
	if len(b)%bytesPerRow != 0 {
		numRows++
	}
	for i := 0; i < numRows; i++ {
		firstByte := i * bytesPerRow
		lastByte := firstByte + bytesPerRow
		row := fmt.Sprintf("%08x : ", firstByte)
		for j := firstByte; j < lastByte; j++ {
			if j%8 == 0 {
				row += " "
			}
			if j < len(b) {
				row += fmt.Sprintf(" %02x", b[j])
			} else {
				row += "   "
			}
			switch {
			case j >= len(b):
				ascii = append(ascii, ' ')
			case b[j] < 32 || b[j] > 126:
				ascii = append(ascii, '.')
			default:
				ascii = append(ascii, b[j])
			}
		}
		row += fmt.Sprintf("  %s\n", string(ascii))
		ascii = ascii[:0]
		out += row
	}
	return out
}
