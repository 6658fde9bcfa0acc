package inode

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/superblock"
)

// Clear reclaims every data block (and, unlike the original source, every
// indirection block) referenced by n, per §4.5.3.
func Clear(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, n *Inode) error {
	a := addressingOf(sb)
	remaining := n.BlocksFileSize

	direct := remaining
	if direct > a.direct {
		direct = a.direct
	}
	for i := uint32(0); i < direct; i++ {
		if err := free(bm, n.DataPtr[i]); err != nil {
			return err
		}
	}
	if remaining <= a.direct {
		return nil
	}
	remaining -= a.direct

	single := remaining
	if single > a.simple {
		single = a.simple
	}
	if err := clearSingleIndirect(dev, bm, geom, sb, n.SingleIndPtr, single); err != nil {
		return err
	}
	if remaining <= a.simple {
		return nil
	}
	remaining -= a.simple

	doubleBuf, err := readBlock(dev, geom, sb, n.DoubleIndPtr)
	if err != nil {
		return &IOError{Op: "clear", Err: err}
	}
	nestedCount := (remaining + a.simple - 1) / a.simple
	for j := uint32(0); j < nestedCount; j++ {
		count := remaining - j*a.simple
		if count > a.simple {
			count = a.simple
		}
		nestedPtr := wordAt(doubleBuf, j)
		if err := clearSingleIndirect(dev, bm, geom, sb, nestedPtr, count); err != nil {
			return err
		}
	}
	return free(bm, n.DoubleIndPtr)
}

func clearSingleIndirect(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, singleInd uint32, count uint32) error {
	single, err := readBlock(dev, geom, sb, singleInd)
	if err != nil {
		return &IOError{Op: "clear", Err: err}
	}
	for i := uint32(0); i < count; i++ {
		if err := free(bm, wordAt(single, i)); err != nil {
			return err
		}
	}
	return free(bm, singleInd)
}

func free(bm *bitmapfs.Bitmaps, blockIndex uint32) error {
	if err := bm.Set(bitmapfs.Data, int(blockIndex), false); err != nil {
		return &IOError{Op: "clear", Err: err}
	}
	return nil
}
