package inode

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/superblock"
)

// allocator tracks every data-block bit set during a Grow call so it can
// roll them back on a later failure, per §4.5.2's "on failure mid-growth"
// clause.
type allocator struct {
	bm       *bitmapfs.Bitmaps
	acquired []int
}

func (a *allocator) alloc() (uint32, error) {
	idx, err := a.bm.Search(bitmapfs.Data, false)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, &NoSpaceError{}
	}
	if err := a.bm.Set(bitmapfs.Data, idx, true); err != nil {
		return 0, err
	}
	a.acquired = append(a.acquired, idx)
	return uint32(idx), nil
}

// rollback clears every bit this allocator set, best-effort: a failure
// while rolling back is swallowed, since the original error is what the
// caller needs to see.
func (a *allocator) rollback() {
	for _, idx := range a.acquired {
		_ = a.bm.Set(bitmapfs.Data, idx, false)
	}
}

// Grow adds exactly one data block to the file described by inode number i,
// per §4.5.2, and returns the new block's logical index within the file
// (n, the value of BlocksFileSize before growth).
func Grow(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, i uint32, n *Inode) (uint32, error) {
	a := addressingOf(sb)
	grower := &allocator{bm: bm}

	blockIdx, err := growChain(dev, geom, sb, a, grower, n)
	if err != nil {
		grower.rollback()
		return 0, err
	}

	logical := n.BlocksFileSize
	n.BlocksFileSize++
	if err := Write(dev, geom, i, n); err != nil {
		grower.rollback()
		n.BlocksFileSize--
		return 0, &IOError{Op: "grow", Err: err}
	}
	return logical, nil
}

func growChain(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, a addressing, alloc *allocator, n *Inode) (uint32, error) {
	fileN := n.BlocksFileSize

	switch {
	case fileN < a.direct:
		d, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		n.DataPtr[fileN] = d
		return d, nil

	case fileN == a.direct:
		singleInd, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		d, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		buf := make([]byte, uint32(sb.BlockSize)*blockdev.SectorSize)
		putWordAt(buf, 0, d)
		if err := writeBlock(dev, geom, sb, singleInd, buf); err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		n.SingleIndPtr = singleInd
		return d, nil

	case fileN < a.direct+a.simple:
		d, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		buf, err := readBlock(dev, geom, sb, n.SingleIndPtr)
		if err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		putWordAt(buf, fileN-a.direct, d)
		if err := writeBlock(dev, geom, sb, n.SingleIndPtr, buf); err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		return d, nil

	case fileN == a.direct+a.simple:
		doubleInd, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		singleInd, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		d, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		singleBuf := make([]byte, uint32(sb.BlockSize)*blockdev.SectorSize)
		putWordAt(singleBuf, 0, d)
		if err := writeBlock(dev, geom, sb, singleInd, singleBuf); err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		doubleBuf := make([]byte, uint32(sb.BlockSize)*blockdev.SectorSize)
		putWordAt(doubleBuf, 0, singleInd)
		if err := writeBlock(dev, geom, sb, doubleInd, doubleBuf); err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		n.DoubleIndPtr = doubleInd
		return d, nil

	default:
		r := fileN - a.direct - a.simple
		doubleBuf, err := readBlock(dev, geom, sb, n.DoubleIndPtr)
		if err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		nestedWord := r / a.simple

		if r%a.simple == 0 {
			singleInd, err := alloc.alloc()
			if err != nil {
				return 0, err
			}
			d, err := alloc.alloc()
			if err != nil {
				return 0, err
			}
			singleBuf := make([]byte, uint32(sb.BlockSize)*blockdev.SectorSize)
			putWordAt(singleBuf, 0, d)
			if err := writeBlock(dev, geom, sb, singleInd, singleBuf); err != nil {
				return 0, &IOError{Op: "grow", Err: err}
			}
			putWordAt(doubleBuf, nestedWord, singleInd)
			if err := writeBlock(dev, geom, sb, n.DoubleIndPtr, doubleBuf); err != nil {
				return 0, &IOError{Op: "grow", Err: err}
			}
			return d, nil
		}

		singleInd := wordAt(doubleBuf, nestedWord)
		d, err := alloc.alloc()
		if err != nil {
			return 0, err
		}
		singleBuf, err := readBlock(dev, geom, sb, singleInd)
		if err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		putWordAt(singleBuf, r%a.simple, d)
		if err := writeBlock(dev, geom, sb, singleInd, singleBuf); err != nil {
			return 0, &IOError{Op: "grow", Err: err}
		}
		return d, nil
	}
}
