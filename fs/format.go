package fs

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
)

// Format lays out a fresh superblock and zeroed bitmaps on partition index,
// per §4.2, then immediately bootstraps the root directory, per §4.3 — the
// combined effect of a real mkfs tool. A partition must be formatted before
// it can be mounted.
func (f *FileSystem) Format(partitionIndex int, sectorsPerBlock uint16) error {
	dev, p, err := f.partitionDevice(partitionIndex)
	if err != nil {
		return err
	}

	sb, err := superblock.Compute(p.Sectors(), sectorsPerBlock)
	if err != nil {
		return &IOError{Op: "format", Err: err}
	}
	if err := sb.Write(dev); err != nil {
		return &IOError{Op: "format", Err: err}
	}
	if err := dev.ZeroSectors(1, uint32(sb.SuperblockSize)*uint32(sb.BlockSize)-1); err != nil {
		return &IOError{Op: "format", Err: err}
	}

	geom := sb.Geometry()
	bitmapSectors := (uint32(sb.FreeBlocksBitmapSize) + uint32(sb.FreeInodeBitmapSize)) * uint32(sb.BlockSize)
	if err := dev.ZeroSectors(geom.BlockBitmapStart, bitmapSectors); err != nil {
		return &IOError{Op: "format", Err: err}
	}

	f.log.Infof("formatted partition %d: %d blocks, %d inodes", partitionIndex, sb.DiskSize, geom.InodeCount)

	bm, err := bitmapfs.Open(dev, sb)
	if err != nil {
		return &IOError{Op: "format", Err: err}
	}
	defer bm.Close()
	return createRootFolder(dev, bm, geom, sb)
}

// createRootFolder implements §4.3: writes the root inode, zeroes its first
// data block, and marks bit 0 live in both bitmaps, rolling back the inode
// bit if the data bit cannot be written.
func createRootFolder(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock) error {
	alreadyUsed, err := bm.Get(bitmapfs.Inode, directory.RootInode)
	if err != nil {
		return &IOError{Op: "create_root_folder", Err: err}
	}
	if alreadyUsed {
		return &AlreadyFormattedError{}
	}

	root := &inode.Inode{
		BlocksFileSize: 1,
		BytesFileSize:  0,
		DataPtr:        [inode.Direct]uint32{0, 0},
	}
	if err := inode.Write(dev, geom, directory.RootInode, root); err != nil {
		return &IOError{Op: "create_root_folder", Err: err}
	}

	zero := make([]byte, blockdev.SectorSize)
	for s := uint32(0); s < uint32(sb.BlockSize); s++ {
		if err := dev.WriteSector(geom.DataAreaStart+s, zero); err != nil {
			return &IOError{Op: "create_root_folder", Err: err}
		}
	}

	if err := bm.Set(bitmapfs.Inode, directory.RootInode, true); err != nil {
		return &IOError{Op: "create_root_folder", Err: err}
	}
	if err := bm.Set(bitmapfs.Data, 0, true); err != nil {
		_ = bm.Set(bitmapfs.Inode, directory.RootInode, false)
		return &IOError{Op: "create_root_folder", Err: err}
	}
	return nil
}
