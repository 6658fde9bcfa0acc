package fs

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
)

// Mount materializes the superblock, bitmaps, and root inode of partition
// index, making file and directory operations available until Umount.
func (f *FileSystem) Mount(partitionIndex int) error {
	dev, _, err := f.partitionDevice(partitionIndex)
	if err != nil {
		return err
	}
	sb, err := superblock.Read(dev)
	if err != nil {
		return &IOError{Op: "mount", Err: err}
	}
	geom := sb.Geometry()
	bm, err := bitmapfs.Open(dev, sb)
	if err != nil {
		return &IOError{Op: "mount", Err: err}
	}
	root, err := inode.Read(dev, geom, directory.RootInode)
	if err != nil {
		_ = bm.Close()
		return &IOError{Op: "mount", Err: err}
	}

	f.mounted = &mount{
		partitionIndex: partitionIndex,
		dev:            dev,
		sb:             sb,
		geom:           geom,
		bm:             bm,
		root:           root,
	}
	f.log.Infof("mounted partition %d", partitionIndex)
	return nil
}

// Umount releases the mounted partition's state. It is a no-op error if
// nothing is mounted.
func (f *FileSystem) Umount() error {
	m, err := f.requireMounted()
	if err != nil {
		return err
	}
	if err := m.bm.Close(); err != nil {
		return &IOError{Op: "umount", Err: err}
	}
	f.mounted = nil
	f.dir = nil
	f.log.Infof("unmounted partition %d", m.partitionIndex)
	return nil
}
