// Package fs is T2FS's public façade (§6.3): it owns the process-wide state
// §5 describes — the loaded MBR, an optional mounted partition, the root
// directory cursor, and the bounded open-file table — as fields of one
// struct, and drives the lower layers (mbr, superblock, bitmapfs, inode,
// directory, openfile) to implement format/mount/create/delete/open/close/
// read/write/seek/opendir/readdir/closedir.
//
// Modeled on the teacher's disk.Disk / CreateFilesystem dispatch shape,
// generalized from "create one of several filesystem formats on a
// partition" down to "mount the one format this repo understands".
package fs

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/internal/t2log"
	"github.com/t2fs-go/t2fs/mbr"
	"github.com/t2fs-go/t2fs/openfile"
	"github.com/t2fs-go/t2fs/superblock"
)

// mount is the state materialized by Mount and released by Umount.
type mount struct {
	partitionIndex int
	dev            *blockdev.Device
	sb             *superblock.Superblock
	geom           superblock.Geometry
	bm             *bitmapfs.Bitmaps
	root           *inode.Inode
}

// FileSystem is a single open T2FS image or block device: the MBR lives for
// its lifetime, a partition may be mounted and unmounted any number of
// times, and it owns one bounded open-file table and one root-directory
// cursor, per §5.
type FileSystem struct {
	storage blockdev.Storage
	dev     *blockdev.Device
	table   *mbr.Table

	mounted *mount
	dir     *directory.Directory
	files   *openfile.Table

	log *t2log.Logger
}

// New loads the MBR from storage once, per §3's "the MBR is read once at
// initialization and never modified by the core".
func New(storage blockdev.Storage) (*FileSystem, error) {
	dev := blockdev.New(storage)
	table, err := mbr.Read(dev)
	if err != nil {
		return nil, err
	}
	return &FileSystem{
		storage: storage,
		dev:     dev,
		table:   table,
		files:   openfile.NewTable(),
		log:     t2log.Default(),
	}, nil
}

// InitMBR writes a fresh partition table to the image, for tooling that
// builds a new disk image from scratch (the core itself never writes the
// MBR).
func InitMBR(storage blockdev.Storage, table *mbr.Table) error {
	return table.Write(blockdev.New(storage))
}

// Table returns the loaded MBR partition table.
func (f *FileSystem) Table() *mbr.Table {
	return f.table
}

func (f *FileSystem) partitionDevice(index int) (*blockdev.Device, *mbr.Partition, error) {
	p, err := f.table.GetPartition(index)
	if err != nil {
		return nil, nil, err
	}
	return blockdev.NewPartition(f.storage, p.FirstSector, p.Sectors()), &p, nil
}

func (f *FileSystem) requireMounted() (*mount, error) {
	if f.mounted == nil {
		return nil, &NotMountedError{}
	}
	return f.mounted, nil
}

func (f *FileSystem) requireRootOpened() error {
	if f.dir == nil {
		return &RootNotOpenedError{}
	}
	return nil
}
