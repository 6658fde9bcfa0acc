// Package openfile implements T2FS's open-file table and byte-granular
// random-access I/O (§4.7): a bounded table of open handles, each owning a
// directory record, a working copy of its inode, and a byte cursor.
//
// Modeled on the teacher's filesystem/ext4 File.Read/Write/Seek shape
// (offset bookkeeping, io.EOF at end, a sector-straddling copy loop),
// generalized to drive the inode engine's growth-on-write behavior instead
// of ext4's read-only extent walk.
package openfile

import (
	"io"

	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
)

// MaxOpenFiles is the fixed capacity of the open-file table.
const MaxOpenFiles = 10

// SeekToEnd is the sentinel offset meaning "seek to end of file".
const SeekToEnd = -1

// File is one entry of the open-file table.
type File struct {
	RecordIndex int
	Record      directory.Record
	Inode       inode.Inode
	InodeNumber uint32
	cursor      uint32
}

// Table is the fixed-capacity open-file table described in §5.
type Table struct {
	slots [MaxOpenFiles]*File
}

// NewTable returns an empty open-file table.
func NewTable() *Table {
	return &Table{}
}

// Open installs f into the first free slot and returns its handle, or fails
// if the table is already full.
func (t *Table) Open(f *File) (int, error) {
	for i, slot := range t.slots {
		if slot == nil {
			t.slots[i] = f
			return i, nil
		}
	}
	return -1, &TableFullError{}
}

// Close releases handle.
func (t *Table) Close(handle int) error {
	if _, err := t.lookup(handle); err != nil {
		return err
	}
	t.slots[handle] = nil
	return nil
}

// Get returns the File installed at handle.
func (t *Table) Get(handle int) (*File, error) {
	return t.lookup(handle)
}

func (t *Table) lookup(handle int) (*File, error) {
	if handle < 0 || handle >= MaxOpenFiles || t.slots[handle] == nil {
		return nil, &InvalidHandleError{Handle: handle}
	}
	return t.slots[handle], nil
}

// Read reads up to len(buf) bytes from handle's current cursor, advancing
// it. Returns io.EOF once the cursor reaches the end of the file, matching
// the teacher's ext4 File.Read convention.
func (t *Table) Read(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, handle int, buf []byte) (int, error) {
	f, err := t.lookup(handle)
	if err != nil {
		return 0, err
	}
	if f.cursor >= f.Inode.BytesFileSize {
		return 0, io.EOF
	}
	n, err := inode.ReadAt(dev, geom, sb, &f.Inode, f.cursor, buf)
	if err != nil {
		return n, err
	}
	f.cursor += uint32(n)
	var retErr error
	if f.cursor >= f.Inode.BytesFileSize {
		retErr = io.EOF
	}
	return n, retErr
}

// Write writes len(buf) bytes at handle's current cursor, growing the
// underlying inode as needed, and advances the cursor.
func (t *Table) Write(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, handle int, buf []byte) (int, error) {
	f, err := t.lookup(handle)
	if err != nil {
		return 0, err
	}
	n, err := inode.WriteAt(dev, bm, geom, sb, f.InodeNumber, &f.Inode, f.cursor, buf)
	f.cursor += uint32(n)
	return n, err
}

// Seek repositions handle's cursor, per io.Seeker semantics, plus the
// SeekToEnd sentinel as an alias for io.SeekEnd with a zero offset.
func (t *Table) Seek(handle int, offset int64, whence int) (int64, error) {
	f, err := t.lookup(handle)
	if err != nil {
		return 0, err
	}
	if offset == SeekToEnd {
		f.cursor = f.Inode.BytesFileSize
		return int64(f.cursor), nil
	}

	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = int64(f.cursor) + offset
	case io.SeekEnd:
		newOffset = int64(f.Inode.BytesFileSize) + offset
	}
	if newOffset < 0 {
		return int64(f.cursor), &InvalidOffsetError{Offset: newOffset}
	}
	f.cursor = uint32(newOffset)
	return newOffset, nil
}
