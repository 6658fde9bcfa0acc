package fs

import (
	"io"

	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/openfile"
)

// Create makes a new empty regular file in the root directory and returns
// an open handle to it.
func (f *FileSystem) Create(name string) (int, error) {
	m, err := f.requireMounted()
	if err != nil {
		return -1, err
	}

	inodeNum, err := m.bm.Search(bitmapfs.Inode, false)
	if err != nil {
		return -1, &IOError{Op: "create", Err: err}
	}
	if inodeNum < 0 {
		f.log.Warnf("create %s: inode bitmap exhausted", name)
		return -1, &inode.NoSpaceError{}
	}
	if err := m.bm.Set(bitmapfs.Inode, inodeNum, true); err != nil {
		return -1, &IOError{Op: "create", Err: err}
	}

	newInode := &inode.Inode{}
	if err := inode.Write(m.dev, m.geom, uint32(inodeNum), newInode); err != nil {
		_ = m.bm.Set(bitmapfs.Inode, inodeNum, false)
		return -1, &IOError{Op: "create", Err: err}
	}

	rec := &directory.Record{TypeVal: directory.Regular, Name: name, InodeNumber: uint32(inodeNum)}
	recIdx, err := directory.Insert(m.dev, m.bm, m.geom, m.sb, m.root, rec)
	if err != nil {
		_ = m.bm.Set(bitmapfs.Inode, inodeNum, false)
		return -1, err
	}

	return f.files.Open(&openfile.File{
		RecordIndex: recIdx,
		Record:      *rec,
		Inode:       *newInode,
		InodeNumber: uint32(inodeNum),
	})
}

// Delete removes name from the root directory and reclaims its inode and
// data blocks.
func (f *FileSystem) Delete(name string) error {
	m, err := f.requireMounted()
	if err != nil {
		return err
	}
	rec, idx, err := directory.RecordByName(m.dev, m.geom, m.sb, m.root, name)
	if err != nil {
		return err
	}

	n, err := inode.Read(m.dev, m.geom, rec.InodeNumber)
	if err != nil {
		return &IOError{Op: "delete", Err: err}
	}
	if err := inode.Clear(m.dev, m.bm, m.geom, m.sb, n); err != nil {
		return err
	}
	if err := m.bm.Set(bitmapfs.Inode, int(rec.InodeNumber), false); err != nil {
		return &IOError{Op: "delete", Err: err}
	}
	return directory.MarkInvalid(m.dev, m.bm, m.geom, m.sb, m.root, idx)
}

// Open opens name for reading and writing and returns a handle.
func (f *FileSystem) Open(name string) (int, error) {
	m, err := f.requireMounted()
	if err != nil {
		return -1, err
	}
	rec, idx, err := directory.RecordByName(m.dev, m.geom, m.sb, m.root, name)
	if err != nil {
		return -1, err
	}
	n, err := inode.Read(m.dev, m.geom, rec.InodeNumber)
	if err != nil {
		return -1, &IOError{Op: "open", Err: err}
	}
	return f.files.Open(&openfile.File{
		RecordIndex: idx,
		Record:      *rec,
		Inode:       *n,
		InodeNumber: rec.InodeNumber,
	})
}

// Close releases handle.
func (f *FileSystem) Close(handle int) error {
	return f.files.Close(handle)
}

// Read reads up to len(buf) bytes from handle. It returns io.EOF only when
// no bytes are read because the cursor is already at the end of the file.
func (f *FileSystem) Read(handle int, buf []byte) (int, error) {
	m, err := f.requireMounted()
	if err != nil {
		return 0, err
	}
	n, err := f.files.Read(m.dev, m.geom, m.sb, handle, buf)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Write writes len(buf) bytes to handle.
func (f *FileSystem) Write(handle int, buf []byte) (int, error) {
	m, err := f.requireMounted()
	if err != nil {
		return 0, err
	}
	n, err := f.files.Write(m.dev, m.bm, m.geom, m.sb, handle, buf)
	if _, ok := err.(*inode.NoSpaceError); ok {
		f.log.Warnf("write handle %d: data bitmap exhausted after %d of %d bytes", handle, n, len(buf))
	}
	return n, err
}

// Seek repositions handle's cursor. offset is absolute; openfile.SeekToEnd
// seeks to the end of the file.
func (f *FileSystem) Seek(handle int, offset int64) (int64, error) {
	if _, err := f.requireMounted(); err != nil {
		return 0, err
	}
	if offset == openfile.SeekToEnd {
		return f.files.Seek(handle, openfile.SeekToEnd, 0)
	}
	return f.files.Seek(handle, offset, 0)
}
