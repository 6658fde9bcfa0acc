// Package testhelper provides fakes for injecting I/O failures into tests
// that exercise the blockdev.Storage interface, without needing a real file
// or block device.
package testhelper

import (
	"io/fs"
	"time"

	"github.com/t2fs-go/t2fs/blockdev"
)

type reader func(b []byte, offset int64) (int, error)
type writer func(b []byte, offset int64) (int, error)

// FileImpl implements blockdev.Storage, used by tests to stub out the
// backing storage and inject read/write errors at chosen offsets.
type FileImpl struct {
	Reader reader
	Writer writer
	Size   int64
}

var _ blockdev.Storage = (*FileImpl)(nil)

func (f *FileImpl) Stat() (fs.FileInfo, error) {
	return &statImpl{size: f.Size}, nil
}

func (f *FileImpl) Close() error {
	return nil
}

// ReadAt reads at a particular offset.
func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) {
	return f.Reader(b, offset)
}

// WriteAt writes at a particular offset.
func (f *FileImpl) WriteAt(b []byte, offset int64) (int, error) {
	return f.Writer(b, offset)
}

type statImpl struct {
	size int64
}

func (s *statImpl) Name() string       { return "testhelper.FileImpl" }
func (s *statImpl) Size() int64        { return s.size }
func (s *statImpl) Mode() fs.FileMode  { return 0o644 }
func (s *statImpl) ModTime() time.Time { return time.Time{} }
func (s *statImpl) IsDir() bool        { return false }
func (s *statImpl) Sys() interface{}   { return nil }
