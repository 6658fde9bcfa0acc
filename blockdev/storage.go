package blockdev

import (
	"fmt"
	"io/fs"
	"os"
)

// Storage is the narrow byte-addressable interface blockdev needs from
// whatever holds the actual bytes of a T2FS image: random-access reads and
// writes plus a size. Unlike a general-purpose storage abstraction, T2FS
// never seeks or streams a sector device sequentially, so Storage carries
// only ReadAt/WriteAt/Stat/Close.
type Storage interface {
	Stat() (fs.FileInfo, error)
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Close() error
}

// fileStorage backs a Storage with a real *os.File, either a disk image or
// a block device special file.
type fileStorage struct {
	f *os.File
}

// OpenImage opens an existing disk image file (or block device special
// file) read-write and wraps it as a Storage.
func OpenImage(path string) (Storage, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("blockdev: %s does not exist: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("blockdev: open %s: %w", path, err)
	}
	return &fileStorage{f: f}, nil
}

// CreateImage creates a new, zero-filled disk image file of the given size
// in bytes.
func CreateImage(path string, sizeBytes int64) (Storage, error) {
	if sizeBytes <= 0 {
		return nil, fmt.Errorf("blockdev: invalid image size %d", sizeBytes)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, fmt.Errorf("blockdev: create %s: %w", path, err)
	}
	if err := f.Truncate(sizeBytes); err != nil {
		return nil, fmt.Errorf("blockdev: truncate %s to %d bytes: %w", path, sizeBytes, err)
	}
	return &fileStorage{f: f}, nil
}

func (s *fileStorage) Stat() (fs.FileInfo, error) { return s.f.Stat() }
func (s *fileStorage) Close() error               { return s.f.Close() }

func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileStorage) WriteAt(p []byte, off int64) (int, error) {
	return s.f.WriteAt(p, off)
}

// Sys returns the underlying *os.File, for callers that need a real file
// descriptor (e.g. SizeOf's block-device size ioctl).
func (s *fileStorage) Sys() (*os.File, error) {
	return s.f, nil
}

// SizeOf reports how many bytes the backing file or device spans, preferring
// the unix block-device ioctl when the storage is backed by a real device
// special file and falling back to a plain stat for disk images.
func SizeOf(storage Storage) (int64, error) {
	info, err := storage.Stat()
	if err != nil {
		return 0, fmt.Errorf("blockdev: stat: %w", err)
	}
	if info.Mode()&os.ModeDevice == 0 {
		return info.Size(), nil
	}
	sysFile, ok := storage.(interface{ Sys() (*os.File, error) })
	if !ok {
		return info.Size(), nil
	}
	osFile, err := sysFile.Sys()
	if err != nil {
		return info.Size(), nil //nolint:nilerr // not every backend exposes an *os.File; fall back to Stat's size
	}
	_, sizeBytes, err := DeviceGeometry(osFile)
	if err != nil {
		return info.Size(), nil //nolint:nilerr // ioctl unsupported (e.g. not a real block device); fall back
	}
	return sizeBytes, nil
}
