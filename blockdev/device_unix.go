//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package blockdev

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DeviceGeometry queries the logical sector size and total size in bytes of
// a real block device via ioctl, the way disk_unix.go queries BLKSSZGET and
// BLKBSZGET for partition table re-reads. Regular disk image files do not
// support these ioctls; callers fall back to os.Stat for those.
func DeviceGeometry(f *os.File) (sectorSize int, sizeBytes int64, err error) {
	fd := int(f.Fd())
	sectorSize, err = unix.IoctlGetInt(fd, unix.BLKSSZGET)
	if err != nil {
		return 0, 0, fmt.Errorf("blockdev: BLKSSZGET: %w", err)
	}
	size, err := unix.IoctlGetUint64(fd, unix.BLKGETSIZE64)
	if err != nil {
		return 0, 0, fmt.Errorf("blockdev: BLKGETSIZE64: %w", err)
	}
	return sectorSize, int64(size), nil
}

// ReReadPartitionTable asks the kernel to re-read the partition table of a
// real block device after it has been (re)written. It is a no-op for
// regular disk image files.
func ReReadPartitionTable(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeDevice == 0 {
		return nil
	}
	_, err = unix.IoctlGetInt(int(f.Fd()), unix.BLKRRPART)
	if err != nil {
		return fmt.Errorf("blockdev: re-read partition table: %w", err)
	}
	return nil
}
