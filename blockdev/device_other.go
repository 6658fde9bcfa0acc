//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)
// +build !aix,!darwin,!dragonfly,!freebsd,!linux,!netbsd,!openbsd,!solaris

package blockdev

import (
	"errors"
	"os"
)

// DeviceGeometry is unsupported outside unix; T2FS falls back to disk image
// files (sized via os.Stat) on these platforms.
func DeviceGeometry(f *os.File) (sectorSize int, sizeBytes int64, err error) {
	return 0, 0, errors.New("blockdev: device geometry ioctls are not supported on this platform")
}

// ReReadPartitionTable is a no-op outside unix.
func ReReadPartitionTable(f *os.File) error {
	return nil
}
