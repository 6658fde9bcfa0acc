// Package blockdev provides the sector-level block device adapter that the
// rest of T2FS is built on: fixed-size sector reads and writes against a
// Storage, with no knowledge of bitmaps or inodes. A Device can also be
// scoped to a single partition's sector range, so the rest of the stack
// never has to translate partition-relative LBAs itself.
package blockdev

import "fmt"

// SectorSize is the fixed size, in bytes, of every sector on a T2FS device.
const SectorSize = 256

// Device is a sector-addressable view of a Storage. A whole-device Device
// (built with New) addresses every sector the storage holds; a
// partition-scoped Device (built with NewPartition) shifts LBA 0 to the
// partition's first sector and rejects LBAs past its last one.
type Device struct {
	storage      Storage
	sectorOffset uint32
	sectorCount  uint32 // 0 means unbounded (whole-device Device)
}

// New wraps a Storage as a whole-device sector device.
func New(storage Storage) *Device {
	return &Device{storage: storage}
}

// NewPartition wraps a Storage as a sector device scoped to one partition:
// LBA 0 is firstSector of storage, and LBAs at or past sectorCount are
// rejected.
func NewPartition(storage Storage, firstSector, sectorCount uint32) *Device {
	return &Device{storage: storage, sectorOffset: firstSector, sectorCount: sectorCount}
}

func (d *Device) absolute(lba uint32) (int64, error) {
	if d.sectorCount != 0 && lba >= d.sectorCount {
		return 0, fmt.Errorf("blockdev: sector %d is past the end of a %d-sector partition", lba, d.sectorCount)
	}
	return int64(d.sectorOffset+lba) * SectorSize, nil
}

// ReadSector reads exactly SectorSize bytes at lba into buf.
func (d *Device) ReadSector(lba uint32, buf []byte) error {
	if len(buf) != SectorSize {
		return fmt.Errorf("blockdev: buffer must be exactly %d bytes, got %d", SectorSize, len(buf))
	}
	offset, err := d.absolute(lba)
	if err != nil {
		return err
	}
	n, err := d.storage.ReadAt(buf, offset)
	if err != nil {
		return fmt.Errorf("blockdev: read sector %d: %w", lba, err)
	}
	if n != SectorSize {
		return fmt.Errorf("blockdev: short read of sector %d: got %d bytes", lba, n)
	}
	return nil
}

// WriteSector writes exactly SectorSize bytes from buf at lba.
func (d *Device) WriteSector(lba uint32, buf []byte) error {
	if len(buf) != SectorSize {
		return fmt.Errorf("blockdev: buffer must be exactly %d bytes, got %d", SectorSize, len(buf))
	}
	offset, err := d.absolute(lba)
	if err != nil {
		return err
	}
	n, err := d.storage.WriteAt(buf, offset)
	if err != nil {
		return fmt.Errorf("blockdev: write sector %d: %w", lba, err)
	}
	if n != SectorSize {
		return fmt.Errorf("blockdev: short write of sector %d: wrote %d bytes", lba, n)
	}
	return nil
}

// ZeroSectors writes SectorSize zero bytes to each of count sectors starting
// at lba. Used by format to blank the bitmap regions and superblock padding.
func (d *Device) ZeroSectors(lba uint32, count uint32) error {
	zero := make([]byte, SectorSize)
	for i := uint32(0); i < count; i++ {
		if err := d.WriteSector(lba+i, zero); err != nil {
			return err
		}
	}
	return nil
}
