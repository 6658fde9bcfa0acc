// Package superblock implements T2FS's per-partition superblock: its
// byte-exact on-disk layout (§3 of the specification), the checksum that
// guards it, and the pure arithmetic that derives the rest of the
// partition's region layout (§4.1) from it.
//
// Modeled on the teacher's filesystem/ext4 superblock handling
// (encoding/binary field-by-field parsing of a fixed byte layout), generalized
// to T2FS's much smaller 24-byte meaningful prefix.
package superblock

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/t2fs-go/t2fs/blockdev"
)

// SectorSize is the size of a superblock sector.
const SectorSize = blockdev.SectorSize

// Magic is the 4-byte ASCII identifier stamped at the start of the
// superblock.
const Magic = "T2FS"

// Version is the fixed on-disk version number.
const Version uint16 = 0x7E32

const (
	offsetID                   = 0
	offsetVersion              = 4
	offsetSuperblockSize       = 6
	offsetFreeBlocksBitmapSize = 8
	offsetFreeInodeBitmapSize  = 10
	offsetInodeAreaSize        = 12
	offsetBlockSize            = 14
	offsetDiskSize             = 16
	offsetChecksum             = 20
	checksumWords              = 5 // first five little-endian uint32 words, bytes [0:20)
)

// Superblock is the in-memory representation of §3's on-disk superblock.
type Superblock struct {
	SuperblockSize       uint16 // always 1, in blocks
	FreeBlocksBitmapSize uint16 // blocks
	FreeInodeBitmapSize  uint16 // blocks
	InodeAreaSize        uint16 // blocks
	BlockSize            uint16 // sectors per block
	DiskSize             uint32 // partition size, in blocks
}

// Checksum computes the superblock checksum: the bitwise NOT of the sum
// (mod 2^32) of the superblock's first five little-endian 32-bit words,
// read as raw bytes rather than via the (buggy) struct-pointer stride the
// original C source used — see DESIGN.md's "Checksum" decision.
func Checksum(raw []byte) uint32 {
	var sum uint32
	for i := 0; i < checksumWords; i++ {
		sum += binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
	}
	return ^sum
}

// Bytes serializes the superblock into a SectorSize-byte sector, including
// a freshly computed checksum. Bytes past the meaningful prefix are zero.
func (s *Superblock) Bytes() []byte {
	b := make([]byte, SectorSize)
	copy(b[offsetID:offsetID+4], Magic)
	binary.LittleEndian.PutUint16(b[offsetVersion:], Version)
	binary.LittleEndian.PutUint16(b[offsetSuperblockSize:], s.SuperblockSize)
	binary.LittleEndian.PutUint16(b[offsetFreeBlocksBitmapSize:], s.FreeBlocksBitmapSize)
	binary.LittleEndian.PutUint16(b[offsetFreeInodeBitmapSize:], s.FreeInodeBitmapSize)
	binary.LittleEndian.PutUint16(b[offsetInodeAreaSize:], s.InodeAreaSize)
	binary.LittleEndian.PutUint16(b[offsetBlockSize:], s.BlockSize)
	binary.LittleEndian.PutUint32(b[offsetDiskSize:], s.DiskSize)
	binary.LittleEndian.PutUint32(b[offsetChecksum:], Checksum(b))
	return b
}

// FromBytes parses and validates a superblock sector.
func FromBytes(b []byte) (*Superblock, error) {
	if len(b) != SectorSize {
		return nil, fmt.Errorf("superblock: data was %d bytes, want %d", len(b), SectorSize)
	}
	if string(b[offsetID:offsetID+4]) != Magic {
		return nil, &InvalidMagicError{got: string(b[offsetID : offsetID+4])}
	}
	if version := binary.LittleEndian.Uint16(b[offsetVersion:]); version != Version {
		return nil, &UnsupportedVersionError{got: version}
	}
	wantChecksum := binary.LittleEndian.Uint32(b[offsetChecksum:])
	if gotChecksum := Checksum(b); gotChecksum != wantChecksum {
		return nil, &ChecksumMismatchError{got: gotChecksum, want: wantChecksum}
	}
	return &Superblock{
		SuperblockSize:       binary.LittleEndian.Uint16(b[offsetSuperblockSize:]),
		FreeBlocksBitmapSize: binary.LittleEndian.Uint16(b[offsetFreeBlocksBitmapSize:]),
		FreeInodeBitmapSize:  binary.LittleEndian.Uint16(b[offsetFreeInodeBitmapSize:]),
		InodeAreaSize:        binary.LittleEndian.Uint16(b[offsetInodeAreaSize:]),
		BlockSize:            binary.LittleEndian.Uint16(b[offsetBlockSize:]),
		DiskSize:             binary.LittleEndian.Uint32(b[offsetDiskSize:]),
	}, nil
}

// Read loads the superblock from the first sector of a partition-scoped
// device (sector 0 relative to the partition, per §4.2).
func Read(dev *blockdev.Device) (*Superblock, error) {
	b := make([]byte, SectorSize)
	if err := dev.ReadSector(0, b); err != nil {
		return nil, fmt.Errorf("superblock: read: %w", err)
	}
	return FromBytes(b)
}

// Write persists the superblock to sector 0 of a partition-scoped device.
func (s *Superblock) Write(dev *blockdev.Device) error {
	if err := dev.WriteSector(0, s.Bytes()); err != nil {
		return fmt.Errorf("superblock: write: %w", err)
	}
	return nil
}

// Geometry is the derived region layout of §4.1. The *Start fields are
// sectors relative to the start of the partition (i.e. partition.firstSector
// is taken as 0, since blockdev.Device is already scoped to the partition);
// InodeCount and DataAreaBlocks are counts.
type Geometry struct {
	BlockBitmapStart uint32
	InodeBitmapStart uint32
	InodeTableStart  uint32
	DataAreaStart    uint32
	InodeCount       uint32
	// DataAreaBlocks is the number of blocks in the partition past the data
	// area start. Note the data bitmap's bit capacity (FreeBlocksBitmapSize
	// blocks, sized identically to the inode bitmap per §3) may be smaller
	// than this; callers must bound allocation to whichever is smaller.
	DataAreaBlocks uint32
}

// Geometry derives §4.1's region layout from the superblock.
func (s *Superblock) Geometry() Geometry {
	blockBitmapStart := uint32(s.SuperblockSize) * uint32(s.BlockSize)
	inodeBitmapStart := blockBitmapStart + uint32(s.FreeBlocksBitmapSize)*uint32(s.BlockSize)
	inodeTableStart := inodeBitmapStart + uint32(s.FreeInodeBitmapSize)*uint32(s.BlockSize)
	dataAreaStart := inodeTableStart + uint32(s.InodeAreaSize)*uint32(s.BlockSize)
	inodeCount := (uint32(s.InodeAreaSize) * uint32(s.BlockSize) * SectorSize) / 32
	regionBlocks := uint32(s.SuperblockSize) + uint32(s.FreeBlocksBitmapSize) + uint32(s.FreeInodeBitmapSize) + uint32(s.InodeAreaSize)
	var dataAreaBlocks uint32
	if s.DiskSize > regionBlocks {
		dataAreaBlocks = s.DiskSize - regionBlocks
	}
	return Geometry{
		BlockBitmapStart: blockBitmapStart,
		InodeBitmapStart: inodeBitmapStart,
		InodeTableStart:  inodeTableStart,
		DataAreaStart:    dataAreaStart,
		InodeCount:       inodeCount,
		DataAreaBlocks:   dataAreaBlocks,
	}
}

// Compute derives a Superblock's sizing fields from a partition of
// partitionSectors sectors and the requested sectorsPerBlock, per the
// invariants of §3:
//
//	blockQuantity     = partitionSectors / blockSize
//	inodeAreaBlocks   = ceil(0.1 * blockQuantity)
//	inodeCount        = floor(inodeAreaBlocks*blockSize*SectorSize / 32)
//	bitmapSize        = ceil(ceil(inodeCount/8) / (blockSize*SectorSize))
func Compute(partitionSectors uint32, sectorsPerBlock uint16) (*Superblock, error) {
	if sectorsPerBlock == 0 {
		return nil, fmt.Errorf("superblock: sectorsPerBlock must be greater than 0")
	}
	blockQuantity := partitionSectors / uint32(sectorsPerBlock)
	if blockQuantity < 10 {
		return nil, fmt.Errorf("superblock: partition too small for %d sectors per block", sectorsPerBlock)
	}
	inodeAreaBlocks := uint32(math.Ceil(float64(blockQuantity) * 0.1))
	if inodeAreaBlocks == 0 {
		inodeAreaBlocks = 1
	}
	bytesPerBlock := uint32(sectorsPerBlock) * SectorSize
	inodeCount := (inodeAreaBlocks * bytesPerBlock) / 32
	bitmapBytes := (inodeCount + 7) / 8
	bitmapSize := uint16((bitmapBytes + bytesPerBlock - 1) / bytesPerBlock)
	if bitmapSize == 0 {
		bitmapSize = 1
	}
	return &Superblock{
		SuperblockSize:       1,
		FreeBlocksBitmapSize: bitmapSize,
		FreeInodeBitmapSize:  bitmapSize,
		InodeAreaSize:        uint16(inodeAreaBlocks),
		BlockSize:            sectorsPerBlock,
		DiskSize:             blockQuantity,
	}, nil
}
