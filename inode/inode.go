// Package inode implements T2FS's inode engine (§4.5): the fixed 32-byte
// on-disk inode layout, resolution of a logical file block to an absolute
// device sector across direct, single-indirect and double-indirect
// addressing, growth of a file by one block, and reclamation of a file's
// blocks on deletion.
//
// Modeled on the teacher's filesystem/ext4 extent-walking style, generalized
// down to T2FS's much simpler fixed two-level indirection scheme.
package inode

import (
	"encoding/binary"
	"fmt"

	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/superblock"
)

// Direct is the number of direct block pointers an inode carries.
const Direct = 2

// Size is the fixed on-disk size of one inode, in bytes.
const Size = 32

// PerSector is how many inodes fit in one SectorSize-byte sector.
const PerSector = blockdev.SectorSize / Size

const (
	offsetBlocksFileSize = 0
	offsetBytesFileSize  = 4
	offsetDataPtr0       = 8
	offsetDataPtr1       = 12
	offsetSingleIndPtr   = 16
	offsetDoubleIndPtr   = 20
	offsetReserved       = 24 // two reserved/spare uint32 words, bytes [24:32)
)

// Inode is the in-memory form of a T2FS inode.
type Inode struct {
	BlocksFileSize uint32
	BytesFileSize  uint32
	DataPtr        [Direct]uint32
	SingleIndPtr   uint32
	DoubleIndPtr   uint32
}

// Bytes serializes the inode into its Size-byte on-disk representation.
func (n *Inode) Bytes() []byte {
	b := make([]byte, Size)
	binary.LittleEndian.PutUint32(b[offsetBlocksFileSize:], n.BlocksFileSize)
	binary.LittleEndian.PutUint32(b[offsetBytesFileSize:], n.BytesFileSize)
	binary.LittleEndian.PutUint32(b[offsetDataPtr0:], n.DataPtr[0])
	binary.LittleEndian.PutUint32(b[offsetDataPtr1:], n.DataPtr[1])
	binary.LittleEndian.PutUint32(b[offsetSingleIndPtr:], n.SingleIndPtr)
	binary.LittleEndian.PutUint32(b[offsetDoubleIndPtr:], n.DoubleIndPtr)
	return b
}

// FromBytes parses a Size-byte inode record.
func FromBytes(b []byte) (*Inode, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("inode: record was %d bytes, want %d", len(b), Size)
	}
	return &Inode{
		BlocksFileSize: binary.LittleEndian.Uint32(b[offsetBlocksFileSize:]),
		BytesFileSize:  binary.LittleEndian.Uint32(b[offsetBytesFileSize:]),
		DataPtr: [Direct]uint32{
			binary.LittleEndian.Uint32(b[offsetDataPtr0:]),
			binary.LittleEndian.Uint32(b[offsetDataPtr1:]),
		},
		SingleIndPtr: binary.LittleEndian.Uint32(b[offsetSingleIndPtr:]),
		DoubleIndPtr: binary.LittleEndian.Uint32(b[offsetDoubleIndPtr:]),
	}, nil
}

// location returns the sector holding inode i and i's byte offset within it.
func location(geom superblock.Geometry, i uint32) (sector uint32, offset int) {
	return geom.InodeTableStart + (i*Size)/blockdev.SectorSize, int((i * Size) % blockdev.SectorSize)
}

// Read loads inode number i, per §4.5.4.
func Read(dev *blockdev.Device, geom superblock.Geometry, i uint32) (*Inode, error) {
	sector, offset := location(geom, i)
	buf := make([]byte, blockdev.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return nil, &IOError{Op: "read inode", Err: err}
	}
	return FromBytes(buf[offset : offset+Size])
}

// Write persists inode number i, per §4.5.4.
func Write(dev *blockdev.Device, geom superblock.Geometry, i uint32, n *Inode) error {
	sector, offset := location(geom, i)
	buf := make([]byte, blockdev.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return &IOError{Op: "write inode", Err: err}
	}
	copy(buf[offset:offset+Size], n.Bytes())
	if err := dev.WriteSector(sector, buf); err != nil {
		return &IOError{Op: "write inode", Err: err}
	}
	return nil
}

// geometry constants derived from the superblock, per §4.5.1.
type addressing struct {
	direct uint32
	simple uint32
	double uint32
}

func addressingOf(sb *superblock.Superblock) addressing {
	ptrPerBlock := uint32(sb.BlockSize) * blockdev.SectorSize / 4
	return addressing{
		direct: Direct,
		simple: ptrPerBlock,
		double: ptrPerBlock * ptrPerBlock,
	}
}

func readBlock(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, blockIndex uint32) ([]byte, error) {
	spb := uint32(sb.BlockSize)
	buf := make([]byte, spb*blockdev.SectorSize)
	sector := make([]byte, blockdev.SectorSize)
	first := geom.DataAreaStart + blockIndex*spb
	for i := uint32(0); i < spb; i++ {
		if err := dev.ReadSector(first+i, sector); err != nil {
			return nil, err
		}
		copy(buf[i*blockdev.SectorSize:], sector)
	}
	return buf, nil
}

func writeBlock(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, blockIndex uint32, buf []byte) error {
	spb := uint32(sb.BlockSize)
	first := geom.DataAreaStart + blockIndex*spb
	for i := uint32(0); i < spb; i++ {
		if err := dev.WriteSector(first+i, buf[i*blockdev.SectorSize:(i+1)*blockdev.SectorSize]); err != nil {
			return err
		}
	}
	return nil
}

func wordAt(buf []byte, word uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[word*4:])
}

func putWordAt(buf []byte, word uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf[word*4:], v)
}

// Resolve translates a logical (fileBlock, sectorInBlock) pair to an
// absolute device sector, per §4.5.1. It never allocates, and fails if
// fileBlock is not already within the file.
func Resolve(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, n *Inode, fileBlock, sectorInBlock uint32) (uint32, error) {
	if fileBlock >= n.BlocksFileSize {
		return 0, &OutOfRangeError{FileBlock: fileBlock, BlocksFileSize: n.BlocksFileSize}
	}
	a := addressingOf(sb)

	var target uint32
	switch {
	case fileBlock < a.direct:
		target = n.DataPtr[fileBlock]
	case fileBlock < a.direct+a.simple:
		single, err := readBlock(dev, geom, sb, n.SingleIndPtr)
		if err != nil {
			return 0, &IOError{Op: "resolve", Err: err}
		}
		target = wordAt(single, fileBlock-a.direct)
	case fileBlock < a.direct+a.simple+a.double:
		r := fileBlock - a.direct - a.simple
		double, err := readBlock(dev, geom, sb, n.DoubleIndPtr)
		if err != nil {
			return 0, &IOError{Op: "resolve", Err: err}
		}
		singlePtr := wordAt(double, r/a.simple)
		single, err := readBlock(dev, geom, sb, singlePtr)
		if err != nil {
			return 0, &IOError{Op: "resolve", Err: err}
		}
		target = wordAt(single, r%a.simple)
	default:
		return 0, &MaxSizeError{}
	}

	return geom.DataAreaStart + target*uint32(sb.BlockSize) + sectorInBlock, nil
}
