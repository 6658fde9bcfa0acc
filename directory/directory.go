// Package directory implements T2FS's root directory engine (§4.6): inode 0
// interpreted as a flat array of fixed-size records, supporting lookup by
// index, lookup by name, and slot-reusing insertion.
//
// Modeled on the teacher's filesystem/fat32 directory entry parsing
// (fixed-width packed records read straight out of file data), generalized
// to T2FS's single, non-hierarchical root directory.
package directory

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
)

// RootInode is the fixed inode number of the root directory.
const RootInode = 0

// NameSize is the fixed width of a record's name field.
const NameSize = 51

// RecordSize is the fixed on-disk size of one directory record: TypeVal(1) +
// name(51) + blocksFileSize(4) + bytesFileSize(4) + inodeNumber(4) = 64
// bytes, four of which fit in one 256-byte sector.
const RecordSize = 1 + NameSize + 4 + 4 + 4

// TypeVal identifies what a directory record names.
type TypeVal byte

const (
	Invalid TypeVal = 0
	Regular TypeVal = 1
	Dir     TypeVal = 2
)

const (
	offsetTypeVal        = 0
	offsetName           = 1
	offsetBlocksFileSize = offsetName + NameSize
	offsetBytesFileSize  = offsetBlocksFileSize + 4
	offsetInodeNumber    = offsetBytesFileSize + 4
)

// Record is one entry of the root directory.
type Record struct {
	TypeVal        TypeVal
	Name           string
	BlocksFileSize uint32
	BytesFileSize  uint32
	InodeNumber    uint32
}

func (r *Record) bytes() []byte {
	b := make([]byte, RecordSize)
	b[offsetTypeVal] = byte(r.TypeVal)
	nameBytes := []byte(r.Name)
	if len(nameBytes) > NameSize {
		nameBytes = nameBytes[:NameSize]
	}
	copy(b[offsetName:offsetName+NameSize], nameBytes)
	binary.LittleEndian.PutUint32(b[offsetBlocksFileSize:], r.BlocksFileSize)
	binary.LittleEndian.PutUint32(b[offsetBytesFileSize:], r.BytesFileSize)
	binary.LittleEndian.PutUint32(b[offsetInodeNumber:], r.InodeNumber)
	return b
}

func recordFromBytes(b []byte) (*Record, error) {
	if len(b) != RecordSize {
		return nil, fmt.Errorf("directory: record was %d bytes, want %d", len(b), RecordSize)
	}
	name := bytes.TrimRight(b[offsetName:offsetName+NameSize], "\x00")
	return &Record{
		TypeVal:        TypeVal(b[offsetTypeVal]),
		Name:           string(name),
		BlocksFileSize: binary.LittleEndian.Uint32(b[offsetBlocksFileSize:]),
		BytesFileSize:  binary.LittleEndian.Uint32(b[offsetBytesFileSize:]),
		InodeNumber:    binary.LittleEndian.Uint32(b[offsetInodeNumber:]),
	}, nil
}

// Directory is an opened view of the root directory: §4.6's single global
// "root opened" flag plus cursor index, scoped here to one instance instead
// of process-wide state so a *fs.FileSystem can own it as a field.
type Directory struct {
	cursor int
}

// Open resets the cursor to 0, per §4.6.
func Open() *Directory {
	return &Directory{cursor: 0}
}

// AtEnd reports whether the cursor has passed the last record, per §4.6's
// `cursor·sizeof(record) ≥ inode0.bytesFileSize`.
func (d *Directory) AtEnd(root *inode.Inode) bool {
	return uint32(d.cursor)*RecordSize >= root.BytesFileSize
}

// Next returns the record at the cursor and advances it, or reports AtEnd.
func (d *Directory) Next(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, root *inode.Inode) (*Record, error) {
	if d.AtEnd(root) {
		return nil, &EndOfDirectoryError{}
	}
	rec, err := RecordByIndex(dev, geom, sb, root, d.cursor)
	if err != nil {
		return nil, err
	}
	d.cursor++
	return rec, nil
}

// RecordByIndex computes the byte position i·RecordSize, translates it into
// (file block, sector, offset) and reads the record through inode 0.
func RecordByIndex(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, root *inode.Inode, i int) (*Record, error) {
	pos := uint32(i) * RecordSize
	fileBlock := pos / (uint32(sb.BlockSize) * blockdev.SectorSize)
	withinBlock := pos % (uint32(sb.BlockSize) * blockdev.SectorSize)
	sectorInBlock := withinBlock / blockdev.SectorSize
	offsetInSector := withinBlock % blockdev.SectorSize

	sector, err := inode.Resolve(dev, geom, sb, root, fileBlock, sectorInBlock)
	if err != nil {
		return nil, &IOError{Op: "record_by_index", Err: err}
	}
	buf := make([]byte, blockdev.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return nil, &IOError{Op: "record_by_index", Err: err}
	}

	// A record never straddles a sector boundary: RecordSize (64) divides
	// SectorSize (256) evenly, so offsetInSector+RecordSize <= SectorSize.
	return recordFromBytes(buf[offsetInSector : offsetInSector+RecordSize])
}

// RecordByName scans every live slot for an exact name match.
func RecordByName(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, root *inode.Inode, name string) (*Record, int, error) {
	count := int(root.BytesFileSize / RecordSize)
	for i := 0; i < count; i++ {
		rec, err := RecordByIndex(dev, geom, sb, root, i)
		if err != nil {
			return nil, -1, err
		}
		if rec.TypeVal == Invalid {
			continue
		}
		if rec.Name == name {
			return rec, i, nil
		}
	}
	return nil, -1, &NotFoundError{Name: name}
}
