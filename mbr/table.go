// Package mbr implements T2FS's master boot record: a fixed four-entry
// partition table stored in sector 0 of the device, read once at
// initialization and written only by format/partitioning tools.
//
// The on-disk shape is modeled on the teacher's partition/mbr package (a
// Table holding Partitions, with Read/Write/ToBytes/tableFromBytes), simplified
// to T2FS's own fixed firstSector/lastSector entries instead of DOS CHS
// geometry.
package mbr

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/t2fs-go/t2fs/blockdev"
)

// SectorSize is the size of the MBR sector, equal to the device sector size.
const SectorSize = blockdev.SectorSize

// MaxPartitions is the fixed number of partition slots in the table.
const MaxPartitions = 4

const (
	offsetVolumeUUID   = 0
	offsetPartitions   = 16
	partitionEntrySize = 16
	partitionNameSize  = 8
	offsetSignature    = SectorSize - 2
)

// bootSignature marks a sector as carrying a valid T2FS MBR, in the same
// spirit as the real 0x55AA signature at the end of a DOS MBR.
var bootSignature = [2]byte{0x54, 0x32} // "T2"

// Partition describes one slot of the partition table. A slot with
// FirstSector == 0 and LastSector == 0 is unused.
type Partition struct {
	FirstSector uint32
	LastSector  uint32 // inclusive, per spec.md's "Partition lastSector semantics"
	Name        string
}

// Used reports whether this slot describes a real partition.
func (p Partition) Used() bool {
	return p.FirstSector != 0 || p.LastSector != 0
}

// Sectors returns the number of sectors spanned by the partition.
func (p Partition) Sectors() uint32 {
	if p.LastSector < p.FirstSector {
		return 0
	}
	return p.LastSector - p.FirstSector + 1
}

// Table is the full, fixed-size partition table.
type Table struct {
	VolumeUUID uuid.UUID
	Partitions [MaxPartitions]Partition
}

// NewTable builds an empty table with a freshly generated volume UUID.
func NewTable() *Table {
	return &Table{VolumeUUID: uuid.New()}
}

// GetPartition returns the partition at the given 0-based index.
func (t *Table) GetPartition(index int) (Partition, error) {
	if index < 0 || index >= MaxPartitions {
		return Partition{}, NewPartitionIndexError(index)
	}
	p := t.Partitions[index]
	if !p.Used() {
		return Partition{}, NewPartitionIndexError(index)
	}
	return p, nil
}

// SetPartition assigns the partition at the given 0-based index.
func (t *Table) SetPartition(index int, p Partition) error {
	if index < 0 || index >= MaxPartitions {
		return NewPartitionIndexError(index)
	}
	t.Partitions[index] = p
	return nil
}

// ToBytes serializes the table into a single SectorSize-byte MBR sector.
func (t *Table) ToBytes() []byte {
	b := make([]byte, SectorSize)
	copy(b[offsetVolumeUUID:offsetVolumeUUID+16], t.VolumeUUID[:])
	for i, p := range t.Partitions {
		off := offsetPartitions + i*partitionEntrySize
		binary.LittleEndian.PutUint32(b[off:], p.FirstSector)
		binary.LittleEndian.PutUint32(b[off+4:], p.LastSector)
		name := make([]byte, partitionNameSize)
		copy(name, p.Name)
		copy(b[off+8:off+8+partitionNameSize], name)
	}
	b[offsetSignature] = bootSignature[0]
	b[offsetSignature+1] = bootSignature[1]
	return b
}

// tableFromBytes parses a raw MBR sector, named to mirror the teacher's
// unexported tableFromBytes helper.
func tableFromBytes(b []byte) (*Table, error) {
	if len(b) != SectorSize {
		return nil, fmt.Errorf("mbr: data for MBR was %d bytes, want %d", len(b), SectorSize)
	}
	if b[offsetSignature] != bootSignature[0] || b[offsetSignature+1] != bootSignature[1] {
		return nil, &InvalidSignatureError{}
	}
	t := &Table{}
	copy(t.VolumeUUID[:], b[offsetVolumeUUID:offsetVolumeUUID+16])
	for i := range t.Partitions {
		off := offsetPartitions + i*partitionEntrySize
		first := binary.LittleEndian.Uint32(b[off:])
		last := binary.LittleEndian.Uint32(b[off+4:])
		nameBytes := b[off+8 : off+8+partitionNameSize]
		end := len(nameBytes)
		for end > 0 && nameBytes[end-1] == 0 {
			end--
		}
		t.Partitions[i] = Partition{
			FirstSector: first,
			LastSector:  last,
			Name:        string(nameBytes[:end]),
		}
	}
	return t, nil
}

// Read loads the partition table from sector 0 of dev.
func Read(dev *blockdev.Device) (*Table, error) {
	b := make([]byte, SectorSize)
	if err := dev.ReadSector(0, b); err != nil {
		return nil, fmt.Errorf("mbr: error reading MBR from device: %w", err)
	}
	return tableFromBytes(b)
}

// Write persists the partition table to sector 0 of dev.
func (t *Table) Write(dev *blockdev.Device) error {
	b := t.ToBytes()
	if err := dev.WriteSector(0, b); err != nil {
		return fmt.Errorf("mbr: error writing MBR to device: %w", err)
	}
	return nil
}
