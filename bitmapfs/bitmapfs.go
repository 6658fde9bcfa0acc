// Package bitmapfs implements the bitmap façade of §4.4: a thin,
// synchronously-persisted layer over an in-memory bitVector that backs the
// inode and data-block liveness bitmaps.
//
// Modeled on the teacher's filesystem/ext4 block-group bitmap handling:
// load the whole region into memory once, mutate in memory, and write the
// touched sector straight back out rather than batching writes.
package bitmapfs

import (
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/superblock"
)

// Which selects one of the two bitmaps T2FS maintains.
type Which int

const (
	Inode Which = 0
	Data  Which = 1
)

func (w Which) String() string {
	if w == Inode {
		return "inode"
	}
	return "data"
}

type region struct {
	startSector uint32
	sectorCount uint32
	bitCount    uint32
	bm          *bitVector
}

// Bitmaps holds the open inode and data bitmaps of a mounted partition.
type Bitmaps struct {
	dev     *blockdev.Device
	regions [2]*region
}

// Open reads both bitmap regions of a partition into memory, per §4.4's
// open(partition_first_sector). dev must already be scoped to the
// partition (see blockdev.NewPartition).
func Open(dev *blockdev.Device, sb *superblock.Superblock) (*Bitmaps, error) {
	geom := sb.Geometry()
	sectorsPerBlock := uint32(sb.BlockSize)

	inode, err := loadRegion(dev, geom.InodeBitmapStart, uint32(sb.FreeInodeBitmapSize)*sectorsPerBlock, geom.InodeCount)
	if err != nil {
		return nil, &IOError{Which: Inode, Op: "open", Err: err}
	}
	dataSectors := uint32(sb.FreeBlocksBitmapSize) * sectorsPerBlock
	dataCapacity := dataSectors * blockdev.SectorSize * 8
	dataBitCount := geom.DataAreaBlocks
	if dataBitCount > dataCapacity {
		dataBitCount = dataCapacity
	}
	data, err := loadRegion(dev, geom.BlockBitmapStart, dataSectors, dataBitCount)
	if err != nil {
		return nil, &IOError{Which: Data, Op: "open", Err: err}
	}

	return &Bitmaps{
		dev:     dev,
		regions: [2]*region{Inode: inode, Data: data},
	}, nil
}

func loadRegion(dev *blockdev.Device, startSector, sectorCount, bitCount uint32) (*region, error) {
	raw := make([]byte, sectorCount*blockdev.SectorSize)
	buf := make([]byte, blockdev.SectorSize)
	for i := uint32(0); i < sectorCount; i++ {
		if err := dev.ReadSector(startSector+i, buf); err != nil {
			return nil, err
		}
		copy(raw[i*blockdev.SectorSize:], buf)
	}
	return &region{
		startSector: startSector,
		sectorCount: sectorCount,
		bitCount:    bitCount,
		bm:          bitVectorFromBytes(raw),
	}, nil
}

// Close releases the in-memory bitmaps. All mutations are already
// persisted synchronously by Set, so Close never touches the device.
func (b *Bitmaps) Close() error {
	return nil
}

func (b *Bitmaps) region(which Which) (*region, error) {
	if which != Inode && which != Data {
		return nil, &InvalidWhichError{Which: which}
	}
	return b.regions[which], nil
}

// Search returns the index of the first bit in which whose value matches
// value, or -1 if none exists within the region's live bit count.
func (b *Bitmaps) Search(which Which, value bool) (int, error) {
	r, err := b.region(which)
	if err != nil {
		return -1, err
	}
	var idx int
	if value {
		idx = r.bm.firstSet()
	} else {
		idx = r.bm.firstFree(0)
	}
	if idx < 0 || uint32(idx) >= r.bitCount {
		return -1, nil
	}
	return idx, nil
}

// Get returns the value of bit index within which.
func (b *Bitmaps) Get(which Which, index int) (bool, error) {
	r, err := b.region(which)
	if err != nil {
		return false, err
	}
	if index < 0 || uint32(index) >= r.bitCount {
		return false, &OutOfRangeError{Which: which, Index: index, Count: r.bitCount}
	}
	return r.bm.isSet(index)
}

// Set assigns bit index within which and persists the containing sector
// before returning, per §4.4's synchronous-write requirement.
func (b *Bitmaps) Set(which Which, index int, value bool) error {
	r, err := b.region(which)
	if err != nil {
		return err
	}
	if index < 0 || uint32(index) >= r.bitCount {
		return &OutOfRangeError{Which: which, Index: index, Count: r.bitCount}
	}
	if value {
		err = r.bm.set(index)
	} else {
		err = r.bm.clear(index)
	}
	if err != nil {
		return &IOError{Which: which, Op: "set", Err: err}
	}

	sectorOffset := uint32(index) / 8 / blockdev.SectorSize
	raw := r.bm.bytes()
	start := sectorOffset * blockdev.SectorSize
	end := start + blockdev.SectorSize
	if end > uint32(len(raw)) {
		end = uint32(len(raw))
	}
	sector := make([]byte, blockdev.SectorSize)
	copy(sector, raw[start:end])
	if err := b.dev.WriteSector(r.startSector+sectorOffset, sector); err != nil {
		return &IOError{Which: which, Op: "set", Err: err}
	}
	return nil
}
