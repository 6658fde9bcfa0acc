package inode_test

import (
	"testing"

	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
	"github.com/t2fs-go/t2fs/testhelper"
)

// testFS builds a small but real T2FS partition image (one sector per
// block, so PTR_PER_BLOCK is a manageable 64) with both bitmaps allocated
// and ready to grow files into.
func testFS(t *testing.T) (*blockdev.Device, *superblock.Superblock, superblock.Geometry, *bitmapfs.Bitmaps) {
	t.Helper()
	sb, err := superblock.Compute(20000, 1)
	if err != nil {
		t.Fatalf("Compute() returned error: %v", err)
	}
	geom := sb.Geometry()
	totalSectors := geom.DataAreaStart + geom.DataAreaBlocks*uint32(sb.BlockSize)
	raw := make([]byte, totalSectors*blockdev.SectorSize)
	storage := &testhelper.FileImpl{
		Size: int64(len(raw)),
		Reader: func(b []byte, offset int64) (int, error) {
			return copy(b, raw[offset:]), nil
		},
		Writer: func(b []byte, offset int64) (int, error) {
			copy(raw[offset:], b)
			return len(b), nil
		},
	}
	dev := blockdev.New(storage)
	if err := sb.Write(dev); err != nil {
		t.Fatalf("Write(superblock) returned error: %v", err)
	}
	bm, err := bitmapfs.Open(dev, sb)
	if err != nil {
		t.Fatalf("bitmapfs.Open() returned error: %v", err)
	}
	return dev, sb, geom, bm
}

func TestGrowDirectBlocks(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	n := &inode.Inode{}

	for want := uint32(0); want < inode.Direct; want++ {
		logical, err := inode.Grow(dev, bm, geom, sb, 0, n)
		if err != nil {
			t.Fatalf("Grow() #%d returned error: %v", want, err)
		}
		if logical != want {
			t.Errorf("Grow() #%d returned logical block %d, want %d", want, logical, want)
		}
	}
	if n.BlocksFileSize != inode.Direct {
		t.Fatalf("BlocksFileSize = %d, want %d", n.BlocksFileSize, inode.Direct)
	}

	for b := uint32(0); b < inode.Direct; b++ {
		sector, err := inode.Resolve(dev, geom, sb, n, b, 0)
		if err != nil {
			t.Fatalf("Resolve(%d) returned error: %v", b, err)
		}
		wantSector := geom.DataAreaStart + n.DataPtr[b]*uint32(sb.BlockSize)
		if sector != wantSector {
			t.Errorf("Resolve(%d) = %d, want %d", b, sector, wantSector)
		}
	}
}

func growN(t *testing.T, dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, n *inode.Inode, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if _, err := inode.Grow(dev, bm, geom, sb, 0, n); err != nil {
			t.Fatalf("Grow() iteration %d returned error: %v", i, err)
		}
	}
}

func TestGrowSingleIndirectBoundary(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	n := &inode.Inode{}

	ptrPerBlock := uint32(sb.BlockSize) * blockdev.SectorSize / 4
	growN(t, dev, bm, geom, sb, n, int(inode.Direct+ptrPerBlock))

	if n.SingleIndPtr == 0 && n.BlocksFileSize > inode.Direct {
		t.Fatalf("SingleIndPtr was never set after growing past the direct blocks")
	}

	// Every block, direct and indirect, must resolve to a distinct sector.
	seen := map[uint32]bool{}
	for b := uint32(0); b < n.BlocksFileSize; b++ {
		sector, err := inode.Resolve(dev, geom, sb, n, b, 0)
		if err != nil {
			t.Fatalf("Resolve(%d) returned error: %v", b, err)
		}
		if seen[sector] {
			t.Errorf("block %d resolved to a sector already used by another block: %d", b, sector)
		}
		seen[sector] = true
	}
}

func TestGrowDoubleIndirectBoundary(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	n := &inode.Inode{}

	ptrPerBlock := uint32(sb.BlockSize) * blockdev.SectorSize / 4
	// Cross into the double-indirect region and allocate a handful of
	// blocks past the boundary, including across a second nested
	// single-indirect block.
	target := int(inode.Direct+ptrPerBlock) + int(ptrPerBlock) + 5
	growN(t, dev, bm, geom, sb, n, target)

	if n.DoubleIndPtr == 0 {
		t.Fatal("DoubleIndPtr was never set after growing past the single-indirect region")
	}

	seen := map[uint32]bool{}
	for b := uint32(0); b < n.BlocksFileSize; b++ {
		sector, err := inode.Resolve(dev, geom, sb, n, b, 0)
		if err != nil {
			t.Fatalf("Resolve(%d) returned error: %v", b, err)
		}
		if seen[sector] {
			t.Errorf("block %d resolved to a sector already used by another block: %d", b, sector)
		}
		seen[sector] = true
	}
}

func TestResolveRejectsBeyondFileSize(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	n := &inode.Inode{}
	growN(t, dev, bm, geom, sb, n, 1)

	if _, err := inode.Resolve(dev, geom, sb, n, 1, 0); err == nil {
		t.Error("Resolve() beyond BlocksFileSize returned nil error")
	}
}

func TestClearReclaimsDirectAndIndirectBlocks(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	n := &inode.Inode{}

	ptrPerBlock := uint32(sb.BlockSize) * blockdev.SectorSize / 4
	growN(t, dev, bm, geom, sb, n, int(inode.Direct+ptrPerBlock+3))

	if err := inode.Clear(dev, bm, geom, sb, n); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}

	for b := uint32(0); b < n.BlocksFileSize; b++ {
		if b < inode.Direct {
			set, err := bm.Get(bitmapfs.Data, int(n.DataPtr[b]))
			if err != nil {
				t.Fatalf("Get() returned error: %v", err)
			}
			if set {
				t.Errorf("direct block %d still marked used after Clear()", b)
			}
		}
	}
	set, err := bm.Get(bitmapfs.Data, int(n.SingleIndPtr))
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if set {
		t.Error("single-indirect block still marked used after Clear()")
	}
}

func TestInodeReadWriteRoundTrip(t *testing.T) {
	dev, _, geom, _ := testFS(t)
	n := &inode.Inode{
		BlocksFileSize: 3,
		BytesFileSize:  700,
		DataPtr:        [inode.Direct]uint32{5, 9},
		SingleIndPtr:   12,
		DoubleIndPtr:   0,
	}
	if err := inode.Write(dev, geom, 1, n); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	got, err := inode.Read(dev, geom, 1)
	if err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if *got != *n {
		t.Errorf("Read() = %+v, want %+v", *got, *n)
	}

	// Writing an adjacent inode in the same sector must not disturb this one.
	other := &inode.Inode{BlocksFileSize: 1}
	if err := inode.Write(dev, geom, 2, other); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	got, err = inode.Read(dev, geom, 1)
	if err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if *got != *n {
		t.Errorf("inode 1 corrupted by writing inode 2: got %+v, want %+v", *got, *n)
	}
}
