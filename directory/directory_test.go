package directory_test

import (
	"testing"

	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/directory"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
	"github.com/t2fs-go/t2fs/testhelper"
)

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

func rootInode(t *testing.T, dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock) *inode.Inode {
	t.Helper()
	root := &inode.Inode{}
	if _, err := inode.Grow(dev, bm, geom, sb, directory.RootInode, root); err != nil {
		t.Fatalf("Grow(root) returned error: %v", err)
	}
	if err := inode.Write(dev, geom, directory.RootInode, root); err != nil {
		t.Fatalf("Write(root) returned error: %v", err)
	}
	return root
}

func TestInsertAndLookup(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	root := rootInode(t, dev, bm, geom, sb)

	idx, err := directory.Insert(dev, bm, geom, sb, root, &directory.Record{
		TypeVal: directory.Regular, Name: "hello.txt", InodeNumber: 5,
	})
	if err != nil {
		t.Fatalf("Insert() returned error: %v", err)
	}
	if idx != 0 {
		t.Errorf("Insert() into an empty directory returned index %d, want 0", idx)
	}

	rec, at, err := directory.RecordByName(dev, geom, sb, root, "hello.txt")
	if err != nil {
		t.Fatalf("RecordByName() returned error: %v", err)
	}
	if at != 0 || rec.InodeNumber != 5 || rec.TypeVal != directory.Regular {
		t.Errorf("RecordByName() = %+v at %d, want InodeNumber=5 at 0", rec, at)
	}

	if _, _, err := directory.RecordByName(dev, geom, sb, root, "missing"); err == nil {
		t.Error("RecordByName() for a missing name returned nil error")
	}
}

func TestInsertReusesFreedSlot(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	root := rootInode(t, dev, bm, geom, sb)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := directory.Insert(dev, bm, geom, sb, root, &directory.Record{TypeVal: directory.Regular, Name: name}); err != nil {
			t.Fatalf("Insert(%q) returned error: %v", name, err)
		}
	}

	if err := directory.MarkInvalid(dev, bm, geom, sb, root, 1); err != nil {
		t.Fatalf("MarkInvalid() returned error: %v", err)
	}

	idx, err := directory.Insert(dev, bm, geom, sb, root, &directory.Record{TypeVal: directory.Regular, Name: "d"})
	if err != nil {
		t.Fatalf("Insert(d) returned error: %v", err)
	}
	if idx != 1 {
		t.Errorf("Insert() after freeing slot 1 returned index %d, want 1 (reuse)", idx)
	}

	count := int(root.BytesFileSize / directory.RecordSize)
	if count != 3 {
		t.Errorf("directory grew to %d records, want 3 (slot reused, not appended)", count)
	}
}

func TestEnumerateSkipsInvalid(t *testing.T) {
	dev, sb, geom, bm := testFS(t)
	root := rootInode(t, dev, bm, geom, sb)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := directory.Insert(dev, bm, geom, sb, root, &directory.Record{TypeVal: directory.Regular, Name: name}); err != nil {
			t.Fatalf("Insert(%q) returned error: %v", name, err)
		}
	}
	if err := directory.MarkInvalid(dev, bm, geom, sb, root, 1); err != nil {
		t.Fatalf("MarkInvalid() returned error: %v", err)
	}

	d := directory.Open()
	var names []string
	for !d.AtEnd(root) {
		rec, err := d.Next(dev, geom, sb, root)
		if err != nil {
			t.Fatalf("Next() returned error: %v", err)
		}
		if rec.TypeVal == directory.Invalid {
			continue
		}
		names = append(names, rec.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("enumerate returned %v, want [a c]", names)
	}
}
