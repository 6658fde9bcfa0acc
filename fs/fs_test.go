package fs_test

import (
	"bytes"
	"testing"

	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/fs"
	"github.com/t2fs-go/t2fs/mbr"
	"github.com/t2fs-go/t2fs/testhelper"
)

// sectorsPerBlock is fixed at 1 throughout these tests so PTR_PER_BLOCK (64)
// stays small enough to cross the single- and double-indirect boundaries
// with a manageable number of writes.
const sectorsPerBlock = 1
const ptrPerBlock = sectorsPerBlock * blockdev.SectorSize / 4 // 64
const direct = 2

// newImage builds an in-memory disk image with a single partition covering
// most of the device and an initialized MBR.
func newImage(t *testing.T, sectors uint32) (*fs.FileSystem, []byte) {
	t.Helper()
	raw := make([]byte, int64(sectors)*blockdev.SectorSize)
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

	table := mbr.NewTable()
	if err := table.SetPartition(0, mbr.Partition{FirstSector: 1, LastSector: sectors - 1, Name: "t2fs"}); err != nil {
		t.Fatalf("SetPartition() returned error: %v", err)
	}
	if err := fs.InitMBR(storage, table); err != nil {
		t.Fatalf("InitMBR() returned error: %v", err)
	}

	fsys, err := fs.New(storage)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return fsys, raw
}

func formattedMounted(t *testing.T, sectors uint32) *fs.FileSystem {
	t.Helper()
	fsys, _ := newImage(t, sectors)
	if err := fsys.Format(0, sectorsPerBlock); err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	if err := fsys.Mount(0); err != nil {
		t.Fatalf("Mount() returned error: %v", err)
	}
	return fsys
}

// Scenario 1: format + mount empty.
func TestFormatMountEmpty(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	if err := fsys.Opendir(); err != nil {
		t.Fatalf("Opendir() returned error: %v", err)
	}
	if _, err := fsys.Readdir(); err == nil {
		t.Error("Readdir() on an empty directory returned nil error")
	}
}

// Scenario 2: single-block file.
func TestSingleBlockFile(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("hello")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if _, err := fsys.Write(handle, []byte("world")); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if _, err := fsys.Seek(handle, 0); err != nil {
		t.Fatalf("Seek() returned error: %v", err)
	}
	got := make([]byte, 5)
	if _, err := fsys.Read(handle, got); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if string(got) != "world" {
		t.Errorf("Read() = %q, want %q", got, "world")
	}
}

// Scenario 3: cross-sector write.
func TestCrossSectorWrite(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("big.bin")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	payload := bytes.Repeat([]byte{0xAB}, 300)
	if _, err := fsys.Write(handle, payload); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if _, err := fsys.Seek(handle, 0); err != nil {
		t.Fatalf("Seek() returned error: %v", err)
	}
	got := make([]byte, 300)
	if _, err := fsys.Read(handle, got); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("cross-sector round trip mismatch")
	}
}

// Scenario 4: single-indirect boundary.
func TestSingleIndirectBoundaryWrite(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("indirect.bin")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	payload := make([]byte, (direct+1)*sectorsPerBlock*blockdev.SectorSize)
	if _, err := fsys.Write(handle, payload); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if _, err := fsys.Seek(handle, 0); err != nil {
		t.Fatalf("Seek() returned error: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := fsys.Read(handle, got); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("single-indirect boundary round trip mismatch")
	}
}

// Scenario 5: double-indirect boundary.
func TestDoubleIndirectBoundaryWrite(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("double.bin")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	size := (direct + ptrPerBlock + 1) * sectorsPerBlock * blockdev.SectorSize
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i)
	}
	if _, err := fsys.Write(handle, payload); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if _, err := fsys.Seek(handle, 0); err != nil {
		t.Fatalf("Seek() returned error: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := fsys.Read(handle, got); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("double-indirect boundary round trip mismatch")
	}
	tail := got[len(got)-16:]
	wantTail := payload[len(payload)-16:]
	if !bytes.Equal(tail, wantTail) {
		t.Errorf("tail of double-indirect file = %v, want %v", tail, wantTail)
	}
}

// Scenario 6: delete reclaims blocks for reuse.
func TestDeleteReclaimsBlocksForReuse(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("tmp.bin")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if _, err := fsys.Write(handle, bytes.Repeat([]byte{0x01}, 10*sectorsPerBlock*blockdev.SectorSize)); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if err := fsys.Close(handle); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
	if err := fsys.Delete("tmp.bin"); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if _, err := fsys.Open("tmp.bin"); err == nil {
		t.Error("Open() after Delete() returned nil error")
	}

	handle2, err := fsys.Create("fresh.bin")
	if err != nil {
		t.Fatalf("Create() after delete returned error: %v", err)
	}
	if _, err := fsys.Write(handle2, bytes.Repeat([]byte{0x02}, 10*sectorsPerBlock*blockdev.SectorSize)); err != nil {
		t.Fatalf("Write() after delete returned error: %v", err)
	}
}

func TestOperationsRequireMount(t *testing.T) {
	fsys, _ := newImage(t, 20000)
	if err := fsys.Format(0, sectorsPerBlock); err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	if _, err := fsys.Create("x"); err == nil {
		t.Error("Create() before Mount() returned nil error")
	}
}

func TestUmountThenRemount(t *testing.T) {
	fsys := formattedMounted(t, 20000)
	handle, err := fsys.Create("persisted.txt")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if _, err := fsys.Write(handle, []byte("durable")); err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}
	if err := fsys.Close(handle); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
	if err := fsys.Umount(); err != nil {
		t.Fatalf("Umount() returned error: %v", err)
	}
	if err := fsys.Mount(0); err != nil {
		t.Fatalf("re-Mount() returned error: %v", err)
	}
	h2, err := fsys.Open("persisted.txt")
	if err != nil {
		t.Fatalf("Open() after remount returned error: %v", err)
	}
	got := make([]byte, len("durable"))
	if _, err := fsys.Read(h2, got); err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("Read() after remount = %q, want %q", got, "durable")
	}
}
