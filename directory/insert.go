package directory

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/inode"
	"github.com/t2fs-go/t2fs/superblock"
)

// Insert writes rec into the root directory, per §4.6's insertion: reuses
// the first TypeVal==Invalid slot if one exists, and only appends a new
// record when every existing slot is live. This fixes the source's defect
// of never reusing freed slots.
func Insert(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, root *inode.Inode, rec *Record) (int, error) {
	count := int(root.BytesFileSize / RecordSize)
	for i := 0; i < count; i++ {
		existing, err := RecordByIndex(dev, geom, sb, root, i)
		if err != nil {
			return -1, err
		}
		if existing.TypeVal == Invalid {
			if _, err := inode.WriteAt(dev, bm, geom, sb, RootInode, root, uint32(i)*RecordSize, rec.bytes()); err != nil {
				return -1, &IOError{Op: "insert", Err: err}
			}
			return i, nil
		}
	}

	if _, err := inode.WriteAt(dev, bm, geom, sb, RootInode, root, uint32(count)*RecordSize, rec.bytes()); err != nil {
		return -1, &IOError{Op: "insert", Err: err}
	}
	return count, nil
}

// MarkInvalid frees the slot at index i by overwriting its TypeVal, so a
// future Insert can reuse it.
func MarkInvalid(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, root *inode.Inode, i int) error {
	freed := &Record{TypeVal: Invalid}
	if _, err := inode.WriteAt(dev, bm, geom, sb, RootInode, root, uint32(i)*RecordSize, freed.bytes()); err != nil {
		return &IOError{Op: "delete", Err: err}
	}
	return nil
}
