package fs

import "github.com/t2fs-go/t2fs/superblock"

// PartitionInfo reads and returns the superblock and derived geometry of
// partition index without mounting it, for inspection tooling.
func (f *FileSystem) PartitionInfo(index int) (*superblock.Superblock, superblock.Geometry, error) {
	dev, _, err := f.partitionDevice(index)
	if err != nil {
		return nil, superblock.Geometry{}, err
	}
	sb, err := superblock.Read(dev)
	if err != nil {
		return nil, superblock.Geometry{}, &IOError{Op: "info", Err: err}
	}
	return sb, sb.Geometry(), nil
}
