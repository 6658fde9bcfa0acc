package inode

import (
	"github.com/t2fs-go/t2fs/bitmapfs"
	"github.com/t2fs-go/t2fs/blockdev"
	"github.com/t2fs-go/t2fs/superblock"
)

// position decomposes a byte offset into (file_block, sector_in_block,
// offset_in_sector), per §4.5.1/§4.7.
func position(sb *superblock.Superblock, p uint32) (fileBlock, sectorInBlock, offsetInSector uint32) {
	bytesPerBlock := uint32(sb.BlockSize) * blockdev.SectorSize
	fileBlock = p / bytesPerBlock
	withinBlock := p % bytesPerBlock
	return fileBlock, withinBlock / blockdev.SectorSize, withinBlock % blockdev.SectorSize
}

// ReadAt reads len(buf) bytes (or fewer, if the file is shorter) starting
// at byte offset cursor, per §4.7's Read.
func ReadAt(dev *blockdev.Device, geom superblock.Geometry, sb *superblock.Superblock, n *Inode, cursor uint32, buf []byte) (int, error) {
	if cursor >= n.BytesFileSize {
		return 0, nil
	}
	toRead := uint32(len(buf))
	if remaining := n.BytesFileSize - cursor; toRead > remaining {
		toRead = remaining
	}

	sector := make([]byte, blockdev.SectorSize)
	var produced uint32
	for produced < toRead {
		p := cursor + produced
		fileBlock, sectorInBlock, offsetInSector := position(sb, p)
		absSector, err := Resolve(dev, geom, sb, n, fileBlock, sectorInBlock)
		if err != nil {
			return int(produced), &IOError{Op: "read", Err: err}
		}
		if err := dev.ReadSector(absSector, sector); err != nil {
			return int(produced), &IOError{Op: "read", Err: err}
		}
		chunk := blockdev.SectorSize - offsetInSector
		if remaining := toRead - produced; chunk > remaining {
			chunk = remaining
		}
		copy(buf[produced:produced+chunk], sector[offsetInSector:offsetInSector+chunk])
		produced += chunk
	}
	return int(produced), nil
}

// WriteAt overwrites len(buf) bytes starting at byte offset cursor, growing
// the inode as needed, per §4.7's Write. It persists inode number i after
// the loop completes, with bytesFileSize raised to cover the write if it
// extended past the current size.
func WriteAt(dev *blockdev.Device, bm *bitmapfs.Bitmaps, geom superblock.Geometry, sb *superblock.Superblock, i uint32, n *Inode, cursor uint32, buf []byte) (int, error) {
	sector := make([]byte, blockdev.SectorSize)
	var written uint32
	toWrite := uint32(len(buf))

	for written < toWrite {
		p := cursor + written
		fileBlock, sectorInBlock, offsetInSector := position(sb, p)

		if fileBlock >= n.BlocksFileSize {
			if _, err := Grow(dev, bm, geom, sb, i, n); err != nil {
				n.BytesFileSize = maxUint32(n.BytesFileSize, cursor+written)
				_ = Write(dev, geom, i, n)
				return int(written), err
			}
		}

		absSector, err := Resolve(dev, geom, sb, n, fileBlock, sectorInBlock)
		if err != nil {
			return int(written), &IOError{Op: "write", Err: err}
		}
		if err := dev.ReadSector(absSector, sector); err != nil {
			return int(written), &IOError{Op: "write", Err: err}
		}
		chunk := blockdev.SectorSize - offsetInSector
		if remaining := toWrite - written; chunk > remaining {
			chunk = remaining
		}
		copy(sector[offsetInSector:offsetInSector+chunk], buf[written:written+chunk])
		if err := dev.WriteSector(absSector, sector); err != nil {
			return int(written), &IOError{Op: "write", Err: err}
		}
		written += chunk
	}

	n.BytesFileSize = maxUint32(n.BytesFileSize, cursor+written)
	if err := Write(dev, geom, i, n); err != nil {
		return int(written), &IOError{Op: "write", Err: err}
	}
	return int(written), nil
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
