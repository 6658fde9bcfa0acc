package fs

import "github.com/t2fs-go/t2fs/directory"

// Opendir resets the root directory cursor to the start, per §4.6.
func (f *FileSystem) Opendir() error {
	if _, err := f.requireMounted(); err != nil {
		return err
	}
	f.dir = directory.Open()
	return nil
}

// Readdir returns the next live record, skipping freed slots, or
// EndOfDirectoryError once the cursor reaches the end.
func (f *FileSystem) Readdir() (*directory.Record, error) {
	m, err := f.requireMounted()
	if err != nil {
		return nil, err
	}
	if err := f.requireRootOpened(); err != nil {
		return nil, err
	}
	for !f.dir.AtEnd(m.root) {
		rec, err := f.dir.Next(m.dev, m.geom, m.sb, m.root)
		if err != nil {
			return nil, err
		}
		if rec.TypeVal == directory.Invalid {
			continue
		}
		return rec, nil
	}
	return nil, &directory.EndOfDirectoryError{}
}

// Closedir releases the root directory cursor.
func (f *FileSystem) Closedir() error {
	if err := f.requireRootOpened(); err != nil {
		return err
	}
	f.dir = nil
	return nil
}
