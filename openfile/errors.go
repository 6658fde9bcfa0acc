package openfile

import "fmt"

// InvalidHandleError indicates an operation against a handle that is out of
// range or not currently open.
type InvalidHandleError struct {
	Handle int
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("openfile: invalid handle %d", e.Handle)
}

// TableFullError indicates the open-file table has no free slots.
type TableFullError struct{}

func (e *TableFullError) Error() string {
	return fmt.Sprintf("openfile: no free slots (capacity %d)", MaxOpenFiles)
}

// InvalidOffsetError indicates a Seek would move the cursor before the
// start of the file.
type InvalidOffsetError struct {
	Offset int64
}

func (e *InvalidOffsetError) Error() string {
	return fmt.Sprintf("openfile: cannot seek to negative offset %d", e.Offset)
}
