package mbr

import "fmt"

// InvalidSignatureError indicates the sector does not carry the T2FS MBR
// boot signature.
type InvalidSignatureError struct{}

func (e *InvalidSignatureError) Error() string {
	return "invalid MBR signature"
}

// PartitionIndexError indicates an out-of-range or unused partition slot
// was requested.
type PartitionIndexError struct {
	index int
}

func (e *PartitionIndexError) Error() string {
	return fmt.Sprintf("partition %d does not exist", e.index)
}

// NewPartitionIndexError builds a PartitionIndexError.
func NewPartitionIndexError(index int) *PartitionIndexError {
	return &PartitionIndexError{index: index}
}
