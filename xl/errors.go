package xl

import (
	"errors"
	"fmt"
)

var (
	// ErrRange indicates a cell address, value or sheet name outside of what
	// the format can hold.
	ErrRange = errors.New("out of range")

	// ErrNameConflict indicates a worksheet name that cannot be added to the
	// workbook.
	ErrNameConflict = errors.New("worksheet name conflict")

	// ErrValidation indicates a workbook that cannot be saved as is.
	ErrValidation = errors.New("invalid workbook")

	// ErrIO indicates a failure of the underlying file or stream.
	ErrIO = errors.New("i/o failure")

	// ErrCorruptArchive indicates that the package could not be assembled
	// consistently. It is not expected absent an I/O failure.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// RangeError is returned for writes outside the grid and for values the
// format cannot represent.
type RangeError struct {
	Row    uint32
	Col    uint32
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("cell (%d, %d): %s", e.Row, e.Col, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// SheetNameError is returned by AddWorksheet. A malformed name matches both
// ErrRange and ErrNameConflict, a duplicate name matches ErrNameConflict.
type SheetNameError struct {
	Name      string
	Reason    string
	Duplicate bool
}

func (e *SheetNameError) Error() string {
	return fmt.Sprintf("sheet name '%s': %s", e.Name, e.Reason)
}

func (e *SheetNameError) Is(target error) bool {
	switch target {
	case ErrNameConflict:
		return true
	case ErrRange:
		return !e.Duplicate
	}
	return false
}

// ValidationError is returned by Save for workbooks that do not form a
// valid package.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid workbook: " + e.Reason }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// IOError wraps a failure of the file system or output stream.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// CorruptArchiveError reports an inconsistency while assembling a part.
type CorruptArchiveError struct {
	Part string
	Err  error
}

func (e *CorruptArchiveError) Error() string {
	return fmt.Sprintf("corrupt archive at %s: %v", e.Part, e.Err)
}

func (e *CorruptArchiveError) Unwrap() []error { return []error{ErrCorruptArchive, e.Err} }
