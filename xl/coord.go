package xl

import (
	"fmt"
	"strconv"
)

// Grid limits of the spreadsheetml format.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// CellAddress is a 0-based (row, column) coordinate.
type CellAddress struct {
	Row uint32
	Col uint32
}

// Valid reports whether the address lies inside the format's grid.
func (a CellAddress) Valid() bool {
	return a.Row < MaxRows && a.Col < MaxColumns
}

func (a CellAddress) String() string {
	return CellRef(a.Row, a.Col)
}

// ColumnLetters converts a 0-based column index to its column name. The
// naming is bijective base-26 without a zero digit: 0 is "A", 25 is "Z",
// 26 is "AA" and 701 is "ZZ".
func ColumnLetters(col uint32) string {
	var buf [8]byte
	i := len(buf)
	n := uint64(col) + 1
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ColumnIndex is the inverse of ColumnLetters. Lower case letters are
// accepted.
func ColumnIndex(letters string) (uint32, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column name")
	}
	var n uint64
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return 0, fmt.Errorf("invalid column name '%s'", letters)
		}
		n = n*26 + uint64(c-'A'+1)
		if n > MaxColumns {
			return 0, &RangeError{Col: uint32(n - 1), Reason: "column out of range"}
		}
	}
	return uint32(n - 1), nil
}

// CellRef renders a 0-based coordinate as an A1-style reference.
func CellRef(row, col uint32) string {
	b := make([]byte, 0, 12)
	return string(appendCellRef(b, row, col))
}

func appendCellRef(b []byte, row, col uint32) []byte {
	b = append(b, ColumnLetters(col)...)
	return strconv.AppendUint(b, uint64(row)+1, 10)
}

// ParseCellRef parses an A1-style reference into a 0-based coordinate.
func ParseCellRef(ref string) (row, col uint32, err error) {
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference '%s'", ref)
	}
	col, err = ColumnIndex(ref[:i])
	if err != nil {
		return 0, 0, err
	}
	r, err := strconv.ParseUint(ref[i:], 10, 32)
	if err != nil || r == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference '%s'", ref)
	}
	if r > MaxRows {
		return 0, 0, &RangeError{Row: uint32(r - 1), Col: col, Reason: "row out of range"}
	}
	return uint32(r - 1), col, nil
}

// RangeRef renders the rectangle between two addresses, collapsing a single
// cell range to a plain reference.
func RangeRef(first, last CellAddress) string {
	if first == last {
		return first.String()
	}
	return first.String() + ":" + last.String()
}
