package xl

import (
	"math"
	"strconv"
)

// CellType is the type of cell value type.
type CellType int

// Cell value types enumeration.
const (
	CellTypeEmpty CellType = iota
	CellTypeText
	CellTypeNumber
	CellTypeBool
)

func (t CellType) String() string {
	switch t {
	case CellTypeText:
		return "text"
	case CellTypeNumber:
		return "number"
	case CellTypeBool:
		return "bool"
	default:
		return "empty"
	}
}

// CellValue holds the content of a single cell. The zero value is an empty
// cell. Values are built with Text, Number, Bool or Empty; the writer never
// guesses a type from an untyped value.
type CellValue struct {
	typ CellType
	s   string
	n   float64
	b   bool
}

func Text(s string) CellValue    { return CellValue{typ: CellTypeText, s: s} }
func Number(n float64) CellValue { return CellValue{typ: CellTypeNumber, n: n} }
func Int(n int64) CellValue      { return CellValue{typ: CellTypeNumber, n: float64(n)} }
func Bool(b bool) CellValue      { return CellValue{typ: CellTypeBool, b: b} }
func Empty() CellValue           { return CellValue{} }

func (v CellValue) Type() CellType { return v.typ }
func (v CellValue) IsEmpty() bool  { return v.typ == CellTypeEmpty }

// Str returns the text of a text cell and "" otherwise.
func (v CellValue) Str() string { return v.s }

// Float returns the number of a numeric cell and 0 otherwise.
func (v CellValue) Float() float64 { return v.n }

// Boolean returns the flag of a boolean cell and false otherwise.
func (v CellValue) Boolean() bool { return v.b }

func (v CellValue) String() string {
	switch v.typ {
	case CellTypeText:
		return v.s
	case CellTypeNumber:
		return formatNumber(v.n)
	case CellTypeBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// xlsxType returns the value of the t attribute of the c element.
func (v CellValue) xlsxType() string {
	switch v.typ {
	case CellTypeText:
		return "s"
	case CellTypeNumber:
		return "n"
	case CellTypeBool:
		return "b"
	}
	return ""
}

// xlsxValue returns the raw content of the v element. Text cells are
// referenced through the shared string table, so their value is rendered by
// the writer instead.
func (v CellValue) xlsxValue() string {
	switch v.typ {
	case CellTypeNumber:
		return formatNumber(v.n)
	case CellTypeBool:
		if v.b {
			return "1"
		}
		return "0"
	}
	return ""
}

// formatNumber renders the shortest decimal that round-trips to n, using
// exponent notation only for very small or very large magnitudes.
func formatNumber(n float64) string {
	if a := math.Abs(n); a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'E', -1, 64)
}

func representable(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
