package xl

import (
	"cmp"
	"iter"
	"slices"
)

// Worksheet is a sparse grid of cells. Rows are kept sorted by row number
// and cells within a row by column number, so that serialization walks them
// in the order the format requires. Writes in ascending order append.
//
// A Worksheet is not safe for concurrent use.
type Worksheet struct {
	name   string
	data   []sheetRow
	cells  int
	bounds Bounds
}

type sheetRow struct {
	r     uint32 // 0-based
	cells []sheetCell
}

type sheetCell struct {
	col uint32 // 0-based
	v   CellValue
}

// Bounds is the rectangle (0,0)-(MaxRow,MaxCol) covering every cell written
// so far. Empty is set while nothing has been written.
type Bounds struct {
	MaxRow uint32
	MaxCol uint32
	Empty  bool
}

func newWorksheet(name string) *Worksheet {
	return &Worksheet{
		name:   name,
		bounds: Bounds{Empty: true},
	}
}

func (s *Worksheet) Name() string { return s.name }

// Write stores v at (row, col), replacing any previous value.
func (s *Worksheet) Write(row, col uint32, v CellValue) error {
	if row >= MaxRows {
		return &RangeError{Row: row, Col: col, Reason: "row exceeds the sheet limit of 1048576 rows"}
	}
	if col >= MaxColumns {
		return &RangeError{Row: row, Col: col, Reason: "column exceeds the sheet limit of 16384 columns"}
	}
	if v.typ == CellTypeNumber && !representable(v.n) {
		return &RangeError{Row: row, Col: col, Reason: "NaN and infinite numbers cannot be stored"}
	}

	if s.rowAt(row).set(col, v) {
		s.cells++
	}

	if s.bounds.Empty {
		s.bounds = Bounds{MaxRow: row, MaxCol: col}
	} else {
		s.bounds.MaxRow = max(s.bounds.MaxRow, row)
		s.bounds.MaxCol = max(s.bounds.MaxCol, col)
	}
	return nil
}

func (s *Worksheet) WriteText(row, col uint32, v string) error {
	return s.Write(row, col, Text(v))
}

func (s *Worksheet) WriteNumber(row, col uint32, v float64) error {
	return s.Write(row, col, Number(v))
}

func (s *Worksheet) WriteBool(row, col uint32, v bool) error {
	return s.Write(row, col, Bool(v))
}

// Value returns the value last written at (row, col).
func (s *Worksheet) Value(row, col uint32) (CellValue, bool) {
	i, ok := s.findRow(row)
	if !ok {
		return CellValue{}, false
	}
	r := &s.data[i]
	j, ok := r.find(col)
	if !ok {
		return CellValue{}, false
	}
	return r.cells[j].v, true
}

func (s *Worksheet) Bounds() Bounds { return s.bounds }

// CellCount returns the number of distinct addresses written.
func (s *Worksheet) CellCount() int { return s.cells }

// Dimension returns the used range as rendered in the dimension element.
func (s *Worksheet) Dimension() string {
	if s.bounds.Empty {
		return "A1"
	}
	return RangeRef(CellAddress{}, CellAddress{Row: s.bounds.MaxRow, Col: s.bounds.MaxCol})
}

// rows yields the stored rows in ascending order.
func (s *Worksheet) rows() iter.Seq[*sheetRow] {
	return func(yield func(*sheetRow) bool) {
		for i := range s.data {
			if !yield(&s.data[i]) {
				return
			}
		}
	}
}

func (s *Worksheet) rowAt(n uint32) *sheetRow {
	k := len(s.data)
	if k == 0 || s.data[k-1].r < n {
		s.data = append(s.data, sheetRow{r: n})
		return &s.data[k]
	}
	if s.data[k-1].r == n {
		return &s.data[k-1]
	}
	i, ok := s.findRow(n)
	if !ok {
		s.data = slices.Insert(s.data, i, sheetRow{r: n})
	}
	return &s.data[i]
}

func (s *Worksheet) findRow(n uint32) (int, bool) {
	return slices.BinarySearchFunc(s.data, n, func(r sheetRow, n uint32) int {
		return cmp.Compare(r.r, n)
	})
}

// set stores v in column col and reports whether the column was new.
func (r *sheetRow) set(col uint32, v CellValue) bool {
	k := len(r.cells)
	if k == 0 || r.cells[k-1].col < col {
		r.cells = append(r.cells, sheetCell{col: col, v: v})
		return true
	}
	if r.cells[k-1].col == col {
		r.cells[k-1].v = v
		return false
	}
	i, ok := r.find(col)
	if ok {
		r.cells[i].v = v
		return false
	}
	r.cells = slices.Insert(r.cells, i, sheetCell{col: col, v: v})
	return true
}

func (r *sheetRow) find(col uint32) (int, bool) {
	return slices.BinarySearchFunc(r.cells, col, func(c sheetCell, col uint32) int {
		return cmp.Compare(c.col, col)
	})
}

// span returns the first and last column holding a value, skipping empty
// cells. ok is false when the row has nothing to serialize.
func (r *sheetRow) span() (first, last uint32, ok bool) {
	for _, c := range r.cells {
		if c.v.IsEmpty() {
			continue
		}
		if !ok {
			first, ok = c.col, true
		}
		last = c.col
	}
	return first, last, ok
}
