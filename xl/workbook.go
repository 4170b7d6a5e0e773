package xl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.alis.build/alog"
	"golang.org/x/text/cases"
)

// Workbook is an ordered collection of worksheets. Sheet order in the saved
// file follows the order of AddWorksheet calls.
//
// A Workbook is not safe for concurrent use.
type Workbook struct {
	config Config
	sheets []*Worksheet

	sheetMap map[string]*Worksheet // keyed by folded name
	fold     cases.Caser
}

func NewWorkbook(opts ...Option) *Workbook {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Workbook{
		config:   cfg.normalized(),
		sheetMap: map[string]*Worksheet{},
		fold:     cases.Fold(),
	}
}

// AddWorksheet appends a new, empty worksheet. Names are compared
// case-insensitively, as spreadsheet applications do.
func (wb *Workbook) AddWorksheet(name string) (*Worksheet, error) {
	if err := validateSheetName(name); err != nil {
		return nil, err
	}

	key := wb.fold.String(name)
	if other, exists := wb.sheetMap[key]; exists {
		return nil, &SheetNameError{
			Name:      name,
			Reason:    fmt.Sprintf("duplicate of existing sheet '%s'", other.name),
			Duplicate: true,
		}
	}

	sheet := newWorksheet(name)
	wb.sheets = append(wb.sheets, sheet)
	wb.sheetMap[key] = sheet

	return sheet, nil
}

func (wb *Workbook) WorksheetCount() int { return len(wb.sheets) }

// Worksheets returns the sheets in file order.
func (wb *Workbook) Worksheets() []*Worksheet {
	return append([]*Worksheet(nil), wb.sheets...)
}

// Worksheet looks a sheet up by name, ignoring case.
func (wb *Workbook) Worksheet(name string) *Worksheet {
	return wb.sheetMap[wb.fold.String(name)]
}

func (wb *Workbook) Config() Config { return wb.config }

func validateSheetName(s string) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return &SheetNameError{Name: s, Reason: "empty sheet name is not allowed"}
	} else if n > 31 {
		return &SheetNameError{Name: s, Reason: "the sheet name is longer than 31 characters"}
	}
	if !utf8.ValidString(s) {
		return &SheetNameError{Name: s, Reason: "the sheet name is not valid UTF-8"}
	}
	if strings.HasPrefix(s, "'") || strings.HasSuffix(s, "'") {
		return &SheetNameError{Name: s, Reason: "the first or last character of the sheet name can not be a single quote"}
	}
	for _, r := range s {
		if r < 0x20 || !xmlChar(r) {
			return &SheetNameError{Name: s, Reason: fmt.Sprintf("the sheet name can not contain the character %U", r)}
		}
	}
	if strings.ContainsAny(s, ":\\/?*[]") {
		return &SheetNameError{Name: s, Reason: "the sheet name can not contain any of the characters :\\/?*[]"}
	}
	return nil
}

func (wb *Workbook) validate() error {
	if len(wb.sheets) == 0 {
		return &ValidationError{Reason: "a workbook needs at least one worksheet"}
	}
	return nil
}

// Save writes the workbook to path. The file is replaced atomically: on
// failure any previous file at path is left as it was.
func (wb *Workbook) Save(path string) error {
	return wb.SaveContext(context.Background(), path)
}

// SaveContext is Save with a context. The context is attached to log
// entries and checked between package parts.
func (wb *Workbook) SaveContext(ctx context.Context, path string) (err error) {
	if err := wb.validate(); err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if base == "" {
		return &IOError{Op: "save", Path: path, Err: fmt.Errorf("path names a directory")}
	}
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	alog.Debugf(ctx, "xl: saving %d sheet(s) to %s via %s", len(wb.sheets), path, tmp)

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	n, err := wb.writeTo(ctx, f)
	if err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tmp, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "close", Path: tmp, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	alog.Debugf(ctx, "xl: saved %s (%d bytes)", path, n)
	return nil
}

// WriteTo streams the package to out. When it fails, out may hold a
// truncated package without a central directory.
func (wb *Workbook) WriteTo(out io.Writer) (int64, error) {
	if err := wb.validate(); err != nil {
		return 0, err
	}
	return wb.writeTo(context.Background(), out)
}

func (wb *Workbook) writeTo(ctx context.Context, out io.Writer) (int64, error) {
	zs := newZipStorage(out, wb.config.CompressionLevel)
	if err := NewWriter(zs, WithConfig(wb.config)).WriteContext(ctx, wb); err != nil {
		return zs.Written(), err
	}
	err := zs.Close()
	return zs.Written(), err
}

// WriteDir writes the unpacked part tree into dir. It is meant for
// inspecting generated XML.
func (wb *Workbook) WriteDir(dir string) error {
	if err := wb.validate(); err != nil {
		return err
	}
	return NewWriter(NewDirStorage(dir), WithConfig(wb.config)).Write(wb)
}
