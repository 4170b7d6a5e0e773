package xl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/adnsv/srw/xml"
	"github.com/valyala/bytebufferpool"
	"go.alis.build/alog"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// Writer renders a Workbook into the parts of an xlsx package and hands
// them to a Storage. Parts are always emitted in the same order:
// content types, package rels, workbook, workbook rels, styles, shared
// strings, then one part per worksheet.
type Writer struct {
	out            Storage
	config         Config
	lastGlobalId   int
	lastWorkbookId int

	GlobalRels          map[string]RelInfo // maps id to absolute path
	WorkbookRels        map[string]RelInfo // maps id to absolute paths
	DefaultContentTypes map[string]string  // maps path extension to content-type
	PartContentTypes    map[string]string  // maps path partname to content-type

	sst    *SharedStringTable
	sheets []sheetPart
}

type RelInfo struct {
	Type   string // url to schema type
	Target string // relative path
}

type sheetPart struct {
	sheet   *Worksheet
	id      int
	rid     string
	abspath string
}

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeOfficeDocument = nsRelationships + "/officeDocument"
	relTypeWorksheet      = nsRelationships + "/worksheet"
	relTypeStyles         = nsRelationships + "/styles"
	relTypeSharedStrings  = nsRelationships + "/sharedStrings"

	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctRels          = "application/vnd.openxmlformats-package.relationships+xml"

	pathContentTypes  = "[Content_Types].xml"
	pathPackageRels   = "/_rels/.rels"
	pathWorkbook      = "/xl/workbook.xml"
	pathWorkbookRels  = "/xl/_rels/workbook.xml.rels"
	pathStyles        = "/xl/styles.xml"
	pathSharedStrings = "/xl/sharedStrings.xml"
)

func NewWriter(s Storage, opts ...Option) *Writer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Writer{
		out:    s,
		config: cfg.normalized(),
	}
}

// SharedStrings returns the table built by the last Write.
func (w *Writer) SharedStrings() *SharedStringTable { return w.sst }

func (w *Writer) nextGlobalID() (int, string) {
	w.lastGlobalId++
	return w.lastGlobalId, fmt.Sprintf("rId%d", w.lastGlobalId)
}
func (w *Writer) nextWorkbookID() (int, string) {
	w.lastWorkbookId++
	return w.lastWorkbookId, fmt.Sprintf("rId%d", w.lastWorkbookId)
}

func (w *Writer) Write(wb *Workbook) error {
	return w.WriteContext(context.Background(), wb)
}

func (w *Writer) WriteContext(ctx context.Context, wb *Workbook) error {
	if err := wb.validate(); err != nil {
		return err
	}

	w.plan(wb)
	w.intern()
	alog.Debugf(ctx, "xl: %d shared strings (%d references)", w.sst.Len(), w.sst.Count())

	parts := []func() error{
		w.writeContentTypes,
		func() error { return w.writeRels(pathPackageRels, w.GlobalRels) },
		w.writeWorkbook,
		func() error { return w.writeRels(pathWorkbookRels, w.WorkbookRels) },
		w.writeStyles,
		w.writeSharedStrings,
	}
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := part(); err != nil {
			return err
		}
	}

	for _, sp := range w.sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeSheet(sp); err != nil {
			return fmt.Errorf("sheet '%s': %w", sp.sheet.name, err)
		}
		alog.Debugf(ctx, "xl: wrote %s (%d cells)", sp.abspath, sp.sheet.cells)
	}

	return nil
}

// plan assigns ids, relationships and content types for every part before
// anything is written, so the manifests can go first.
func (w *Writer) plan(wb *Workbook) {
	w.lastGlobalId = 0
	w.lastWorkbookId = 0
	w.GlobalRels = map[string]RelInfo{}
	w.WorkbookRels = map[string]RelInfo{}
	w.DefaultContentTypes = map[string]string{
		"xml":  "application/xml",
		"rels": ctRels,
	}
	w.PartContentTypes = map[string]string{}
	w.sheets = w.sheets[:0]

	_, rid := w.nextGlobalID()
	w.PartContentTypes[pathWorkbook] = ctWorkbook
	w.GlobalRels[rid] = RelInfo{Type: relTypeOfficeDocument, Target: "xl/workbook.xml"}

	for _, sheet := range wb.sheets {
		id, rid := w.nextWorkbookID()
		relpath := fmt.Sprintf("worksheets/sheet%d.xml", id)
		abspath := "/xl/" + relpath
		w.PartContentTypes[abspath] = ctWorksheet
		w.WorkbookRels[rid] = RelInfo{Type: relTypeWorksheet, Target: relpath}
		w.sheets = append(w.sheets, sheetPart{sheet: sheet, id: id, rid: rid, abspath: abspath})
	}

	_, rid = w.nextWorkbookID()
	w.PartContentTypes[pathStyles] = ctStyles
	w.WorkbookRels[rid] = RelInfo{Type: relTypeStyles, Target: "styles.xml"}

	_, rid = w.nextWorkbookID()
	w.PartContentTypes[pathSharedStrings] = ctSharedStrings
	w.WorkbookRels[rid] = RelInfo{Type: relTypeSharedStrings, Target: "sharedStrings.xml"}
}

// intern fills a fresh shared string table, walking sheets in file order and
// cells in row-major order.
func (w *Writer) intern() {
	w.sst = NewSharedStringTable()
	for _, sp := range w.sheets {
		for row := range sp.sheet.rows() {
			for _, c := range row.cells {
				if c.v.typ == CellTypeText {
					w.sst.Intern(c.v.s)
				}
			}
		}
	}
}

// writeBlob renders a small part into a pooled buffer and stores it.
func (w *Writer) writeBlob(abspath string, render func(x *xml.Writer)) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	x := xml.NewWriter(bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()
	render(x)

	return w.out.WriteBlob(abspath, bb.B)
}

// writeStream renders a part straight into its storage entry through a
// buffer of Config.BufferSize bytes. render should return early once the
// part's writer reports an error.
func (w *Writer) writeStream(abspath string, render func(x *xml.Writer, failed func() error)) error {
	f, err := w.out.Create(abspath)
	if err != nil {
		return err
	}
	sw := &stickyWriter{w: f}
	bw := bufio.NewWriterSize(sw, w.config.BufferSize)

	x := xml.NewWriter(bw, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()
	render(x, func() error { return sw.err })

	if err := bw.Flush(); err != nil {
		f.Close()
		return streamError(abspath, err)
	}
	if err := f.Close(); err != nil {
		return streamError(abspath, err)
	}
	return nil
}

func streamError(part string, err error) error {
	if errors.Is(err, ErrIO) || errors.Is(err, ErrCorruptArchive) {
		return err
	}
	return &CorruptArchiveError{Part: part, Err: err}
}

func (w *Writer) writeContentTypes() error {
	return w.writeBlob(pathContentTypes, func(x *xml.Writer) {
		x.OTag("Types")
		x.Attr("xmlns", nsContentTypes)
		enumerate(w.DefaultContentTypes, func(ext, ctype string) error {
			x.OTag("+Default").Attr("Extension", ext).Attr("ContentType", ctype).CTag()
			return nil
		})
		enumerate(w.PartContentTypes, func(abspath, ctype string) error {
			x.OTag("+Override").Attr("PartName", abspath).Attr("ContentType", ctype).CTag()
			return nil
		})
		x.CTag()
	})
}

func (w *Writer) writeWorkbook() error {
	return w.writeBlob(pathWorkbook, func(x *xml.Writer) {
		x.OTag("workbook")
		x.Attr("xmlns", nsMain)
		x.Attr("xmlns:r", nsRelationships)

		x.OTag("+sheets")
		for _, sp := range w.sheets {
			x.OTag("+sheet")
			x.Attr("name", sp.sheet.name)
			x.Attr("sheetId", sp.id)
			x.Attr("r:id", sp.rid)
			x.CTag()
		}
		x.CTag() // sheets

		x.CTag() // workbook
	})
}

// writeStyles emits the smallest stylesheet spreadsheet applications
// accept: one font, the two mandatory fills, one border and one cell format.
func (w *Writer) writeStyles() error {
	return w.writeBlob(pathStyles, func(x *xml.Writer) {
		x.OTag("styleSheet")
		x.Attr("xmlns", nsMain)

		x.OTag("+fonts").Attr("count", 1)
		x.OTag("+font")
		x.OTag("+sz").Attr("val", 11).CTag()
		x.OTag("+name").Attr("val", "Calibri").CTag()
		x.OTag("+family").Attr("val", 2).CTag()
		x.CTag() // font
		x.CTag() // fonts

		x.OTag("+fills").Attr("count", 2)
		x.OTag("+fill")
		x.OTag("+patternFill").Attr("patternType", "none").CTag()
		x.CTag()
		x.OTag("+fill")
		x.OTag("+patternFill").Attr("patternType", "gray125").CTag()
		x.CTag()
		x.CTag() // fills

		x.OTag("+borders").Attr("count", 1)
		x.OTag("+border")
		x.OTag("+left").CTag()
		x.OTag("+right").CTag()
		x.OTag("+top").CTag()
		x.OTag("+bottom").CTag()
		x.OTag("+diagonal").CTag()
		x.CTag() // border
		x.CTag() // borders

		x.OTag("+cellStyleXfs").Attr("count", 1)
		x.OTag("+xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0).CTag()
		x.CTag()

		x.OTag("+cellXfs").Attr("count", 1)
		x.OTag("+xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0).Attr("xfId", 0).CTag()
		x.CTag()

		x.OTag("+cellStyles").Attr("count", 1)
		x.OTag("+cellStyle").Attr("name", "Normal").Attr("xfId", 0).Attr("builtinId", 0).CTag()
		x.CTag()

		x.CTag() // styleSheet
	})
}

func (w *Writer) writeSharedStrings() error {
	return w.writeStream(pathSharedStrings, func(x *xml.Writer, failed func() error) {
		x.OTag("sst")
		x.Attr("xmlns", nsMain)
		x.Attr("count", w.sst.Count())
		x.Attr("uniqueCount", w.sst.Len())

		for i, s := range w.sst.Strings() {
			if i%1024 == 0 && failed() != nil {
				return
			}
			x.OTag("+si")
			x.OTag("t")
			if preserveSpace(s) {
				x.Attr("xml:space", "preserve")
			}
			x.String(escapeXstring(s))
			x.CTag() // t
			x.CTag() // si
		}

		x.CTag() // sst
	})
}

func (w *Writer) writeSheet(sp sheetPart) error {
	sh := sp.sheet
	return w.writeStream(sp.abspath, func(x *xml.Writer, failed func() error) {
		x.OTag("worksheet")
		x.Attr("xmlns", nsMain)
		x.Attr("xmlns:r", nsRelationships)

		x.OTag("+dimension").Attr("ref", sh.Dimension()).CTag()

		ref := make([]byte, 0, 16)
		x.OTag("+sheetData")
		for row := range sh.rows() {
			if failed() != nil {
				return
			}
			first, last, ok := row.span()
			if !ok {
				continue
			}

			x.OTag("+row").Attr("r", int(row.r)+1)
			x.Attr("spans", fmt.Sprintf("%d:%d", first+1, last+1))

			for _, cell := range row.cells {
				if cell.v.IsEmpty() {
					continue
				}
				ref = appendCellRef(ref[:0], row.r, cell.col)
				x.OTag("+c").Attr("r", string(ref)).Attr("t", cell.v.xlsxType())

				switch cell.v.typ {
				case CellTypeText:
					i, _ := w.sst.Lookup(cell.v.s)
					x.OTag("v").Write(i).CTag()
				default:
					x.OTag("v").String(cell.v.xlsxValue()).CTag()
				}
				x.CTag() // c
			}

			x.CTag() // row
		}
		x.CTag() // sheetData

		x.CTag() // worksheet
	})
}

func (w *Writer) writeRels(path string, rels map[string]RelInfo) error {
	var err error
	werr := w.writeBlob(path, func(x *xml.Writer) {
		x.OTag("Relationships")
		x.Attr("xmlns", nsPackageRels)
		err = enumerate(rels, func(rid string, info RelInfo) error {
			x.OTag("+Relationship").Attr("Id", rid).Attr("Type", info.Type).Attr("Target", info.Target)
			x.CTag()

			return nil
		})
		x.CTag()
	})
	if err != nil {
		return err
	}
	return werr
}

func enumerate[M ~map[K]V, K constraints.Ordered, V any](m M, callback func(k K, v V) error) error {
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		err := callback(k, m[k])
		if err != nil {
			return err
		}
	}
	return nil
}

// stickyWriter stops forwarding after the first error and keeps it, so a
// long render can notice a failed entry without checking every write.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}
