package xl

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type xlsxWorksheet struct {
	XMLName   xml.Name `xml:"worksheet"`
	Dimension struct {
		Ref string `xml:"ref,attr"`
	} `xml:"dimension"`
	SheetData struct {
		Row []xlsxRow `xml:"row"`
	} `xml:"sheetData"`
}

type xlsxRow struct {
	R     int     `xml:"r,attr"`
	Spans string  `xml:"spans,attr"`
	C     []xlsxC `xml:"c"`
}

type xlsxC struct {
	R string `xml:"r,attr"`
	T string `xml:"t,attr"`
	V string `xml:"v"`
}

type xlsxSST struct {
	XMLName     xml.Name `xml:"sst"`
	Count       int      `xml:"count,attr"`
	UniqueCount int      `xml:"uniqueCount,attr"`
	SI          []struct {
		T xlsxT `xml:"t"`
	} `xml:"si"`
}

type xlsxT struct {
	Space string `xml:"space,attr"`
	Text  string `xml:",chardata"`
}

type xlsxWorkbook struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []struct {
			Name    string `xml:"name,attr"`
			SheetID int    `xml:"sheetId,attr"`
			RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xlsxRelationships struct {
	XMLName      xml.Name `xml:"Relationships"`
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xlsxTypes struct {
	XMLName xml.Name `xml:"Types"`
	Default []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Override []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// pkg is an opened xlsx package held in memory.
type pkg struct {
	t *testing.T
	r *zip.Reader
}

func openPackage(t *testing.T, data []byte) *pkg {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return &pkg{t: t, r: r}
}

func (p *pkg) names() []string {
	var names []string
	for _, f := range p.r.File {
		names = append(names, f.Name)
	}
	return names
}

func (p *pkg) part(name string) []byte {
	p.t.Helper()
	for _, f := range p.r.File {
		if f.Name != name {
			continue
		}
		require.Equal(p.t, zip.Deflate, f.Method, "entry %s", name)
		rc, err := f.Open()
		require.NoError(p.t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(p.t, err)
		return data
	}
	p.t.Fatalf("part %s not found in %v", name, p.names())
	return nil
}

func (p *pkg) decode(name string, v any) {
	p.t.Helper()
	require.NoError(p.t, xml.Unmarshal(p.part(name), v), "decoding %s", name)
}

func (p *pkg) sheet(n int) xlsxWorksheet {
	var ws xlsxWorksheet
	p.decode("xl/worksheets/sheet"+strconv.Itoa(n)+".xml", &ws)
	return ws
}

func (p *pkg) sst() xlsxSST {
	var sst xlsxSST
	p.decode("xl/sharedStrings.xml", &sst)
	return sst
}

// cellsByRef flattens a decoded worksheet.
func cellsByRef(ws xlsxWorksheet) map[string]xlsxC {
	m := map[string]xlsxC{}
	for _, row := range ws.SheetData.Row {
		for _, c := range row.C {
			m[c.R] = c
		}
	}
	return m
}

func mustWorkbook(t *testing.T, names ...string) (*Workbook, []*Worksheet) {
	t.Helper()
	wb := NewWorkbook()
	var sheets []*Worksheet
	for _, name := range names {
		sh, err := wb.AddWorksheet(name)
		require.NoError(t, err)
		sheets = append(sheets, sh)
	}
	return wb, sheets
}

func render(t *testing.T, wb *Workbook) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := wb.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}
