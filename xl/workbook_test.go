package xl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkbook(t *testing.T) {
	wb := NewWorkbook()
	assert.Equal(t, 0, wb.WorksheetCount())
	assert.Empty(t, wb.Worksheets())
	assert.Equal(t, DefaultConfig(), wb.Config())
}

func TestAddWorksheet(t *testing.T) {
	wb := NewWorkbook()
	s1, err := wb.AddWorksheet("Sheet1")
	require.NoError(t, err)
	s2, err := wb.AddWorksheet("Data")
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", s1.Name())
	assert.Equal(t, 2, wb.WorksheetCount())
	assert.Equal(t, []*Worksheet{s1, s2}, wb.Worksheets())
	assert.Same(t, s2, wb.Worksheet("data"))
	assert.Nil(t, wb.Worksheet("missing"))
}

func TestAddWorksheetInvalidNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("x", 32)},
		{"colon", "a:b"},
		{"backslash", `a\b`},
		{"slash", "a/b"},
		{"question", "a?"},
		{"star", "a*"},
		{"open bracket", "[a"},
		{"close bracket", "a]"},
		{"leading quote", "'a"},
		{"trailing quote", "a'"},
		{"bad utf8", "a\xff"},
		{"control", "bad\x01name"},
		{"tab", "a\tb"},
		{"newline", "a\nb"},
		{"carriage return", "a\rb"},
		{"noncharacter", "a\uFFFE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, _ := mustWorkbook(t, "Existing")

			sh, err := wb.AddWorksheet(tt.in)
			assert.Nil(t, sh)
			require.ErrorIs(t, err, ErrNameConflict)
			require.ErrorIs(t, err, ErrRange)

			var ne *SheetNameError
			require.ErrorAs(t, err, &ne)
			assert.False(t, ne.Duplicate)
			assert.Equal(t, 1, wb.WorksheetCount())
		})
	}
}

func TestAddWorksheetNameLength(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddWorksheet(strings.Repeat("x", 31))
	require.NoError(t, err)
	// the limit counts characters, not bytes
	_, err = wb.AddWorksheet(strings.Repeat("é", 31))
	require.NoError(t, err)
	_, err = wb.AddWorksheet("it's fine")
	require.NoError(t, err)
}

func TestAddWorksheetDuplicate(t *testing.T) {
	for _, dup := range []string{"Data", "DATA", "data", "dAtA"} {
		t.Run(dup, func(t *testing.T) {
			wb, sheets := mustWorkbook(t, "Data", "Other")

			sh, err := wb.AddWorksheet(dup)
			assert.Nil(t, sh)
			require.ErrorIs(t, err, ErrNameConflict)
			assert.NotErrorIs(t, err, ErrRange)

			var ne *SheetNameError
			require.ErrorAs(t, err, &ne)
			assert.True(t, ne.Duplicate)

			assert.Equal(t, sheets, wb.Worksheets())
			assert.Equal(t, 2, wb.WorksheetCount())
		})
	}
}

func TestAddWorksheetUnicodeFolding(t *testing.T) {
	wb, _ := mustWorkbook(t, "Ärger")
	_, err := wb.AddWorksheet("äRGER")
	require.ErrorIs(t, err, ErrNameConflict)

	_, err = wb.AddWorksheet("Arger")
	require.NoError(t, err)
}

func TestWorksheetsReturnsCopy(t *testing.T) {
	wb, _ := mustWorkbook(t, "A", "B")
	list := wb.Worksheets()
	list[0] = nil
	assert.NotNil(t, wb.Worksheets()[0])
}

func TestConfigOptions(t *testing.T) {
	wb := NewWorkbook(WithCompressionLevel(9), WithBufferSize(1<<20))
	assert.Equal(t, Config{CompressionLevel: 9, BufferSize: 1 << 20}, wb.Config())

	wb = NewWorkbook(WithConfig(Config{CompressionLevel: 42, BufferSize: 1}))
	assert.Equal(t, DefaultConfig(), wb.Config(), "invalid values fall back to defaults")
}
