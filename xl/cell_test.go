package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellValue(t *testing.T) {
	tests := []struct {
		name  string
		v     CellValue
		typ   CellType
		xtype string
		xval  string
	}{
		{"text", Text("Hello"), CellTypeText, "s", ""},
		{"number", Number(42.5), CellTypeNumber, "n", "42.5"},
		{"int", Int(30), CellTypeNumber, "n", "30"},
		{"true", Bool(true), CellTypeBool, "b", "1"},
		{"false", Bool(false), CellTypeBool, "b", "0"},
		{"empty", Empty(), CellTypeEmpty, "", ""},
		{"zero value", CellValue{}, CellTypeEmpty, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.v.Type())
			assert.Equal(t, tt.xtype, tt.v.xlsxType())
			assert.Equal(t, tt.xval, tt.v.xlsxValue())
			assert.Equal(t, tt.typ == CellTypeEmpty, tt.v.IsEmpty())
		})
	}
}

func TestCellValueAccessors(t *testing.T) {
	assert.Equal(t, "Hello", Text("Hello").Str())
	assert.Equal(t, 42.5, Number(42.5).Float())
	assert.True(t, Bool(true).Boolean())
	assert.Equal(t, "", Number(1).Str())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "0.1", Number(0.1).String())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42.5, "42.5"},
		{-3, "-3"},
		{0.1, "0.1"},
		{1e6, "1000000"},
		{123456789012345678, "123456789012345680"},
		{0.30000000000000004, "0.30000000000000004"},
		{1e21, "1E+21"},
		{1e-7, "1E-07"},
		{-2.5e-10, "-2.5E-10"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.in))
		})
	}

	a, b := 0.1, 0.2
	assert.Equal(t, "0.30000000000000004", formatNumber(a+b))
}
