package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadValidator_AcceptsCSV(t *testing.T) {
	v := NewUploadValidator(1024)

	err := v.Validate("sales.csv", []byte("Код автомата;Сумма\nA01;150,00\n"))
	assert.NoError(t, err)
}

func TestUploadValidator_AcceptsXLSXMagic(t *testing.T) {
	v := NewUploadValidator(1024)

	data := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0x00}, 64)...)
	assert.NoError(t, v.Validate("sales.xlsx", data))
	assert.NoError(t, v.Validate("sales.XLSX", data))
}

func TestUploadValidator_RejectsLegacyXLS(t *testing.T) {
	v := NewUploadValidator(1024)

	// Old OLE-container workbooks are not readable; they must fail fast at
	// the extension check instead of as an import error.
	err := v.Validate("sales.xls", []byte{0xD0, 0xCF, 0x11, 0xE0})
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestUploadValidator_AcceptsUTF16CSV(t *testing.T) {
	v := NewUploadValidator(1024)

	// UTF-16LE with BOM: every other byte is NUL, but the BOM marks it as
	// text the sheet reader can decode.
	data := []byte{0xFF, 0xFE, 'a', 0x00, ';', 0x00, 'b', 0x00, '\n', 0x00}
	assert.NoError(t, v.Validate("sales.csv", data))
}

func TestUploadValidator_RejectsEmpty(t *testing.T) {
	v := NewUploadValidator(1024)

	err := v.Validate("sales.csv", nil)
	assert.ErrorContains(t, err, "empty")
}

func TestUploadValidator_RejectsOversized(t *testing.T) {
	v := NewUploadValidator(10)

	err := v.Validate("sales.csv", []byte("definitely more than ten bytes"))
	assert.ErrorContains(t, err, "maximum size")
}

func TestUploadValidator_NoLimitWhenZero(t *testing.T) {
	v := NewUploadValidator(0)

	err := v.Validate("sales.csv", bytes.Repeat([]byte("a"), 1<<16))
	assert.NoError(t, err)
}

func TestUploadValidator_RejectsUnknownExtension(t *testing.T) {
	v := NewUploadValidator(1024)

	err := v.Validate("sales.pdf", []byte("whatever"))
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestUploadValidator_RejectsFakeExcel(t *testing.T) {
	v := NewUploadValidator(1024)

	// PNG bytes renamed to .xlsx.
	err := v.Validate("sales.xlsx", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A})
	assert.ErrorContains(t, err, "Excel workbook")
}

func TestUploadValidator_RejectsBinaryCSV(t *testing.T) {
	v := NewUploadValidator(1024)

	err := v.Validate("sales.csv", []byte{'a', 0x00, 'b'})
	require.Error(t, err)
	assert.ErrorContains(t, err, "CSV text")
}

func TestUploadValidator_AcceptsWindows1251CSV(t *testing.T) {
	v := NewUploadValidator(1024)

	// Not valid UTF-8, but legacy exports look like this; the charset is
	// detected later in the sheet reader.
	err := v.Validate("sales.csv", []byte{0xCA, 0xEE, 0xE4, ';', '1', '5', '0', '\n'})
	assert.NoError(t, err)
}
