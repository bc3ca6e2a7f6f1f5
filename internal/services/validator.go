package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// UploadValidator checks an upload before it reaches the import pipeline:
// size limit, extension, and a cheap content sanity check. It exists so
// obviously wrong files (images renamed to .xlsx, empty posts) are rejected
// at the HTTP edge instead of surfacing as structural import errors.
type UploadValidator struct {
	maxSizeBytes int64
}

// Legacy .xls (OLE container) is not accepted: the sheet reader only
// understands the ZIP-based XLSX format.
var allowedUploadExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

func NewUploadValidator(maxSizeBytes int64) *UploadValidator {
	return &UploadValidator{maxSizeBytes: maxSizeBytes}
}

// Validate returns a descriptive error when the upload cannot possibly be a
// readable spreadsheet.
func (v *UploadValidator) Validate(fileName string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("file is empty")
	}

	if v.maxSizeBytes > 0 && int64(len(data)) > v.maxSizeBytes {
		return fmt.Errorf("file exceeds maximum size of %d bytes", v.maxSizeBytes)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedUploadExtensions[ext] {
		return fmt.Errorf("unsupported file extension %q, expected .csv or .xlsx", ext)
	}

	// XLSX is a ZIP container; anything else must look like text.
	if ext == ".xlsx" {
		if len(data) < len(zipMagic) || string(data[:len(zipMagic)]) != string(zipMagic) {
			return fmt.Errorf("file does not look like an Excel workbook")
		}

		return nil
	}

	if !looksLikeText(data) {
		return fmt.Errorf("file does not look like CSV text")
	}

	return nil
}

// looksLikeText rejects binary content posing as CSV. Legacy Windows-1251
// exports are not valid UTF-8, so this only screens for NUL bytes in the
// first chunk; the sheet reader detects the actual charset later. UTF-16
// content is full of NULs but announces itself with a BOM, which the sheet
// reader decodes, so it passes the screen.
func looksLikeText(data []byte) bool {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return true
	}

	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}

	for _, b := range probe {
		if b == 0x00 {
			return false
		}
	}

	return true
}
