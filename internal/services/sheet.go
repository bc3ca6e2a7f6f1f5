package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vendtrack/vendtrack-api/internal/encoding"
)

// zipMagic is the XLSX container signature (an XLSX file is a ZIP archive).
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Sheet is the first worksheet of an upload: one header row plus data rows.
// Data row i corresponds to spreadsheet row i+2.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// ReadSheet sniffs the upload format by magic bytes and reads the first
// worksheet. XLSX content goes through excelize; anything else is treated as
// CSV with charset and delimiter detection. A file with no readable sheet is
// the one structural failure that aborts a whole import.
func ReadSheet(data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("no readable sheet: file is empty")
	}

	if bytes.HasPrefix(data, zipMagic) {
		return readXLSX(data)
	}

	return readCSV(data)
}

func readXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("no readable sheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no readable sheet: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("no readable sheet: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no readable sheet: first sheet %q is empty", sheets[0])
	}

	return &Sheet{Headers: rows[0], Rows: rows[1:]}, nil
}

func readCSV(data []byte) (*Sheet, error) {
	utf8Reader, err := encoding.NewUTF8Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("no readable sheet: %w", err)
	}

	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("no readable sheet: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = detectDelimiter(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("no readable sheet: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no readable sheet: file has no rows")
	}

	return &Sheet{Headers: records[0], Rows: records[1:]}, nil
}

// detectDelimiter picks between comma and semicolon by counting occurrences
// in the header line. The legacy exports ship both variants.
func detectDelimiter(decoded []byte) rune {
	line := string(decoded)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}

	return ','
}

// IsEmptyRow reports whether every cell of a row is blank.
func IsEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}

	return true
}
