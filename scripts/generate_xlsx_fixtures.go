package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Regenerates the sample export workbooks under internal/services/testdata,
// handy for manual upload testing against a running instance. Run from the
// repository root: go run scripts/generate_xlsx_fixtures.go
func main() {
	generateStandardExport()
	generateShuffledExport()
	fmt.Println("✓ All XLSX fixtures generated")
}

// generateStandardExport writes a sample in the primary known export layout.
func generateStandardExport() {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{
		"№ заказа", "Товар", "Вкус", "Способ оплаты", "Статус оплаты",
		"Код автомата", "Адрес", "Сумма", "Дата заказа",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	data := [][]interface{}{
		{"1001", "Кофе", "Капучино", "Наличные", "Оплачен", "A01", "ул. Ленина 1", 150.00, "2025-01-01 12:30:00"},
		{"1002", "Кофе", "Латте", "Банковская карта", "Оплачен", "A01", "ул. Ленина 1", 180.00, "2025-01-01 13:05:00"},
		{"1003", "Чай", "Черный", "Наличные", "Оплачен", "B07", "пр. Мира 14", 90.00, "2025-01-01 14:40:00"},
		{"1004", "Кофе", "Эспрессо", "VIP", "Оплачен", "A01", "ул. Ленина 1", 0.00, "2025-01-01 15:00:00"},
		{"1005", "Кофе", "Американо", "Наличные", "Возврат", "B07", "пр. Мира 14", 120.00, "2025-01-02 09:12:00"},
	}

	writeRows(f, sheet, data)
	save(f, "sales_standard.xlsx")
}

// generateShuffledExport writes the same data with columns reordered and
// renamed, to exercise header detection.
func generateShuffledExport() {
	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{
		"Дата и время", "Аппарат", "Цена", "Тип оплаты", "Наименование товара",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	data := [][]interface{}{
		{"2025-01-01 12:30:00", "A01", "150,00", "наличные", "Кофе"},
		{"2025-01-01 13:05:00", "A01", "180,00", "карта", "Кофе"},
		{"2025-01-01 14:40:00", "B07", "90,00", "наличные", "Чай"},
	}

	writeRows(f, sheet, data)
	save(f, "sales_shuffled.xlsx")
}

func writeRows(f *excelize.File, sheet string, data [][]interface{}) {
	for rowIdx, row := range data {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, val)
		}
	}
}

func save(f *excelize.File, name string) {
	path := filepath.Join("internal", "services", "testdata", name)
	if err := f.SaveAs(path); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ Generated", path)
}
