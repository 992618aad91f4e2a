package testutil

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SampleTable returns a small journal: header row first, then students
// across three classes with one ungraded cell.
func SampleTable() [][]string {
	return [][]string{
		{"ФИО", "Класс", "Математика", "Физика"},
		{"Иванов Иван", "10Б", "5", "4"},
		{"Петрова Анна", "2А", "4", "5"},
		{"Сидоров Пётр", "10Б", "3", ""},
		{"Орлова Мария", "2А", "5", "5"},
		{"Кузнецов Илья", "10А", "2", "3"},
	}
}

// DelimitedText joins a table with the given separator, one line per row.
func DelimitedText(table [][]string, sep string) string {
	lines := make([]string, len(table))
	for i, row := range table {
		lines[i] = strings.Join(row, sep)
	}
	return strings.Join(lines, "\n")
}

// WorkbookBytes writes table to the first sheet of a new XLSX workbook.
// Cells that look like integers are stored as numbers.
func WorkbookBytes(t *testing.T, table [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range table {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if len(v) == 1 && v[0] >= '0' && v[0] <= '9' && i > 0 {
				cells[j] = int(v[0] - '0')
				continue
			}
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
