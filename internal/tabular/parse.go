package tabular

import (
	"io"
)

// Parse decodes r in the given format and keeps only rows that name a
// student and a class. It fails with EmptyDatasetError when no row survives.
func Parse(r io.Reader, format Format) ([]Row, error) {
	var (
		rows []Row
		err  error
	)
	switch format {
	case FormatCSV, FormatText:
		rows, err = ParseDelimited(r)
	case FormatWorkbook:
		rows, err = ParseWorkbook(r)
		if err != nil {
			// An unreadable workbook is reported like an empty one.
			return nil, &EmptyDatasetError{Format: format}
		}
	default:
		return nil, &UnsupportedFormatError{Name: string(format)}
	}
	if err != nil {
		return nil, err
	}

	admitted := Admit(rows)
	if len(admitted) == 0 {
		return nil, &EmptyDatasetError{Format: format}
	}
	return admitted, nil
}

// ParseFile picks the format from the file name and parses r.
func ParseFile(name string, r io.Reader) ([]Row, Format, error) {
	format, err := FormatFromFilename(name)
	if err != nil {
		return nil, "", err
	}
	rows, err := Parse(r, format)
	return rows, format, err
}

// Admit filters rows down to those that name a student and a class.
func Admit(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Admitted() {
			out = append(out, r)
		}
	}
	return out
}
