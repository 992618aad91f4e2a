// Package tabular parses journal tables from CSV, tab or semicolon separated
// text and XLSX workbooks into ordered rows of raw strings.
//
// Every parser applies the same admission rule: a row is kept only when the
// ФИО and Класс fields are present and non-empty. Values are returned as
// trimmed strings; numeric interpretation is left to the roster package.
//
// Example usage:
//
//	rows, format, err := tabular.ParseFile("journal.csv", file)
//	if errors.Is(err, tabular.ErrEmptyDataset) {
//		// nothing admissible in the file
//	}
package tabular
