// Package exporter serializes a roster snapshot to CSV, tab separated text
// or an XLSX workbook.
//
// Serializers write to any io.Writer; FileWriter saves an export under the
// configured exports directory using the fixed file names journal.csv,
// journal.txt and journal.xlsx.
//
// Example usage:
//
//	if err := exporter.Write(w, tabular.FormatCSV, store.Snapshot()); err != nil {
//		return err
//	}
//
//	fw := exporter.NewFileWriter(paths.ExportsDir, logger)
//	path, err := fw.Save(tabular.FormatWorkbook, store.Snapshot())
package exporter
