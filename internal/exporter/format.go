package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gradebook/internal/roster"
	"gradebook/internal/tabular"
)

// ErrNothingToExport is returned for an empty roster.
var ErrNothingToExport = errors.New("nothing to export")

// Sheet name of exported workbooks.
const SheetName = "Журнал"

// Filename returns the fixed download name for format.
func Filename(format tabular.Format) string {
	return "journal." + string(format)
}

// ContentType returns the MIME type served for format.
func ContentType(format tabular.Format) string {
	switch format {
	case tabular.FormatCSV:
		return "text/csv; charset=utf-8"
	case tabular.FormatText:
		return "text/plain; charset=utf-8"
	case tabular.FormatWorkbook:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Write serializes snap in format.
func Write(w io.Writer, format tabular.Format, snap roster.Snapshot) error {
	if snap.Empty() {
		return ErrNothingToExport
	}
	switch format {
	case tabular.FormatCSV:
		return WriteCSV(w, snap)
	case tabular.FormatText:
		return WriteText(w, snap)
	case tabular.FormatWorkbook:
		return WriteWorkbook(w, snap)
	default:
		return &tabular.UnsupportedFormatError{Name: string(format)}
	}
}

func header(snap roster.Snapshot) []string {
	h := make([]string, 0, len(snap.Subjects)+2)
	h = append(h, tabular.FieldFullName, tabular.FieldClass)
	return append(h, snap.Subjects...)
}

// writeLines joins lines with "\n", adding a final newline when trailing
// is set.
func writeLines(w io.Writer, lines []string, trailing bool) error {
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
