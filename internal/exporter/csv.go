package exporter

import (
	"io"
	"strings"

	"gradebook/internal/roster"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a UTF-8 CSV with a BOM so spreadsheet tools pick the
// right encoding. Name and class are always quoted; grades never need to be.
func WriteCSV(w io.Writer, snap roster.Snapshot) error {
	if snap.Empty() {
		return ErrNothingToExport
	}
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	head := header(snap)
	fields := make([]string, len(head))
	for i, h := range head {
		fields[i] = csvField(h)
	}
	lines := make([]string, 0, len(snap.Records)+1)
	lines = append(lines, strings.Join(fields, ","))

	for _, rec := range snap.Records {
		var b strings.Builder
		b.WriteString(quote(rec.FullName))
		b.WriteByte(',')
		b.WriteString(quote(rec.ClassLabel))
		for _, subj := range snap.Subjects {
			b.WriteByte(',')
			b.WriteString(rec.Grade(subj).String())
		}
		lines = append(lines, b.String())
	}
	return writeLines(w, lines, true)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvField quotes s only when it would otherwise break the line or sway
// delimiter detection on import.
func csvField(s string) string {
	if strings.ContainsAny(s, ",;\t\"\r\n") || strings.TrimSpace(s) != s {
		return quote(s)
	}
	return s
}
