package exporter

import (
	"io"
	"strings"

	"gradebook/internal/roster"
)

// WriteText writes tab separated lines joined by "\n" with no trailing
// newline. Tabs and line breaks inside values are replaced by spaces.
func WriteText(w io.Writer, snap roster.Snapshot) error {
	if snap.Empty() {
		return ErrNothingToExport
	}
	lines := make([]string, 0, len(snap.Records)+1)
	lines = append(lines, joinTab(header(snap)))
	for _, rec := range snap.Records {
		fields := make([]string, 0, len(snap.Subjects)+2)
		fields = append(fields, rec.FullName, rec.ClassLabel)
		for _, subj := range snap.Subjects {
			fields = append(fields, rec.Grade(subj).String())
		}
		lines = append(lines, joinTab(fields))
	}
	return writeLines(w, lines, false)
}

var tabSanitizer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func joinTab(fields []string) string {
	for i, f := range fields {
		fields[i] = tabSanitizer.Replace(f)
	}
	return strings.Join(fields, "\t")
}
