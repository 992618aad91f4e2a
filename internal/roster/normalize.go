package roster

import (
	"strings"

	"gradebook/internal/tabular"
)

// Dataset is a normalized import ready to replace the roster.
type Dataset struct {
	Snapshot
	// Coerced counts non-blank subject values that were not valid grades
	// and were stored as ungraded.
	Coerced int
	// Dropped counts rows discarded for lacking a name or class.
	Dropped int
}

// Normalize turns parsed rows into typed records. The subject list is taken
// from the first admitted row in header order; other rows missing a subject
// get it ungraded.
func Normalize(rows []tabular.Row) (Dataset, error) {
	var ds Dataset
	for _, row := range rows {
		if !row.Admitted() {
			ds.Dropped++
			continue
		}
		if ds.Subjects == nil {
			ds.Subjects = subjectsOf(row)
		}
		rec := Record{
			FullName:   strings.TrimSpace(row.Value(tabular.FieldFullName)),
			ClassLabel: strings.TrimSpace(row.Value(tabular.FieldClass)),
			Grades:     make(map[string]Grade, len(ds.Subjects)),
		}
		for _, subj := range ds.Subjects {
			g, ok := CoerceGrade(row.Value(subj))
			if !ok {
				ds.Coerced++
			}
			rec.Grades[subj] = g
		}
		ds.Records = append(ds.Records, rec)
	}
	if len(ds.Records) == 0 {
		return Dataset{}, ErrEmptyDataset
	}
	return ds, nil
}

func subjectsOf(row tabular.Row) []string {
	subjects := []string{}
	for _, k := range row.Keys() {
		if !tabular.IsReserved(k) {
			subjects = append(subjects, k)
		}
	}
	return subjects
}
