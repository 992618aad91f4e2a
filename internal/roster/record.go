package roster

import (
	"gradebook/internal/tabular"
)

// Record is one student row.
type Record struct {
	FullName   string           `json:"full_name"`
	ClassLabel string           `json:"class"`
	Grades     map[string]Grade `json:"grades"`
}

// Grade returns the grade for subject, ungraded when absent.
func (r Record) Grade(subject string) Grade {
	return r.Grades[subject]
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	grades := make(map[string]Grade, len(r.Grades))
	for k, v := range r.Grades {
		grades[k] = v
	}
	return Record{FullName: r.FullName, ClassLabel: r.ClassLabel, Grades: grades}
}

// Snapshot is an immutable copy of the roster handed to readers.
type Snapshot struct {
	Subjects []string `json:"subjects"`
	Records  []Record `json:"records"`
}

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.Records) }

// Empty reports whether there are no records.
func (s Snapshot) Empty() bool { return len(s.Records) == 0 }

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Subjects: append([]string(nil), s.Subjects...),
		Records:  make([]Record, len(s.Records)),
	}
	for i, r := range s.Records {
		out.Records[i] = r.Clone()
	}
	if out.Subjects == nil {
		out.Subjects = []string{}
	}
	return out
}

// Head returns a snapshot restricted to the first n records.
func (s Snapshot) Head(n int) Snapshot {
	if n < 0 || n > len(s.Records) {
		n = len(s.Records)
	}
	return Snapshot{Subjects: s.Subjects, Records: s.Records[:n]}
}

// Rows converts the snapshot back to ordered table rows:
// ФИО, Класс, then subjects in Subject List order.
func (s Snapshot) Rows() []tabular.Row {
	rows := make([]tabular.Row, 0, len(s.Records))
	for _, r := range s.Records {
		row := tabular.NewRow(tabular.FieldFullName, r.FullName, tabular.FieldClass, r.ClassLabel)
		for _, subj := range s.Subjects {
			row.Set(subj, r.Grade(subj).String())
		}
		rows = append(rows, row)
	}
	return rows
}
