// Package statistics aggregates a roster snapshot into per-class and
// overall grade summaries. Every function here is pure.
package statistics

import (
	"math"
	"sort"

	"gradebook/internal/classorder"
	"gradebook/internal/roster"
)

// Summary aggregates the numeric grades of one class, or of the whole
// roster, for one subject.
type Summary struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// Counts[g-1] is the number of grades exactly equal to g.
	Counts [5]int `json:"counts"`
	// Percents[g-1] is Counts[g-1] as a percentage of Count.
	Percents [5]float64 `json:"percents"`
}

// CountOf returns the number of grades equal to g (1..5).
func (s Summary) CountOf(g int) int {
	if g < 1 || g > 5 {
		return 0
	}
	return s.Counts[g-1]
}

// PercentOf returns the share of grades equal to g (1..5).
func (s Summary) PercentOf(g int) float64 {
	if g < 1 || g > 5 {
		return 0
	}
	return s.Percents[g-1]
}

// SubjectTable holds the per-class summaries of one subject.
type SubjectTable struct {
	Subject string    `json:"subject"`
	Classes []Summary `json:"classes"`
}

// Report is the full statistics view of a roster.
type Report struct {
	PerSubject []SubjectTable `json:"per_subject"`
	// Overall has one summary per subject, labelled with the subject name.
	Overall []Summary `json:"overall"`
}

// Series is the bar chart data of one subject: the mean grade of every
// class in natural order, 0 where a class has no grades.
type Series struct {
	Subject string    `json:"subject"`
	Classes []string  `json:"classes"`
	Means   []float64 `json:"means"`
}

// Median returns the middle value of vals, averaging the two middle values
// for even lengths. It returns 0 for no values.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Mean returns the arithmetic mean of vals, 0 for no values.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Summarize builds a Summary for vals. Mean and median are rounded to two
// decimals, percents to one.
func Summarize(label string, vals []float64) Summary {
	s := Summary{
		Label:  label,
		Count:  len(vals),
		Mean:   round(Mean(vals), 2),
		Median: round(Median(vals), 2),
	}
	for _, v := range vals {
		for g := 1; g <= 5; g++ {
			if v == float64(g) {
				s.Counts[g-1]++
			}
		}
	}
	if s.Count > 0 {
		for i, c := range s.Counts {
			s.Percents[i] = round(float64(c)/float64(s.Count)*100, 1)
		}
	}
	return s
}

// Compute builds the statistics report. Classes without a single grade in
// a subject are left out of that subject's table; subjects without any
// grade are left out of the overall table.
func Compute(snap roster.Snapshot) Report {
	classes := Classes(snap)
	report := Report{
		PerSubject: make([]SubjectTable, 0, len(snap.Subjects)),
		Overall:    make([]Summary, 0, len(snap.Subjects)),
	}

	for _, subj := range snap.Subjects {
		table := SubjectTable{Subject: subj, Classes: []Summary{}}
		for _, cls := range classes {
			vals := gradesOf(snap.Records, subj, cls, true)
			if len(vals) == 0 {
				continue
			}
			table.Classes = append(table.Classes, Summarize(cls, vals))
		}
		report.PerSubject = append(report.PerSubject, table)

		if all := gradesOf(snap.Records, subj, "", false); len(all) > 0 {
			report.Overall = append(report.Overall, Summarize(subj, all))
		}
	}
	return report
}

// ChartSeries returns one series per subject over all classes.
func ChartSeries(snap roster.Snapshot) []Series {
	classes := Classes(snap)
	out := make([]Series, 0, len(snap.Subjects))
	for _, subj := range snap.Subjects {
		s := Series{Subject: subj, Classes: classes, Means: make([]float64, len(classes))}
		for i, cls := range classes {
			s.Means[i] = round(Mean(gradesOf(snap.Records, subj, cls, true)), 2)
		}
		out = append(out, s)
	}
	return out
}

// Classes returns the distinct class labels of snap in natural order.
func Classes(snap roster.Snapshot) []string {
	labels := make([]string, 0, len(snap.Records))
	for _, r := range snap.Records {
		labels = append(labels, r.ClassLabel)
	}
	return classorder.Unique(labels)
}

func gradesOf(records []roster.Record, subject, class string, byClass bool) []float64 {
	var vals []float64
	for _, r := range records {
		if byClass && r.ClassLabel != class {
			continue
		}
		if v, ok := r.Grade(subject).Value(); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
