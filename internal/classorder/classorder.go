// Package classorder sorts class labels such as "2", "10А" or "11Б" in their
// natural school order: by grade number first, then by the letter suffix.
package classorder

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UnmatchedNumber is the sort number assigned to labels that are not a digit
// run followed by letters. It places them after any realistic school grade.
const UnmatchedNumber = 1000

// Key is the parsed sort key of a class label.
type Key struct {
	Number  int
	Suffix  string
	Matched bool
}

// Parse splits a label into its leading digits and trailing letters.
// The suffix of a matched label is upper-cased; an unmatched label keeps
// its raw text as the suffix.
func Parse(label string) Key {
	digits := 0
	for digits < len(label) && label[digits] >= '0' && label[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return Key{Number: UnmatchedNumber, Suffix: label}
	}

	rest := label[digits:]
	for _, r := range rest {
		if !unicode.IsLetter(r) {
			return Key{Number: UnmatchedNumber, Suffix: label}
		}
	}

	n, err := strconv.Atoi(label[:digits])
	if err != nil {
		return Key{Number: UnmatchedNumber, Suffix: label}
	}

	return Key{Number: n, Suffix: strings.ToUpper(rest), Matched: true}
}

// Comparator orders keys. A Comparator is not safe for concurrent use.
type Comparator struct {
	col *collate.Collator
}

// NewComparator returns a comparator that collates suffixes with Russian
// collation rules, which place Cyrillic letters before Latin ones.
func NewComparator() *Comparator {
	return &Comparator{col: collate.New(language.Russian)}
}

// Compare returns -1, 0 or +1.
func (c *Comparator) Compare(a, b Key) int {
	switch {
	case a.Number < b.Number:
		return -1
	case a.Number > b.Number:
		return 1
	}
	return c.col.CompareString(a.Suffix, b.Suffix)
}

// Compare orders two raw labels.
func Compare(a, b string) int {
	return NewComparator().Compare(Parse(a), Parse(b))
}

// Sort returns a new slice with labels in natural class order.
// Labels with equal keys keep their input order.
func Sort(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)

	keys := make(map[string]Key, len(out))
	for _, l := range out {
		if _, ok := keys[l]; !ok {
			keys[l] = Parse(l)
		}
	}

	c := NewComparator()
	sort.SliceStable(out, func(i, j int) bool {
		return c.Compare(keys[out[i]], keys[out[j]]) < 0
	})
	return out
}

// Unique returns the distinct labels in natural class order.
func Unique(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	distinct := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		distinct = append(distinct, l)
	}
	return Sort(distinct)
}
