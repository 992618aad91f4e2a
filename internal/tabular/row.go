package tabular

import "strings"

// Reserved field names of a journal table. Every other column is a subject.
const (
	FieldFullName = "ФИО"
	FieldClass    = "Класс"
)

// Row is one table row keyed by header name. Header order is preserved.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a row from alternating key, value pairs.
func NewRow(pairs ...string) Row {
	r := Row{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set stores a value. A repeated key overwrites the earlier value but keeps
// its original position.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether the key is present.
func (r Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key or "".
func (r Row) Value(key string) string {
	return r.values[key]
}

// Keys returns the field names in header order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.keys)
}

// Admitted reports whether the row names a student and a class.
func (r Row) Admitted() bool {
	return strings.TrimSpace(r.Value(FieldFullName)) != "" && strings.TrimSpace(r.Value(FieldClass)) != ""
}

// IsReserved reports whether name is one of the two identity fields.
func IsReserved(name string) bool {
	return name == FieldFullName || name == FieldClass
}
