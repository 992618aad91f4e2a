package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gradebook/internal/tabular"
)

// EncodeSnapshot serializes the roster as a JSON array of flat objects.
// Each object lists ФИО, Класс and then the subjects in order, since the
// subject list is recovered from the first object's key order.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range s.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writePair(&buf, tabular.FieldFullName, rec.FullName, true); err != nil {
			return nil, err
		}
		if err := writePair(&buf, tabular.FieldClass, rec.ClassLabel, false); err != nil {
			return nil, err
		}
		for _, subj := range s.Subjects {
			key, err := json.Marshal(subj)
			if err != nil {
				return nil, err
			}
			val, _ := rec.Grade(subj).MarshalJSON()
			buf.WriteByte(',')
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writePair(buf *bytes.Buffer, key, value string, first bool) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !first {
		buf.WriteByte(',')
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// DecodeRows reads a persisted payload back into ordered rows. Numbers are
// kept as their literal text; null and booleans become blank. Anything that
// is not an array of flat objects wraps ErrPersistenceCorruption.
func DecodeRows(data []byte) ([]tabular.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var rows []tabular.Row
	for dec.More() {
		row, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrPersistenceCorruption)
	}
	return rows, nil
}

func decodeObject(dec *json.Decoder) (tabular.Row, error) {
	var row tabular.Row
	if err := expectDelim(dec, '{'); err != nil {
		return row, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return row, fmt.Errorf("%w: %v", ErrPersistenceCorruption, err)
		}
		key, ok := tok.(string)
		if !ok {
			return row, fmt.Errorf("%w: unexpected key %v", ErrPersistenceCorruption, tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return row, fmt.Errorf("%w: %v", ErrPersistenceCorruption, err)
		}
		switch v := tok.(type) {
		case string:
			row.Set(key, v)
		case json.Number:
			row.Set(key, v.String())
		case bool, nil:
			row.Set(key, "")
		default:
			return row, fmt.Errorf("%w: nested value under %q", ErrPersistenceCorruption, key)
		}
	}
	return row, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceCorruption, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrPersistenceCorruption, want, tok)
	}
	return nil
}
