package tabular

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectDelimiter picks the field separator from a header line:
// tab if present, then semicolon, otherwise comma. Characters inside a
// quoted header cell are not considered.
func DetectDelimiter(header string) rune {
	var tab, semicolon, inQuotes bool
	for _, r := range header {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == '\t':
			tab = true
		case r == ';':
			semicolon = true
		}
	}
	if inQuotes {
		// Unbalanced quote: fall back to the raw line.
		tab = strings.ContainsRune(header, '\t')
		semicolon = strings.ContainsRune(header, ';')
	}

	switch {
	case tab:
		return '\t'
	case semicolon:
		return ';'
	default:
		return ','
	}
}

// ParseDelimited reads CSV or TXT content. The first non-blank line is the
// header. Lines whose field count differs from the header are discarded.
func ParseDelimited(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	lines := make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, nil
	}

	delim := DetectDelimiter(lines[0])
	headers := splitLine(lines[0], delim)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitLine(line, delim)
		if len(fields) != len(headers) {
			continue
		}
		row := Row{values: make(map[string]string, len(headers))}
		for i, h := range headers {
			row.Set(h, strings.TrimSpace(fields[i]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitLine splits on delim. Tab-separated text is split plainly. For comma
// and semicolon lines a field fully enclosed in quotes may contain the
// delimiter, with "" standing for a literal quote; any other quote is data.
func splitLine(line string, delim rune) []string {
	sep := string(delim)
	if delim == '\t' {
		return strings.Split(line, sep)
	}

	var fields []string
	for {
		if value, n, ok := quotedField(line, sep); ok {
			fields = append(fields, value)
			if n == len(line) {
				return fields
			}
			line = line[n+len(sep):]
			continue
		}

		i := strings.Index(line, sep)
		if i < 0 {
			return append(fields, line)
		}
		fields = append(fields, line[:i])
		line = line[i+len(sep):]
	}
}

// quotedField reports whether line opens with a quoted field that is closed
// right before sep or the end of the line. n is the offset where the field
// ends, trailing spaces included.
func quotedField(line, sep string) (value string, n int, ok bool) {
	start := len(line) - len(strings.TrimLeft(line, " "))
	if start == len(line) || line[start] != '"' {
		return "", 0, false
	}

	var b strings.Builder
	for i := start + 1; i < len(line); i++ {
		if line[i] != '"' {
			b.WriteByte(line[i])
			continue
		}
		if i+1 < len(line) && line[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}

		end := i + 1
		for end < len(line) && line[end] == ' ' {
			end++
		}
		if end == len(line) || strings.HasPrefix(line[end:], sep) {
			return b.String(), end, true
		}
		return "", 0, false
	}
	return "", 0, false
}
