package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported table encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatWorkbook Format = "xlsx"
)

// ErrUnsupportedFormat is matched by UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("only XLSX, CSV and TXT files are supported")

// ErrEmptyDataset is matched by EmptyDatasetError.
var ErrEmptyDataset = errors.New("dataset is empty or invalid")

// UnsupportedFormatError reports an input whose extension is not recognised.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, ErrUnsupportedFormat.Error())
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// EmptyDatasetError reports that no admissible row survived parsing.
type EmptyDatasetError struct {
	Format Format
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s file is empty or invalid", strings.ToUpper(string(e.Format)))
}

func (e *EmptyDatasetError) Is(target error) bool {
	return target == ErrEmptyDataset
}

// FormatFromFilename maps a file extension to a format.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".txt":
		return FormatText, nil
	case ".xlsx", ".xls":
		return FormatWorkbook, nil
	default:
		return "", &UnsupportedFormatError{Name: name}
	}
}

// ParseFormat validates a format name such as "csv" or "xlsx".
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatText:
		return FormatText, nil
	case FormatWorkbook, "xls":
		return FormatWorkbook, nil
	default:
		return "", &UnsupportedFormatError{Name: name}
	}
}
