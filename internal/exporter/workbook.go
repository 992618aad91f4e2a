package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gradebook/internal/roster"
)

// WriteWorkbook writes a single sheet workbook. Grades are stored as
// numbers, ungraded cells are left empty.
func WriteWorkbook(w io.Writer, snap roster.Snapshot) error {
	if snap.Empty() {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	head := header(snap)
	headRow := make([]interface{}, len(head))
	for i, h := range head {
		headRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range snap.Records {
		row := make([]interface{}, 0, len(head))
		row = append(row, rec.FullName, rec.ClassLabel)
		for _, subj := range snap.Subjects {
			if v, ok := rec.Grade(subj).Value(); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
