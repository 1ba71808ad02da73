package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

func writeCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = cell(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeZip bundles one CSV file per table.
func writeZip(w io.Writer, tables []Table, stamp string) error {
	zw := zip.NewWriter(w)
	for _, t := range tables {
		f, err := zw.Create(fmt.Sprintf("%s_%s.csv", t.Title, stamp))
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", t.Title, err)
		}
		if err := writeCSV(f, t); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeExcel writes one sheet per table.
func writeExcel(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, t := range tables {
		sheet := t.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}

		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}

		for r, row := range t.Rows {
			start, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet, start, &values); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

		lastCol, _, err := excelize.SplitCellName(last)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return err
		}
	}

	return f.Write(w)
}
