package export

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	daysSheet   = "Days"
	totalsSheet = "Totals"
)

func writeXLSX(w io.Writer, s attendance.MonthlySummary, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", daysSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create totals sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := make([]interface{}, len(dayColumns))
	for i, col := range dayColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(daysSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(dayColumns), 1)
	if err := f.SetCellStyle(daysSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, d := range s.Days {
		cells := dayRow(d, loc)
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// Worked as a number so the column can be summed.
		row[5] = float64(d.TotalWorkedSeconds) / 3600

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(daysSheet, cell, &row); err != nil {
			return fmt.Errorf("write day %s: %w", d.Date, err)
		}
	}
	if err := f.SetColWidth(daysSheet, "C", "C", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(daysSheet, "I", "I", 60); err != nil {
		return err
	}

	if err := f.SetCellValue(totalsSheet, "A1", title(s)); err != nil {
		return err
	}
	if err := f.SetCellStyle(totalsSheet, "A1", "A1", bold); err != nil {
		return err
	}
	for i, line := range totalLines(s) {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(totalsSheet, cell, &[]interface{}{line.label, line.value}); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}
	if err := f.SetColWidth(totalsSheet, "A", "A", 28); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
