// Package report renders a stored month as an xlsx workbook for
// download.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/karubi02/smb-booking/internal/schedule"
)

// Writer builds a single-sheet workbook row by row.
type Writer struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

// NewWriter creates a workbook with one named sheet.
func NewWriter(sheetName string) (*Writer, error) {
	// Excel caps sheet names at 31 chars.
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)
	return &Writer{file: f, sheet: sheetName, currentRow: 1}, nil
}

// WriteHeader writes a bold header row.
func (w *Writer) WriteHeader(columns []string) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes one data row.
func (w *Writer) WriteRow(row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// Save writes the workbook to wr.
func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// Close releases workbook resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

// WriteMonthly renders one month of a business schedule to wr: one row
// per calendar day with its status, open periods and open minutes,
// followed by a total line.
func WriteMonthly(wr io.Writer, businessName string, ms schedule.MonthlySchedule, month time.Month, year int) error {
	w, err := NewWriter(fmt.Sprintf("%s %d", month.String(), year))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteRow([]interface{}{businessName}); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"Date", "Weekday", "Status", "Open Periods", "Open Minutes"}); err != nil {
		return err
	}

	totalMinutes := 0
	for day := 1; day <= schedule.DaysInMonth(year, month); day++ {
		dateStr := schedule.DateKey(year, month, day)
		weekday := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday().String()[:3]

		entry, ok := ms[dateStr]
		if !ok {
			if err := w.WriteRow([]interface{}{dateStr, weekday, "no data", "", 0}); err != nil {
				return err
			}
			continue
		}
		if entry.Closed {
			if err := w.WriteRow([]interface{}{dateStr, weekday, "closed", "", 0}); err != nil {
				return err
			}
			continue
		}

		minutes := schedule.DayMinutes(entry)
		totalMinutes += minutes
		if err := w.WriteRow([]interface{}{dateStr, weekday, "open", formatPeriods(schedule.OpenPeriods(entry)), minutes}); err != nil {
			return err
		}
	}

	totalHours := schedule.MonthTotalHours(ms, month, year)
	if err := w.WriteRow([]interface{}{"Total", "", "", fmt.Sprintf("%.2f hours", totalHours), totalMinutes}); err != nil {
		return err
	}

	return w.Save(wr)
}

func formatPeriods(periods []schedule.OpenPeriod) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = p.Start + "-" + p.End
	}
	return strings.Join(parts, ", ")
}
