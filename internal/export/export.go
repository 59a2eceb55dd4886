// Package export writes the weight history and profile to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"weightlog/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	HistorySheet = "History"
	ProfileSheet = "Profile"
)

var historyHeader = []any{"Date", "Weight (kg)", "Diff (kg)", "Trend"}

// WriteXLSX writes history (newest first) and the profile, if any, as an
// .xlsx workbook to w. Dates are rendered in loc.
func WriteXLSX(w io.Writer, profile *domain.UserProfile, history []domain.WeightEntry, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(HistorySheet, "A1", &historyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		_ = f.SetCellStyle(HistorySheet, "A1", "D1", style)
	}
	_ = f.SetColWidth(HistorySheet, "A", "A", 20)

	for i, e := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.Timestamp.In(loc).Format("2006-01-02 15:04"),
			e.Weight,
			e.Diff,
			string(e.Trend),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if profile != nil {
		if _, err := f.NewSheet(ProfileSheet); err != nil {
			return fmt.Errorf("create profile sheet: %w", err)
		}
		rows := [][]any{
			{"Name", profile.Name},
			{"Gender", profile.Gender},
			{"Age", profile.Age},
			{"Height (cm)", profile.Height},
			{"Start weight (kg)", profile.StartWeight},
			{"Target weight (kg)", profile.TargetWeight},
		}
		for i, r := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(ProfileSheet, cell, &r); err != nil {
				return fmt.Errorf("write profile: %w", err)
			}
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
