package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

// ReportRow is one evaluated conversation in a batch report.
type ReportRow struct {
	ConversationID string
	RunID          string
	TotalScore     *float64
	ZeroTolerance  bool
	GreetingPassed bool
	Interruptions  int
	HoldExceeded   bool
	SavedPath      string
	Error          string
}

var reportHeader = []any{
	"conversation_id", "run_id", "total_score", "zero_tolerance",
	"greeting_ok", "interruptions", "hold_exceeded", "result_file", "error",
}

// WriteReport writes rows to a new workbook at path, replacing any file
// already there.
func WriteReport(path string, rows []ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		var score any = ""
		if r.TotalScore != nil {
			score = *r.TotalScore
		}
		values := []any{
			r.ConversationID, r.RunID, score, r.ZeroTolerance,
			r.GreetingPassed, r.Interruptions, r.HoldExceeded, r.SavedPath, r.Error,
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reportSheet, axis, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
