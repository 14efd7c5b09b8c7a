package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"survivalboard/models"
)

var exportHeader = []interface{}{"Session ID", "Player", "Status", "Start Time", "Created At", "End Time", "Final Time (s)", "Duration (s)"}

// ExportSessions writes the session audit trail as a workbook with one sheet
// per status, in the order given.
func ExportSessions(sessions []models.GameSession) (*excelize.File, error) {
	f := excelize.NewFile()

	rows := make(map[models.SessionStatus]int)
	for i, status := range []models.SessionStatus{models.StatusActive, models.StatusFinished, models.StatusAbandoned} {
		sheet := string(status)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
			return nil, err
		}
		rows[status] = 1
	}

	for _, s := range sessions {
		next, ok := rows[s.Status]
		if !ok {
			continue
		}
		next++
		rows[s.Status] = next

		cell, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return nil, err
		}
		row := exportRow(s)
		if err := f.SetSheetRow(string(s.Status), cell, &row); err != nil {
			return nil, fmt.Errorf("write session %s: %w", s.SessionID, err)
		}
	}
	return f, nil
}

func exportRow(s models.GameSession) []interface{} {
	row := []interface{}{
		s.SessionID,
		s.PlayerName,
		string(s.Status),
		s.StartTime.UTC().Format(time.RFC3339Nano),
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
		"",
		"",
		"",
	}
	if s.EndTime != nil {
		row[5] = s.EndTime.UTC().Format(time.RFC3339Nano)
		row[7] = s.EndTime.Sub(s.StartTime).Seconds()
	}
	if s.FinalTime != nil {
		row[6] = *s.FinalTime
	}
	return row
}
