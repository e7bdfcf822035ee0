// Package dataset reads batch inputs from and writes batch reports to xlsx
// workbooks.
package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one row of a batch input sheet.
type Record struct {
	Row            int    `json:"row"`
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id,omitempty"`
	Campaign       string `json:"campaign,omitempty"`
}

// Load reads the first sheet of the workbook at path. The conversation id
// column is picked by header; without a match the first column is used.
// Rows with an empty id are skipped.
func Load(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := detectColumns(rows[0])
	var out []Record
	for i, r := range rows[1:] {
		rec := Record{
			Row:            i + 2,
			ConversationID: cell(r, cols.id),
			AgentID:        cell(r, cols.agent),
			Campaign:       cell(r, cols.campaign),
		}
		if rec.ConversationID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type columns struct {
	id, agent, campaign int
}

func detectColumns(header []string) columns {
	c := columns{id: -1, agent: -1, campaign: -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "conversation") || strings.Contains(l, "conv_id") || strings.Contains(l, "call id") || strings.Contains(l, "call_id"):
			if c.id == -1 {
				c.id = i
			}
		case strings.Contains(l, "agent"):
			if c.agent == -1 {
				c.agent = i
			}
		case strings.Contains(l, "campaign") || strings.Contains(l, "type"):
			if c.campaign == -1 {
				c.campaign = i
			}
		}
	}
	// fallback: a bare "id" header, then the first column
	if c.id == -1 {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), "id") {
				c.id = i
				break
			}
		}
	}
	if c.id == -1 {
		c.id = 0
	}
	return c
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
