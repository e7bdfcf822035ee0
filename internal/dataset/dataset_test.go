package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"robocall-qa-go/internal/types"
)

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &r))
	}
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_DetectsColumns(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"No", "Agent Name", "Conversation ID", "Campaign"},
		{1, "rina", " conv_a ", "renewal"},
		{2, "budi", "", "renewal"},
		{3, "sari", "conv_b"},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []Record{
		{Row: 2, ConversationID: "conv_a", AgentID: "rina", Campaign: "renewal"},
		{Row: 4, ConversationID: "conv_b", AgentID: "sari"},
	}, recs)
}

func TestLoad_FallsBackToFirstColumn(t *testing.T) {
	path := writeSheet(t, [][]any{
		{"reference", "notes"},
		{"conv_x", "follow up"},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "conv_x", recs[0].ConversationID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	_, err = Load(writeSheet(t, [][]any{{"conversation_id"}}))
	require.EqualError(t, err, "no data rows")
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := WriteReport(path, []ReportRow{
		{ConversationID: "conv_a", RunID: "r1", TotalScore: types.Float(35), Interruptions: 2, SavedPath: "records/x.json"},
		{ConversationID: "conv_b", RunID: "r2", Error: "parse verdict: bad"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{reportSheet}, f.GetSheetList())

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "conversation_id", rows[0][0])
	require.Equal(t, "conv_a", rows[1][0])
	require.Equal(t, "35", rows[1][2])
	require.Equal(t, "2", rows[1][5])
	require.Equal(t, "", rows[2][2])
	require.Equal(t, "parse verdict: bad", rows[2][8])
}
