package importer

import (
	"bytes"
	"testing"

	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	all := append([][]any{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"2025-06-01", "Anna", "Bo", "Carl", "Dina", 21, 15},
		{"6/2/2025", "Carl", "Dina", "Anna", "Bo", "21", "19"},
	})

	subs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "2025-06-01", subs[0].Date)
	assert.Equal(t, [2]string{"Anna", "Bo"}, subs[0].Team1)
	assert.Equal(t, [2]string{"Carl", "Dina"}, subs[0].Team2)
	assert.Equal(t, 21, subs[0].Team1Score)
	assert.Equal(t, 15, subs[0].Team2Score)

	assert.Equal(t, "2025-06-02", subs[1].Date, "Slash dates should normalize to ISO")
	assert.Equal(t, 19, subs[1].Team2Score, "String-typed score cells should parse")
}

func TestParseSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"2025-06-01", "Anna", "Bo", "Carl", "Dina", 21, 15},
		{"", "", "", "", "", "", ""},
		{"2025-06-01", "Anna", "Carl", "Bo", "Dina", 18, 21},
	})

	subs, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestParseRejectsBadRows(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr string
	}{
		{
			name:    "bad date",
			row:     []any{"June 1st", "Anna", "Bo", "Carl", "Dina", 21, 15},
			wantErr: "row 2",
		},
		{
			name:    "missing player",
			row:     []any{"2025-06-01", "Anna", "", "Carl", "Dina", 21, 15},
			wantErr: "player column",
		},
		{
			name:    "non-numeric score",
			row:     []any{"2025-06-01", "Anna", "Bo", "Carl", "Dina", "twenty", 15},
			wantErr: "not a number",
		},
		{
			name:    "negative score",
			row:     []any{"2025-06-01", "Anna", "Bo", "Carl", "Dina", -1, 15},
			wantErr: "negative score",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, [][]any{tt.row})
			_, err := Parse(data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRejectsWrongHeader(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "When"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	_, err := Parse(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseRejectsEmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t, nil)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no match rows")
}

func TestExportRoundTrip(t *testing.T) {
	matches := []league.Match{
		{
			ID:   "m1",
			Date: "2025-06-01",
			Team1: [2]league.PlayerRef{
				{ID: "p1", Name: "Anna"}, {ID: "p2", Name: "Bo"},
			},
			Team2: [2]league.PlayerRef{
				{ID: "p3", Name: "Carl"}, {ID: "p4", Name: "Dina"},
			},
			Team1Score: 21,
			Team2Score: 15,
		},
	}

	data, err := Export(matches)
	require.NoError(t, err)

	subs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "2025-06-01", subs[0].Date)
	assert.Equal(t, [2]string{"Anna", "Bo"}, subs[0].Team1)
	assert.Equal(t, [2]string{"Carl", "Dina"}, subs[0].Team2)
	assert.Equal(t, 21, subs[0].Team1Score)
	assert.Equal(t, 15, subs[0].Team2Score)
}
