// Package importer reads and writes league match history as xlsx workbooks,
// the interchange format the club already keeps its records in.
package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/xuri/excelize/v2"
)

// Header is the expected first row of an import workbook, in order.
var Header = []string{
	"Date",
	"Team 1 Player 1",
	"Team 1 Player 2",
	"Team 2 Player 1",
	"Team 2 Player 2",
	"Team 1 Score",
	"Team 2 Score",
}

const sheetName = "Matches"

// Parse reads an xlsx workbook into match submissions. The whole file is
// validated before anything is returned, so a bad row rejects the import
// rather than truncating it. Errors name the offending row by its 1-based
// spreadsheet position.
func Parse(data []byte) ([]league.MatchSubmission, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var subs []league.MatchSubmission
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		sub, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("workbook contains no match rows")
	}
	return subs, nil
}

func checkHeader(row []string) error {
	if len(row) < len(Header) {
		return fmt.Errorf("header row has %d columns, want %d", len(row), len(Header))
	}
	for i, want := range Header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, row[i], want)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (league.MatchSubmission, error) {
	var sub league.MatchSubmission
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	date, err := parseDate(cell(0))
	if err != nil {
		return sub, err
	}
	sub.Date = date
	sub.Team1 = [2]string{cell(1), cell(2)}
	sub.Team2 = [2]string{cell(3), cell(4)}
	for i, name := range []string{cell(1), cell(2), cell(3), cell(4)} {
		if name == "" {
			return sub, fmt.Errorf("player column %d is empty", i+2)
		}
	}
	if sub.Team1Score, err = parseScore(cell(5)); err != nil {
		return sub, fmt.Errorf("team 1 score: %w", err)
	}
	if sub.Team2Score, err = parseScore(cell(6)); err != nil {
		return sub, fmt.Errorf("team 2 score: %w", err)
	}
	return sub, nil
}

// parseDate accepts the ISO form used internally plus the M/D/YYYY form the
// club's historical spreadsheets use, and excelize's default rendering of
// date-typed cells. Everything normalizes to ISO.
func parseDate(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("date is empty")
	}
	for _, layout := range []string{"2006-01-02", "1/2/2006", "01-02-06", "1/2/06"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", raw)
}

func parseScore(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("score is empty")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative score %d", n)
	}
	return n, nil
}

// Export renders settled matches as a workbook in the same layout Parse
// accepts, so a backup can be re-imported as-is.
func Export(matches []league.Match) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, m := range matches {
		values := []any{
			m.Date,
			m.Team1[0].Name, m.Team1[1].Name,
			m.Team2[0].Name, m.Team2[1].Name,
			m.Team1Score, m.Team2Score,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
