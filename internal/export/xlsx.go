// Package export renders standings tables as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MichaelKoga/C2C/internal/league"
	"github.com/MichaelKoga/C2C/internal/scoring"
	"github.com/MichaelKoga/C2C/internal/standings"
)

const SheetName = "Standings"

// ContentType is the MIME type of the files WriteXLSX produces.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns returns the header row for a table: rank and player, the score
// columns for the format and segment, then the ranking value.
func Columns(t standings.Table) []string {
	cols := []string{"Rank", "Player"}
	switch {
	case t.Tournament.Format != league.FormatStonehenge:
		cols = append(cols, "F9", "B9", "F18")
	case t.Segment == scoring.SegmentTotal:
		cols = append(cols, "F9", "B9", "F18")
	default:
		for i := 1; i <= league.RoundsPerSegment; i++ {
			cols = append(cols, fmt.Sprintf("%s R%d", t.Segment, i))
		}
	}
	return append(cols, "Final")
}

// Row returns the cell values for one standings row. Tied rows leave the
// rank cell blank.
func Row(t standings.Table, r scoring.Row) []any {
	cells := []any{"", r.Name}
	if r.Rank != nil {
		cells[0] = *r.Rank
	}
	switch {
	case t.Tournament.Format != league.FormatStonehenge:
		cells = append(cells, scalarCell(r.F9), scalarCell(r.B9), scalarCell(r.F18))
	case t.Segment == scoring.SegmentTotal:
		cells = append(cells, r.F9Total, r.B9Total, r.F18Total)
	default:
		for _, v := range segmentScores(r, t.Segment).List() {
			cells = append(cells, cell(v))
		}
	}
	return append(cells, r.Score)
}

func segmentScores(r scoring.Row, seg scoring.Segment) league.Scores {
	switch seg {
	case scoring.SegmentB9:
		return r.B9
	case scoring.SegmentF18:
		return r.F18
	default:
		return r.F9
	}
}

func scalarCell(s league.Scores) any {
	v, _ := s.Scalar()
	return cell(v)
}

func cell(v league.ScoreValue) any {
	if n, ok := v.Int(); ok {
		return n
	}
	return v.Raw()
}

// WriteXLSX writes t as a single-sheet workbook.
func WriteXLSX(w io.Writer, t standings.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := Columns(t)
	if err := setRow(f, 1, toAny(header)); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err := setRow(f, i+2, Row(t, r)); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 24); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, axis, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
