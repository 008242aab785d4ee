package storage

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// writeXLSX writes the table to a single sheet with a frozen header row.
// Cells longer than excelize.TotalCellChars are clipped with a warning.
func writeXLSX(path, sheet string, t table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, row := range append([][]string{t.header}, t.rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			if n := utf8.RuneCountInString(v); n > excelize.TotalCellChars {
				log.Warn().
					Str("sheet", sheet).
					Int("row", i+1).
					Str("column", t.header[j]).
					Int("chars", n).
					Msg("Cell exceeds the XLSX limit, truncating")
				v = clipRunes(v, excelize.TotalCellChars)
			}
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	return replaceFile(path, func(tmp string) error {
		return f.SaveAs(tmp)
	})
}

// clipRunes returns the first n runes of s
func clipRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
