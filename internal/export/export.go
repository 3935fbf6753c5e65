// Package export writes the merged availability table to disk and reads the
// optional user-supplied block GEOID allow-list.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bdc/internal/frame"
)

// Filename builds the conventional output name: the selected technologies
// joined by underscores with spaces stripped, then a local timestamp.
// Example: FibertothePremises_Cable_20240315_142200.csv
func Filename(technologies []string, ext string, now time.Time) string {
	parts := make([]string, len(technologies))
	for i, t := range technologies {
		parts[i] = strings.ReplaceAll(t, " ", "")
	}
	return fmt.Sprintf("%s_%s.%s", strings.Join(parts, "_"), now.Format("20060102_150405"), ext)
}

// WriteCSV streams the frame as a headered CSV. Null cells render empty.
func WriteCSV(f *frame.Frame, w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := f.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for i := 0; i < f.NumRows(); i++ {
		for c, name := range cols {
			rec[c] = f.At(i, name).Render()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the frame to path, creating or truncating the file.
func SaveCSV(f *frame.Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := WriteCSV(f, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveXLSX writes the frame to a single-sheet workbook at path. Numeric
// cells are written as numbers so spreadsheet formulas work on the counts.
func SaveXLSX(f *frame.Frame, path string) error {
	x := excelize.NewFile()
	const sheet = "availability"
	idx, err := x.NewSheet(sheet)
	if err != nil {
		return err
	}
	cols := f.Columns()
	for c, name := range cols {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := x.SetCellStr(sheet, cell, name); err != nil {
			return err
		}
	}
	for i := 0; i < f.NumRows(); i++ {
		for c, name := range cols {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			v := f.At(i, name)
			switch v.Kind {
			case frame.KindNum:
				err = x.SetCellValue(sheet, cell, v.F)
			case frame.KindStr:
				err = x.SetCellStr(sheet, cell, v.S)
			default:
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	x.SetActiveSheet(idx)
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
