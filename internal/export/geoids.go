package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/xuri/excelize/v2"

	"bdc/internal/frame"
)

// geoidCol is the required column name in CSV and XLSX allow-list files.
const geoidCol = "block_geoid"

// shapefile attribute names that carry the block GEOID, by TIGER vintage.
var shpGeoidFields = []string{"GEOID20", "GEOID10", "GEOID"}

// ReadGeoidList loads a block GEOID allow-list. The format follows the file
// extension: a CSV or XLSX with a block_geoid column, or a Census TIGER
// block shapefile whose attribute table carries GEOID20/GEOID10/GEOID.
func ReadGeoidList(path string) (map[string]struct{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readGeoidCSV(path)
	case ".xlsx":
		return readGeoidXLSX(path)
	case ".shp":
		return readGeoidShapefile(path)
	}
	return nil, fmt.Errorf("geoid list %s: unsupported format (want .csv, .xlsx, or .shp)", path)
}

func readGeoidCSV(path string) (map[string]struct{}, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	f, err := frame.ReadCSV(in, map[string]bool{geoidCol: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !f.HasColumns(geoidCol) {
		return nil, fmt.Errorf("geoid list %s: missing %q column", path, geoidCol)
	}
	return f.Distinct(geoidCol), nil
}

func readGeoidXLSX(path string) (map[string]struct{}, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("geoid list %s: workbook has no sheets", path)
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("geoid list %s: sheet %s is empty", path, sheets[0])
	}
	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == geoidCol {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("geoid list %s: missing %q column", path, geoidCol)
	}
	out := make(map[string]struct{})
	for _, row := range rows[1:] {
		if col < len(row) {
			if g := strings.TrimSpace(row[col]); g != "" {
				out[g] = struct{}{}
			}
		}
	}
	return out, nil
}

// readGeoidShapefile pulls GEOIDs out of the DBF attribute table of a TIGER
// block shapefile. Geometry is ignored.
func readGeoidShapefile(path string) (map[string]struct{}, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fieldIdx := -1
	for i, f := range r.Fields() {
		name := f.String()
		for _, want := range shpGeoidFields {
			if name == want {
				fieldIdx = i
				break
			}
		}
		if fieldIdx != -1 {
			break
		}
	}
	if fieldIdx == -1 {
		return nil, fmt.Errorf("geoid list %s: no %s attribute", path, strings.Join(shpGeoidFields, "/"))
	}

	out := make(map[string]struct{})
	for r.Next() {
		idx, _ := r.Shape()
		if g := strings.TrimSpace(r.ReadAttribute(idx, fieldIdx)); g != "" {
			out[g] = struct{}{}
		}
	}
	return out, nil
}
