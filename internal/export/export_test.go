package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bdc/internal/frame"
)

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 22, 0, 0, time.UTC)
	got := Filename([]string{"Fiber to the Premises", "Cable"}, "csv", now)
	assert.Equal(t, "FibertothePremises_Cable_20240315_142200.csv", got)

	assert.Equal(t, "Cable_20240315_142200.xlsx",
		Filename([]string{"Cable"}, "xlsx", now))
}

func TestWriteCSV(t *testing.T) {
	f := frame.New("block_geoid", "111", "222")
	f.AppendRow(frame.Str("01001"), frame.Num(2), frame.Num(1))
	f.AppendRow(frame.Str("20015"), frame.Num(3), frame.Null)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(f, &buf))
	assert.Equal(t, "block_geoid,111,222\n01001,2,1\n20015,3,\n", buf.String())
}

func TestSaveXLSXRoundTrip(t *testing.T) {
	f := frame.New("block_geoid", "n_unique_locations")
	f.AppendRow(frame.Str("01001"), frame.Num(5))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveXLSX(f, path))

	x, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer x.Close()

	rows, err := x.GetRows("availability")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"block_geoid", "n_unique_locations"}, rows[0])
	assert.Equal(t, "01001", rows[1][0])
	assert.Equal(t, "5", rows[1][1])
}

func TestReadGeoidListCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geoids.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("block_geoid,notes\n010010201001000,keep\n010010201001000,dup\n200150101001000,\n"), 0644))

	set, err := ReadGeoidList(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"010010201001000": {},
		"200150101001000": {},
	}, set)
}

func TestReadGeoidListCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geoids.csv")
	require.NoError(t, os.WriteFile(path, []byte("geoid\n01001\n"), 0644))

	_, err := ReadGeoidList(path)
	assert.ErrorContains(t, err, "block_geoid")
}

func TestReadGeoidListXLSX(t *testing.T) {
	x := excelize.NewFile()
	require.NoError(t, x.SetSheetRow("Sheet1", "A1", &[]string{"block_geoid"}))
	require.NoError(t, x.SetSheetRow("Sheet1", "A2", &[]string{"010010201001000"}))
	require.NoError(t, x.SetSheetRow("Sheet1", "A3", &[]string{""}))
	path := filepath.Join(t.TempDir(), "geoids.xlsx")
	require.NoError(t, x.SaveAs(path))

	set, err := ReadGeoidList(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"010010201001000": {}}, set)
}

func TestReadGeoidListUnsupportedFormat(t *testing.T) {
	_, err := ReadGeoidList("geoids.json")
	assert.ErrorContains(t, err, "unsupported format")
}
