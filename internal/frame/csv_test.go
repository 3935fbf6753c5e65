package frame

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVTypesCells(t *testing.T) {
	in := "provider_id,block_geoid,max_advertised_download_speed,technology_code_desc\n" +
		"130077,010010201001000,940,Cable\n" +
		"131425,010010201001001,,Fiber to the Premises\n"

	f, err := ReadCSV(strings.NewReader(in), map[string]bool{"provider_id": true, "block_geoid": true})
	require.NoError(t, err)
	require.Equal(t, 2, f.NumRows())

	// forced-string columns keep leading zeros and identifier semantics
	assert.Equal(t, KindStr, f.At(0, "block_geoid").Kind)
	assert.Equal(t, "010010201001000", f.At(0, "block_geoid").Render())
	assert.Equal(t, KindStr, f.At(0, "provider_id").Kind)

	// numeric inference elsewhere
	assert.Equal(t, KindNum, f.At(0, "max_advertised_download_speed").Kind)
	assert.Equal(t, 940.0, f.At(0, "max_advertised_download_speed").F)

	// empty cells are null
	assert.True(t, f.At(1, "max_advertised_download_speed").IsNull())
	assert.Equal(t, "Fiber to the Premises", f.At(1, "technology_code_desc").Render())
}

func TestReadCSVShortRecords(t *testing.T) {
	in := "a,b,c\n1,2\n"
	f, err := ReadCSV(strings.NewReader(in), nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.NumRows())
	assert.True(t, f.At(0, "c").IsNull())
}

func TestReadCSVEmptyStream(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}
