package bdcapi

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("username") != "user@example.com" || r.Header.Get("hash_value") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "user@example.com", "secret", nil)
}

func TestAvailabilityDates(t *testing.T) {
	_, c := newTestServer(t, map[string]string{
		"/listAsOfDates": `{"data":[
			{"as_of_date":"2024-06-30","data_type":"availability"},
			{"as_of_date":"2023-12-31","data_type":"availability"},
			{"as_of_date":"2024-06-30","data_type":"availability"},
			{"as_of_date":"2024-06-30","data_type":"challenge"}]}`,
	})

	dates, err := c.AvailabilityDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-31", "2024-06-30"}, dates)
}

func TestAvailabilityFilesNormalizesBlanks(t *testing.T) {
	_, c := newTestServer(t, map[string]string{
		"/downloads/listAvailabilityData/2024-06-30": `{"data":[
			{"state_name":"Kansas","technology_code_desc":"Cable","technology_type":"Fixed Broadband",
			 "category":"State","file_id":12345,"provider_id":130077,"provider_name":"ACME","speed_tier":null},
			{"state_name":"Kansas","technology_code_desc":"Cable","technology_type":"Fixed Broadband",
			 "category":"State","file_id":"67890","provider_id":null,"provider_name":null}]}`,
	})

	entries, err := c.AvailabilityFiles(context.Background(), "2024-06-30")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// numeric ids are rendered as strings
	assert.Equal(t, "12345", entries[0].FileID)
	assert.Equal(t, "130077", entries[0].ProviderID)
	assert.Equal(t, "", entries[0].SpeedTier)

	// null provider fields take the Blank sentinel, other nulls stay empty
	assert.Equal(t, "Blank", entries[1].ProviderID)
	assert.Equal(t, "Blank", entries[1].ProviderName)
	assert.Equal(t, "67890", entries[1].FileID)
}

func TestFetchFileDecodesZippedCSV(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("bdc_20_Cable_fixed_broadband.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("provider_id,block_geoid,location_id\n130077,200150101001000,1234567890\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, c := newTestServer(t, map[string]string{
		"/downloads/downloadFile/availability/99/1": buf.String(),
	})

	f, err := c.FetchFile(context.Background(), "99")
	require.NoError(t, err)
	require.Equal(t, 1, f.NumRows())

	// identifier columns come back as strings, leading zeros intact
	assert.Equal(t, "130077", f.At(0, "provider_id").Render())
	assert.Equal(t, "200150101001000", f.At(0, "block_geoid").Render())
	assert.Equal(t, "1234567890", f.At(0, "location_id").Render())
}

func TestGetRejectsNonOKStatus(t *testing.T) {
	_, c := newTestServer(t, map[string]string{})
	_, err := c.ListAsOfDates(context.Background())
	assert.ErrorContains(t, err, "unexpected status")
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New("", "u", "h", nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
