// Package bdcapi is a thin client for the FCC Broadband Data Collection
// public map API: the as-of-date list, the per-date availability manifest,
// and the zipped CSV availability files themselves.
package bdcapi

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"bdc/internal/frame"
)

// DefaultBaseURL is the public map API root, no trailing slash.
const DefaultBaseURL = "https://bdc.fcc.gov/api/public/map"

const (
	manifestTimeout = 60 * time.Second
	downloadTimeout = 300 * time.Second
)

// keepStringCols are identifier columns that must never be read as numbers:
// GEOIDs carry leading zeros and location IDs are opaque.
var keepStringCols = map[string]bool{
	"block_geoid": true,
	"location_id": true,
	"provider_id": true,
	"frn":         true,
	"h3res8_id":   true,
}

// Client calls the BDC map API. Requests authenticate with the username and
// hash_value headers issued with an API account.
type Client struct {
	baseURL   string
	username  string
	hashValue string
	httpc     *http.Client
	log       *zap.Logger
}

// New returns a client for the given API root. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL, username, hashValue string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:   baseURL,
		username:  username,
		hashValue: hashValue,
		httpc:     &http.Client{},
		log:       log,
	}
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("username", c.username)
	req.Header.Set("hash_value", c.hashValue)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// AsOfDate is one entry of the listAsOfDates response.
type AsOfDate struct {
	AsOfDate string `json:"as_of_date"`
	DataType string `json:"data_type"`
}

// ListAsOfDates returns every published snapshot date.
func (c *Client) ListAsOfDates(ctx context.Context) ([]AsOfDate, error) {
	body, err := c.get(ctx, "/listAsOfDates", manifestTimeout)
	if err != nil {
		return nil, fmt.Errorf("list as-of dates: %w", err)
	}
	var envelope struct {
		Data []AsOfDate `json:"data"`
	}
	if err := sonnet.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode as-of dates: %w", err)
	}
	return envelope.Data, nil
}

// AvailabilityDates returns the sorted, deduplicated as-of dates that carry
// availability data.
func (c *Client) AvailabilityDates(ctx context.Context) ([]string, error) {
	all, err := c.ListAsOfDates(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dates []string
	for _, d := range all {
		if d.DataType != "availability" || seen[d.AsOfDate] {
			continue
		}
		seen[d.AsOfDate] = true
		dates = append(dates, d.AsOfDate)
	}
	sort.Strings(dates)
	return dates, nil
}

// FileEntry describes one downloadable file from the availability manifest.
// Provider fields are normalized to the "Blank" sentinel when the API
// returns null; numeric fields are rendered as strings.
type FileEntry struct {
	StateName          string
	TechnologyCodeDesc string
	TechnologyType     string
	Category           string
	FileID             string
	ProviderID         string
	ProviderName       string
	SpeedTier          string
}

// AvailabilityFiles fetches the download manifest for one as-of date.
func (c *Client) AvailabilityFiles(ctx context.Context, asOfDate string) ([]FileEntry, error) {
	body, err := c.get(ctx, "/downloads/listAvailabilityData/"+asOfDate, manifestTimeout)
	if err != nil {
		return nil, fmt.Errorf("list availability files for %s: %w", asOfDate, err)
	}
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := sonnet.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode availability manifest: %w", err)
	}

	entries := make([]FileEntry, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		entries = append(entries, FileEntry{
			StateName:          jsonString(row["state_name"], ""),
			TechnologyCodeDesc: jsonString(row["technology_code_desc"], ""),
			TechnologyType:     jsonString(row["technology_type"], ""),
			Category:           jsonString(row["category"], ""),
			FileID:             jsonString(row["file_id"], ""),
			ProviderID:         jsonString(row["provider_id"], "Blank"),
			ProviderName:       jsonString(row["provider_name"], "Blank"),
			SpeedTier:          jsonString(row["speed_tier"], ""),
		})
	}
	c.log.Debug("fetched availability manifest",
		zap.String("as_of_date", asOfDate),
		zap.Int("files", len(entries)))
	return entries, nil
}

// jsonString renders a decoded JSON value as a string, substituting the
// sentinel for null or absent values.
func jsonString(v any, sentinel string) string {
	switch t := v.(type) {
	case nil:
		return sentinel
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// FetchFile downloads one availability ZIP and decodes the first archive
// entry as a CSV table.
func (c *Client) FetchFile(ctx context.Context, fileID string) (*frame.Frame, error) {
	start := time.Now()
	body, err := c.get(ctx, "/downloads/downloadFile/availability/"+fileID+"/1", downloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open zip for file %s: %w", fileID, err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("file %s: zip archive is empty", fileID)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s in file %s: %w", zr.File[0].Name, fileID, err)
	}
	defer rc.Close()

	f, err := frame.ReadCSV(rc, keepStringCols)
	if err != nil {
		return nil, fmt.Errorf("decode CSV %s in file %s: %w", zr.File[0].Name, fileID, err)
	}
	c.log.Debug("downloaded availability file",
		zap.String("file_id", fileID),
		zap.Int("rows", f.NumRows()),
		zap.Duration("took", time.Since(start)))
	return f, nil
}
