// Package arcgis fetches and parses the Monroe County GIS school-board
// feature service (MCCSC_School_Board_2024).
package arcgis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// FeatureServiceURL is the MCCSC school-board layer's query endpoint on
// the Monroe County GIS ArcGIS server.
const FeatureServiceURL = "https://services1.arcgis.com/nYfGJ9xFTKW6VPqW/arcgis/rest/services/" +
	"MCCSC_School_Board_2024/FeatureServer/1/query"

// QueryURL builds the full-extract query: every feature, the three
// fields we map, GeoJSON output already in WGS84.
func QueryURL() string {
	params := url.Values{}
	params.Set("where", "1=1")
	params.Set("outFields", "District,DistrictName,Board_Members")
	params.Set("f", "geojson")
	params.Set("outSR", "4326")
	return fmt.Sprintf("%s?%s", FeatureServiceURL, params.Encode())
}

// FetchGeoJSON returns the feature-service GeoJSON, reading cachePath if
// present and downloading (then caching) otherwise. The cache is never
// invalidated; delete the file to force a refresh.
func FetchGeoJSON(ctx context.Context, client *http.Client, cachePath string) ([]byte, error) {
	if data, err := os.ReadFile(cachePath); err == nil {
		fmt.Printf("  Using cached GeoJSON: %s\n", filepath.Base(cachePath))
		return data, nil
	}

	fmt.Printf("  Downloading from ArcGIS feature service...\n")

	req, err := http.NewRequestWithContext(ctx, "GET", QueryURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feature service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feature service: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feature service response: %w", err)
	}

	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("cache GeoJSON to %s: %w", cachePath, err)
	}
	fmt.Printf("  Downloaded: %s\n", filepath.Base(cachePath))

	return data, nil
}
