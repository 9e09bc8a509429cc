package ridb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// Geocode resolves a US location name to coordinates through Nominatim.
func Geocode(ctx context.Context, location string) (lat, lon float64, err error) {
	return geocode(ctx, nominatimURL, location)
}

func geocode(ctx context.Context, endpoint, location string) (float64, float64, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "campwatch/1.0 (https://github.com/campwatch/campwatch)")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %q: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding %q: HTTP %d", location, resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("geocoding %q: %w", location, err)
	}

	if len(results) == 0 {
		return 0, 0, fmt.Errorf("location %q not found", location)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %q: %w", location, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %q: %w", location, err)
	}

	return lat, lon, nil
}
