// Package geo wraps the external geocoding API used as a fallback when
// the cached city collection has no match for a query.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rishta/models"
)

// Lookup resolves a free-form place query into city candidates.
type Lookup interface {
	Search(ctx context.Context, query string) ([]models.City, error)
}

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// NominatimClient queries the OpenStreetMap Nominatim search API.
type NominatimClient struct {
	baseURL string
	client  *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &NominatimClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

func (c *NominatimClient) Search(ctx context.Context, query string) ([]models.City, error) {
	u := fmt.Sprintf("%s/search?format=json&q=%s&limit=5&addressdetails=1",
		c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "rishta-backend/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}

	var cities []models.City
	for _, r := range results {
		name := r.Address.City
		if name == "" {
			name = r.Address.Town
		}
		if name == "" {
			name = r.Address.Village
		}
		if name == "" {
			name = r.Name
		}
		if name == "" {
			continue
		}

		display := name
		if r.Address.Country != "" {
			display = name + ", " + r.Address.Country
		}

		lat, _ := strconv.ParseFloat(r.Lat, 64)
		lon, _ := strconv.ParseFloat(r.Lon, 64)

		cities = append(cities, models.City{
			Name:        name,
			Country:     r.Address.Country,
			DisplayName: display,
			Latitude:    lat,
			Longitude:   lon,
			Verified:    false,
		})
	}
	return cities, nil
}
