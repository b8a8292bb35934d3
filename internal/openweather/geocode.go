package openweather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"weathertrack/internal/config"
	"weathertrack/internal/model"
)

// GeoClient resolves free-text place names to coordinates.
type GeoClient struct {
	httpClient *http.Client
	builder    RequestBuilder

	mu       sync.Mutex
	inFlight bool
}

// NewGeoClient creates a geolocation client. An http.Client can be injected
// for testing; otherwise a default 10s-timeout client is used.
func NewGeoClient(httpClient ...*http.Client) *GeoClient {
	client := newHTTPClient()
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &GeoClient{httpClient: client}
}

// Search resolves a place name via the geocode endpoint. Only one search may
// run at a time: a second call fails immediately with ErrSearchInFlight
// instead of queuing. Zero results is ErrPlaceNotFound, distinct from
// transport failures.
func (c *GeoClient) Search(ctx context.Context, query string) ([]model.GeoResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSearchInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	apiKey := config.GetOpenWeatherMapAPIKey()
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(1))
	params.Set("appid", apiKey)

	req, err := c.builder.Build(ctx, http.MethodGet, config.GetOpenWeatherAPIURL(), geocodePath, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrExternalAPI
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrExternalAPI
	}

	var data []model.GeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrPlaceNotFound
	}

	results := make([]model.GeoResult, 0, len(data))
	for _, d := range data {
		results = append(results, model.GeoResult{
			Name:  d.Name,
			Local: model.LocalNames{Ru: d.LocalNames.Ru, En: d.LocalNames.En},
			Lat:   d.Lat,
			Lon:   d.Lon,
		})
	}
	return results, nil
}
