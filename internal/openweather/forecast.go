package openweather

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"weathertrack/internal/config"
	"weathertrack/internal/model"
)

// ForecastClient fetches 5-day/3-hour forecasts. One fetch at a time per
// client; duplicates are refused, never queued.
type ForecastClient struct {
	httpClient *http.Client
	builder    RequestBuilder

	mu       sync.Mutex
	inFlight bool
}

func NewForecastClient(httpClient ...*http.Client) *ForecastClient {
	client := newHTTPClient()
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &ForecastClient{httpClient: client}
}

// Fetch returns the forecast for one coordinate pair. While a fetch is
// outstanding, new calls fail immediately with ErrForecastInFlight.
func (c *ForecastClient) Fetch(ctx context.Context, lat, lon float64) (*model.Forecast, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrForecastInFlight
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
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", apiKey)

	req, err := c.builder.Build(ctx, http.MethodGet, config.GetOpenWeatherAPIURL(), forecastPath, params)
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

	var data model.ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	days := make([]model.ForecastDay, 0, len(data.List))
	for _, entry := range data.List {
		icon := ""
		if len(entry.Weather) > 0 {
			icon = entry.Weather[0].Icon
		}
		days = append(days, model.ForecastDay{
			Temp: math.Round(entry.Main.Temp - 273.15),
			Date: entry.DtTxt,
			Icon: icon,
		})
	}

	return &model.Forecast{
		Title: data.City.Name,
		Days:  days,
	}, nil
}
