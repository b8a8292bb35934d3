package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"weathertrack/internal/config"
	"weathertrack/internal/handler"
	"weathertrack/internal/model"
)

// stubService satisfies the handler's service interface with canned data so
// route wiring can be exercised without a store or upstream API.
type stubService struct{}

func (stubService) Locations(ctx context.Context) ([]model.Location, error) {
	return []model.Location{}, nil
}

func (stubService) SearchAndAdd(ctx context.Context, query string) (*model.Location, error) {
	return &model.Location{Title: query}, nil
}

func (stubService) Refresh(ctx context.Context) ([]model.Location, error) {
	return []model.Location{}, nil
}

func (stubService) Remove(ctx context.Context, id string) error { return nil }

func (stubService) DailyForecast(ctx context.Context, id string) (*model.Forecast, [][]model.ForecastDay, error) {
	return &model.Forecast{}, nil, nil
}

func TestDefaultServerPort(t *testing.T) {
	port := config.GetServerPort()
	if port != "8080" {
		t.Errorf("Expected default port 8080, got %s", port)
	}
}

func TestRouteRegistration(t *testing.T) {
	locationsHandler := handler.NewLocationsHandler(stubService{})
	mux := http.NewServeMux()
	mux.HandleFunc("/locations", locationsHandler.HandleLocations)
	mux.HandleFunc("/locations/refresh", locationsHandler.HandleRefresh)
	mux.HandleFunc("/locations/forecast", locationsHandler.HandleForecast)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/locations", http.StatusOK},
		{http.MethodPost, "/locations/refresh", http.StatusOK},
		{http.MethodGet, "/locations/forecast?id=1", http.StatusOK},
		{http.MethodGet, "/locations/refresh", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.target, tt.want, rr.Code)
		}
	}
}
