package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"weathertrack/internal/model"
	"weathertrack/internal/openweather"
	"weathertrack/internal/store"
)

// In-memory store for testing.
type mockStore struct {
	locs       []model.Location
	replaceErr error
}

var _ store.Store = (*mockStore)(nil)

func (m *mockStore) List(ctx context.Context) ([]model.Location, error) {
	out := make([]model.Location, len(m.locs))
	copy(out, m.locs)
	return out, nil
}

func (m *mockStore) Add(ctx context.Context, loc model.Location) error {
	m.locs = append(m.locs, loc)
	return nil
}

func (m *mockStore) Remove(ctx context.Context, id string) error {
	for i, loc := range m.locs {
		if loc.ID == id {
			m.locs = append(m.locs[:i], m.locs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) ReplaceAll(ctx context.Context, locs []model.Location) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.locs = locs
	return nil
}

func (m *mockStore) Close() error { return nil }

type mockGeo struct {
	results []model.GeoResult
	err     error
}

func (m *mockGeo) Search(ctx context.Context, query string) ([]model.GeoResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockWeather struct {
	one      *model.Location
	oneErr   error
	batch    []model.Location
	batchErr error
}

func (m *mockWeather) FetchOne(ctx context.Context, lat, lon float64, opts openweather.FetchOpts) (*model.Location, error) {
	if m.oneErr != nil {
		return nil, m.oneErr
	}
	return m.one, nil
}

func (m *mockWeather) FetchAll(ctx context.Context, locations []model.Location) ([]model.Location, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	return m.batch, nil
}

type mockForecast struct {
	forecast *model.Forecast
	err      error
}

func (m *mockForecast) Fetch(ctx context.Context, lat, lon float64) (*model.Forecast, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.forecast, nil
}

func newTestService(st store.Store, geo GeoSearcher, weather WeatherFetcher, forecasts ForecastFetcher) *LocationService {
	return NewLocationService(st, geo, weather, forecasts, zap.NewNop().Sugar())
}

func TestSearchAndAdd(t *testing.T) {
	kazanGeo := model.GeoResult{Name: "Kazan", Lat: 55.78, Lon: 49.12}
	kazanLoc := model.Location{ID: "new-id", Title: "Kazan", Lat: 55.78, Lon: 49.12, Temp: "+ 24"}

	tests := []struct {
		name     string
		saved    []model.Location
		geo      *mockGeo
		weather  *mockWeather
		wantErr  error
		wantSize int
	}{
		{
			name:     "resolved place is fetched and saved",
			saved:    nil,
			geo:      &mockGeo{results: []model.GeoResult{kazanGeo}},
			weather:  &mockWeather{one: &kazanLoc},
			wantSize: 1,
		},
		{
			name:    "place not found propagates",
			saved:   nil,
			geo:     &mockGeo{err: openweather.ErrPlaceNotFound},
			weather: &mockWeather{},
			wantErr: openweather.ErrPlaceNotFound,
		},
		{
			name:    "search busy propagates",
			saved:   nil,
			geo:     &mockGeo{err: openweather.ErrSearchInFlight},
			weather: &mockWeather{},
			wantErr: openweather.ErrSearchInFlight,
		},
		{
			name:    "empty search result is treated as not found",
			saved:   nil,
			geo:     &mockGeo{results: nil},
			weather: &mockWeather{},
			wantErr: openweather.ErrPlaceNotFound,
		},
		{
			name:    "whole-degree duplicate is rejected",
			saved:   []model.Location{{ID: "old", Title: "Kazan", Lat: 55.9, Lon: 49.3}},
			geo:     &mockGeo{results: []model.GeoResult{kazanGeo}},
			weather: &mockWeather{one: &kazanLoc},
			wantErr: ErrDuplicateLocation,
		},
		{
			name:    "weather failure is not saved",
			saved:   nil,
			geo:     &mockGeo{results: []model.GeoResult{kazanGeo}},
			weather: &mockWeather{oneErr: openweather.ErrExternalAPI},
			wantErr: openweather.ErrExternalAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{locs: tt.saved}
			svc := newTestService(st, tt.geo, tt.weather, &mockForecast{})

			loc, err := svc.SearchAndAdd(context.Background(), "Kazan")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				if len(st.locs) != len(tt.saved) {
					t.Errorf("Expected the store untouched on failure, got %d entries", len(st.locs))
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if loc.Title != "Kazan" {
				t.Errorf("Expected Kazan, got %q", loc.Title)
			}
			if len(st.locs) != tt.wantSize {
				t.Errorf("Expected %d stored locations, got %d", tt.wantSize, len(st.locs))
			}
		})
	}
}

func TestRefresh_ReplacesStoreOnSuccess(t *testing.T) {
	st := &mockStore{locs: []model.Location{
		{ID: "1", Title: "Moscow", Temp: "+ 7"},
		{ID: "2", Title: "Kazan", Temp: "+ 3"},
	}}
	weather := &mockWeather{batch: []model.Location{
		{ID: "2", Title: "Kazan", Temp: "+ 4"},
		{ID: "1", Title: "Moscow", Temp: "+ 8"},
	}}
	svc := newTestService(st, &mockGeo{}, weather, &mockForecast{})

	locs, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(locs))
	}
	if st.locs[0].Temp != "+ 4" || st.locs[1].Temp != "+ 8" {
		t.Errorf("Expected the store replaced with fresh temps, got %+v", st.locs)
	}
}

func TestRefresh_KeepsStoreOnFailure(t *testing.T) {
	before := []model.Location{{ID: "1", Title: "Moscow", Temp: "+ 7"}}
	st := &mockStore{locs: before}
	weather := &mockWeather{batchErr: openweather.ErrExternalAPI}
	svc := newTestService(st, &mockGeo{}, weather, &mockForecast{})

	_, err := svc.Refresh(context.Background())
	if !errors.Is(err, openweather.ErrExternalAPI) {
		t.Fatalf("Expected ErrExternalAPI, got %v", err)
	}
	if len(st.locs) != 1 || st.locs[0].Temp != "+ 7" {
		t.Errorf("Expected saved locations preserved after a failed refresh, got %+v", st.locs)
	}
}

func TestRefresh_KeepsStoreOnIncompleteBatch(t *testing.T) {
	// An overlapping refresh surfaces as an incomplete batch. The store must
	// keep all saved locations rather than be replaced with the subset.
	before := []model.Location{
		{ID: "1", Title: "Moscow", Temp: "+ 7"},
		{ID: "2", Title: "Kazan", Temp: "+ 3"},
	}
	st := &mockStore{locs: before}
	weather := &mockWeather{batchErr: openweather.ErrFetchInFlight}
	svc := newTestService(st, &mockGeo{}, weather, &mockForecast{})

	_, err := svc.Refresh(context.Background())
	if !errors.Is(err, openweather.ErrFetchInFlight) {
		t.Fatalf("Expected ErrFetchInFlight, got %v", err)
	}
	if len(st.locs) != 2 {
		t.Errorf("Expected both saved locations preserved, got %+v", st.locs)
	}
}

func TestRefresh_EmptyStoreSkipsFetch(t *testing.T) {
	st := &mockStore{}
	weather := &mockWeather{batchErr: errors.New("should not be called")}
	svc := newTestService(st, &mockGeo{}, weather, &mockForecast{})

	locs, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for an empty store, got %v", err)
	}
	if len(locs) != 0 {
		t.Errorf("Expected empty result, got %d", len(locs))
	}
}

func TestRemove(t *testing.T) {
	st := &mockStore{locs: []model.Location{{ID: "1", Title: "Moscow"}}}
	svc := newTestService(st, &mockGeo{}, &mockWeather{}, &mockForecast{})

	if err := svc.Remove(context.Background(), "1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(st.locs) != 0 {
		t.Errorf("Expected the location removed, got %+v", st.locs)
	}

	if err := svc.Remove(context.Background(), "missing"); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}
}

func TestDailyForecast(t *testing.T) {
	st := &mockStore{locs: []model.Location{{ID: "1", Title: "Kazan", Lat: 55.78, Lon: 49.12}}}
	forecasts := &mockForecast{forecast: &model.Forecast{
		Title: "Kazan",
		Days: []model.ForecastDay{
			{Temp: 17, Date: "2024-09-18 03:00:00"},
			{Temp: 15, Date: "2024-09-18 06:00:00"},
			{Temp: 12, Date: "2024-09-19 00:00:00"},
		},
	}}
	svc := newTestService(st, &mockGeo{}, &mockWeather{}, forecasts)

	fc, buckets, err := svc.DailyForecast(context.Background(), "1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fc.Title != "Kazan" {
		t.Errorf("Expected title Kazan, got %q", fc.Title)
	}
	if len(buckets) != 2 || len(buckets[0]) != 2 || len(buckets[1]) != 1 {
		t.Errorf("Expected buckets [2 1], got %v", bucketSizes(buckets))
	}

	if _, _, err := svc.DailyForecast(context.Background(), "missing"); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected ErrLocationNotFound, got %v", err)
	}
}

func TestDailyForecast_BusyPropagates(t *testing.T) {
	st := &mockStore{locs: []model.Location{{ID: "1", Title: "Kazan"}}}
	forecasts := &mockForecast{err: openweather.ErrForecastInFlight}
	svc := newTestService(st, &mockGeo{}, &mockWeather{}, forecasts)

	_, _, err := svc.DailyForecast(context.Background(), "1")
	if !errors.Is(err, openweather.ErrForecastInFlight) {
		t.Fatalf("Expected ErrForecastInFlight, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	st := &mockStore{}
	svc := newTestService(st, &mockGeo{}, &mockWeather{}, &mockForecast{})

	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(st.locs) != 3 {
		t.Fatalf("Expected 3 seeded locations, got %d", len(st.locs))
	}
	for _, loc := range st.locs {
		if loc.ID == "" {
			t.Errorf("Expected %q to get a generated ID", loc.Title)
		}
	}

	// Seeding again must not duplicate.
	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(st.locs) != 3 {
		t.Errorf("Expected seed to be a no-op on a non-empty store, got %d", len(st.locs))
	}
}

func bucketSizes(buckets [][]model.ForecastDay) []int {
	sizes := make([]int, 0, len(buckets))
	for _, b := range buckets {
		sizes = append(sizes, len(b))
	}
	return sizes
}
