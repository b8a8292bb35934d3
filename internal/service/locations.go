package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weathertrack/internal/forecast"
	"weathertrack/internal/model"
	"weathertrack/internal/openweather"
	"weathertrack/internal/store"
)

// Custom error types
var (
	// ErrDuplicateLocation rejects a search result whose coordinates round to
	// the same whole degree as an already-saved location.
	ErrDuplicateLocation = errors.New("location already saved")
	// ErrLocationNotFound means the given id is not in the store.
	ErrLocationNotFound = errors.New("location not found")
)

// GeoSearcher resolves place names to coordinates.
type GeoSearcher interface {
	Search(ctx context.Context, query string) ([]model.GeoResult, error)
}

// WeatherFetcher fetches current weather for one coordinate pair or a batch.
type WeatherFetcher interface {
	FetchOne(ctx context.Context, lat, lon float64, opts openweather.FetchOpts) (*model.Location, error)
	FetchAll(ctx context.Context, locations []model.Location) ([]model.Location, error)
}

// ForecastFetcher fetches a 5-day forecast for one coordinate pair.
type ForecastFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*model.Forecast, error)
}

// LocationService orchestrates search, refresh, delete and forecast over the
// saved-locations store. All collaborators are injected.
type LocationService struct {
	store     store.Store
	geo       GeoSearcher
	weather   WeatherFetcher
	forecasts ForecastFetcher
	log       *zap.SugaredLogger
}

func NewLocationService(st store.Store, geo GeoSearcher, weather WeatherFetcher, forecasts ForecastFetcher, log *zap.SugaredLogger) *LocationService {
	return &LocationService{
		store:     st,
		geo:       geo,
		weather:   weather,
		forecasts: forecasts,
		log:       log,
	}
}

// Locations returns the saved list as the store holds it.
func (s *LocationService) Locations(ctx context.Context) ([]model.Location, error) {
	return s.store.List(ctx)
}

// SearchAndAdd resolves a place name, rejects whole-degree duplicates of
// saved locations, fetches its current weather and appends it to the store.
func (s *LocationService) SearchAndAdd(ctx context.Context, query string) (*model.Location, error) {
	results, err := s.geo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, openweather.ErrPlaceNotFound
	}
	found := results[0]

	saved, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, loc := range saved {
		if loc.SameDegree(found.Lat, found.Lon) {
			return nil, ErrDuplicateLocation
		}
	}

	fetched, err := s.weather.FetchOne(ctx, found.Lat, found.Lon, openweather.FetchOpts{Geo: &found})
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, *fetched); err != nil {
		return nil, err
	}
	s.log.Infow("location added", "title", fetched.Title, "lat", fetched.Lat, "lon", fetched.Lon)
	return fetched, nil
}

// Refresh re-fetches weather for every saved location and replaces the store
// contents with the batch result. On batch failure the store keeps its prior
// contents and the error is surfaced.
func (s *LocationService) Refresh(ctx context.Context) ([]model.Location, error) {
	saved, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return saved, nil
	}

	fetched, err := s.weather.FetchAll(ctx, saved)
	if err != nil {
		s.log.Warnw("refresh failed, keeping saved locations", "error", err)
		return nil, err
	}
	if len(fetched) > 0 {
		if err := s.store.ReplaceAll(ctx, fetched); err != nil {
			return nil, err
		}
	}
	return fetched, nil
}

// Remove deletes a saved location by id.
func (s *LocationService) Remove(ctx context.Context, id string) error {
	loc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, loc.ID); err != nil {
		return err
	}
	s.log.Infow("location removed", "title", loc.Title)
	return nil
}

// DailyForecast fetches the 5-day forecast for a saved location and groups
// it into one bucket per calendar day.
func (s *LocationService) DailyForecast(ctx context.Context, id string) (*model.Forecast, [][]model.ForecastDay, error) {
	loc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fc, err := s.forecasts.Fetch(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, nil, err
	}
	return fc, forecast.GroupByDay(fc.Days), nil
}

func (s *LocationService) find(ctx context.Context, id string) (*model.Location, error) {
	saved, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, loc := range saved {
		if loc.ID == id {
			return &loc, nil
		}
	}
	return nil, ErrLocationNotFound
}

// Seed fills an empty store with the default cities so a fresh install has
// something to show before the first search.
func (s *LocationService) Seed(ctx context.Context) error {
	saved, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if len(saved) > 0 {
		return nil
	}

	defaults := []model.Location{
		{Title: "Kazan", Lat: 55.7823547, Lon: 49.1242266, Temp: model.FormatTemp(300.0), LocRu: "Казань", LocEn: "Kazan"},
		{Title: "Moscow", Lat: 55.7504461, Lon: 37.6174943, Temp: model.FormatTemp(280.0), LocRu: "Москва", LocEn: "Moscow"},
		{Title: "Saint-Petersburg", Lat: 59.938732, Lon: 30.316229, Temp: model.FormatTemp(260.0), LocRu: "Санкт-Петербург", LocEn: "Saint-Petersburg"},
	}
	for _, loc := range defaults {
		loc.ID = uuid.NewString()
		if err := s.store.Add(ctx, loc); err != nil {
			return err
		}
	}
	return nil
}
