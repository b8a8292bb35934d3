package openweather

import "errors"

// Custom error types
var (
	// ErrExternalAPI covers transport failures, timeouts and non-200 statuses.
	ErrExternalAPI = errors.New("external API error")
	// ErrAPIKeyMissing means OPENWEATHERMAP_API_KEY is not set.
	ErrAPIKeyMissing = errors.New("API key missing")
	// ErrBadRequestURL means no request could be built from the configured base URL.
	ErrBadRequestURL = errors.New("malformed request URL")
	// ErrPlaceNotFound means a geocode search returned zero results.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrSearchInFlight rejects a geocode search while another is running.
	ErrSearchInFlight = errors.New("geolocation search already in flight")
	// ErrForecastInFlight rejects a forecast fetch while another is running.
	ErrForecastInFlight = errors.New("forecast fetch already in flight")
	// ErrFetchInFlight marks a weather fetch for a coordinate pair that is
	// already being fetched. A batch that loses members to it is incomplete
	// and fails with it too.
	ErrFetchInFlight = errors.New("weather fetch already in flight")
)
