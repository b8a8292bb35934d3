package openweather

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// requestTimeout bounds every call to the weather API.
const requestTimeout = 10 * time.Second

const (
	geocodePath  = "/geo/1.0/direct"
	weatherPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"
)

// RequestBuilder constructs requests against the weather API. Stateless;
// identical inputs produce identical requests.
type RequestBuilder struct{}

// Build resolves path against baseURL, appends the encoded query and returns
// the request. A base URL that is not absolute is a configuration error and
// yields ErrBadRequestURL.
func (RequestBuilder) Build(ctx context.Context, method, baseURL, path string, query url.Values) (*http.Request, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, ErrBadRequestURL
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, ErrBadRequestURL
	}
	target := base.ResolveReference(rel)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, ErrBadRequestURL
	}
	return req, nil
}

// newHTTPClient returns the default client used when none is injected.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
