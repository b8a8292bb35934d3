package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"weathertrack/internal/config"
	"weathertrack/internal/model"
)

// WeatherCache is the read-through cache the weather client consults before
// hitting the API. Implementations must be safe for concurrent use.
type WeatherCache interface {
	Get(ctx context.Context, key string) (*model.OpenWeatherMapResponse, bool)
	Set(ctx context.Context, key string, resp *model.OpenWeatherMapResponse)
}

// FetchOpts carries the name sources consulted when assembling a Location.
// Geo is set when the fetch follows a geocode search, Prev when refreshing a
// saved location.
type FetchOpts struct {
	Geo  *model.GeoResult
	Prev *model.Location
}

// WeatherClient fetches current weather for coordinate pairs, de-duplicating
// in-flight fetches per pair.
type WeatherClient struct {
	httpClient *http.Client
	builder    RequestBuilder
	cache      WeatherCache
	lang       string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewWeatherClient creates a weather client. cache may be nil to disable
// caching; lang selects which localized name becomes the display title.
func NewWeatherClient(cache WeatherCache, lang string, httpClient ...*http.Client) *WeatherClient {
	client := newHTTPClient()
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &WeatherClient{
		httpClient: client,
		cache:      cache,
		lang:       lang,
		inFlight:   make(map[string]struct{}),
	}
}

// FetchOne fetches current weather for one coordinate pair and maps it to a
// Location. A concurrent fetch for the same pair is refused with
// ErrFetchInFlight and produces no transport call.
func (c *WeatherClient) FetchOne(ctx context.Context, lat, lon float64, opts FetchOpts) (*model.Location, error) {
	key := model.CoordKey(lat, lon)

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			return c.mapLocation(cached, opts), nil
		}
	}

	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	data, err := c.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, data)
	}
	return c.mapLocation(data, opts), nil
}

// FetchAll refreshes every location concurrently and waits for all of them.
// The first failure fails the whole batch, but siblings are never cancelled;
// their late results are discarded. Successful batches come back sorted
// alphabetically by title and replace the store contents wholesale, so a
// batch that lost members to an overlapping fetch is incomplete and fails
// with ErrFetchInFlight rather than shrinking the saved list.
func (c *WeatherClient) FetchAll(ctx context.Context, locations []model.Location) ([]model.Location, error) {
	results := make(chan model.Location, len(locations))
	errs := make(chan error, len(locations))

	var wg sync.WaitGroup
	for _, loc := range locations {
		wg.Add(1)
		go func(prev model.Location) {
			defer wg.Done()
			fetched, err := c.FetchOne(ctx, prev.Lat, prev.Lon, FetchOpts{Prev: &prev})
			if err != nil {
				if errors.Is(err, ErrFetchInFlight) {
					return
				}
				errs <- err
				return
			}
			results <- *fetched
		}(loc)
	}
	wg.Wait()
	close(results)
	close(errs)

	if len(errs) > 0 {
		return nil, <-errs
	}

	fetched := make([]model.Location, 0, len(locations))
	for loc := range results {
		fetched = append(fetched, loc)
	}
	if len(fetched) < len(locations) {
		return nil, ErrFetchInFlight
	}
	sort.Slice(fetched, func(i, j int) bool { return fetched[i].Title < fetched[j].Title })
	return fetched, nil
}

func (c *WeatherClient) fetchCurrent(ctx context.Context, lat, lon float64) (*model.OpenWeatherMapResponse, error) {
	apiKey := config.GetOpenWeatherMapAPIKey()
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", apiKey)

	req, err := c.builder.Build(ctx, http.MethodGet, config.GetOpenWeatherAPIURL(), weatherPath, params)
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

	var data model.OpenWeatherMapResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// mapLocation assembles the domain Location. Name precedence per localized
// field: geocode result, then the previous entity, then the wire name. The
// display title follows the active language. The ID survives refreshes.
func (c *WeatherClient) mapLocation(data *model.OpenWeatherMapResponse, opts FetchOpts) *model.Location {
	name := data.Name
	locRu := pickName(opts, "ru", name)
	locEn := pickName(opts, "en", name)

	switch c.lang {
	case "ru":
		name = locRu
	case "en":
		name = locEn
	}

	id := uuid.NewString()
	if opts.Prev != nil {
		id = opts.Prev.ID
	}

	icon := ""
	if len(data.Weather) > 0 {
		icon = data.Weather[0].Icon
	}

	return &model.Location{
		ID:    id,
		Title: name,
		Lat:   data.Coord.Lat,
		Lon:   data.Coord.Lon,
		Temp:  model.FormatTemp(data.Main.Temp),
		Icon:  icon,
		LocRu: locRu,
		LocEn: locEn,
	}
}

func pickName(opts FetchOpts, lang, fallback string) string {
	if opts.Geo != nil {
		if n := opts.Geo.Local.Localized(lang); n != "" {
			return n
		}
	}
	if opts.Prev != nil {
		var n string
		switch lang {
		case "ru":
			n = opts.Prev.LocRu
		case "en":
			n = opts.Prev.LocEn
		}
		if n != "" {
			return n
		}
	}
	return fallback
}
