package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"weathertrack/internal/config"
	"weathertrack/internal/forecast"
	"weathertrack/internal/model"
	"weathertrack/internal/openweather"
	"weathertrack/internal/service"
)

// LocationsService is the slice of the orchestration layer the HTTP handlers call.
type LocationsService interface {
	Locations(ctx context.Context) ([]model.Location, error)
	SearchAndAdd(ctx context.Context, query string) (*model.Location, error)
	Refresh(ctx context.Context) ([]model.Location, error)
	Remove(ctx context.Context, id string) error
	DailyForecast(ctx context.Context, id string) (*model.Forecast, [][]model.ForecastDay, error)
}

type LocationsHandler struct {
	Service LocationsService
}

func NewLocationsHandler(svc LocationsService) *LocationsHandler {
	return &LocationsHandler{Service: svc}
}

// locationView decorates a Location with its icon asset URL.
type locationView struct {
	model.Location
	IconURL string `json:"icon_url,omitempty"`
}

type dayView struct {
	Temp    float64 `json:"temp"`
	Date    string  `json:"date"`
	Display string  `json:"display"`
	Icon    string  `json:"icon"`
	IconURL string  `json:"icon_url,omitempty"`
}

type bucketView struct {
	Header string    `json:"header"`
	Days   []dayView `json:"days"`
}

type forecastView struct {
	Title string       `json:"title"`
	Days  []bucketView `json:"days"`
}

func (h *LocationsHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *LocationsHandler) writeError(w http.ResponseWriter, statusCode int, msg string) {
	h.writeJSONResponse(w, statusCode, model.Response{
		Error:   &msg,
		Message: "Error",
	})
}

// statusFor maps the orchestration error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, openweather.ErrPlaceNotFound),
		errors.Is(err, service.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateLocation):
		return http.StatusConflict
	case errors.Is(err, openweather.ErrSearchInFlight),
		errors.Is(err, openweather.ErrForecastInFlight),
		errors.Is(err, openweather.ErrFetchInFlight):
		return http.StatusTooManyRequests
	case errors.Is(err, openweather.ErrExternalAPI):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleLocations serves the saved-locations collection:
// GET lists, POST?q= searches and adds, DELETE?id= removes.
func (h *LocationsHandler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *LocationsHandler) list(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Service.Locations(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    locationViews(locs),
		Message: "Success",
	})
}

func (h *LocationsHandler) add(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "Missing 'q' query parameter")
		return
	}
	loc, err := h.Service.SearchAndAdd(r.Context(), query)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, model.Response{
		Data:    locationView{Location: *loc, IconURL: iconURL(loc.Icon)},
		Message: "Success",
	})
}

func (h *LocationsHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Missing 'id' query parameter")
		return
	}
	if err := h.Service.Remove(r.Context(), id); err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{Message: "Success"})
}

// HandleRefresh refreshes every saved location in one batch. On failure the
// stored list stays as it was.
func (h *LocationsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	locs, err := h.Service.Refresh(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    locationViews(locs),
		Message: "Success",
	})
}

// HandleForecast serves the day-bucketed 5-day forecast of a saved location.
func (h *LocationsHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "Missing 'id' query parameter")
		return
	}

	fc, buckets, err := h.Service.DailyForecast(r.Context(), id)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	view := forecastView{Title: fc.Title, Days: make([]bucketView, 0, len(buckets))}
	for _, bucket := range buckets {
		bv := bucketView{Days: make([]dayView, 0, len(bucket))}
		if len(bucket) > 0 {
			bv.Header = forecast.DayHeader(bucket[0].Date)
		}
		for _, day := range bucket {
			bv.Days = append(bv.Days, dayView{
				Temp:    day.Temp,
				Date:    day.Date,
				Display: forecast.ClockTime(day.Date),
				Icon:    day.Icon,
				IconURL: iconURL(day.Icon),
			})
		}
		view.Days = append(view.Days, bv)
	}

	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    view,
		Message: "Success",
	})
}

func locationViews(locs []model.Location) []locationView {
	views := make([]locationView, 0, len(locs))
	for _, loc := range locs {
		views = append(views, locationView{Location: loc, IconURL: iconURL(loc.Icon)})
	}
	return views
}

// iconURL renders the {imageBase}{icon}@2x.png asset convention.
func iconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return config.GetOpenWeatherImageURL() + icon + "@2x.png"
}
