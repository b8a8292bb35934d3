package model

// ForecastDay is one 3-hour forecast point. Date keeps the wire format
// "yyyy-MM-dd HH:mm:ss" verbatim; Temp is whole degrees Celsius.
type ForecastDay struct {
	Temp float64 `json:"temp"`
	Date string  `json:"date"`
	Icon string  `json:"icon"`
}

// Forecast is the 5-day forecast for one location, chronological as returned
// by the API.
type Forecast struct {
	Title string        `json:"title"`
	Days  []ForecastDay `json:"days"`
}
