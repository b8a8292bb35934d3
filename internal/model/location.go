package model

import (
	"fmt"
	"math"
	"strconv"
)

// Location is a saved place with its latest fetched weather. The ID stays
// stable across refreshes of the same physical location.
type Location struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Temp  string  `json:"temp"`
	Icon  string  `json:"icon"`
	LocRu string  `json:"loc_ru"`
	LocEn string  `json:"loc_en"`
}

// CoordKey identifies a coordinate pair for in-flight de-duplication.
func (l Location) CoordKey() string {
	return CoordKey(l.Lat, l.Lon)
}

func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("%v %v", lat, lon)
}

// SameDegree reports whether two coordinate pairs round to the same whole
// degree, the granularity used for duplicate detection.
func (l Location) SameDegree(lat, lon float64) bool {
	return math.Round(l.Lat) == math.Round(lat) && math.Round(l.Lon) == math.Round(lon)
}

// FormatTemp renders a Kelvin temperature the way the location list shows it:
// rounded to a whole degree Celsius, "+ 24" above zero, "-13" or "0" otherwise.
func FormatTemp(kelvin float64) string {
	n := int(math.Round(kelvin - 273.15))
	if n > 0 {
		return fmt.Sprintf("+ %d", n)
	}
	return strconv.Itoa(n)
}
