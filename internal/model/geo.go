package model

// GeoResult is a resolved place from the geocoding endpoint. Produced by a
// search, consumed immediately to fetch weather, then discarded.
type GeoResult struct {
	Name  string  `json:"name"`
	Local LocalNames
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// LocalNames carries the localized variants of a place name. Either may be empty.
type LocalNames struct {
	Ru string `json:"ru,omitempty"`
	En string `json:"en,omitempty"`
}

// Localized returns the variant for the given language, or "" when absent.
func (n LocalNames) Localized(lang string) string {
	switch lang {
	case "ru":
		return n.Ru
	case "en":
		return n.En
	}
	return ""
}
