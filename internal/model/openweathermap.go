package model

// Wire shapes for the three OpenWeatherMap endpoints. Only the fields the
// orchestration depends on are decoded.

type GeocodeResult struct {
	Name       string `json:"name"`
	LocalNames struct {
		Ru string `json:"ru"`
		En string `json:"en"`
	} `json:"local_names"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type OpenWeatherMapResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

type ForecastResponse struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
		DtTxt string `json:"dt_txt"`
	} `json:"list"`
}
