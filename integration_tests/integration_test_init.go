package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"

	"github.com/alicebob/miniredis/v2"
)

var (
	miniRedisMock *miniredis.Miniredis

	// currentTempMilliK is the Kelvin temperature (x1000) the mock weather
	// endpoint reports. Tests bump it to prove a refresh really re-fetched.
	currentTempMilliK int64 = 297150
)

func createMockRedisServer() {
	miniRedisMock = miniredis.NewMiniRedis()
	if err := miniRedisMock.StartAddr(":16379"); err != nil {
		panic(err)
	}
}

func setCurrentTemp(kelvin float64) {
	atomic.StoreInt64(&currentTempMilliK, int64(kelvin*1000))
}

func currentTemp() float64 {
	return float64(atomic.LoadInt64(&currentTempMilliK)) / 1000
}

// mockOWMApi stands in for the OpenWeatherMap API: geocode, current weather
// and 5-day forecast.
func mockOWMApi() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "test_api_key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/geo/1.0/direct":
			if r.URL.Query().Get("q") == "Kazan" {
				_, _ = w.Write([]byte(`[{"name":"Kazan","local_names":{"ru":"Казань","en":"Kazan"},"lat":55.7823547,"lon":49.1242266}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))

		case "/data/2.5/weather":
			lat := r.URL.Query().Get("lat")
			lon := r.URL.Query().Get("lon")
			temp := strconv.FormatFloat(currentTemp(), 'f', -1, 64)
			_, _ = w.Write([]byte(`{"name":"Kazan","main":{"temp":` + temp + `},` +
				`"weather":[{"id":804,"main":"Clouds","description":"overcast clouds","icon":"04d"}],` +
				`"coord":{"lat":` + lat + `,"lon":` + lon + `}}`))

		case "/data/2.5/forecast":
			_, _ = w.Write([]byte(`{
				"city": {"name": "Kazan"},
				"list": [
					{"main": {"temp": 290.15}, "weather": [{"icon": "04d"}], "dt_txt": "2024-09-18 03:00:00"},
					{"main": {"temp": 288.15}, "weather": [{"icon": "04d"}], "dt_txt": "2024-09-18 06:00:00"},
					{"main": {"temp": 285.15}, "weather": [{"icon": "10n"}], "dt_txt": "2024-09-19 00:00:00"}
				]
			}`))

		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"not found"}`))
		}
	}))
}
