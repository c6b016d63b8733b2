package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/resilience"
)

// Conditions holds the current weather at a location. Wind is converted to
// km/h at decode time; the provider reports m/s in metric mode.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	WindKmh     float64 `json:"wind_kmh"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
}

// ForecastDay is one reduced forecast entry (first 3-hourly bucket of the day).
type ForecastDay struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
	Condition string  `json:"condition"`
	RainMM    float64 `json:"rain_mm"`
}

// GeoResult is the first hit from the geocoding endpoint.
type GeoResult struct {
	Name string
	Lat  float64
	Lon  float64
}

// Client calls the OpenWeather current, forecast, and geocoding endpoints.
// Requests are rate limited; failures are never retried here, the caller
// decides how each one degrades.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	geoBaseURL string
}

// NewClient builds a weather client from config.
func NewClient(cfg config.WeatherConfig) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		apiKey:     cfg.Key,
		baseURL:    cfg.BaseURL,
		geoBaseURL: cfg.GeoBaseURL,
	}
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	if c.apiKey == "" {
		return eris.New("weather: provider api key not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "weather: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "weather: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "weather: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("weather: unexpected status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "weather: decode response")
	}
	return nil
}

// currentResponse mirrors the provider's current-conditions payload.
type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s in metric mode
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches current conditions. A failure here fails the whole
// weather call; there is no degraded form of "now".
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	u := fmt.Sprintf("%s/weather?lat=%f&lon=%f&units=metric&appid=%s", c.baseURL, lat, lon, c.apiKey)

	var raw currentResponse
	if err := c.get(ctx, u, &raw); err != nil {
		return nil, err
	}

	cond := &Conditions{
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindKmh:     raw.Wind.Speed * 3.6,
	}
	if len(raw.Weather) > 0 {
		cond.Condition = raw.Weather[0].Main
		cond.Description = raw.Weather[0].Description
	}
	return cond, nil
}

// forecastResponse mirrors the provider's 5-day/3-hour forecast payload.
type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"` // "2006-01-02 15:04:05"
		Main  struct {
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Forecast fetches the 3-hourly forecast and reduces it to one entry per
// calendar day (first bucket wins), capped at 5 days.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, error) {
	u := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&units=metric&appid=%s", c.baseURL, lat, lon, c.apiKey)

	var raw forecastResponse
	if err := c.get(ctx, u, &raw); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, 5)
	days := make([]ForecastDay, 0, 5)
	for _, entry := range raw.List {
		if len(entry.DtTxt) < 10 {
			continue
		}
		date := entry.DtTxt[:10]
		if seen[date] {
			continue
		}
		seen[date] = true

		day := ForecastDay{
			Date:     date,
			TempMin:  entry.Main.TempMin,
			TempMax:  entry.Main.TempMax,
			Humidity: entry.Main.Humidity,
			RainMM:   entry.Rain.ThreeHours,
		}
		if len(entry.Weather) > 0 {
			day.Condition = entry.Weather[0].Main
		}
		days = append(days, day)
		if len(days) == 5 {
			break
		}
	}
	return days, nil
}

// Geocode resolves a place query ("ঢাকা,BD") to coordinates, taking the
// first hit. No hits is an error; callers swallow it and keep their prior
// coordinates.
func (c *Client) Geocode(ctx context.Context, query string) (*GeoResult, error) {
	u := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s", c.geoBaseURL, url.QueryEscape(query), c.apiKey)

	var raw []struct {
		Name       string            `json:"name"`
		Lat        float64           `json:"lat"`
		Lon        float64           `json:"lon"`
		LocalNames map[string]string `json:"local_names"`
	}
	if err := c.get(ctx, u, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("weather: geocode no results for %q", query)
	}

	name := raw[0].Name
	if bn, ok := raw[0].LocalNames["bn"]; ok && bn != "" {
		name = bn
	}
	return &GeoResult{Name: name, Lat: raw[0].Lat, Lon: raw[0].Lon}, nil
}
