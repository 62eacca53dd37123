package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWeatherURL = "https://api.weatherapi.com/v1"

var ErrWeatherNotConfigured = errors.New("Weather API key not configured")

type WeatherConfig struct {
	APIKey      string
	DefaultCity string
	TTL         time.Duration
	BaseURL     string
	Timeout     time.Duration
}

// Weather serves current conditions from weatherapi.com. The upstream JSON
// is passed through unchanged.
type Weather struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	defaultCity string
	cache       *Cache[json.RawMessage]
}

func NewWeather(cfg WeatherConfig) *Weather {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "Johannesburg"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultWeatherURL
	}
	return &Weather{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		defaultCity: cfg.DefaultCity,
		cache:       NewCache[json.RawMessage](cfg.TTL),
	}
}

func (w *Weather) Configured() bool {
	return w.apiKey != ""
}

// Current returns current weather for city, or the default city when empty.
func (w *Weather) Current(ctx context.Context, city string) (Result[json.RawMessage], error) {
	if !w.Configured() {
		return Result[json.RawMessage]{}, ErrWeatherNotConfigured
	}
	city = strings.TrimSpace(city)
	if city == "" {
		city = w.defaultCity
	}
	return w.cache.Get(ctx, strings.ToLower(city), func(ctx context.Context) (json.RawMessage, error) {
		return w.fetch(ctx, city)
	})
}

func (w *Weather) fetch(ctx context.Context, city string) (json.RawMessage, error) {
	q := url.Values{"key": {w.apiKey}, "q": {city}, "aqi": {"no"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather: read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: %s", resp.Status)
	}
	if !json.Valid(body) {
		return nil, errors.New("weather: invalid JSON from upstream")
	}
	return json.RawMessage(body), nil
}
