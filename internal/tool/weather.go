package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sandria/chatvault/internal/config"
)

// WeatherCache caches weather payloads per city. May be nil.
type WeatherCache interface {
	Get(ctx context.Context, city string) (map[string]any, error)
	Set(ctx context.Context, city string, payload map[string]any) error
}

// WeatherClient fetches current weather data from weatherapi.com
type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      WeatherCache
}

// NewWeatherClient creates a new weather client. cache may be nil.
func NewWeatherClient(cfg config.WeatherConfig, cache WeatherCache) *WeatherClient {
	return &WeatherClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
	}
}

// Fetch returns current weather data for a city. Failures come back as a
// map with an "error" key so the model can relay them conversationally.
func (c *WeatherClient) Fetch(ctx context.Context, city string) map[string]any {
	city = strings.TrimSpace(city)
	if city == "" {
		return map[string]any{"error": "city name cannot be empty"}
	}
	if c.apiKey == "" {
		return map[string]any{"error": "weather API key not configured"}
	}

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, city); err == nil && cached != nil {
			return cached
		}
	}

	reqURL := fmt.Sprintf("%s/current.json?q=%s&key=%s",
		c.baseURL, url.QueryEscape(city), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("weather API error: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return map[string]any{"error": "weather API request timed out"}
		}
		return map[string]any{"error": fmt.Sprintf("weather API error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return map[string]any{"error": fmt.Sprintf("weather API error: status %d", resp.StatusCode)}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return map[string]any{"error": fmt.Sprintf("weather API error: %v", err)}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, city, payload); err != nil {
			log.Debug().Err(err).Str("city", city).Msg("failed to cache weather payload")
		}
	}

	return payload
}

// Descriptor returns the static tool declaration for the weather lookup
func (c *WeatherClient) Descriptor() Descriptor {
	return Descriptor{
		Name:        "fetch_current_weather",
		Description: "Fetch current weather data for a given city",
		Params: map[string]Param{
			"city": {
				Type:        "string",
				Description: "The name of the city to get weather data for",
			},
		},
		Required: []string{"city"},
		Handler: func(ctx context.Context, args map[string]any) map[string]any {
			city, _ := args["city"].(string)
			return c.Fetch(ctx, city)
		},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
