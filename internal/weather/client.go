// Package weather looks up the current temperature of a city in OpenWeatherMap.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrNoAPIKey is returned when no key is configured; callers use their fallback.
var ErrNoAPIKey = errors.New("openweather api key is not set")

// Client queries the current weather endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Temperature returns the current temperature in °C. Any non-200 answer is an error.
func (c *Client) Temperature(ctx context.Context, city string) (float64, error) {
	if c.apiKey == "" {
		return 0, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather status %d: %s", resp.StatusCode, gjson.GetBytes(body, "message").String())
	}

	temp := gjson.GetBytes(body, "main.temp")
	if !temp.Exists() || temp.Type != gjson.Number {
		return 0, fmt.Errorf("weather response has no main.temp")
	}
	return temp.Float(), nil
}
