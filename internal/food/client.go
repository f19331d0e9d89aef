// Package food searches products and their energy density in OpenFoodFacts.
package food

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"healthbot/internal/model"
)

const (
	DefaultBaseURL = "https://world.openfoodfacts.org/cgi/search.pl"

	kjPerKcal   = 4.184
	unnamedItem = "Без имени"
)

// kcalFields are tried in order; the first non-zero value wins.
var kcalFields = []string{
	"energy-kcal_100g",
	"energy-kcal",
	"energy-kcal_value",
	"energy-kcal_value_computed",
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Search returns at most limit products in the order OpenFoodFacts ranks them.
// No products is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.FoodItem, error) {
	q := url.Values{}
	q.Set("search_terms", query)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build food request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("food request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read food response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("food response is not JSON")
	}

	products := gjson.GetBytes(body, "products").Array()
	items := make([]model.FoodItem, 0, len(products))
	for _, p := range products {
		if limit > 0 && len(items) == limit {
			break
		}
		items = append(items, parseProduct(p))
	}
	return items, nil
}

func parseProduct(p gjson.Result) model.FoodItem {
	name := strings.TrimSpace(p.Get("product_name").String())
	if name == "" {
		name = unnamedItem
	}
	return model.FoodItem{Name: name, KcalPer100g: kcalPer100g(p.Get("nutriments"))}
}

func kcalPer100g(n gjson.Result) float64 {
	for _, field := range kcalFields {
		if v := n.Get(gjson.Escape(field)).Float(); v != 0 {
			return v
		}
	}
	if kj := n.Get("energy_100g").Float(); kj != 0 {
		return kj / kjPerKcal
	}
	return 0
}
