// Package geocode resolves place descriptions to coordinates through the
// Nominatim search API, with an in-memory result cache and a per-process
// call budget so a single enrichment burst cannot hammer the service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeanpaul/lifeline/internal/timeline"
)

const userAgent = "lifeline/1.0"

type coords struct {
	lat, lon timeline.Scalar
}

// Client is a budgeted, caching Nominatim client. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger

	mu     sync.Mutex
	cache  map[string]coords
	budget int
}

// New builds a client with the given call budget. A budget of zero
// disables lookups entirely; cached results are still served.
func New(baseURL string, maxCalls int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger,
		cache:   make(map[string]coords),
		budget:  maxCalls,
	}
}

// Lookup resolves a place to coordinates. Failures of any kind (empty
// place, exhausted budget, network error, no results) report ok=false and
// are never propagated as errors.
func (c *Client) Lookup(ctx context.Context, place string) (timeline.Scalar, timeline.Scalar, bool) {
	place = strings.TrimSpace(place)
	if place == "" {
		return timeline.Scalar{}, timeline.Scalar{}, false
	}

	c.mu.Lock()
	if hit, ok := c.cache[place]; ok {
		c.mu.Unlock()
		return hit.lat, hit.lon, true
	}
	if c.budget <= 0 {
		c.mu.Unlock()
		return timeline.Scalar{}, timeline.Scalar{}, false
	}
	c.budget--
	c.mu.Unlock()

	lat, lon, err := c.search(ctx, place)
	if err != nil {
		c.log.Debug("geocode lookup failed", "place", place, "err", err)
		return timeline.Scalar{}, timeline.Scalar{}, false
	}

	c.mu.Lock()
	c.cache[place] = coords{lat: lat, lon: lon}
	c.mu.Unlock()

	c.log.Info("geocoded place", "place", place, "lat", lat.String(), "lon", lon.String())
	return lat, lon, true
}

func (c *Client) search(ctx context.Context, place string) (timeline.Scalar, timeline.Scalar, error) {
	var zero timeline.Scalar
	apiURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return zero, zero, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return zero, zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zero, zero, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return zero, zero, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return zero, zero, fmt.Errorf("geocode: no results for %q", place)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		// Keep the raw strings rather than dropping the result.
		return timeline.Str(results[0].Lat), timeline.Str(results[0].Lon), nil
	}
	return timeline.Num(lat), timeline.Num(lon), nil
}
