// Package geo resolves a free-text region to a nearby clinic using the
// Nominatim geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Clinic is a resolved facility. A nil *Clinic means lookup failed and the
// orchestrator substitutes sentinel strings.
type Clinic struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Locator geocodes against a Nominatim endpoint. The usage policy caps
// request rate at one per second, enforced by the shared limiter; the
// pipeline additionally invokes the locator at most once per call.
type Locator struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewLocator(baseURL, userAgent string) *Locator {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "arogyaline/1.0"
	}
	return &Locator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// FindNearestClinic geocodes the region, then searches for a clinic near it.
// Either query coming back empty yields (nil, nil); provider or network
// failure yields (nil, err). Callers must treat both as a degraded result,
// never as fatal.
func (l *Locator) FindNearestClinic(ctx context.Context, region string) (*Clinic, error) {
	base, err := l.search(ctx, region, 1)
	if err != nil {
		return nil, fmt.Errorf("geocode region: %w", err)
	}
	if len(base) == 0 {
		return nil, nil
	}

	results, err := l.search(ctx, "clinic near "+region, 5)
	if err != nil {
		return nil, fmt.Errorf("geocode clinic: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	first := results[0]
	name := first.DisplayName
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	return &Clinic{Name: strings.TrimSpace(name), Address: first.DisplayName}, nil
}

func (l *Locator) search(ctx context.Context, query string, limit int) ([]nominatimResult, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	return results, nil
}
