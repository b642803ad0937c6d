// Package aiprovider talks to the external suggestion service. The
// engine treats any failure here as ProviderUnavailable and falls back
// to its rules, so this client stays deliberately thin.
package aiprovider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ocordel/chantier-api/internal/domain/budget"
	"github.com/ocordel/chantier-api/internal/domain/predict"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

type request struct {
	SiteID     int64              `json:"siteId"`
	Indicators predict.Indicators `json:"indicators"`
	Figures    budget.Figures     `json:"figures"`
}

type response struct {
	Suggestions []predict.Suggestion `json:"suggestions"`
}

func (c *Client) Suggestions(ctx context.Context, siteID int64, ind predict.Indicators, fig budget.Figures) ([]predict.Suggestion, error) {
	body, err := json.Marshal(request{SiteID: siteID, Indicators: ind, Figures: fig})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggestions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai provider: unexpected status %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}
