package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cityevents/internal/domain"
)

// dateTimeLayout is the wire format the stats server expects for timestamps.
const dateTimeLayout = "2006-01-02 15:04:05"

type statsHTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a StatsClient that talks to the stats server at baseURL.
// The timeout bounds every call independently of the caller's own request budget.
func NewHTTPClient(baseURL string, timeout time.Duration) domain.StatsClient {
	return &statsHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type endpointHitBody struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStatsBody struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func (c *statsHTTPClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	body, err := json.Marshal(endpointHitBody{
		App:       hit.App,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: hit.Timestamp.Format(dateTimeLayout),
	})
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *statsHTTPClient) QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	params := url.Values{}
	params.Set("start", start.Format(dateTimeLayout))
	params.Set("end", end.Format(dateTimeLayout))
	if len(uris) > 0 {
		params.Set("uris", strings.Join(uris, ","))
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query views: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats server returned status: %d", resp.StatusCode)
	}

	var body []viewStatsBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	views := make(map[string]int64, len(body))
	for _, stat := range body {
		views[stat.URI] = stat.Hits
	}
	return views, nil
}
