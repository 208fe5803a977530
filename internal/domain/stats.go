package domain

import (
	"context"
	"time"
)

// EndpointHit is one recorded visit to a public endpoint.
type EndpointHit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// StatsClient is the external hit-logging and view-counting collaborator.
// Calls carry their own bounded timeout; callers treat failures as degraded
// functionality, never as a failure of the primary operation.
type StatsClient interface {
	RecordHit(ctx context.Context, hit EndpointHit) error
	// QueryViews returns view counts keyed by uri for the given window.
	// When unique is true, repeat hits from the same ip count once.
	QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}
