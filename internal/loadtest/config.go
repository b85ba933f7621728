// Package loadtest drives a running fitscore server with synthetic scoring
// requests and checks every reply against the response contract.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of scoring requests to generate
	Workers    int           // Number of concurrent submitters
	Repeat     int           // Requests resubmitted to check determinism
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed; same seed, same requests
	OrgID      string        // Resolve context from this organisation instead of inline context
	OutputFile string        // Optional file receiving the generated requests
	Verbose    bool
}

// Stats holds run statistics.
type Stats struct {
	Generated    int
	Submitted    int
	Successful   int
	Rejected     int // 4xx replies
	Failed       int // 5xx replies and transport errors
	Violations   int // replies breaking the response contract
	Inconsistent int // repeated requests whose replies differ
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// OK reports whether the run saw no contract violations.
func (s *Stats) OK() bool {
	return s.Violations == 0 && s.Inconsistent == 0
}
