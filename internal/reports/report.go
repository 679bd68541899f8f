// Package reports records the outcome of each refresh run for later review.
//
// Sinks:
//
//   - LogSink:    always on, writes the summary through the job logger
//   - MemorySink: bounded in-process history, for tests and local runs
//   - RedisSink:  latest report per pipeline plus a capped history list
//
// Publishing is diagnostic only; a failing sink never fails a run.
package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the final state of a run
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped" // empty input short-circuit
	StatusFailed    Status = "failed"
)

// Pipeline names
const (
	PipelineMetrics = "aa-performance-metrics"
	PipelineMapping = "model-aa-mapping"
)

// RunReport summarises one run of a pipeline
type RunReport struct {
	ID         uuid.UUID `json:"id"`
	Pipeline   string    `json:"pipeline"`
	Status     Status    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// metrics refresh
	Fetched  int    `json:"fetched,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
	BackedUp int64  `json:"backed_up,omitempty"`
	Deleted  int64  `json:"deleted,omitempty"`
	Inserted int64  `json:"inserted,omitempty"`
	Restore  string `json:"restore,omitempty"`
	Snapshot string `json:"snapshot,omitempty"`

	// mapping refresh
	ProviderModels int            `json:"provider_models,omitempty"`
	AASlugs        int            `json:"aa_slugs,omitempty"`
	Matched        int            `json:"matched,omitempty"`
	MatchedByRule  map[string]int `json:"matched_by_rule,omitempty"`
	Unmatched      []string       `json:"unmatched,omitempty"`
	UnmatchedTotal int            `json:"unmatched_total,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewRunReport starts a report for pipeline
func NewRunReport(pipeline string, startedAt time.Time) *RunReport {
	return &RunReport{
		ID:        uuid.New(),
		Pipeline:  pipeline,
		StartedAt: startedAt,
	}
}

// Warn records a non-fatal diagnostic
func (r *RunReport) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finish stamps the final status. err, when set, marks the run failed.
func (r *RunReport) Finish(status Status, finishedAt time.Time, err error) {
	r.Status = status
	r.FinishedAt = finishedAt
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

// Duration returns how long the run took
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Sink stores run reports
type Sink interface {
	Publish(ctx context.Context, report *RunReport) error
}

// MultiSink publishes to every sink and returns the first error
type MultiSink []Sink

// Publish implements Sink
func (m MultiSink) Publish(ctx context.Context, report *RunReport) error {
	var firstErr error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, report); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
