// Package refresh runs the two scheduled jobs end to end.
//
// Both pipelines are single-threaded and synchronous. Every error is logged
// with context before it is returned, and every run ends with a RunReport
// handed to the configured sink.
package refresh

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vn6295337/intelligent-model-selector/internal/artificialanalysis"
	"github.com/vn6295337/intelligent-model-selector/internal/models"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/storage"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// Fetcher retrieves the current model list
type Fetcher interface {
	FetchModels(ctx context.Context) (*artificialanalysis.FetchResult, error)
}

// Archiver stores the raw fetched entries
type Archiver interface {
	WriteSnapshot(ctx context.Context, records []json.RawMessage) (string, error)
}

// MetricsStore replaces the full contents of the metrics table
type MetricsStore interface {
	Replace(ctx context.Context, records []*models.PerformanceRecord) (*storage.ReplaceStats, error)
}

// MappingStore runs the mapping stages in one transaction
type MappingStore interface {
	Refresh(ctx context.Context, fn func(storage.MappingStages) error) error
}

// Options holds the optional collaborators shared by both refreshers
type Options struct {
	Logger *utils.Logger
	Sink   reports.Sink
	Now    func() time.Time
}

func (o Options) withDefaults(component string) Options {
	if o.Logger == nil {
		o.Logger = utils.NewLogger(component)
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// publish hands the report to the sink; failures are logged and dropped
func publish(ctx context.Context, sink reports.Sink, logger *utils.Logger, report *reports.RunReport) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, report); err != nil {
		logger.Warn("Failed to publish run report", "run_id", report.ID, "error", err)
	}
}
