package refresh

import (
	"context"
	"fmt"

	"github.com/vn6295337/intelligent-model-selector/internal/artificialanalysis"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
)

// MetricsRefresher replaces the performance metrics table with a fresh API snapshot
type MetricsRefresher struct {
	fetcher  Fetcher
	store    MetricsStore
	archiver Archiver
	opts     Options
}

// NewMetricsRefresher creates a metrics refresher. archiver may be nil.
func NewMetricsRefresher(fetcher Fetcher, store MetricsStore, archiver Archiver, opts Options) *MetricsRefresher {
	return &MetricsRefresher{
		fetcher:  fetcher,
		store:    store,
		archiver: archiver,
		opts:     opts.withDefaults("metrics-refresh"),
	}
}

// Run fetches, transforms and loads the metrics. An empty transform result is
// a successful no-op that leaves the table untouched.
func (r *MetricsRefresher) Run(ctx context.Context) (*reports.RunReport, error) {
	logger := r.opts.Logger
	report := reports.NewRunReport(reports.PipelineMetrics, r.opts.Now())

	logger.Info("Starting Artificial Analysis performance metrics refresh", "run_id", report.ID)

	status, err := r.run(ctx, report)
	report.Finish(status, r.opts.Now(), err)
	publish(ctx, r.opts.Sink, logger, report)

	if err != nil {
		return report, err
	}
	logger.Info("Performance metrics refresh finished", "status", report.Status, "inserted", report.Inserted)
	return report, nil
}

func (r *MetricsRefresher) run(ctx context.Context, report *reports.RunReport) (reports.Status, error) {
	logger := r.opts.Logger

	result, err := r.fetcher.FetchModels(ctx)
	if err != nil {
		logger.Error("Failed to fetch models", "error", err)
		return reports.StatusFailed, fmt.Errorf("failed to fetch models: %w", err)
	}
	report.Fetched = len(result.Models)

	if r.archiver != nil && len(result.Raw) > 0 {
		key, err := r.archiver.WriteSnapshot(ctx, result.Raw)
		if err != nil {
			logger.Warn("Failed to archive raw snapshot", "error", err)
			report.Warn(fmt.Sprintf("snapshot archive failed: %v", err))
		} else {
			report.Snapshot = key
		}
	}

	transformed := artificialanalysis.Transform(result.Models)
	report.Skipped = transformed.Skipped
	if transformed.Skipped > 0 {
		logger.Info("Skipped models without intelligence index", "count", transformed.Skipped)
	}
	logger.Info("Transformed records", "count", len(transformed.Records))

	if len(transformed.Records) == 0 {
		logger.Warn("No records to insert, leaving table unchanged")
		report.Warn("no records to insert")
		return reports.StatusSkipped, nil
	}

	stats, err := r.store.Replace(ctx, transformed.Records)
	if stats != nil {
		report.BackedUp = stats.BackedUp
		report.Deleted = stats.Deleted
		report.Inserted = stats.Inserted
		report.Restore = string(stats.Restore)
	}
	if err != nil {
		logger.Error("Failed to replace performance metrics", "error", err)
		return reports.StatusFailed, err
	}

	if stats != nil && stats.CleanupErr != nil {
		logger.Warn("Refresh committed but backup cleanup failed", "error", stats.CleanupErr)
		report.Warn(stats.CleanupErr.Error())
	}

	return reports.StatusSucceeded, nil
}
