package refresh

import (
	"context"
	"errors"
	"fmt"

	"github.com/vn6295337/intelligent-model-selector/internal/matching"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/storage"
)

// errSkipRefresh rolls the refresh transaction back without failing the run
var errSkipRefresh = errors.New("no source data to match")

// MappingRefresher rebuilds the provider model to AA slug mapping table
type MappingRefresher struct {
	store MappingStore
	opts  Options
	limit int
}

// NewMappingRefresher creates a mapping refresher
func NewMappingRefresher(store MappingStore, opts Options) *MappingRefresher {
	return &MappingRefresher{
		store: store,
		opts:  opts.withDefaults("mapping-refresh"),
		limit: matching.DefaultUnmatchedLimit,
	}
}

// Run clears the mapping table and refills it from the matcher output.
// Empty sources leave the table unchanged and zero matches leave it empty;
// both are warnings, not failures.
func (r *MappingRefresher) Run(ctx context.Context) (*reports.RunReport, error) {
	logger := r.opts.Logger
	report := reports.NewRunReport(reports.PipelineMapping, r.opts.Now())

	logger.Info("Starting model to AA mapping refresh", "run_id", report.ID)

	status := reports.StatusSucceeded
	err := r.store.Refresh(ctx, func(stages storage.MappingStages) error {
		var err error
		status, err = r.rebuild(ctx, stages, report)
		return err
	})
	switch {
	case errors.Is(err, errSkipRefresh):
		logger.Warn("Mapping table left unchanged")
		report.Deleted = 0
		status, err = reports.StatusSkipped, nil
	case err != nil:
		logger.Error("Mapping refresh rolled back", "error", err)
		status = reports.StatusFailed
	}

	report.Finish(status, r.opts.Now(), err)
	publish(ctx, r.opts.Sink, logger, report)

	if err != nil {
		return report, err
	}
	logger.Info("Mapping refresh finished", "status", report.Status, "matched", report.Matched, "unmatched", report.UnmatchedTotal)
	return report, nil
}

func (r *MappingRefresher) rebuild(ctx context.Context, stages storage.MappingStages, report *reports.RunReport) (reports.Status, error) {
	logger := r.opts.Logger

	deleted, err := stages.Clear(ctx)
	if err != nil {
		logger.Error("Failed to clear mapping table", "error", err)
		return reports.StatusFailed, fmt.Errorf("failed to clear mapping table: %w", err)
	}
	report.Deleted = deleted
	logger.Info("Cleared mapping table", "deleted", deleted)

	pairs, err := stages.ProviderModels(ctx)
	if err != nil {
		logger.Error("Failed to read provider models", "error", err)
		return reports.StatusFailed, fmt.Errorf("failed to read provider models: %w", err)
	}
	report.ProviderModels = len(pairs)
	logger.Info("Loaded provider models", "count", len(pairs))

	slugs, err := stages.PerformanceSlugs(ctx)
	if err != nil {
		logger.Error("Failed to read AA slugs", "error", err)
		return reports.StatusFailed, fmt.Errorf("failed to read AA slugs: %w", err)
	}
	report.AASlugs = len(slugs)
	logger.Info("Loaded AA slugs", "count", len(slugs))

	if len(pairs) == 0 || len(slugs) == 0 {
		logger.Warn("No source data to match, rolling back clear", "provider_models", len(pairs), "aa_slugs", len(slugs))
		report.Warn("no source data to match")
		return reports.StatusSkipped, errSkipRefresh
	}

	matcher := matching.NewMatcher(slugs)
	result := matcher.MatchAll(pairs, r.opts.Now)

	report.Matched = len(result.Mappings)
	report.MatchedByRule = make(map[string]int, len(result.RuleCounts))
	for rule, n := range result.RuleCounts {
		report.MatchedByRule[rule.String()] = n
	}
	logger.Info("Matched provider models",
		"matched", len(result.Mappings),
		"exact", result.RuleCounts[matching.RuleExact],
		"suffix", result.RuleCounts[matching.RuleSuffix],
		"substring", result.RuleCounts[matching.RuleSubstring],
		"unmatched", len(result.Unmatched),
	)

	if len(result.Unmatched) > 0 {
		summary := matching.SummarizeUnmatched(result.Unmatched, r.limit)
		report.Unmatched = summary.Shown
		report.UnmatchedTotal = summary.Total
		logger.Warn("Unmatched provider models need review", "count", summary.Total)
		for _, model := range summary.Shown {
			logger.Warn("Unmatched", "model", model)
		}
		if summary.Remaining > 0 {
			logger.Warn(fmt.Sprintf("... and %d more", summary.Remaining))
		}
	}

	if len(result.Mappings) == 0 {
		logger.Warn("No mappings to insert")
		report.Warn("no mappings to insert")
		return reports.StatusSucceeded, nil
	}

	inserted, err := stages.Insert(ctx, result.Mappings)
	if err != nil {
		logger.Error("Failed to insert mappings", "error", err)
		return reports.StatusFailed, fmt.Errorf("failed to insert mappings: %w", err)
	}
	report.Inserted = inserted
	logger.Info("Inserted mappings", "count", inserted)

	return reports.StatusSucceeded, nil
}
