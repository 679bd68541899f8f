package refresh

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vn6295337/intelligent-model-selector/internal/artificialanalysis"
	"github.com/vn6295337/intelligent-model-selector/internal/models"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/storage"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

var (
	metricsTable = storage.TableName{Schema: "ims", Name: "20_aa_performance_metrics"}
	mappingTable = storage.TableName{Schema: "ims", Name: "10_model_aa_mapping"}
	workingTable = storage.TableName{Schema: "public", Name: "working_version"}
)

var fixedNow = time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)

func testOptions(sink reports.Sink) Options {
	logger := utils.NewLogger("refresh-test")
	logger.SetOutput(io.Discard)
	return Options{
		Logger: logger,
		Sink:   sink,
		Now:    func() time.Time { return fixedNow },
	}
}

// setupDB opens an in-memory SQLite database with the job tables
func setupDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.NewDB(storage.DefaultDBConfig(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.EnsureSchema(context.Background(), db, storage.SchemaTables{
		Metrics:        metricsTable,
		Mapping:        mappingTable,
		WorkingVersion: workingTable,
	}))
	return db
}

func apiModel(slug string, index *float64) artificialanalysis.Model {
	m := artificialanalysis.Model{
		ID:   utils.StringPtr("id-" + slug),
		Slug: slug,
		Name: utils.StringPtr(slug),
	}
	if index != nil {
		m.Evaluations = &artificialanalysis.Evaluations{IntelligenceIndex: index}
	}
	return m
}

func fetchResult(ms ...artificialanalysis.Model) *artificialanalysis.FetchResult {
	result := &artificialanalysis.FetchResult{Models: ms}
	for _, m := range ms {
		raw, _ := json.Marshal(m)
		result.Raw = append(result.Raw, raw)
	}
	return result
}

type fakeFetcher struct {
	result *artificialanalysis.FetchResult
	err    error
}

func (f *fakeFetcher) FetchModels(ctx context.Context) (*artificialanalysis.FetchResult, error) {
	return f.result, f.err
}

type fakeArchiver struct {
	calls int
	err   error
}

func (f *fakeArchiver) WriteSnapshot(ctx context.Context, records []json.RawMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "aa-snapshots/2026/10/18/aa-models-20261018-060000.jsonl", nil
}

type fakeMetricsStore struct {
	calls   int
	records []*models.PerformanceRecord
	stats   *storage.ReplaceStats
	err     error
}

func (f *fakeMetricsStore) Replace(ctx context.Context, records []*models.PerformanceRecord) (*storage.ReplaceStats, error) {
	f.calls++
	f.records = records
	if f.stats == nil {
		f.stats = &storage.ReplaceStats{Inserted: int64(len(records))}
	}
	return f.stats, f.err
}
