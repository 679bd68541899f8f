package refresh

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vn6295337/intelligent-model-selector/internal/models"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/storage"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// fakeStages records what the refresher asked of the store
type fakeStages struct {
	pairs     []models.ProviderModel
	slugs     []string
	clearErr  error
	insertErr error

	cleared  bool
	inserted []models.MappingRecord
}

func (f *fakeStages) Clear(ctx context.Context) (int64, error) {
	f.cleared = true
	return 4, f.clearErr
}

func (f *fakeStages) ProviderModels(ctx context.Context) ([]models.ProviderModel, error) {
	return f.pairs, nil
}

func (f *fakeStages) PerformanceSlugs(ctx context.Context) ([]string, error) {
	return f.slugs, nil
}

func (f *fakeStages) Insert(ctx context.Context, mappings []models.MappingRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = mappings
	return int64(len(mappings)), nil
}

type fakeMappingStore struct {
	stages    *fakeStages
	committed bool
}

func (f *fakeMappingStore) Refresh(ctx context.Context, fn func(storage.MappingStages) error) error {
	if err := fn(f.stages); err != nil {
		return err
	}
	f.committed = true
	return nil
}

func TestMappingRefresher_Success(t *testing.T) {
	store := &fakeMappingStore{stages: &fakeStages{
		pairs: []models.ProviderModel{
			{InferenceProvider: "openai", ProviderSlug: "gpt-4o"},
			{InferenceProvider: "groq", ProviderSlug: "llama-3.1-8b-instant"},
			{InferenceProvider: "mistral", ProviderSlug: "large-2"},
			{InferenceProvider: "acme", ProviderSlug: "zzz-nonexistent-model"},
		},
		slugs: []string{"gpt-4o", "gpt-4o-2024-05-13", "llama-3.1-8b-instant-turbo", "mistral-large-2"},
	}}
	sink := reports.NewMemorySink(5)

	report, err := NewMappingRefresher(store, testOptions(sink)).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, store.committed)
	assert.True(t, store.stages.cleared)

	assert.Equal(t, reports.StatusSucceeded, report.Status)
	assert.Equal(t, int64(4), report.Deleted)
	assert.Equal(t, 4, report.ProviderModels)
	assert.Equal(t, 4, report.AASlugs)
	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, int64(3), report.Inserted)
	assert.Equal(t, map[string]int{"exact": 1, "suffix": 1, "substring": 1}, report.MatchedByRule)
	assert.Equal(t, []string{"acme:zzz-nonexistent-model"}, report.Unmatched)
	assert.Equal(t, 1, report.UnmatchedTotal)

	got := map[string]string{}
	for _, m := range store.stages.inserted {
		got[m.ProviderSlug] = m.AASlug
		assert.Equal(t, fixedNow, m.CreatedAt)
		assert.Equal(t, fixedNow, m.UpdatedAt)
	}
	assert.Equal(t, map[string]string{
		"gpt-4o":               "gpt-4o",
		"llama-3.1-8b-instant": "llama-3.1-8b-instant-turbo",
		"large-2":              "mistral-large-2",
	}, got)

	_, ok := sink.Latest(reports.PipelineMapping)
	assert.True(t, ok)
}

func TestMappingRefresher_UnmatchedSummaryIsCapped(t *testing.T) {
	var pairs []models.ProviderModel
	for i := 0; i < 13; i++ {
		pairs = append(pairs, models.ProviderModel{InferenceProvider: "acme", ProviderSlug: fmt.Sprintf("zzz-%02d", i)})
	}
	store := &fakeMappingStore{stages: &fakeStages{pairs: pairs, slugs: []string{"gpt-4o"}}}

	report, err := NewMappingRefresher(store, testOptions(nil)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reports.StatusSucceeded, report.Status)
	assert.Len(t, report.Unmatched, 10)
	assert.Equal(t, "acme:zzz-00", report.Unmatched[0])
	assert.Equal(t, 13, report.UnmatchedTotal)
	assert.Zero(t, report.Inserted)
	assert.Nil(t, store.stages.inserted)
	assert.Contains(t, report.Warnings, "no mappings to insert")
}

func TestMappingRefresher_EmptySources(t *testing.T) {
	tests := []struct {
		name  string
		pairs []models.ProviderModel
		slugs []string
	}{
		{name: "no provider models", slugs: []string{"gpt-4o"}},
		{name: "no aa slugs", pairs: []models.ProviderModel{{InferenceProvider: "openai", ProviderSlug: "gpt-4o"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeMappingStore{stages: &fakeStages{pairs: tt.pairs, slugs: tt.slugs}}

			report, err := NewMappingRefresher(store, testOptions(nil)).Run(context.Background())
			require.NoError(t, err)

			assert.False(t, store.committed, "the clear must be rolled back")
			assert.Equal(t, reports.StatusSkipped, report.Status)
			assert.Empty(t, report.Error)
			assert.Zero(t, report.Deleted)
			assert.Nil(t, store.stages.inserted)
			assert.NotEmpty(t, report.Warnings)
		})
	}
}

func TestMappingRefresher_EmptySourcesKeepExistingMappings(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Conn().ExecContext(ctx,
		`INSERT INTO "10_model_aa_mapping" (provider_slug, aa_slug, inference_provider, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"gpt-4o", "gpt-4o", "openai", fixedNow, fixedNow)
	require.NoError(t, err)

	repo := storage.NewMappingRepository(db, storage.MappingTables{
		Mapping:        mappingTable,
		Metrics:        metricsTable,
		WorkingVersion: workingTable,
	}, 10)

	report, err := NewMappingRefresher(repo, testOptions(nil)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reports.StatusSkipped, report.Status)

	count, err := db.Count(ctx, mappingTable)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMappingRefresher_Failures(t *testing.T) {
	pairs := []models.ProviderModel{{InferenceProvider: "openai", ProviderSlug: "gpt-4o"}}

	t.Run("clear", func(t *testing.T) {
		boom := errors.New("permission denied")
		store := &fakeMappingStore{stages: &fakeStages{clearErr: boom}}

		report, err := NewMappingRefresher(store, testOptions(nil)).Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.False(t, store.committed)
		assert.Equal(t, reports.StatusFailed, report.Status)
	})

	t.Run("insert", func(t *testing.T) {
		boom := errors.New("constraint violation")
		store := &fakeMappingStore{stages: &fakeStages{pairs: pairs, slugs: []string{"gpt-4o"}, insertErr: boom}}

		report, err := NewMappingRefresher(store, testOptions(nil)).Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.False(t, store.committed)
		assert.Equal(t, reports.StatusFailed, report.Status)
		assert.Contains(t, report.Error, "constraint violation")
	})
}

func TestMappingRefresher_EndToEnd(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	logger := testOptions(nil).Logger

	metrics := storage.NewPerformanceRepository(db, metricsTable, storage.NewBackupReplacer(db, metricsTable, logger), 10)
	fetched := fetchResult(
		apiModel("gpt-4o", utils.Float64Ptr(27)),
		apiModel("gpt-4o-2024-05-13", utils.Float64Ptr(26)),
		apiModel("meta-llama-3.1-8b-instruct", utils.Float64Ptr(20)),
		apiModel("llama-3.1-8b-instant-turbo", utils.Float64Ptr(19)),
	)
	_, err := NewMetricsRefresher(&fakeFetcher{result: fetched}, metrics, nil, testOptions(nil)).Run(ctx)
	require.NoError(t, err)

	for _, row := range [][2]string{
		{"openai", "gpt-4o"},
		{"groq", "llama-3.1-8b-instant"},
		{"acme", "zzz-nonexistent-model"},
	} {
		_, err := db.Conn().ExecContext(ctx, `INSERT INTO "working_version" (inference_provider, provider_slug) VALUES (?, ?)`, row[0], row[1])
		require.NoError(t, err)
	}

	repo := storage.NewMappingRepository(db, storage.MappingTables{
		Mapping:        mappingTable,
		Metrics:        metricsTable,
		WorkingVersion: workingTable,
	}, 2)

	for run := 0; run < 2; run++ {
		report, err := NewMappingRefresher(repo, testOptions(nil)).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), report.Inserted)
		assert.Equal(t, []string{"acme:zzz-nonexistent-model"}, report.Unmatched)
	}

	var rows []struct {
		ProviderSlug string `db:"provider_slug"`
		AASlug       string `db:"aa_slug"`
	}
	require.NoError(t, db.Conn().SelectContext(ctx, &rows, `SELECT provider_slug, aa_slug FROM "10_model_aa_mapping" ORDER BY provider_slug`))
	require.Len(t, rows, 2)
	assert.Equal(t, "gpt-4o", rows[0].AASlug)
	assert.Equal(t, "llama-3.1-8b-instant-turbo", rows[1].AASlug)
}
