package jobs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vn6295337/intelligent-model-selector/internal/config"
	"github.com/vn6295337/intelligent-model-selector/internal/reports"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

const modelsResponse = `{
	"status": 200,
	"data": [
		{"id": "1", "slug": "gpt-4o", "name": "GPT-4o", "evaluations": {"artificial_analysis_intelligence_index": 27.1}},
		{"id": "2", "slug": "llama-3.1-8b-instant-turbo", "evaluations": {"artificial_analysis_intelligence_index": 19.5}},
		{"id": "3", "slug": "unscored", "evaluations": {}}
	]
}`

func quietLogger() *utils.Logger {
	logger := utils.NewLogger("jobs-test")
	logger.SetOutput(io.Discard)
	return logger
}

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	if _, ok := env[config.DatabaseURLEnv]; !ok {
		env[config.DatabaseURLEnv] = ":memory:"
	}
	cfg, err := config.LoadFrom(func(key string) string { return env[key] })
	require.NoError(t, err)
	return cfg
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modelsResponse))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDependencies_RunBothJobs(t *testing.T) {
	mr := miniredis.RunT(t)
	server := newAPIServer(t)
	ctx := context.Background()

	cfg := loadConfig(t, map[string]string{
		config.APIKeyEnv:  "test-key",
		"AA_API_BASE_URL": server.URL,
		"REDIS_ADDRESS":   mr.Addr(),
		"METRICS_TABLE":   "metrics",
		"MAPPING_TABLE":   "mapping",
	})

	deps, err := NewDependencies(ctx, cfg, quietLogger())
	require.NoError(t, err)
	defer deps.Close()

	metrics, err := deps.NewMetricsRefresher(ctx)
	require.NoError(t, err)
	report, err := metrics.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reports.StatusSucceeded, report.Status)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, int64(2), report.Inserted)

	_, err = deps.DB.Conn().ExecContext(ctx, `INSERT INTO "working_version" (inference_provider, provider_slug) VALUES ('groq', 'llama-3.1-8b-instant'), ('openai', 'gpt-4o')`)
	require.NoError(t, err)

	report, err = deps.NewMappingRefresher().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Inserted)

	sink := reports.NewRedisSinkWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "refresh", 0)
	defer sink.Close()
	for _, pipeline := range []string{reports.PipelineMetrics, reports.PipelineMapping} {
		latest, err := sink.Latest(ctx, pipeline)
		require.NoError(t, err, pipeline)
		assert.Equal(t, reports.StatusSucceeded, latest.Status)
	}
}

func TestDependencies_MetricsRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	deps, err := NewDependencies(ctx, loadConfig(t, map[string]string{}), quietLogger())
	require.NoError(t, err)
	defer deps.Close()

	_, err = deps.NewMetricsRefresher(ctx)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)

	// the mapping job needs no API access
	report, err := deps.NewMappingRefresher().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reports.StatusSkipped, report.Status)
}

func TestDependencies_UnreachableRedisIsOptional(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	deps, err := NewDependencies(context.Background(), loadConfig(t, map[string]string{"REDIS_ADDRESS": addr}), quietLogger())
	require.NoError(t, err)
	defer deps.Close()

	assert.Nil(t, deps.redis)
	assert.Len(t, deps.Sink, 1)
}

func TestNewDependencies_Errors(t *testing.T) {
	t.Run("bad table name", func(t *testing.T) {
		_, err := NewDependencies(context.Background(), loadConfig(t, map[string]string{"METRICS_TABLE": "ims."}), quietLogger())
		assert.Error(t, err)
	})

	t.Run("health check", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewDependencies(ctx, loadConfig(t, map[string]string{}), quietLogger())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unsupported dsn", func(t *testing.T) {
		_, err := NewDependencies(context.Background(), loadConfig(t, map[string]string{config.DatabaseURLEnv: "mysql://localhost/db"}), quietLogger())
		assert.Error(t, err)
	})
}
