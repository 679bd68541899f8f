package artificialanalysis

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

const sampleResponse = `{
	"status": 200,
	"data": [
		{
			"id": "2dad8957-4c16-4e74-bf2d-8b21514e0ae9",
			"name": "GPT-4o (Nov '24)",
			"slug": "gpt-4o",
			"release_date": "2024-11-20",
			"model_creator": {"id": "e67e56e3", "name": "OpenAI", "slug": "openai"},
			"evaluations": {
				"artificial_analysis_intelligence_index": 27.0,
				"artificial_analysis_coding_index": 24.6,
				"mmlu_pro": 0.748,
				"gpqa": null
			},
			"pricing": {
				"price_1m_blended_3_to_1": 4.375,
				"price_1m_input_tokens": 2.5,
				"price_1m_output_tokens": 10
			},
			"median_output_tokens_per_second": 150.2,
			"median_time_to_first_token_seconds": 0.41,
			"median_time_to_first_answer_token": 0.41
		},
		{
			"id": "0c2ffcf2-3b5e-4b0e-9b40-1e3f6c8f8d11",
			"name": "Legacy Model",
			"slug": "legacy-model",
			"evaluations": {"mmlu_pro": 0.3}
		}
	]
}`

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	logger := utils.NewLogger("aa-client-test")
	logger.SetOutput(io.Discard)

	client, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logger)
	require.NoError(t, err)
	return client
}

func TestClient_FetchModels(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/data/llms/models", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			w.Header().Set("X-RateLimit-Remaining", "41")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer server.Close()

		result, err := newTestClient(t, server).FetchModels(context.Background())
		require.NoError(t, err)

		require.Len(t, result.Models, 2)
		require.Len(t, result.Raw, 2)
		assert.Equal(t, "41", result.RateLimitRemaining)

		first := result.Models[0]
		assert.Equal(t, "gpt-4o", first.Slug)
		require.NotNil(t, first.Evaluations)
		require.NotNil(t, first.Evaluations.IntelligenceIndex)
		assert.Equal(t, 27.0, *first.Evaluations.IntelligenceIndex)
		assert.Nil(t, first.Evaluations.GPQA)
		require.NotNil(t, first.ModelCreator)
		assert.Equal(t, "openai", utils.StringPtrValue(first.ModelCreator.Slug))

		assert.Nil(t, result.Models[1].Pricing)
	})

	t.Run("non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		result, err := newTestClient(t, server).FetchModels(context.Background())
		assert.Nil(t, result)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "invalid api key")
	})

	t.Run("malformed shapes", func(t *testing.T) {
		bodies := map[string]string{
			"missing data":   `{"status": 200}`,
			"null data":      `{"data": null}`,
			"object data":    `{"data": {"slug": "gpt-4o"}}`,
			"not json":       `<html>maintenance</html>`,
			"bad model type": `{"data": [{"slug": 12}]}`,
		}

		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(body))
				}))
				defer server.Close()

				result, err := newTestClient(t, server).FetchModels(context.Background())
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrInvalidResponse)
			})
		}
	})

	t.Run("empty data list is accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": []}`))
		}))
		defer server.Close()

		result, err := newTestClient(t, server).FetchModels(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.Models)
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(ClientConfig{}, nil)
	assert.Error(t, err)
}
