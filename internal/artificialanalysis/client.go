package artificialanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

const (
	defaultBaseURL = "https://artificialanalysis.ai/api/v2"
	defaultTimeout = 30 * time.Second
	modelsPath     = "/data/llms/models"

	// maxErrorBody caps how much of a failed response ends up in errors and logs
	maxErrorBody = 2048
)

// ErrInvalidResponse is returned when the payload has no "data" array
var ErrInvalidResponse = errors.New("invalid API response format")

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

// ClientConfig holds API client settings
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client fetches model data from the Artificial Analysis API.
// One attempt per call; there is no retry.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *utils.Logger
}

// NewClient creates a new API client
func NewClient(cfg ClientConfig, logger *utils.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for the Artificial Analysis client")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		logger = utils.NewLogger("aa-client")
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}, nil
}

// FetchModels retrieves every model from the API. Any failure is fatal to the
// caller: no partial data is returned alongside an error.
func (c *Client) FetchModels(ctx context.Context) (*FetchResult, error) {
	c.logger.Info("Fetching data from Artificial Analysis API", "url", c.baseURL+modelsPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxErrorBody),
		}
	}

	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining != "" {
		c.logger.Info("Rate limit status", "remaining", remaining)
	}

	raw, err := decodeData(body)
	if err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(raw))
	for i, entry := range raw {
		var model Model
		if err := json.Unmarshal(entry, &model); err != nil {
			return nil, fmt.Errorf("%w: model %d: %v", ErrInvalidResponse, i, err)
		}
		models = append(models, model)
	}

	c.logger.Info("Fetched models from API", "count", len(models))

	return &FetchResult{
		Models:             models,
		Raw:                raw,
		RateLimitRemaining: remaining,
	}, nil
}

// decodeData extracts the "data" array, rejecting any other shape
func decodeData(body []byte) ([]json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, ErrInvalidResponse
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return raw, nil
}
