package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrReportNotFound is returned when no report was stored for a pipeline
var ErrReportNotFound = errors.New("run report not found")

// RedisConfig holds Redis report store settings
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	HistorySize int
}

// RedisSink stores the latest report per pipeline and a capped history list
type RedisSink struct {
	client      *redis.Client
	prefix      string
	historySize int64
}

// NewRedisSink connects to Redis and verifies the connection
func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSinkWithClient(client, cfg.KeyPrefix, cfg.HistorySize), nil
}

// NewRedisSinkWithClient wraps an existing client
func NewRedisSinkWithClient(client *redis.Client, prefix string, historySize int) *RedisSink {
	if prefix == "" {
		prefix = "refresh"
	}
	if historySize <= 0 {
		historySize = 50
	}
	return &RedisSink{
		client:      client,
		prefix:      prefix,
		historySize: int64(historySize),
	}
}

func (s *RedisSink) latestKey(pipeline string) string {
	return fmt.Sprintf("%s:latest:%s", s.prefix, pipeline)
}

func (s *RedisSink) historyKey(pipeline string) string {
	return fmt.Sprintf("%s:history:%s", s.prefix, pipeline)
}

// Publish implements Sink
func (s *RedisSink) Publish(ctx context.Context, report *RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.latestKey(report.Pipeline), data, 0)
	pipe.LPush(ctx, s.historyKey(report.Pipeline), data)
	pipe.LTrim(ctx, s.historyKey(report.Pipeline), 0, s.historySize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store report in Redis: %w", err)
	}
	return nil
}

// Latest returns the newest report for pipeline
func (s *RedisSink) Latest(ctx context.Context, pipeline string) (*RunReport, error) {
	data, err := s.client.Get(ctx, s.latestKey(pipeline)).Bytes()
	if err == redis.Nil {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report from Redis: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// History returns up to limit reports for pipeline, newest first
func (s *RedisSink) History(ctx context.Context, pipeline string, limit int) ([]*RunReport, error) {
	if limit <= 0 {
		limit = int(s.historySize)
	}

	items, err := s.client.LRange(ctx, s.historyKey(pipeline), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report history: %w", err)
	}

	reports := make([]*RunReport, 0, len(items))
	for _, item := range items {
		var report RunReport
		if err := json.Unmarshal([]byte(item), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

// Close closes the Redis client
func (s *RedisSink) Close() error {
	return s.client.Close()
}
