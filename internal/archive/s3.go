package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// ErrEmptySnapshot is returned when there is nothing to archive
var ErrEmptySnapshot = errors.New("snapshot has no records")

// PutObjectAPI is the subset of the S3 client used by the writer
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer archives raw API responses to S3 as JSON Lines files
type S3Writer struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
	logger *utils.Logger
}

// NewS3Writer creates a writer using the default AWS credential chain
func NewS3Writer(ctx context.Context, bucket, region, prefix string, logger *utils.Logger) (*S3Writer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3WriterWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3WriterWithClient creates a writer around an existing client
func NewS3WriterWithClient(client PutObjectAPI, bucket, prefix string, logger *utils.Logger) *S3Writer {
	if logger == nil {
		logger = utils.NewLogger("s3-snapshot")
	}
	return &S3Writer{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		logger: logger,
	}
}

// Key returns the object key for a snapshot taken at t.
// Format: aa-snapshots/2025/11/30/aa-models-20251130-143022.jsonl
func (w *S3Writer) Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%04d/%02d/%02d/aa-models-%s.jsonl",
		w.prefix,
		t.Year(),
		t.Month(),
		t.Day(),
		t.Format("20060102-150405"),
	)
}

// WriteSnapshot uploads one JSON document per line and returns the key written
func (w *S3Writer) WriteSnapshot(ctx context.Context, records []json.RawMessage) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptySnapshot
	}

	var buf bytes.Buffer
	for _, record := range records {
		// compact so each record stays on a single line
		if err := json.Compact(&buf, record); err != nil {
			w.logger.Error("Failed to encode record", "error", err)
			continue
		}
		buf.WriteByte('\n')
	}

	key := w.Key(w.now())
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	w.logger.Info("Wrote snapshot to S3", "bucket", w.bucket, "key", key, "count", len(records), "bytes", buf.Len())
	return key, nil
}
