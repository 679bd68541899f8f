package reports

import (
	"context"
	"strings"

	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// LogSink writes a one-line summary of each report
type LogSink struct {
	logger *utils.Logger
}

// NewLogSink creates a sink writing through logger
func NewLogSink(logger *utils.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish implements Sink
func (s *LogSink) Publish(ctx context.Context, report *RunReport) error {
	keyvals := []interface{}{
		"run_id", report.ID,
		"pipeline", report.Pipeline,
		"status", report.Status,
		"duration", report.Duration(),
	}
	if len(report.Warnings) > 0 {
		keyvals = append(keyvals, "warnings", strings.Join(report.Warnings, "; "))
	}

	if report.Status == StatusFailed {
		s.logger.Error("Run report", append(keyvals, "error", report.Error)...)
		return nil
	}
	s.logger.Info("Run report", keyvals...)
	return nil
}
