package reports

import (
	"context"
	"sync"
)

// MemorySink keeps the most recent reports in memory
type MemorySink struct {
	mu      sync.RWMutex
	reports []*RunReport
	limit   int
}

// NewMemorySink creates a sink that keeps at most limit reports
func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 50
	}
	return &MemorySink{limit: limit}
}

// Publish implements Sink
func (s *MemorySink) Publish(ctx context.Context, report *RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	if len(s.reports) > s.limit {
		s.reports = s.reports[len(s.reports)-s.limit:]
	}
	return nil
}

// Latest returns the newest report for pipeline
func (s *MemorySink) Latest(pipeline string) (*RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].Pipeline == pipeline {
			return s.reports[i], true
		}
	}
	return nil, false
}

// All returns every stored report, oldest first
func (s *MemorySink) All() []*RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*RunReport, len(s.reports))
	copy(out, s.reports)
	return out
}
