package utils

// Helper functions
func Float64Ptr(f float64) *float64 {
	return &f
}

func StringPtr(s string) *string {
	return &s
}

// Float64Value returns 0 for nil
func Float64Value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// StringPtrValue returns "" for nil
func StringPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Truncate shortens s to at most n bytes, marking the cut
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
