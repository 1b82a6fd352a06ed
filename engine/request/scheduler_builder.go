package request

import (
	"net/http"
	"time"
)

const (
	// DefaultMaxConcurrentRequests is the default number of simultaneous fetches.
	DefaultMaxConcurrentRequests = 6

	// DefaultTimeout bounds a whole fetch, body included.
	DefaultTimeout = 30 * time.Second
)

// SchedulerBuilderOption is a functional option applied to a Scheduler during construction
// via NewScheduler.
type SchedulerBuilderOption func(*scheduler)

// WithMaxConcurrentRequests sets the number of fetches that may execute at once.
//
// Parameters:
//   - n: the limit, greater than zero
//
// Returns:
//   - SchedulerBuilderOption: a function that sets the limit
func WithMaxConcurrentRequests(n int) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.maxConcurrentRequests = n
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect with WithHTTPClient.
func WithTimeout(d time.Duration) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.timeout = d
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header; an empty string leaves the client default.
func WithUserAgent(userAgent string) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.userAgent = userAgent
	}
}
