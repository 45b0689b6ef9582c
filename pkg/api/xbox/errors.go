package xbox

import (
	"errors"
	"fmt"
	"time"
)

// UpstreamError is returned when a Microsoft or Xbox Live endpoint answers
// with a non-2xx status.
type UpstreamError struct {
	StatusCode int
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func IsUpstream(err error) (int, bool) {
	var upstream UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode, true
	}

	return 0, false
}

type RateLimitError struct {
	ResetAt time.Time
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.ResetAt)
}

func IsRateLimit(err error) (time.Time, bool) {
	var limit RateLimitError
	if errors.As(err, &limit) {
		return limit.ResetAt, true
	}

	return time.Time{}, false
}
