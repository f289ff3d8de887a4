package gateway

import (
	"context"
	"errors"

	"flowforge/internal/fault"
)

// Kind names the classification of a caught failure.
type Kind string

const (
	KindFatal             Kind = "fatal"
	KindRateLimited       Kind = "rate_limited"       // HTTP 429
	KindServerUnavailable Kind = "server_unavailable" // HTTP 5xx or deadline expiry
)

// Classification is computed once per caught failure and never persisted.
type Classification struct {
	Kind Kind
	Code int // HTTP status when known, 0 otherwise
}

// Transient reports whether the failure is expected to resolve on retry.
func (c Classification) Transient() bool {
	return c.Kind != KindFatal
}

// Classifier derives a Classification from a caught failure.
type Classifier func(error) Classification

// ClassifyHTTP is the default classifier: 429 is rate limiting, 5xx is
// temporary unavailability, a per-attempt deadline expiry is treated as
// transient, and everything else is fatal. Configuration errors are always
// fatal regardless of any wrapped status.
func ClassifyHTTP(err error) Classification {
	if errors.Is(err, fault.ErrConfiguration) {
		return Classification{Kind: KindFatal}
	}

	var httpErr *fault.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Status == 429:
			return Classification{Kind: KindRateLimited, Code: httpErr.Status}
		case httpErr.Status >= 500 && httpErr.Status <= 599:
			return Classification{Kind: KindServerUnavailable, Code: httpErr.Status}
		default:
			return Classification{Kind: KindFatal, Code: httpErr.Status}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Classification{Kind: KindServerUnavailable}
	}

	return Classification{Kind: KindFatal}
}
