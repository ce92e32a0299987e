package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// QuotaMatcher reports whether an upstream error message indicates a quota or
// rate-limit condition. The substrings that mean "quota" are vendor-specific,
// so the matcher is built from configuration rather than hard-coded.
type QuotaMatcher func(message string) bool

// DefaultQuotaTerms is the vocabulary used when no override is configured.
var DefaultQuotaTerms = []string{"rate limit", "quota", "too many requests", "billing"}

// NewQuotaMatcher builds a case-insensitive substring matcher over terms.
func NewQuotaMatcher(terms []string) QuotaMatcher {
	if len(terms) == 0 {
		terms = DefaultQuotaTerms
	}
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	return func(message string) bool {
		msg := strings.ToLower(message)
		for _, t := range lowered {
			if strings.Contains(msg, t) {
				return true
			}
		}
		return false
	}
}

// ClassifyStatus classifies an upstream HTTP failure.
//
// 429 and quota vocabulary are never retried: repeated attempts against a
// quota error only burn more billing. 5xx is a retryable upstream fault.
// Everything else is propagated without retry.
func ClassifyStatus(status int, message string, quota QuotaMatcher) *Envelope {
	if quota == nil {
		quota = NewQuotaMatcher(nil)
	}
	switch {
	case status == http.StatusTooManyRequests || quota(message):
		return &Envelope{
			Kind:            KindRateLimited,
			Message:         "upstream rate limit or quota exceeded",
			Retryable:       false,
			Status:          status,
			UpstreamMessage: message,
		}
	case status >= http.StatusInternalServerError:
		return &Envelope{
			Kind:            KindUpstreamFailure,
			Message:         "upstream service error",
			Retryable:       true,
			Status:          status,
			UpstreamMessage: message,
		}
	default:
		return &Envelope{
			Kind:            KindUpstreamFailure,
			Message:         "upstream rejected the request",
			Retryable:       false,
			Status:          status,
			UpstreamMessage: message,
		}
	}
}

// ClassifyTransport classifies an error raised before any HTTP status was
// received: attempt timeouts become retryable Timeout envelopes, other
// network faults become retryable Transient envelopes.
func ClassifyTransport(err error) *Envelope {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &Envelope{
			Kind:      KindTimeout,
			Message:   "upstream call timed out",
			Retryable: true,
		}
	}
	return &Envelope{
		Kind:      KindTransient,
		Message:   "upstream call failed: " + err.Error(),
		Retryable: true,
	}
}

func isTimeout(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
