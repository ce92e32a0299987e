package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure. Each tier classifies once; a kind
// assigned by the server travels to the client on the machine-readable
// errorType field and is never re-derived from prose.
type Kind string

const (
	KindTransient       Kind = "transient"
	KindRateLimited     Kind = "rate_limited"
	KindTimeout         Kind = "timeout"
	KindQuotaExceeded   Kind = "quota_exceeded"
	KindInvalidInput    Kind = "invalid_input"
	KindUpstreamFailure Kind = "upstream_failure"
	KindConfigError     Kind = "config_error"

	// KindUnavailable is produced only by the gateway client when its
	// circuit breaker is open; it never crosses the wire.
	KindUnavailable Kind = "unavailable"
)

// Envelope is the uniform failure shape produced whenever a generation
// request does not succeed. It implements error so adapters and the client
// can return it directly.
type Envelope struct {
	Kind      Kind
	Message   string
	Retryable bool

	// Status and UpstreamMessage carry raw upstream diagnostics. They must
	// not drive control flow; only Kind and Retryable do.
	Status          int
	UpstreamMessage string
}

func (e *Envelope) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (upstream status %d)", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsEnvelope unwraps err into an Envelope if one is present.
func AsEnvelope(err error) (*Envelope, bool) {
	var env *Envelope
	if errors.As(err, &env) {
		return env, true
	}
	return nil, false
}

// ErrorType maps the kind to the coarse wire vocabulary shared with clients.
func (e *Envelope) ErrorType() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout"
	case KindRateLimited, KindQuotaExceeded:
		return "rate_limit"
	case KindInvalidInput:
		return "invalid_input"
	case KindConfigError:
		return "config_error"
	default:
		return "api_error"
	}
}

// HTTPStatus is the response status the gateway server answers with.
func (e *Envelope) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindRateLimited, KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// WireError is the JSON body of every non-200 gateway response.
type WireError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retry     bool   `json:"retry"`
	ErrorType string `json:"errorType"`
}

// Wire converts the envelope to its transport representation.
func (e *Envelope) Wire() WireError {
	return WireError{
		Error:     string(e.Kind),
		Message:   e.Message,
		Retry:     e.Retryable,
		ErrorType: e.ErrorType(),
	}
}

// FromWire reconstructs an envelope from a transport error body. The kind is
// taken verbatim when it names a known kind, otherwise it is recovered from
// the coarse errorType field.
func FromWire(w WireError, status int) *Envelope {
	kind := Kind(w.Error)
	switch kind {
	case KindTransient, KindRateLimited, KindTimeout, KindQuotaExceeded,
		KindInvalidInput, KindUpstreamFailure, KindConfigError:
	default:
		kind = kindFromErrorType(w.ErrorType)
	}
	return &Envelope{
		Kind:      kind,
		Message:   w.Message,
		Retryable: w.Retry,
		Status:    status,
	}
}

func kindFromErrorType(errorType string) Kind {
	switch errorType {
	case "timeout":
		return KindTimeout
	case "rate_limit":
		return KindRateLimited
	case "invalid_input":
		return KindInvalidInput
	case "config_error":
		return KindConfigError
	case "api_error":
		return KindUpstreamFailure
	default:
		return KindTransient
	}
}

// InvalidInput builds a non-retryable caller-mistake envelope.
func InvalidInput(format string, args ...any) *Envelope {
	return &Envelope{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ConfigError builds a fatal configuration envelope.
func ConfigError(message string) *Envelope {
	return &Envelope{Kind: KindConfigError, Message: message}
}
