package domain

import "errors"

var (
	ErrUnavailable       = errors.New("service temporarily unavailable")
	ErrMissingCredential = errors.New("upstream credential not configured")
)
