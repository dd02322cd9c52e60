package domain

import "errors"

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrBundleShape       = errors.New("content bundle does not match contract")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrProviderFailure   = errors.New("provider failure")
	ErrMissingCredential = errors.New("missing model credential")
)
