package apperrors

import "errors"

var (
	ErrQuotaNotFound       = errors.New("quota not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrSubEventNotFound    = errors.New("sub-event not found")
	ErrUnsupportedStore    = errors.New("unsupported database engine")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRefreshInFlight     = errors.New("refresh already in flight")
	ErrInternalServerError = errors.New("internal server error")
)
