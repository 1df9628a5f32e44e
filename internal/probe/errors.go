package probe

import "errors"

// Policy validation errors.
var (
	// ErrInvalidConnectTimeout is returned when the connect timeout is not positive.
	ErrInvalidConnectTimeout = errors.New("connect timeout must be positive")

	// ErrInvalidTotalTimeout is returned when the total timeout does not
	// exceed the connect timeout.
	ErrInvalidTotalTimeout = errors.New("total timeout must be greater than connect timeout")

	// ErrInvalidMaxRedirects is returned for a negative redirect limit.
	ErrInvalidMaxRedirects = errors.New("max redirects must not be negative")

	// ErrInvalidMaxConcurrent is returned when the concurrency bound is not positive.
	ErrInvalidMaxConcurrent = errors.New("max concurrent probes must be positive")

	// ErrInvalidHostRateLimit is returned for a negative per-host rate.
	ErrInvalidHostRateLimit = errors.New("host rate limit must not be negative")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// errRedirectLimit is returned from CheckRedirect when a chain is longer
// than Policy.MaxRedirects.
var errRedirectLimit = errors.New("redirect limit exceeded")
