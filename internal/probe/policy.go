package probe

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Default policy values.
const (
	// DefaultConnectTimeout bounds dialing and the TLS handshake.
	DefaultConnectTimeout = 3 * time.Second

	// DefaultTotalTimeout bounds a whole probe including redirects.
	DefaultTotalTimeout = 5 * time.Second

	// DefaultMaxRedirects is the longest redirect chain that is followed.
	DefaultMaxRedirects = 5

	// DefaultMaxConcurrent bounds the probes in flight across a Prober.
	DefaultMaxConcurrent = 8

	// DefaultUserAgent is sent with every probe.
	DefaultUserAgent = "linkvalidator/1.0 (+https://github.com/nao1215/linkvalidator)"
)

// Policy configures how URLs are probed.
type Policy struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration

	// TotalTimeout bounds the whole probe. It must exceed ConnectTimeout.
	TotalTimeout time.Duration

	// FollowRedirects makes the prober report the status of the final
	// response. When false the first response is reported, 3xx included.
	FollowRedirects bool

	// MaxRedirects is the number of redirect hops followed before the probe
	// is reported as a failure.
	MaxRedirects int

	// UserAgent is the User-Agent header of every request.
	UserAgent string

	// MaxConcurrent bounds the number of requests in flight.
	MaxConcurrent int

	// HostRateLimit is the number of requests per second allowed per host.
	// Zero disables rate limiting.
	HostRateLimit float64

	// HostBurst is the token bucket size of the per-host limiter.
	HostBurst int

	// ProxyAddress routes probes through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// HostHeaders are extra request headers keyed by lower-case host name.
	HostHeaders map[string]map[string]string
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		ConnectTimeout:  DefaultConnectTimeout,
		TotalTimeout:    DefaultTotalTimeout,
		FollowRedirects: true,
		MaxRedirects:    DefaultMaxRedirects,
		UserAgent:       DefaultUserAgent,
		MaxConcurrent:   DefaultMaxConcurrent,
		HostBurst:       1,
	}
}

// Validate checks the policy for consistency.
func (p Policy) Validate() error {
	if p.ConnectTimeout <= 0 {
		return ErrInvalidConnectTimeout
	}
	if p.TotalTimeout <= p.ConnectTimeout {
		return fmt.Errorf("%w: connect %s, total %s", ErrInvalidTotalTimeout, p.ConnectTimeout, p.TotalTimeout)
	}
	if p.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	if p.MaxConcurrent <= 0 {
		return ErrInvalidMaxConcurrent
	}
	if p.HostRateLimit < 0 {
		return ErrInvalidHostRateLimit
	}
	if p.ProxyAddress != "" && !isValidProxyAddress(p.ProxyAddress) {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, p.ProxyAddress)
	}
	return nil
}

// headersFor returns the extra headers configured for host.
func (p Policy) headersFor(host string) map[string]string {
	if len(p.HostHeaders) == 0 {
		return nil
	}
	return p.HostHeaders[strings.ToLower(host)]
}

// isValidProxyAddress checks for "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
