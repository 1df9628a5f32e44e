package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// newHTTPClient creates the client shared by every probe of a Prober.
//
// The dialer and the TLS handshake are bounded by ConnectTimeout and the
// whole request, redirects included, by TotalTimeout. Probes never read a
// body, so idle connections are kept only briefly.
func newHTTPClient(policy Policy) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   policy.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	dialContext := dialer.DialContext
	if policy.ProxyAddress != "" {
		d, err := socks5DialContext(policy.ProxyAddress, dialer)
		if err != nil {
			return nil, err
		}
		dialContext = d
	}

	transport := &http.Transport{
		DialContext:           dialContext,
		TLSHandshakeTimeout:   policy.ConnectTimeout,
		ResponseHeaderTimeout: policy.TotalTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: policy.UserAgent,
			policy:    policy,
		},
		Timeout:       policy.TotalTimeout,
		CheckRedirect: checkRedirect(policy),
	}, nil
}

// checkRedirect enforces FollowRedirects and MaxRedirects. via holds the
// requests already made, so len(via) is the number of hops so far.
func checkRedirect(policy Policy) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if !policy.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) > policy.MaxRedirects {
			return errRedirectLimit
		}
		return nil
	}
}

// socks5DialContext returns a DialContext that connects through the SOCKS5
// proxy at address, reaching the proxy itself with forward.
func socks5DialContext(address string, forward *net.Dialer) (func(context.Context, string, string) (net.Conn, error), error) {
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	// SOCKS servers used for egress normally run without auth.
	d, err := proxy.SOCKS5("tcp", address, nil, forward)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()
		select {
		case r := <-resultCh:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// headerInjectingTransport sets the User-Agent and the configured per-host
// headers on every request, redirect hops included.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	policy    Policy
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.policy.headersFor(clone.URL.Hostname()) {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
