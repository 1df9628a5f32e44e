// Package probe checks whether a URL is reachable.
//
// A Prober issues a single HEAD request per URL under a Policy that bounds
// the connect and total time, follows a limited number of redirects and
// maps the final status to a reason phrase. Network failures never surface
// as Go errors: they are folded into a model.ProbeResult with the sentinel
// status 0 and a classified failure kind.
//
// # Concurrency
//
// A Prober is safe for concurrent use. All probes share one http.Client,
// a global semaphore bounds the number of requests in flight, an optional
// per-host token bucket spaces requests to the same host, and concurrent
// probes of the same URL are collapsed into one request.
//
// # Proxy
//
// When Policy.ProxyAddress is set, every connection is made through that
// SOCKS5 proxy.
package probe
