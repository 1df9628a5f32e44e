package model

import (
	"fmt"
	"time"
)

// Labels used for results that carry no real HTTP status.
const (
	// LabelUnknown is the label of the sentinel status 0 and of status codes
	// missing from the reason phrase table.
	LabelUnknown = "Invalid or unknown error"

	// LabelNotAString is used when the prober is handed an empty or
	// syntactically implausible URL.
	LabelNotAString = "URL is not a string"

	// LabelInvalid is used for extracted matches without an http(s) scheme.
	// Such matches are never sent over the network.
	LabelInvalid = "URL is invalid"

	// LabelOK is the reason phrase of the only status counted as healthy.
	LabelOK = "OK"
)

// StatusOK is the single HTTP status treated as a working link.
const StatusOK = 200

// FailureKind classifies why a probe ended with the sentinel status 0.
type FailureKind string

const (
	// FailureNone means the probe produced a real HTTP status.
	FailureNone FailureKind = ""

	// FailureInvalidURL means the URL was rejected before any network I/O.
	FailureInvalidURL FailureKind = "invalid_url"

	// FailureTimeout covers connect and total timeouts.
	FailureTimeout FailureKind = "timeout"

	// FailureDNS means the host name could not be resolved.
	FailureDNS FailureKind = "dns"

	// FailureRefused means the remote host refused the connection.
	FailureRefused FailureKind = "refused"

	// FailureRedirectLimit means more than MaxRedirects hops were needed.
	FailureRedirectLimit FailureKind = "redirect_limit"

	// FailureTLS covers certificate and handshake errors.
	FailureTLS FailureKind = "tls"

	// FailureCanceled means the probe was abandoned by the caller.
	FailureCanceled FailureKind = "canceled"

	// FailureOther is any other transport error.
	FailureOther FailureKind = "other"
)

// ProbeResult is the classified outcome of probing one URL.
// StatusCode 0 is a sentinel for "no real HTTP status could be determined".
type ProbeResult struct {
	// URL is the probed URL exactly as extracted.
	URL string `json:"url"`

	// StatusCode is the final HTTP status, or 0.
	StatusCode int `json:"status_code"`

	// StatusLabel is the human-readable reason phrase.
	StatusLabel string `json:"status_label"`

	// Failure explains a sentinel result. Empty for real statuses.
	Failure FailureKind `json:"failure,omitempty"`

	// Elapsed is the wall time spent on the probe.
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// NewInvalidResult returns the result for a match that has no http(s) scheme.
func NewInvalidResult(url string) ProbeResult {
	return ProbeResult{
		URL:         url,
		StatusCode:  0,
		StatusLabel: LabelInvalid,
		Failure:     FailureInvalidURL,
	}
}

// IsOK reports whether the result is the healthy "200 - OK" class.
func (r ProbeResult) IsOK() bool {
	return r.StatusCode == StatusOK
}

// IsError reports whether the result counts as an error in report totals.
func (r ProbeResult) IsError() bool {
	return !r.IsOK()
}

// Probed reports whether the URL reached the network layer.
func (r ProbeResult) Probed() bool {
	return r.Failure != FailureInvalidURL
}

// String returns the display form used by every renderer: "404 - Not Found",
// "0 - Invalid or unknown error", or the bare label for URLs rejected before
// any network I/O.
func (r ProbeResult) String() string {
	if r.StatusCode == 0 && (r.StatusLabel == LabelInvalid || r.StatusLabel == LabelNotAString) {
		return r.StatusLabel
	}
	return fmt.Sprintf("%d - %s", r.StatusCode, r.StatusLabel)
}

// StatusClass groups results for summaries and metrics.
type StatusClass string

const (
	ClassUnresolved  StatusClass = "unresolved"
	ClassInformation StatusClass = "1xx"
	ClassSuccess     StatusClass = "2xx"
	ClassRedirect    StatusClass = "3xx"
	ClassClientError StatusClass = "4xx"
	ClassServerError StatusClass = "5xx"
)

// StatusClasses lists every class in display order.
var StatusClasses = []StatusClass{
	ClassSuccess,
	ClassRedirect,
	ClassClientError,
	ClassServerError,
	ClassInformation,
	ClassUnresolved,
}

// Class returns the status class of the result.
func (r ProbeResult) Class() StatusClass {
	switch {
	case r.StatusCode >= 100 && r.StatusCode < 200:
		return ClassInformation
	case r.StatusCode >= 200 && r.StatusCode < 300:
		return ClassSuccess
	case r.StatusCode >= 300 && r.StatusCode < 400:
		return ClassRedirect
	case r.StatusCode >= 400 && r.StatusCode < 500:
		return ClassClientError
	case r.StatusCode >= 500 && r.StatusCode < 600:
		return ClassServerError
	default:
		return ClassUnresolved
	}
}
