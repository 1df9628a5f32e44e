package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/nao1215/linkvalidator/internal/model"
)

// classifyError maps a transport error to the failure kind reported in
// logs and metrics. Typed errors are checked first; the message is only
// inspected for errors that arrive as plain strings.
func classifyError(err error) model.FailureKind {
	if err == nil {
		return model.FailureNone
	}

	switch {
	case errors.Is(err, errRedirectLimit):
		return model.FailureRedirectLimit
	case errors.Is(err, context.Canceled):
		return model.FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return model.FailureTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return model.FailureRefused
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.FailureDNS
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return model.FailureTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host"):
		return model.FailureDNS
	case strings.Contains(msg, "connection refused"):
		return model.FailureRefused
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate"):
		return model.FailureTLS
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return model.FailureTimeout
	default:
		return model.FailureOther
	}
}
