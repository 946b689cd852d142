package identity

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
)

// providerTransport wraps an http.RoundTripper to collect metrics on calls
// to the identity provider's API
type providerTransport struct {
	base http.RoundTripper
	host string
}

// newProviderTransport instruments requests sent to host. Requests to any
// other host pass through untouched.
func newProviderTransport(base http.RoundTripper, host string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &providerTransport{base: base, host: host}
}

func (t *providerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != t.host {
		return t.base.RoundTrip(req)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	errorType := ""
	if err != nil || status >= 400 {
		errorType = classifyProviderError(status, err)
	}

	metrics.RecordProviderCall(req.Method, normalizeProviderEndpoint(req.URL.Path), status, duration, errorType)
	return resp, err
}

var providerIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|/\d+`)

// normalizeProviderEndpoint replaces numeric and UUID path segments with
// ":id" so the endpoint label stays low-cardinality
func normalizeProviderEndpoint(path string) string {
	if path == "" {
		return "/"
	}
	return providerIDPattern.ReplaceAllString(path, "/:id")
}

// classifyProviderError categorizes provider API failures for metrics
func classifyProviderError(statusCode int, err error) string {
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			return "timeout"
		case strings.Contains(err.Error(), "connection"):
			return "connection"
		case strings.Contains(err.Error(), "tls"), strings.Contains(err.Error(), "TLS"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == http.StatusBadRequest:
		return "bad_request"
	case statusCode == http.StatusUnauthorized:
		return "unauthorized"
	case statusCode == http.StatusForbidden:
		return "forbidden"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}
