package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records request metrics consistently.
// route should be the router's path template (e.g. "/tools/{slug}") so that
// label cardinality stays bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(float64(duration.Milliseconds()))
}

// RecordIdentityLookup records the outcome of a current-user lookup
func RecordIdentityLookup(outcome string) {
	IdentityLookups.WithLabelValues(outcome).Inc()
}

// RecordSignIn records a sign-in flow step
func RecordSignIn(step string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SignIns.WithLabelValues(step, status).Inc()
}

// SetIdentityConfigured reports whether the identity service is usable
func SetIdentityConfigured(ok bool) {
	if ok {
		IdentityConfigured.Set(1)
		return
	}
	IdentityConfigured.Set(0)
}

// SetCatalogTools publishes the number of catalog tools per status
func SetCatalogTools(counts map[string]int) {
	for status, n := range counts {
		CatalogTools.WithLabelValues(status).Set(float64(n))
	}
}

// RecordToolView counts a tool page view
func RecordToolView(slug string) {
	ToolViews.WithLabelValues(slug).Inc()
}

// RecordProviderCall records one identity provider API call. status is 0
// when no response was received.
func RecordProviderCall(method, endpoint string, status int, duration time.Duration, errorType string) {
	ProviderAPICalls.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	ProviderAPIDuration.WithLabelValues(method, endpoint).Observe(float64(duration.Milliseconds()))
	if errorType != "" {
		ProviderAPIErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}
