package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP/Web Handler Metrics
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_http_requests_total",
			Help: "Total HTTP requests by method, route template, and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "toolbox_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks active HTTP requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "toolbox_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// Identity Metrics
var (
	// IdentityLookups counts current-user lookups made while rendering pages
	IdentityLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_identity_lookups_total",
			Help: "Current-user lookups by outcome (user, no_session, unavailable, not_configured, error, panic)",
		},
		[]string{"outcome"},
	)

	// IdentityConfigured is 1 when the identity service has all required keys
	IdentityConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "toolbox_identity_configured",
			Help: "Whether the identity service is fully configured (1) or running degraded (0)",
		},
	)

	// SignIns tracks sign-in flow steps
	SignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_identity_sign_ins_total",
			Help: "Sign-in flow events by step and status",
		},
		[]string{"step", "status"},
	)
)

// Catalog Metrics
var (
	// CatalogTools tracks the number of tools in the loaded catalog
	CatalogTools = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "toolbox_catalog_tools",
			Help: "Number of catalog tools by status",
		},
		[]string{"status"},
	)

	// ToolViews tracks tool page views
	ToolViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_tool_views_total",
			Help: "Tool page views by tool slug",
		},
		[]string{"tool"},
	)
)

// Identity Provider API Metrics
var (
	// ProviderAPICalls tracks calls made to the identity provider's API
	ProviderAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_identity_provider_calls_total",
			Help: "Identity provider API calls by method, endpoint, and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	// ProviderAPIDuration tracks identity provider API latency
	ProviderAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "toolbox_identity_provider_call_duration_ms",
			Help:                            "Identity provider API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "endpoint"},
	)

	// ProviderAPIErrors tracks failed identity provider API calls
	ProviderAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toolbox_identity_provider_errors_total",
			Help: "Identity provider API errors by endpoint and error type",
		},
		[]string{"endpoint", "error_type"},
	)
)
