package identity

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
)

// stubCapability returns canned results, or panics when panicWith is set
type stubCapability struct {
	user      *User
	err       error
	panicWith interface{}
	calls     int
}

func (s *stubCapability) CurrentUser(_ *http.Request) (*User, error) {
	s.calls++
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.user, s.err
}

func resolveTo(c Capability) Resolver {
	return func() (Capability, error) { return c, nil }
}

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}

func lookups(outcome string) float64 {
	return testutil.ToFloat64(metrics.IdentityLookups.WithLabelValues(outcome))
}

func TestGuard_CapabilityUnavailable(t *testing.T) {
	guard := NewGuard(func() (Capability, error) { return nil, ErrCapabilityUnavailable }, nil)
	before := lookups(OutcomeUnavailable)

	var user *User
	assert.NotPanics(t, func() { user = guard.CurrentUserSafe(newRequest()) })
	assert.Nil(t, user)
	assert.Equal(t, 1.0, lookups(OutcomeUnavailable)-before)
}

func TestGuard_ResolverReturnsNilCapability(t *testing.T) {
	guard := NewGuard(func() (Capability, error) { return nil, nil }, nil)
	assert.Nil(t, guard.CurrentUserSafe(newRequest()))
}

func TestGuard_ResolverPanics(t *testing.T) {
	guard := NewGuard(func() (Capability, error) { panic("module failed to load") }, nil)

	var user *User
	assert.NotPanics(t, func() { user = guard.CurrentUserSafe(newRequest()) })
	assert.Nil(t, user)
}

func TestGuard_InvocationFailures(t *testing.T) {
	tests := []struct {
		name    string
		stub    *stubCapability
		outcome string
	}{
		{
			name:    "not configured",
			stub:    &stubCapability{err: ErrNotConfigured},
			outcome: OutcomeNotConfigured,
		},
		{
			name:    "wrapped not configured",
			stub:    &stubCapability{err: errors.Join(errors.New("hook failed"), ErrNotConfigured)},
			outcome: OutcomeNotConfigured,
		},
		{
			name:    "arbitrary error",
			stub:    &stubCapability{err: errors.New("provider exploded")},
			outcome: OutcomeError,
		},
		{
			name:    "error with a user attached",
			stub:    &stubCapability{user: &User{ID: "u1"}, err: ErrInvalidToken},
			outcome: OutcomeError,
		},
		{
			name:    "panic",
			stub:    &stubCapability{panicWith: "not configured"},
			outcome: OutcomePanic,
		},
		{
			name:    "panic with error value",
			stub:    &stubCapability{panicWith: errors.New("nil map write")},
			outcome: OutcomePanic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := NewGuard(resolveTo(tt.stub), nil)
			before := lookups(tt.outcome)

			var user *User
			assert.NotPanics(t, func() { user = guard.CurrentUserSafe(newRequest()) })
			assert.Nil(t, user)
			assert.Equal(t, 1.0, lookups(tt.outcome)-before)
		})
	}
}

func TestGuard_NoSession(t *testing.T) {
	for _, stub := range []*stubCapability{{}, {err: ErrNoSession}} {
		guard := NewGuard(resolveTo(stub), nil)
		before := lookups(OutcomeNoSession)

		assert.Nil(t, guard.CurrentUserSafe(newRequest()))
		assert.Equal(t, 1.0, lookups(OutcomeNoSession)-before)
	}
}

func TestGuard_PassesUserThrough(t *testing.T) {
	want := &User{ID: "u1"}
	guard := NewGuard(resolveTo(&stubCapability{user: want}), nil)

	got := guard.CurrentUserSafe(newRequest())
	assert.Same(t, want, got)
	assert.Equal(t, "u1", got.ID)
}

func TestGuard_ResolvesOnEveryCall(t *testing.T) {
	resolutions := 0
	stub := &stubCapability{user: &User{ID: "u1"}}
	guard := NewGuard(func() (Capability, error) {
		resolutions++
		return stub, nil
	}, nil)

	for i := 0; i < 3; i++ {
		guard.CurrentUserSafe(newRequest())
	}
	assert.Equal(t, 3, resolutions)
	assert.Equal(t, 3, stub.calls)
}

func TestGuard_NilGuard(t *testing.T) {
	var guard *Guard
	assert.NotPanics(t, func() { assert.Nil(t, guard.CurrentUserSafe(newRequest())) })
	assert.Nil(t, NewGuard(nil, nil).CurrentUserSafe(newRequest()))
}

func TestGuard_NilServicePointer(t *testing.T) {
	var svc *Service
	guard := NewGuard(resolveTo(svc), nil)
	assert.Nil(t, guard.CurrentUserSafe(newRequest()))
}

func TestGuard_DegradedService(t *testing.T) {
	svc := New(ConfigFromEnv(envLookup(nil)), nil)
	guard := NewGuard(resolveTo(svc), nil)

	assert.Nil(t, guard.CurrentUserSafe(newRequest()))
}

func TestGuard_ConfiguredService(t *testing.T) {
	svc := New(testConfig(), nil)
	guard := NewGuard(resolveTo(svc), nil)

	assert.Nil(t, guard.CurrentUserSafe(newRequest()))

	req := signedInRequest(t, svc, mintToken(t, testSecret, testProjectID, "u1", time.Hour))
	user := guard.CurrentUserSafe(req)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}

func TestDefaultGuard(t *testing.T) {
	guard := DefaultGuard(nil)
	assert.NotPanics(t, func() { guard.CurrentUserSafe(newRequest()) })
}
