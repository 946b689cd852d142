package identity

import "errors"

var (
	// ErrNotConfigured is returned by Service operations when the project ID
	// or secret server key is missing
	ErrNotConfigured = errors.New("identity service not configured")

	// ErrCapabilityUnavailable is returned by a Resolver when no identity
	// capability can be obtained
	ErrCapabilityUnavailable = errors.New("identity capability unavailable")

	// ErrNoSession is returned when the request carries no access token
	ErrNoSession = errors.New("no session")

	// ErrInvalidToken is returned when the access token fails verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the access token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidState is returned when the sign-in callback state does not match
	ErrInvalidState = errors.New("invalid sign-in state")

	// ErrSignInFailed is returned when the provider rejects the sign-in
	ErrSignInFailed = errors.New("sign-in failed")
)
