package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/coderstoolbox/internal/pkg/logger"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
)

// Capability answers "who is signed in?" for a request.
// *Service implements it.
type Capability interface {
	CurrentUser(r *http.Request) (*User, error)
}

// Resolver obtains the identity capability. A non-nil error means the
// capability is unavailable. Guard calls it on every lookup.
type Resolver func() (Capability, error)

// DefaultResolver resolves to the process-wide Service
func DefaultResolver() (Capability, error) {
	svc := Default()
	if svc == nil {
		return nil, ErrCapabilityUnavailable
	}
	return svc, nil
}

// Lookup outcomes, used as metric labels
const (
	OutcomeUser          = "user"
	OutcomeNoSession     = "no_session"
	OutcomeUnavailable   = "unavailable"
	OutcomeNotConfigured = "not_configured"
	OutcomeError         = "error"
	OutcomePanic         = "panic"
)

// Guard is the single entry point rendering code uses to ask for the
// current user. It never fails: every problem becomes NoUser.
type Guard struct {
	resolve Resolver
	log     *slog.Logger
}

// NewGuard creates a guard around resolve
func NewGuard(resolve Resolver, log *slog.Logger) *Guard {
	if log == nil {
		log = logger.Discard()
	}
	return &Guard{
		resolve: resolve,
		log:     log.With(slog.String("component", "identity_guard")),
	}
}

// DefaultGuard creates a guard backed by the process-wide Service
func DefaultGuard(log *slog.Logger) *Guard {
	return NewGuard(DefaultResolver, log)
}

// CurrentUserSafe returns the signed-in user, or NoUser when there is none
// or when the identity capability is missing, misconfigured or failing.
// A successful lookup returns the capability's *User unchanged.
func (g *Guard) CurrentUserSafe(r *http.Request) (user *User) {
	outcome := OutcomeUser
	defer func() {
		if rec := recover(); rec != nil {
			user = NoUser
			outcome = OutcomePanic
			g.logger().Debug("identity lookup panicked", slog.String("panic", fmt.Sprint(rec)))
		}
		metrics.RecordIdentityLookup(outcome)
	}()

	if g == nil || g.resolve == nil {
		outcome = OutcomeUnavailable
		return NoUser
	}

	capability, err := g.resolve()
	if err != nil || capability == nil {
		outcome = OutcomeUnavailable
		if err != nil {
			g.log.Debug("identity capability unavailable", slog.String("error", err.Error()))
		}
		return NoUser
	}

	user, err = capability.CurrentUser(r)
	switch {
	case err == nil && user == nil:
		outcome = OutcomeNoSession
		return NoUser
	case err == nil:
		return user
	case errors.Is(err, ErrNoSession):
		outcome = OutcomeNoSession
	case errors.Is(err, ErrNotConfigured):
		outcome = OutcomeNotConfigured
	default:
		outcome = OutcomeError
		g.log.Debug("identity lookup failed", slog.String("error", err.Error()))
	}
	return NoUser
}

func (g *Guard) logger() *slog.Logger {
	if g == nil || g.log == nil {
		return logger.Discard()
	}
	return g.log
}
