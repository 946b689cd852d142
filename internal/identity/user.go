package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the signed-in visitor as described by the provider's access token.
// The application only reads it.
type User struct {
	ID              string
	Email           string
	DisplayName     string
	ProfileImageURL string
	Anonymous       bool
	ExpiresAt       time.Time
}

// NoUser is what CurrentUserSafe returns when nobody is signed in
var NoUser *User

// Name returns the best label for the header's account menu
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	if u.Anonymous {
		return "Guest"
	}
	return u.ID
}

// accessClaims is the payload of a provider access token.
// aud carries the project ID and sub the user ID.
type accessClaims struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	Anonymous bool   `json:"is_anonymous,omitempty"`
	jwt.RegisteredClaims
}

func (c *accessClaims) user() *User {
	u := &User{
		ID:              c.Subject,
		Email:           c.Email,
		DisplayName:     c.Name,
		ProfileImageURL: c.Picture,
		Anonymous:       c.Anonymous,
	}
	if c.ExpiresAt != nil {
		u.ExpiresAt = c.ExpiresAt.Time
	}
	return u
}
