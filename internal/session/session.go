// Package session resolves the caller's authentication session from an
// incoming request. Issuing and refreshing tokens is not its concern.
package session

import (
	"net/http"
	"strings"

	"propertydesk/internal/pkg/jwtutil"
)

// Session is a verified access token and the user it was issued for.
// UserID may be empty when the token carries no subject.
type Session struct {
	Token  string
	UserID string
}

type Accessor struct {
	secret     string
	cookieName string
}

func NewAccessor(secret, cookieName string) *Accessor {
	return &Accessor{secret: secret, cookieName: cookieName}
}

// FromRequest returns nil when no valid session is attached. Expired or
// tampered tokens count as absent.
func (a *Accessor) FromRequest(r *http.Request) *Session {
	raw := bearerToken(r)
	if raw == "" && a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil {
			raw = strings.TrimSpace(cookie.Value)
		}
	}
	if raw == "" {
		return nil
	}
	claims, err := jwtutil.ParseToken(a.secret, raw)
	if err != nil {
		return nil
	}
	return &Session{Token: raw, UserID: strings.TrimSpace(claims.UserID)}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
