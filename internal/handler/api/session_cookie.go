package api

import (
	"net/http"
	"time"

	drepo "AlgoSensei/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookie identifies a browser context by an opaque uuid cookie and
// resolves the SessionStore scoped to it.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool

	stores drepo.SessionStoreFactory
}

// NewSessionCookie creates a cookie binder over stores.
func NewSessionCookie(stores drepo.SessionStoreFactory, name string, maxAge time.Duration, secure bool) *SessionCookie {
	if name == "" {
		name = "algosensei_sid"
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SessionCookie{Name: name, MaxAge: maxAge, Secure: secure, stores: stores}
}

// Existing returns the store of the request's context, or ok=false when the
// request carries no valid session cookie.
func (s *SessionCookie) Existing(c echo.Context) (drepo.SessionStore, bool) {
	ck, err := c.Cookie(s.Name)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(ck.Value)
	if err != nil {
		return nil, false
	}
	return s.stores.ForContext(id.String()), true
}

// Ensure returns the request's store, issuing a fresh cookie when needed.
func (s *SessionCookie) Ensure(c echo.Context) drepo.SessionStore {
	if store, ok := s.Existing(c); ok {
		return store
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     s.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.stores.ForContext(id)
}
