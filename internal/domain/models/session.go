package models

import "time"

// Session marker keys persisted in the SessionStore of one browser context.
const (
	MarkerLoggedIn     = "isLoggedIn"
	MarkerUserEmail    = "userEmail"
	MarkerIssuedAt     = "issuedAt"
	MarkerAccessToken  = "sb-access-token"
	MarkerRefreshToken = "sb-refresh-token"

	// LoggedInValue is the only value of MarkerLoggedIn that counts as authenticated.
	LoggedInValue = "true"
)

// SessionMarkers lists every key a logged-in session may hold.
var SessionMarkers = []string{
	MarkerLoggedIn,
	MarkerUserEmail,
	MarkerIssuedAt,
	MarkerAccessToken,
	MarkerRefreshToken,
}

// DefaultDisplayName is shown when neither a username nor an email local part is available.
const DefaultDisplayName = "User"

// Session is the authenticated state of one browser context.
type Session struct {
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IssuedAt        time.Time `json:"issuedAt"`
}

// Identity is what the auth provider returns after a successful credential check.
// AccessToken is empty when the account exists but no live session was issued
// (e.g. signup awaiting email verification).
type Identity struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// HasSession reports whether the provider issued a usable session.
func (i *Identity) HasSession() bool {
	return i != nil && i.Email != "" && i.AccessToken != ""
}

// Profile is a row of the external users table.
type Profile struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
