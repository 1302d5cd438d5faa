// Package errs holds the typed failures of the session and market flows.
//
// Each error carries a Kind and wraps its cause. Callers match a kind with
// errors.Is against the exported sentinels (errs.ErrInvalidCredentials, ...)
// and reach the full value with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// AuthKind classifies credential-check failures. ProfileSaveFailed means the provider
// account exists but its profile row was not stored.
type AuthKind string

const (
	InvalidCredentials AuthKind = "invalid_credentials"
	UserNotFound       AuthKind = "user_not_found"
	ProviderError      AuthKind = "provider_error"
	EmailTaken         AuthKind = "email_taken"
	ProfileSaveFailed  AuthKind = "profile_save_failed"
)

// FetchKind classifies market-data fetch failures.
type FetchKind string

const (
	NetworkError      FetchKind = "network_error"
	MalformedResponse FetchKind = "malformed_response"
)

// OAuthKind classifies OAuth callback failures.
type OAuthKind string

const (
	NoCode         OAuthKind = "no_code"
	ExchangeFailed OAuthKind = "exchange_failed"
)

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}
	ErrUserNotFound       = &AuthError{Kind: UserNotFound}
	ErrProvider           = &AuthError{Kind: ProviderError}
	ErrEmailTaken         = &AuthError{Kind: EmailTaken}
	ErrProfileSave        = &AuthError{Kind: ProfileSaveFailed}

	ErrNetwork   = &FetchError{Kind: NetworkError}
	ErrMalformed = &FetchError{Kind: MalformedResponse}

	ErrNoCode         = &OAuthError{Kind: NoCode}
	ErrExchangeFailed = &OAuthError{Kind: ExchangeFailed}
)

// AuthError is returned by login and signup.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func NewAuthError(kind AuthKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches any AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// FetchError is returned by market-data fetches. Symbol is set when a single symbol caused it.
type FetchError struct {
	Kind   FetchKind
	Symbol string
	Err    error
}

func NewFetchError(kind FetchKind, symbol string, err error) *FetchError {
	return &FetchError{Kind: kind, Symbol: symbol, Err: err}
}

func (e *FetchError) Error() string {
	msg := "fetch: " + string(e.Kind)
	if e.Symbol != "" {
		msg += " (" + e.Symbol + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	return ok && t.Kind == e.Kind
}

// OAuthError is returned by the OAuth code exchange.
type OAuthError struct {
	Kind OAuthKind
	// Rejected is set when the provider answered and refused the code,
	// as opposed to a transport failure or an empty identity.
	Rejected bool
	Err      error
}

func NewOAuthError(kind OAuthKind, rejected bool, err error) *OAuthError {
	return &OAuthError{Kind: kind, Rejected: rejected, Err: err}
}

func (e *OAuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("oauth: %s", e.Kind)
}

func (e *OAuthError) Unwrap() error { return e.Err }

func (e *OAuthError) Is(target error) bool {
	t, ok := target.(*OAuthError)
	return ok && t.Kind == e.Kind
}

// AuthKindOf returns the kind of the first AuthError in err's chain.
func AuthKindOf(err error) (AuthKind, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}
