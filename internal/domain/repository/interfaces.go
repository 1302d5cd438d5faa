package repository

import (
	"context"

	"AlgoSensei/internal/domain/models"
)

// SessionStore holds durable markers for one browser context.
// Missing keys are absent from GetMany results, never an error.
type SessionStore interface {
	// GetMany reads keys in a single round trip.
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the listed markers only.
	Delete(ctx context.Context, keys ...string) error
	// Touch restarts the expiry of the listed markers that still exist.
	Touch(ctx context.Context, keys ...string) error
	// Clear removes every marker of the context.
	Clear(ctx context.Context) error
}

// SessionStoreFactory scopes a SessionStore to one browser context id.
type SessionStoreFactory interface {
	ForContext(contextID string) SessionStore
}

// AuthProvider is the external credential checker.
// Failures are *errs.AuthError (login, signup) or *errs.OAuthError (code exchange).
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	// verifier is the PKCE code verifier; empty when the flow did not use one.
	ExchangeCode(ctx context.Context, code, verifier string) (*models.Identity, error)
}

// ProfileDirectory is the users table keyed by email.
// FindByEmail returns (nil, nil) when no row exists.
type ProfileDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
}

// MarketSource fetches raw exchange data for one symbol.
// Failures are *errs.FetchError.
type MarketSource interface {
	Ticker(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error)
}

// ChatCompleter sends one system+user prompt to the LLM and returns the answer text.
type ChatCompleter interface {
	Configured() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Metrics interface {
	RecordPoll(trigger, outcome string)
	RecordAuthAttempt(flow, outcome string)
	RecordAdvisorCall(source string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
