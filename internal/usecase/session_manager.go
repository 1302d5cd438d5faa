package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	drepo "AlgoSensei/internal/domain/repository"
	applogger "AlgoSensei/pkg/logger"
	"AlgoSensei/pkg/util"

	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 10

type marker struct{ key, value string }

// SessionManager turns successful credential checks into durable session markers.
// Every operation works on the SessionStore of the calling browser context.
type SessionManager struct {
	auth     drepo.AuthProvider
	profiles drepo.ProfileDirectory
	metrics  drepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

// NewSessionManager creates a session manager.
func NewSessionManager(auth drepo.AuthProvider, profiles drepo.ProfileDirectory, metrics drepo.Metrics, logger *applogger.Logger) *SessionManager {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SessionManager{
		auth:     auth,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks credentials with the auth provider and, on success, marks the context as logged in.
// On failure the store is left untouched and the error is an *errs.AuthError.
func (m *SessionManager) Login(ctx context.Context, store drepo.SessionStore, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)

	id, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		err = asAuthError(err)
		m.recordAuth("login", err)
		m.logger.Warn("login failed", applogger.String("email", email), applogger.Error(err))
		return nil, err
	}

	sess, err := m.establish(ctx, store, id)
	if err != nil {
		return nil, err
	}
	m.recordAuth("login", nil)
	m.logger.Info("login succeeded", applogger.String("email", sess.Email))
	return sess, nil
}

// SignUp rejects emails already in the profile table, registers the account and stores
// the profile row. The returned session is nil when the provider holds the account
// pending email verification.
//
// A provider account left without a profile row by an earlier failed insert is adopted
// when the caller can sign in to it; otherwise the email stays taken.
func (m *SessionManager) SignUp(ctx context.Context, store drepo.SessionStore, email, password, username string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	existing, err := m.profiles.FindByEmail(ctx, email)
	if err != nil {
		err = errs.NewAuthError(errs.ProviderError, err)
		m.recordAuth("signup", err)
		return nil, err
	}
	if existing != nil {
		err = errs.NewAuthError(errs.EmailTaken, nil)
		m.recordAuth("signup", err)
		return nil, err
	}

	id, err := m.auth.SignUp(ctx, email, password)
	if errors.Is(err, errs.ErrEmailTaken) {
		if adopted, aerr := m.auth.SignInWithPassword(ctx, email, password); aerr == nil {
			m.logger.Info("signup adopting provider account without profile", applogger.String("email", email))
			id, err = adopted, nil
		}
	}
	if err != nil {
		err = asAuthError(err)
		m.recordAuth("signup", err)
		m.logger.Warn("signup rejected by provider", applogger.String("email", email), applogger.Error(err))
		return nil, err
	}

	if err := m.saveProfile(ctx, email, password, username); err != nil {
		m.recordAuth("signup", err)
		m.logger.Error("signup profile not stored", applogger.String("email", email), applogger.Error(err))
		return nil, err
	}

	m.recordAuth("signup", nil)
	if !id.HasSession() {
		m.logger.Info("signup pending email verification", applogger.String("email", email))
		return nil, nil
	}
	return m.establish(ctx, store, id)
}

// saveProfile writes the profile row after the provider accepted the account.
// A concurrent insert of the same email stays EmailTaken; any other failure is ProfileSaveFailed.
func (m *SessionManager) saveProfile(ctx context.Context, email, password, username string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return errs.NewAuthError(errs.ProfileSaveFailed, fmt.Errorf("hash password: %w", err))
	}
	err = m.profiles.Create(ctx, &models.Profile{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrEmailTaken):
		return err
	default:
		return errs.NewAuthError(errs.ProfileSaveFailed, err)
	}
}

// CompleteOAuth exchanges an OAuth authorization code and marks the context as logged in.
// Failures are *errs.OAuthError.
func (m *SessionManager) CompleteOAuth(ctx context.Context, store drepo.SessionStore, code, verifier string) (*models.Session, error) {
	if strings.TrimSpace(code) == "" {
		m.metrics.RecordAuthAttempt("oauth", string(errs.NoCode))
		return nil, errs.NewOAuthError(errs.NoCode, false, nil)
	}

	id, err := m.auth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		var oe *errs.OAuthError
		if !errors.As(err, &oe) {
			err = errs.NewOAuthError(errs.ExchangeFailed, false, err)
		}
		m.metrics.RecordAuthAttempt("oauth", string(errs.ExchangeFailed))
		return nil, err
	}
	if !id.HasSession() {
		m.metrics.RecordAuthAttempt("oauth", string(errs.ExchangeFailed))
		return nil, errs.NewOAuthError(errs.ExchangeFailed, false, errors.New("no identity returned"))
	}

	sess, err := m.establish(ctx, store, id)
	if err != nil {
		return nil, errs.NewOAuthError(errs.ExchangeFailed, false, err)
	}
	m.metrics.RecordAuthAttempt("oauth", "ok")
	return sess, nil
}

// CurrentSession returns the session of the context, or nil when it is not logged in.
// Only the exact marker value "true" together with a non-empty email counts.
// A live session has its marker expiry restarted.
func (m *SessionManager) CurrentSession(ctx context.Context, store drepo.SessionStore) (*models.Session, error) {
	markers, err := store.GetMany(ctx, models.MarkerLoggedIn, models.MarkerUserEmail, models.MarkerIssuedAt)
	if err != nil {
		return nil, err
	}
	email := markers[models.MarkerUserEmail]
	if markers[models.MarkerLoggedIn] != models.LoggedInValue || email == "" {
		return nil, nil
	}

	if err := store.Touch(ctx, models.SessionMarkers...); err != nil {
		m.logger.Warn("session expiry not extended", applogger.String("email", email), applogger.Error(err))
	}

	sess := &models.Session{
		Email:           email,
		IsAuthenticated: true,
		DisplayName:     m.RefreshDisplayName(ctx, email),
	}
	if t, err := time.Parse(time.RFC3339Nano, markers[models.MarkerIssuedAt]); err == nil {
		sess.IssuedAt = t
	}
	return sess, nil
}

// Logout clears every marker. Calling it on a logged-out context is a no-op.
func (m *SessionManager) Logout(ctx context.Context, store drepo.SessionStore) error {
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RefreshDisplayName resolves the name shown for email: the stored username, else the
// local part of the email, else "User". Lookup errors fall back the same way.
func (m *SessionManager) RefreshDisplayName(ctx context.Context, email string) string {
	p, err := m.profiles.FindByEmail(ctx, email)
	if err != nil {
		m.logger.Warn("profile lookup failed", applogger.String("email", email), applogger.Error(err))
	} else if p != nil && strings.TrimSpace(p.Username) != "" {
		return strings.TrimSpace(p.Username)
	}

	if local := util.EmailLocalPart(email); local != "" {
		return local
	}
	return models.DefaultDisplayName
}

// establish writes the markers. isLoggedIn goes last so a partial write never reads as authenticated.
func (m *SessionManager) establish(ctx context.Context, store drepo.SessionStore, id *models.Identity) (*models.Session, error) {
	issued := m.now().UTC()

	writes := []marker{
		{models.MarkerUserEmail, id.Email},
		{models.MarkerIssuedAt, issued.Format(time.RFC3339Nano)},
	}
	var stale []string
	if id.AccessToken != "" {
		writes = append(writes, marker{models.MarkerAccessToken, id.AccessToken})
	} else {
		stale = append(stale, models.MarkerAccessToken)
	}
	if id.RefreshToken != "" {
		writes = append(writes, marker{models.MarkerRefreshToken, id.RefreshToken})
	} else {
		stale = append(stale, models.MarkerRefreshToken)
	}
	writes = append(writes, marker{models.MarkerLoggedIn, models.LoggedInValue})

	// Tokens of an earlier login on this context must not outlive it.
	if err := store.Delete(ctx, stale...); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	for _, w := range writes {
		if err := store.Set(ctx, w.key, w.value); err != nil {
			return nil, fmt.Errorf("persist session: %w", err)
		}
	}

	return &models.Session{
		Email:           id.Email,
		DisplayName:     m.RefreshDisplayName(ctx, id.Email),
		IsAuthenticated: true,
		IssuedAt:        issued,
	}, nil
}

func (m *SessionManager) recordAuth(flow string, err error) {
	outcome := "ok"
	if kind, ok := errs.AuthKindOf(err); ok {
		outcome = string(kind)
	} else if err != nil {
		outcome = "error"
	}
	m.metrics.RecordAuthAttempt(flow, outcome)
}

// asAuthError keeps *errs.AuthError values and classifies anything else as a provider failure.
func asAuthError(err error) error {
	var ae *errs.AuthError
	if errors.As(err, &ae) {
		return err
	}
	return errs.NewAuthError(errs.ProviderError, err)
}
