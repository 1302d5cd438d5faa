package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	mid "AlgoSensei/internal/middleware"
	"AlgoSensei/internal/repository"
	"AlgoSensei/internal/service/ratelimit"
	"AlgoSensei/internal/usecase"
	"AlgoSensei/pkg/cache"
	"AlgoSensei/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	mu       sync.Mutex
	calls    int
	signIn   func(email, password string) (*models.Identity, error)
	exchange func(code, verifier string) (*models.Identity, error)
}

func (s *stubAuth) SignInWithPassword(_ context.Context, email, password string) (*models.Identity, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.signIn(email, password)
}

func (s *stubAuth) SignUp(_ context.Context, email, _ string) (*models.Identity, error) {
	return &models.Identity{Email: email}, nil
}

func (s *stubAuth) ExchangeCode(_ context.Context, code, verifier string) (*models.Identity, error) {
	return s.exchange(code, verifier)
}

type stubProfiles struct {
	rows      map[string]*models.Profile
	createErr error
}

func (s *stubProfiles) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	return s.rows[email], nil
}

func (s *stubProfiles) Create(_ context.Context, p *models.Profile) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.rows[p.Email] = p
	return nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func appErrorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var list []struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.NotEmpty(t, list)
	return list[0].Message
}

type authFixture struct {
	e        *echo.Echo
	auth     *stubAuth
	profiles *stubProfiles
	rows     map[string]*models.Profile
	mc       *cache.MemoryCache
}

func newAuthFixture(t *testing.T, limiter *ratelimit.Limiter) *authFixture {
	t.Helper()
	auth := &stubAuth{
		signIn: func(email, password string) (*models.Identity, error) {
			if password != "hunter22" {
				return nil, errs.NewAuthError(errs.InvalidCredentials, nil)
			}
			return &models.Identity{Email: email, AccessToken: "at", RefreshToken: "rt"}, nil
		},
		exchange: func(code, verifier string) (*models.Identity, error) {
			return &models.Identity{Email: "oauth@example.com", AccessToken: "at"}, nil
		},
	}
	rows := map[string]*models.Profile{}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	profiles := &stubProfiles{rows: rows}
	sessions := usecase.NewSessionManager(auth, profiles, metrics.Nop{}, nil)
	cookie := NewSessionCookie(repository.NewCacheSessionStores(mc, time.Hour), "algosensei_sid", 0, false)

	e := echo.New()
	NewAuthHandler(nil, sessions, cookie, limiter).RegisterRoutes(e)
	return &authFixture{e: e, auth: auth, profiles: profiles, rows: rows, mc: mc}
}

func (f *authFixture) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func sidCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "algosensei_sid" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestAuth_LoginThenSessionThenLogout(t *testing.T) {
	f := newAuthFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"trader@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sid := sidCookie(t, rec)
	assert.Equal(t, http.SameSiteLaxMode, sid.SameSite)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, 7*24*3600, sid.MaxAge)

	rec = f.do(http.MethodGet, "/api/auth/session", "", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess models.Session
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &sess))
	assert.Equal(t, "trader@example.com", sess.Email)
	assert.Equal(t, "trader", sess.DisplayName)
	assert.True(t, sess.IsAuthenticated)

	for i := 0; i < 2; i++ {
		rec = f.do(http.MethodPost, "/api/auth/logout", "", sid)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = f.do(http.MethodGet, "/api/auth/session", "", sid)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestAuth_SessionWithoutCookieRedirectsToLogin(t *testing.T) {
	f := newAuthFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/auth/session", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, "/login", body["redirect"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuth_LoginErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid credentials", errs.NewAuthError(errs.InvalidCredentials, nil), http.StatusUnauthorized, msgInvalidCredentials},
		{"user not found", errs.NewAuthError(errs.UserNotFound, nil), http.StatusNotFound, msgUserNotFound},
		{"provider down", errors.New("dial tcp: connection refused"), http.StatusBadGateway, msgTryAgain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, nil)
			f.auth.signIn = func(string, string) (*models.Identity, error) { return nil, tt.err }

			rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"trader@example.com","password":"x"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, appErrorMessage(t, rec))

			rec = f.do(http.MethodGet, "/api/auth/session", "", sidCookie(t, rec))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuth_LoginValidation(t *testing.T) {
	f := newAuthFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"not-an-email","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.auth.calls)
}

func TestAuth_LoginRateLimited(t *testing.T) {
	f := newAuthFixture(t, ratelimit.New(2, time.Hour))
	body := `{"email":"Trader@Example.com","password":"wrong"}`

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/auth/login", body).Code)

	rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"trader@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, f.auth.calls)
}

func TestAuth_SignUp(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.rows["taken@example.com"] = &models.Profile{Email: "taken@example.com", Username: "t"}

	rec := f.do(http.MethodPost, "/api/auth/signup",
		`{"email":"taken@example.com","username":"tt","password":"secret1","confirmPassword":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgEmailTaken, appErrorMessage(t, rec))

	rec = f.do(http.MethodPost, "/api/auth/signup",
		`{"email":"new@example.com","username":"newbie","password":"secret1","confirmPassword":"other"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/signup",
		`{"email":"new@example.com","username":"newbie","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp signUpResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	assert.True(t, resp.VerificationRequired)
	assert.Equal(t, msgVerifyEmail, resp.Message)
	assert.Contains(t, f.rows, "new@example.com")
}

func TestAuth_SignUpProfileSaveFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.profiles.createErr = errors.New("insert failed")

	rec := f.do(http.MethodPost, "/api/auth/signup",
		`{"email":"new@example.com","username":"newbie","password":"secret1","confirmPassword":"secret1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgProfileSaveFailed, appErrorMessage(t, rec))
	assert.NotContains(t, f.rows, "new@example.com")
}

func TestAuth_OAuthCallbackRedirects(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		exchange func(code, verifier string) (*models.Identity, error)
		location string
	}{
		{
			name:     "no code",
			target:   "/auth/callback",
			location: "/login?error=no_code",
		},
		{
			name:   "provider rejected code",
			target: "/auth/callback?code=bad",
			exchange: func(string, string) (*models.Identity, error) {
				return nil, errs.NewOAuthError(errs.ExchangeFailed, true, errors.New("invalid grant"))
			},
			location: "/login?error=oauth_error",
		},
		{
			name:   "transport failure",
			target: "/auth/callback?code=abc",
			exchange: func(string, string) (*models.Identity, error) {
				return nil, errors.New("timeout")
			},
			location: "/login?error=session_error",
		},
		{
			name:   "no identity",
			target: "/auth/callback?code=abc",
			exchange: func(string, string) (*models.Identity, error) {
				return &models.Identity{}, nil
			},
			location: "/login?error=session_error",
		},
		{
			name:     "success",
			target:   "/auth/callback?code=abc",
			location: "/dashboard?oauth_success=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, nil)
			if tt.exchange != nil {
				f.auth.exchange = tt.exchange
			}
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestAuth_OAuthCallbackPassesVerifierAndLogsIn(t *testing.T) {
	f := newAuthFixture(t, nil)
	var gotVerifier string
	f.auth.exchange = func(code, verifier string) (*models.Identity, error) {
		gotVerifier = verifier
		return &models.Identity{Email: "oauth@example.com", AccessToken: "at"}, nil
	}

	rec := f.do(http.MethodGet, "/auth/callback?code=abc", "", &http.Cookie{Name: "sb-code-verifier", Value: "v123"})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "v123", gotVerifier)

	rec = f.do(http.MethodGet, "/api/auth/session", "", sidCookie(t, rec))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubSource struct {
	mu     sync.Mutex
	fail   error
	price  int64
	limits []int
}

func (s *stubSource) Ticker(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return &models.MarketSnapshot{Symbol: symbol, Price: decimal.NewFromInt(s.price), Volume24h: decimal.NewFromInt(1)}, nil
}

func (s *stubSource) Klines(_ context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()
	bars := make([]models.HistoricalBar, limit)
	for i := range bars {
		bars[i].Close = decimal.NewFromInt(int64(i + 1))
	}
	return bars, nil
}

type neverTicker struct{}

func (neverTicker) C() <-chan time.Time { return nil }
func (neverTicker) Stop()               {}

func newMarketFixture(t *testing.T, src *stubSource) (*echo.Echo, *usecase.MarketFeed) {
	t.Helper()
	poller := usecase.NewMarketPoller(src, metrics.Nop{}, nil,
		usecase.WithTicker(func(time.Duration) usecase.Ticker { return neverTicker{} }))
	board := usecase.NewSnapshotBoard(mid.NewSnapshotFanout(metrics.Nop{}), metrics.Nop{}, nil)
	feed := usecase.NewMarketFeed(poller, board, []string{"BTCUSDT", "ETHUSDT"}, 30*time.Second)
	t.Cleanup(feed.Stop)

	e := echo.New()
	NewMarketHandler(nil, feed, "1d", 30, nil).RegisterRoutes(e)
	return e, feed
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMarket_SnapshotsAndRefresh(t *testing.T) {
	src := &stubSource{price: 100}
	e, feed := newMarketFixture(t, src)

	rec := serve(e, http.MethodGet, "/api/market/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp snapshotsResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, resp.Symbols)

	assert.Equal(t, http.StatusServiceUnavailable, serve(e, http.MethodPost, "/api/market/refresh").Code)

	feed.Start(context.Background())
	require.Eventually(t, func() bool {
		_, ok := feed.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)

	src.mu.Lock()
	src.price = 200
	src.mu.Unlock()
	rec = serve(e, http.MethodPost, "/api/market/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	require.True(t, resp.Ready)
	assert.Equal(t, uint64(2), resp.Set.Sequence)
	assert.Equal(t, "200", resp.Set.Snapshots[0].Price.String())

	src.mu.Lock()
	src.fail = errs.NewFetchError(errs.MalformedResponse, "BTCUSDT", errors.New("missing lastPrice"))
	src.mu.Unlock()
	rec = serve(e, http.MethodPost, "/api/market/refresh")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	latest, _ := feed.Latest()
	assert.Equal(t, uint64(2), latest.Sequence)
}

type historyBody struct {
	Rows  []models.HistoricalBar `json:"rows"`
	Total int64                  `json:"total"`
	SMA7  *decimal.Decimal       `json:"sma7"`
	SMA25 *decimal.Decimal       `json:"sma25"`
}

func TestMarket_History(t *testing.T) {
	src := &stubSource{}
	e, _ := newMarketFixture(t, src)

	rec := serve(e, http.MethodGet, "/api/market/history?symbol=btcusdt")
	require.Equal(t, http.StatusOK, rec.Code)
	var full historyBody
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &full))
	assert.Len(t, full.Rows, 30)
	assert.Equal(t, int64(30), full.Total)
	require.NotNil(t, full.SMA7)
	require.NotNil(t, full.SMA25)
	assert.True(t, decimal.NewFromInt(27).Equal(*full.SMA7), full.SMA7.String())
	assert.True(t, decimal.NewFromInt(18).Equal(*full.SMA25), full.SMA25.String())

	rec = serve(e, http.MethodGet, "/api/market/history?symbol=BTCUSDT&interval=1h&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var short historyBody
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &short))
	assert.Len(t, short.Rows, 5)
	assert.Nil(t, short.SMA7)
	assert.Nil(t, short.SMA25)
	assert.Contains(t, rec.Body.String(), `"sma25":null`)

	src.mu.Lock()
	assert.Equal(t, []int{30, 5}, src.limits)
	src.mu.Unlock()

	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/api/market/history?symbol=BTCUSDT&interval=2d").Code)
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/api/market/history?symbol=BTCUSDT&limit=1001").Code)
	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodGet, "/api/market/history").Code)
}

func TestAdvisor_FallbackWhenUnconfigured(t *testing.T) {
	e := echo.New()
	NewAdvisorHandler(usecase.NewAdvisor(nil, metrics.Nop{}, nil)).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/api/advisor/strategy", strings.NewReader(`{"marketCondition":"bearish"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var advice models.Advice
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &advice))
	assert.Equal(t, models.AdviceSourceFallback, advice.Source)
	assert.Equal(t, usecase.FallbackStrategyAdvice("bearish"), advice.Text)

	req = httptest.NewRequest(http.MethodPost, "/api/advisor/backtest", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
