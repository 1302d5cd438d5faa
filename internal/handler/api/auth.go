package api

import (
	"net/http"
	"net/url"
	"strings"

	"AlgoSensei/internal/domain/models"
	"AlgoSensei/internal/service/ratelimit"
	"AlgoSensei/internal/usecase"
	xhttp "AlgoSensei/pkg/http"
	applogger "AlgoSensei/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	codeVerifierCookie = "sb-code-verifier"
	loginPath          = "/login"
	dashboardPath      = "/dashboard"
)

// AuthHandler serves login, signup, logout, session and the OAuth callback.
type AuthHandler struct {
	logger   *applogger.Logger
	sessions *usecase.SessionManager
	cookie   *SessionCookie
	limiter  *ratelimit.Limiter
}

func NewAuthHandler(logger *applogger.Logger, sessions *usecase.SessionManager, cookie *SessionCookie, limiter *ratelimit.Limiter) *AuthHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &AuthHandler{logger: logger, sessions: sessions, cookie: cookie, limiter: limiter}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/login", h.Login)
	g.POST("/signup", h.SignUp)
	g.POST("/logout", h.Logout)
	g.GET("/session", h.Session)

	e.GET("/auth/callback", h.OAuthCallback)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	email := strings.TrimSpace(req.Email)

	if h.limiter != nil && !h.limiter.Allow(strings.ToLower(email)+"|"+c.RealIP()) {
		h.logger.Warn("login throttled", applogger.String("email", email), applogger.String("ip", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(msgTooManyAttempts))
	}

	sess, err := h.sessions.Login(c.Request().Context(), h.cookie.Ensure(c), email, req.Password)
	if err != nil {
		h.logger.Info("login failed", applogger.String("email", email), applogger.Error(err))
		return xhttp.AppErrorResponse(c, authAppError(err))
	}
	return xhttp.SuccessResponse(c, sess)
}

type signUpResponse struct {
	Session              *models.Session `json:"session,omitempty"`
	VerificationRequired bool            `json:"verificationRequired"`
	Message              string          `json:"message,omitempty"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	req := &models.SignUpRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sess, err := h.sessions.SignUp(c.Request().Context(), h.cookie.Ensure(c),
		strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.Username))
	if err != nil {
		h.logger.Info("signup failed", applogger.String("email", req.Email), applogger.Error(err))
		return xhttp.AppErrorResponse(c, authAppError(err))
	}
	if sess == nil {
		return xhttp.AcceptedResponse(c, signUpResponse{VerificationRequired: true, Message: msgVerifyEmail})
	}
	return xhttp.CreatedResponse(c, signUpResponse{Session: sess})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if store, ok := h.cookie.Existing(c); ok {
		if err := h.sessions.Logout(c.Request().Context(), store); err != nil {
			h.logger.Error("logout failed", applogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError(msgTryAgain).WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]bool{"isAuthenticated": false})
}

func (h *AuthHandler) Session(c echo.Context) error {
	var sess *models.Session
	if store, ok := h.cookie.Existing(c); ok {
		var err error
		sess, err = h.sessions.CurrentSession(c.Request().Context(), store)
		if err != nil {
			h.logger.Error("session read failed", applogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError(msgTryAgain).WithError(err))
		}
	}
	if sess == nil {
		return xhttp.UnauthorizedResponse(c, map[string]string{
			"message":  msgNotAuthenticated,
			"redirect": loginPath,
		})
	}
	return xhttp.SuccessResponse(c, sess)
}

// OAuthCallback completes the provider redirect and always answers with a 302.
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	var verifier string
	if ck, err := c.Cookie(codeVerifierCookie); err == nil {
		verifier = ck.Value
	}

	_, err := h.sessions.CompleteOAuth(c.Request().Context(), h.cookie.Ensure(c), c.QueryParam("code"), verifier)
	if err != nil {
		reason := oauthRedirectReason(err)
		h.logger.Warn("oauth callback failed", applogger.String("reason", reason), applogger.Error(err))
		return c.Redirect(http.StatusFound, loginPath+"?error="+url.QueryEscape(reason))
	}
	return c.Redirect(http.StatusFound, dashboardPath+"?oauth_success=true")
}
