package api

import (
	"errors"
	"net/http"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/usecase"
	xhttp "AlgoSensei/pkg/http"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgUserNotFound       = "No account found with this email."
	msgEmailTaken         = "A user with this email already exists."
	msgTryAgain           = "Something went wrong. Please try again."
	msgProfileSaveFailed  = "Signup succeeded but failed to save user details."
	msgTooManyAttempts    = "Too many login attempts. Please wait a moment and try again."
	msgNotAuthenticated   = "Not authenticated"
	msgVerifyEmail        = "A verification link has been sent to your email. Please verify before logging in."
	msgMarketUnavailable  = "Market data is temporarily unavailable."
	msgMalformedMarket    = "Market data provider returned an unexpected response."
)

func authAppError(err error) *xhttp.AppError {
	kind, _ := errs.AuthKindOf(err)
	switch kind {
	case errs.InvalidCredentials:
		return xhttp.UnauthorizedError(msgInvalidCredentials).WithError(err)
	case errs.UserNotFound:
		return xhttp.NotFoundError(msgUserNotFound).WithError(err)
	case errs.EmailTaken:
		return xhttp.ConflictError(msgEmailTaken).WithError(err)
	case errs.ProfileSaveFailed:
		return xhttp.InternalError(msgProfileSaveFailed).WithError(err)
	default:
		return xhttp.BadGatewayError(msgTryAgain).WithError(err)
	}
}

func marketAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInterval), errors.Is(err, usecase.ErrInvalidLimit):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, usecase.ErrPollerStopped):
		return xhttp.NewAppError("ERR_UNAVAILABLE", "", msgMarketUnavailable, http.StatusServiceUnavailable).WithError(err)
	case errors.Is(err, errs.ErrMalformed):
		return xhttp.BadGatewayError(msgMalformedMarket).WithError(err)
	default:
		return xhttp.BadGatewayError(msgMarketUnavailable).WithError(err)
	}
}

// oauthRedirectReason maps a code exchange failure to the login page error reason.
func oauthRedirectReason(err error) string {
	var oe *errs.OAuthError
	if !errors.As(err, &oe) {
		return "session_error"
	}
	switch {
	case oe.Kind == errs.NoCode:
		return "no_code"
	case oe.Rejected:
		return "oauth_error"
	default:
		return "session_error"
	}
}
