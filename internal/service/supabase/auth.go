package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	xhttp "AlgoSensei/pkg/http"
	applogger "AlgoSensei/pkg/logger"
)

const (
	tokenPath  = "/auth/v1/token"
	signupPath = "/auth/v1/signup"
)

// AuthClient implements repository.AuthProvider against the Supabase GoTrue REST API.
type AuthClient struct {
	http   *xhttp.Client
	logger *applogger.Logger
}

// NewAuthClient creates an auth client. http must carry the project base URL and apikey header.
func NewAuthClient(client *xhttp.Client, logger *applogger.Logger) *AuthClient {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &AuthClient{http: client, logger: logger}
}

// NewHTTPClient builds the shared client for auth and REST calls.
func NewHTTPClient(baseURL, anonKey string, opts ...xhttp.ClientOption) *xhttp.Client {
	base := []xhttp.ClientOption{
		xhttp.WithBaseURL(baseURL),
		xhttp.WithHeader("apikey", anonKey),
	}
	if anonKey != "" {
		base = append(base, xhttp.WithHeader("Authorization", "Bearer "+anonKey))
	}
	return xhttp.NewClient(append(base, opts...)...)
}

func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	var resp tokenResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         tokenPath,
		QueryParams: map[string][]string{"grant_type": {"password"}},
		Body:        map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, classifySignIn(err)
	}

	id, addr := resp.identity()
	if addr == "" {
		addr = email
	}
	return &models.Identity{
		UserID:       id,
		Email:        addr,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (c *AuthClient) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	var resp tokenResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    signupPath,
		Body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, classifySignUp(err)
	}

	id, addr := resp.identity()
	if addr == "" {
		addr = email
	}
	return &models.Identity{
		UserID:       id,
		Email:        addr,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (c *AuthClient) ExchangeCode(ctx context.Context, code, verifier string) (*models.Identity, error) {
	var resp tokenResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         tokenPath,
		QueryParams: map[string][]string{"grant_type": {"pkce"}},
		Body:        map[string]string{"auth_code": code, "code_verifier": verifier},
	}, &resp)
	if err != nil {
		_, rejected := xhttp.AsStatusError(err)
		c.logger.Warn("oauth code exchange failed", applogger.Bool("rejected", rejected), applogger.Error(err))
		return nil, errs.NewOAuthError(errs.ExchangeFailed, rejected, err)
	}

	id, addr := resp.identity()
	if addr == "" || resp.AccessToken == "" {
		return nil, errs.NewOAuthError(errs.ExchangeFailed, false, errors.New("exchange returned no identity"))
	}
	return &models.Identity{
		UserID:       id,
		Email:        addr,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func decodeAPIError(se *xhttp.StatusError) apiError {
	var ae apiError
	_ = json.Unmarshal(se.Body, &ae)
	return ae
}

func classifySignIn(err error) error {
	se, ok := xhttp.AsStatusError(err)
	if !ok {
		return errs.NewAuthError(errs.ProviderError, err)
	}
	ae := decodeAPIError(se)
	switch {
	case se.StatusCode == http.StatusNotFound || ae.code() == "user_not_found":
		return errs.NewAuthError(errs.UserNotFound, err)
	case se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusUnauthorized:
		return errs.NewAuthError(errs.InvalidCredentials, err)
	default:
		return errs.NewAuthError(errs.ProviderError, err)
	}
}

func classifySignUp(err error) error {
	se, ok := xhttp.AsStatusError(err)
	if !ok {
		return errs.NewAuthError(errs.ProviderError, err)
	}
	ae := decodeAPIError(se)
	if ae.code() == "user_already_exists" || ae.code() == "email_exists" ||
		strings.Contains(ae.text(), "already registered") || strings.Contains(ae.text(), "already exists") {
		return errs.NewAuthError(errs.EmailTaken, err)
	}
	return errs.NewAuthError(errs.ProviderError, fmt.Errorf("signup rejected: %w", err))
}
