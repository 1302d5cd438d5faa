package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) (*AuthClient, *ProfileClient) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	hc := NewHTTPClient(srv.URL, "anon-key")
	return NewAuthClient(hc, nil), NewProfileClient(hc, "users")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword_Success(t *testing.T) {
	auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "trader@example.com", body["email"])

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token":  "at",
			"refresh_token": "rt",
			"user":          map[string]string{"id": "u1", "email": "trader@example.com"},
		})
	})

	id, err := auth.SignInWithPassword(context.Background(), "trader@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "trader@example.com", id.Email)
	assert.Equal(t, "at", id.AccessToken)
	assert.True(t, id.HasSession())
}

func TestSignInWithPassword_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]interface{}
		want   error
	}{
		{"bad password", http.StatusBadRequest, map[string]interface{}{"error": "invalid_grant", "error_description": "Invalid login credentials"}, errs.ErrInvalidCredentials},
		{"unknown user", http.StatusBadRequest, map[string]interface{}{"error_code": "user_not_found"}, errs.ErrUserNotFound},
		{"server down", http.StatusServiceUnavailable, map[string]interface{}{"msg": "unavailable"}, errs.ErrProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := auth.SignInWithPassword(context.Background(), "a@example.com", "pw")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignInWithPassword_TransportFailureIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	auth := NewAuthClient(NewHTTPClient(srv.URL, "k"), nil)

	_, err := auth.SignInWithPassword(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, errs.ErrProvider)
}

func TestSignUp_PendingVerification(t *testing.T) {
	auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"id": "u2", "email": "new@example.com"})
	})

	id, err := auth.SignUp(context.Background(), "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", id.Email)
	assert.False(t, id.HasSession())
}

func TestSignUp_AlreadyRegistered(t *testing.T) {
	auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"})
	})

	_, err := auth.SignUp(context.Background(), "dup@example.com", "secret1")
	assert.ErrorIs(t, err, errs.ErrEmailTaken)
}

func TestExchangeCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "abc", body["auth_code"])
			assert.Equal(t, "ver", body["code_verifier"])
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token": "at", "refresh_token": "rt",
				"user": map[string]string{"email": "o@example.com"},
			})
		})
		id, err := auth.ExchangeCode(context.Background(), "abc", "ver")
		require.NoError(t, err)
		assert.Equal(t, "o@example.com", id.Email)
	})

	t.Run("rejected", func(t *testing.T) {
		auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		})
		_, err := auth.ExchangeCode(context.Background(), "bad", "")
		var oe *errs.OAuthError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, errs.ExchangeFailed, oe.Kind)
		assert.True(t, oe.Rejected)
	})

	t.Run("no identity", func(t *testing.T) {
		auth, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{})
		})
		_, err := auth.ExchangeCode(context.Background(), "abc", "")
		var oe *errs.OAuthError
		require.ErrorAs(t, err, &oe)
		assert.False(t, oe.Rejected)
	})
}

func TestProfileClient_FindByEmail(t *testing.T) {
	_, profiles := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "username", r.URL.Query().Get("select"))
		if r.URL.Query().Get("email") == "eq.known@example.com" {
			writeJSON(w, http.StatusOK, []map[string]string{{"username": "satoshi"}})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]string{})
	})

	p, err := profiles.FindByEmail(context.Background(), "known@example.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "satoshi", p.Username)

	p, err = profiles.FindByEmail(context.Background(), "unknown@example.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileClient_CreateConflict(t *testing.T) {
	_, profiles := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key value"})
	})

	err := profiles.Create(context.Background(), &models.Profile{Email: "dup@example.com", Username: "dup"})
	assert.ErrorIs(t, err, errs.ErrEmailTaken)
}
