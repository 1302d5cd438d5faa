package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Use a 20 EMA.  "}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "sk-test", "gpt-4o")
	require.True(t, c.Configured())

	text, err := c.Complete(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Use a 20 EMA.", text)
}

func TestClient_NotConfigured(t *testing.T) {
	c := New("http://unused", "", "gpt-4o")
	assert.False(t, c.Configured())

	_, err := c.Complete(context.Background(), "sys", "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "sk-bad", "gpt-4o").Complete(context.Background(), "s", "p")
	assert.Error(t, err)
}
