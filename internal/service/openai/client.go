package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	xhttp "AlgoSensei/pkg/http"
)

const completionsPath = "/chat/completions"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("openai: api key not configured")

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client implements repository.ChatCompleter against an OpenAI-compatible API.
type Client struct {
	http   *xhttp.Client
	model  string
	apiKey string
}

// New creates a chat client. baseURL is e.g. https://api.openai.com/v1.
func New(baseURL, apiKey, model string, opts ...xhttp.ClientOption) *Client {
	base := []xhttp.ClientOption{
		xhttp.WithBaseURL(baseURL),
		xhttp.WithHeader("Authorization", bearer(apiKey)),
	}
	return &Client{
		http:   xhttp.NewClient(append(base, opts...)...),
		model:  model,
		apiKey: apiKey,
	}
}

func bearer(key string) string {
	if key == "" {
		return ""
	}
	return "Bearer " + key
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends a single system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var resp chatResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    completionsPath,
		Body: chatRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
