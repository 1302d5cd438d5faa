package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	xhttp "AlgoSensei/pkg/http"
)

// ProfileClient implements repository.ProfileDirectory over the PostgREST endpoint.
type ProfileClient struct {
	http  *xhttp.Client
	table string
}

// NewProfileClient creates a profile directory for table.
func NewProfileClient(client *xhttp.Client, table string) *ProfileClient {
	return &ProfileClient{http: client, table: table}
}

func (c *ProfileClient) path() string {
	return "/rest/v1/" + c.table
}

func (c *ProfileClient) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var rows []profileRow
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.path(),
		QueryParams: map[string][]string{
			"email":  {"eq." + email},
			"select": {"username"},
			"limit":  {"1"},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &models.Profile{Email: email, Username: rows[0].Username}, nil
}

func (c *ProfileClient) Create(ctx context.Context, p *models.Profile) error {
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.path(),
		Headers: map[string]string{"Prefer": "return=minimal"},
		Body: []profileRow{{
			Email:    p.Email,
			Username: p.Username,
			Password: p.PasswordHash,
		}},
	}, nil)
	if err != nil {
		if se, ok := xhttp.AsStatusError(err); ok && isConflict(se) {
			return errs.NewAuthError(errs.EmailTaken, err)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func isConflict(se *xhttp.StatusError) bool {
	if se.StatusCode == http.StatusConflict {
		return true
	}
	body := string(se.Body)
	return strings.Contains(body, "23505") || strings.Contains(body, "already exists")
}
