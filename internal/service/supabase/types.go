package supabase

import "strings"

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// tokenResponse covers both token grants and signup. Signup without a live
// session returns the user object at the top level.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *user  `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r *tokenResponse) identity() (id, email string) {
	if r.User != nil {
		return r.User.ID, r.User.Email
	}
	return r.ID, r.Email
}

// apiError is the auth server error body. Older deployments use error/error_description,
// newer ones error_code/msg.
type apiError struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func (e apiError) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return e.Err
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message} {
		if s != "" {
			return strings.ToLower(s)
		}
	}
	return ""
}

type profileRow struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}
