package supabase

import (
	"context"
	"net/http"
	"net/url"

	"mealtap/internal/model"
)

// OTPRequest asks the service to email a one-time sign-in link.
type OTPRequest struct {
	Email         string
	RedirectTo    string
	CodeChallenge string
	CreateUser    bool
}

type otpBody struct {
	Email               string `json:"email"`
	CreateUser          bool   `json:"create_user"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
}

// SignInWithOTP requests a magic link for the address. The service sends
// exactly one email per successful call.
func (c *Client) SignInWithOTP(ctx context.Context, in OTPRequest) error {
	q := url.Values{}
	if in.RedirectTo != "" {
		q.Set("redirect_to", in.RedirectTo)
	}
	body := otpBody{Email: in.Email, CreateUser: in.CreateUser}
	if in.CodeChallenge != "" {
		body.CodeChallenge = in.CodeChallenge
		body.CodeChallengeMethod = "s256"
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/otp",
		query:  q,
		jsonIn: body,
	})
}

// ExchangeCodeForSession redeems a PKCE auth code from the magic-link redirect.
func (c *Client) ExchangeCodeForSession(ctx context.Context, authCode, verifier string) (*model.Session, error) {
	var s model.Session
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/token",
		query:   url.Values{"grant_type": {"pkce"}},
		jsonIn:  map[string]string{"auth_code": authCode, "code_verifier": verifier},
		jsonOut: &s,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// VerifyTokenHash redeems a token hash from an email link of the given type.
func (c *Client) VerifyTokenHash(ctx context.Context, tokenHash, typ string) (*model.Session, error) {
	if typ == "" {
		typ = "magiclink"
	}
	var s model.Session
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/verify",
		jsonIn:  map[string]string{"type": typ, "token_hash": tokenHash},
		jsonOut: &s,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RefreshSession trades a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error) {
	var s model.Session
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/v1/token",
		query:   url.Values{"grant_type": {"refresh_token"}},
		jsonIn:  map[string]string{"refresh_token": refreshToken},
		jsonOut: &s,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetUser returns the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var u model.User
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/auth/v1/user",
		token:   accessToken,
		jsonOut: &u,
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	})
}
