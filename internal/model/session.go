package model

import "time"

// AuthStatus is the derived sign-in state shown to the user.
type AuthStatus string

const (
	StatusSignedIn  AuthStatus = "signed in"
	StatusSignedOut AuthStatus = "signed out"
)

// User identifies the signed-in principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the backend session bound to one browser.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
// A small skew is applied so a token is refreshed slightly before it lapses.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == 0 {
		return false
	}
	return now.Add(10 * time.Second).Unix() >= s.ExpiresAt
}

// Label returns the email when known, otherwise the user id.
func (s *Session) Label() string {
	if s == nil {
		return ""
	}
	if s.User.Email != "" {
		return s.User.Email
	}
	return s.User.ID
}

// StatusOf derives the sign-in status from an optional session.
func StatusOf(s *Session) AuthStatus {
	if s == nil {
		return StatusSignedOut
	}
	return StatusSignedIn
}
