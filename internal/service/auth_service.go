package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealtap/internal/auth"
	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

// AuthClient is the part of the backend client used for passwordless sign-in.
type AuthClient interface {
	Configured() bool
	SignInWithOTP(ctx context.Context, in supabase.OTPRequest) error
	ExchangeCodeForSession(ctx context.Context, authCode, verifier string) (*model.Session, error)
	VerifyTokenHash(ctx context.Context, tokenHash, typ string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionTracker resolves and changes the session bound to a browser.
type SessionTracker interface {
	Current(ctx context.Context, sid string) *model.Session
	Establish(ctx context.Context, sid string, sess *model.Session) error
	End(ctx context.Context, sid string)
}

// ConfirmInput carries the query parameters of a magic-link redirect.
type ConfirmInput struct {
	Code             string
	TokenHash        string
	Type             string
	ErrorDescription string
}

// AuthService handles magic-link sign-in for a browser.
type AuthService interface {
	SendMagicLink(ctx context.Context, sid, email, redirectTo string) error
	Confirm(ctx context.Context, sid string, in ConfirmInput) (*model.Session, error)
	SignOut(ctx context.Context, sid string) error
	Current(ctx context.Context, sid string) *model.Session
}

type authService struct {
	client  AuthClient
	store   auth.SessionStoreInterface
	tracker SessionTracker
}

// NewAuthService creates a new authentication service.
func NewAuthService(client AuthClient, store auth.SessionStoreInterface, tracker SessionTracker) AuthService {
	return &authService{
		client:  client,
		store:   store,
		tracker: tracker,
	}
}

// SendMagicLink asks the backend to email a sign-in link to email. Each
// successful call sends exactly one email; repeated calls are not deduplicated.
func (s *authService) SendMagicLink(ctx context.Context, sid, email, redirectTo string) error {
	if !s.client.Configured() {
		return apperrors.ErrNotConfigured
	}
	if strings.TrimSpace(email) == "" {
		return apperrors.ErrEmailRequired
	}

	verifier, err := auth.NewVerifier()
	if err != nil {
		return err
	}
	if err := s.store.SaveVerifier(ctx, sid, verifier); err != nil {
		return fmt.Errorf("store verifier: %w", err)
	}

	return s.client.SignInWithOTP(ctx, supabase.OTPRequest{
		Email:         email,
		RedirectTo:    redirectTo,
		CodeChallenge: auth.Challenge(verifier),
		CreateUser:    true,
	})
}

// Confirm redeems the redirect parameters of a magic link and binds the
// resulting session to the browser. Without parameters it reports the current
// session.
func (s *authService) Confirm(ctx context.Context, sid string, in ConfirmInput) (*model.Session, error) {
	if in.ErrorDescription != "" {
		return nil, errors.New(in.ErrorDescription)
	}
	if in.Code == "" && in.TokenHash == "" {
		return s.tracker.Current(ctx, sid), nil
	}
	if !s.client.Configured() {
		return nil, apperrors.ErrNotConfigured
	}

	var (
		sess *model.Session
		err  error
	)
	if in.Code != "" {
		verifier, verr := s.store.TakeVerifier(ctx, sid)
		if verr != nil {
			return nil, fmt.Errorf("load verifier: %w", verr)
		}
		if verifier == "" {
			return nil, apperrors.ErrVerifierMissing
		}
		sess, err = s.client.ExchangeCodeForSession(ctx, in.Code, verifier)
	} else {
		sess, err = s.client.VerifyTokenHash(ctx, in.TokenHash, in.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := s.tracker.Establish(ctx, sid, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// SignOut ends the browser's session locally and revokes it remotely. The
// local session is always cleared; a remote failure is still returned.
func (s *authService) SignOut(ctx context.Context, sid string) error {
	sess := s.tracker.Current(ctx, sid)
	s.tracker.End(ctx, sid)
	if sess == nil {
		return nil
	}
	return s.client.SignOut(ctx, sess.AccessToken)
}

// Current returns the browser's session, nil when signed out.
func (s *authService) Current(ctx context.Context, sid string) *model.Session {
	return s.tracker.Current(ctx, sid)
}
