package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

func TestAuthService_SendMagicLink(t *testing.T) {
	tests := []struct {
		name          string
		configured    bool
		email         string
		setupMock     func(*MockAuthClient, *MockSessionStore)
		expectedError error
	}{
		{
			name:          "not configured",
			configured:    false,
			email:         "me@example.com",
			setupMock:     func(*MockAuthClient, *MockSessionStore) {},
			expectedError: apperrors.ErrNotConfigured,
		},
		{
			name:          "empty email",
			configured:    true,
			email:         "  ",
			setupMock:     func(*MockAuthClient, *MockSessionStore) {},
			expectedError: apperrors.ErrEmailRequired,
		},
		{
			name:       "successful send",
			configured: true,
			email:      "me@example.com",
			setupMock: func(c *MockAuthClient, s *MockSessionStore) {
				s.On("SaveVerifier", mock.Anything, "b1", mock.AnythingOfType("string")).Return(nil).Once()
				c.On("SignInWithOTP", mock.Anything, mock.AnythingOfType("supabase.OTPRequest")).Return(nil).Once()
			},
		},
		{
			name:       "backend message surfaces verbatim",
			configured: true,
			email:      "me@example.com",
			setupMock: func(c *MockAuthClient, s *MockSessionStore) {
				s.On("SaveVerifier", mock.Anything, "b1", mock.AnythingOfType("string")).Return(nil).Once()
				c.On("SignInWithOTP", mock.Anything, mock.Anything).
					Return(&supabase.Error{Status: 429, Message: "Email rate limit exceeded"}).Once()
			},
			expectedError: &supabase.Error{Status: 429, Message: "Email rate limit exceeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockAuthClient{configured: tt.configured}
			store := new(MockSessionStore)
			tracker := new(MockSessionTracker)
			tt.setupMock(client, store)

			svc := NewAuthService(client, store, tracker)
			err := svc.SendMagicLink(context.Background(), "b1", tt.email, "http://app.test/confirm")

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
			client.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_SendMagicLink_ChallengeMatchesStoredVerifier(t *testing.T) {
	client := &MockAuthClient{configured: true}
	store := new(MockSessionStore)

	var verifier string
	store.On("SaveVerifier", mock.Anything, "b1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { verifier = args.String(2) }).Return(nil)
	client.On("SignInWithOTP", mock.Anything, mock.MatchedBy(func(in supabase.OTPRequest) bool {
		sum := sha256.Sum256([]byte(verifier))
		return in.Email == "me@example.com" &&
			in.RedirectTo == "http://app.test/confirm" &&
			in.CodeChallenge == base64.RawURLEncoding.EncodeToString(sum[:])
	})).Return(nil).Once()

	svc := NewAuthService(client, store, new(MockSessionTracker))
	require.NoError(t, svc.SendMagicLink(context.Background(), "b1", "me@example.com", "http://app.test/confirm"))
	client.AssertNumberOfCalls(t, "SignInWithOTP", 1)
}

func TestAuthService_Confirm(t *testing.T) {
	sess := &model.Session{AccessToken: "a", User: model.User{ID: "u1", Email: "me@example.com"}}

	t.Run("pkce code", func(t *testing.T) {
		client := &MockAuthClient{configured: true}
		store := new(MockSessionStore)
		tracker := new(MockSessionTracker)
		store.On("TakeVerifier", mock.Anything, "b1").Return("verifier", nil)
		client.On("ExchangeCodeForSession", mock.Anything, "code-1", "verifier").Return(sess, nil)
		tracker.On("Establish", mock.Anything, "b1", sess).Return(nil)

		got, err := NewAuthService(client, store, tracker).Confirm(context.Background(), "b1", ConfirmInput{Code: "code-1"})
		require.NoError(t, err)
		assert.Same(t, sess, got)
		tracker.AssertExpectations(t)
	})

	t.Run("token hash", func(t *testing.T) {
		client := &MockAuthClient{configured: true}
		tracker := new(MockSessionTracker)
		client.On("VerifyTokenHash", mock.Anything, "hash", "magiclink").Return(sess, nil)
		tracker.On("Establish", mock.Anything, "b1", sess).Return(nil)

		got, err := NewAuthService(client, new(MockSessionStore), tracker).
			Confirm(context.Background(), "b1", ConfirmInput{TokenHash: "hash", Type: "magiclink"})
		require.NoError(t, err)
		assert.Same(t, sess, got)
	})

	t.Run("link opened elsewhere", func(t *testing.T) {
		client := &MockAuthClient{configured: true}
		store := new(MockSessionStore)
		store.On("TakeVerifier", mock.Anything, "b1").Return("", nil)

		_, err := NewAuthService(client, store, new(MockSessionTracker)).
			Confirm(context.Background(), "b1", ConfirmInput{Code: "code-1"})
		assert.ErrorIs(t, err, apperrors.ErrVerifierMissing)
		client.AssertNotCalled(t, "ExchangeCodeForSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error description is verbatim", func(t *testing.T) {
		_, err := NewAuthService(&MockAuthClient{configured: true}, new(MockSessionStore), new(MockSessionTracker)).
			Confirm(context.Background(), "b1", ConfirmInput{ErrorDescription: "Email link is invalid or has expired"})
		assert.EqualError(t, err, "Email link is invalid or has expired")
	})

	t.Run("no parameters reports current session", func(t *testing.T) {
		tracker := new(MockSessionTracker)
		tracker.On("Current", mock.Anything, "b1").Return(nil)

		got, err := NewAuthService(&MockAuthClient{}, new(MockSessionStore), tracker).
			Confirm(context.Background(), "b1", ConfirmInput{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAuthService_SignOut(t *testing.T) {
	sess := &model.Session{AccessToken: "a", User: model.User{ID: "u1"}}

	client := &MockAuthClient{configured: true}
	tracker := new(MockSessionTracker)
	tracker.On("Current", mock.Anything, "b1").Return(sess)
	tracker.On("End", mock.Anything, "b1").Return()
	client.On("SignOut", mock.Anything, "a").Return(errors.New("network down"))

	err := NewAuthService(client, new(MockSessionStore), tracker).SignOut(context.Background(), "b1")
	assert.EqualError(t, err, "network down")
	tracker.AssertCalled(t, "End", mock.Anything, "b1")

	signedOut := new(MockSessionTracker)
	signedOut.On("Current", mock.Anything, "b2").Return(nil)
	signedOut.On("End", mock.Anything, "b2").Return()
	quiet := &MockAuthClient{configured: true}
	require.NoError(t, NewAuthService(quiet, new(MockSessionStore), signedOut).SignOut(context.Background(), "b2"))
	quiet.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
}
