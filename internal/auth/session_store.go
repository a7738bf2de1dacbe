package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mealtap/internal/cache"
	"mealtap/internal/model"
)

const (
	sessionKeyPrefix  = "session:"
	verifierKeyPrefix = "pkce:"

	// SessionTTL bounds how long a browser stays bound to a backend session.
	SessionTTL = 30 * 24 * time.Hour
	// VerifierTTL bounds how long a sent magic link can be redeemed by this browser.
	VerifierTTL = time.Hour
)

// SessionStoreInterface defines storage of backend sessions keyed by browser id.
type SessionStoreInterface interface {
	SaveSession(ctx context.Context, sid string, s *model.Session) error
	LoadSession(ctx context.Context, sid string) (*model.Session, error)
	DeleteSession(ctx context.Context, sid string) error
	SaveVerifier(ctx context.Context, sid, verifier string) error
	TakeVerifier(ctx context.Context, sid string) (string, error)
}

// SessionStore keeps sessions and PKCE verifiers in Redis.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// SaveSession stores the session for the browser.
func (s *SessionStore) SaveSession(ctx context.Context, sid string, sess *model.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sid, payload, SessionTTL)
}

// LoadSession returns the stored session, or nil when there is none.
func (s *SessionStore) LoadSession(ctx context.Context, sid string) (*model.Session, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sid)
	if err != nil || data == nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes the browser's session.
func (s *SessionStore) DeleteSession(ctx context.Context, sid string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sid)
}

// SaveVerifier remembers the PKCE verifier of the last link sent from this browser.
func (s *SessionStore) SaveVerifier(ctx context.Context, sid, verifier string) error {
	return s.cache.Set(ctx, verifierKeyPrefix+sid, []byte(verifier), VerifierTTL)
}

// TakeVerifier returns and forgets the browser's PKCE verifier.
func (s *SessionStore) TakeVerifier(ctx context.Context, sid string) (string, error) {
	data, err := s.cache.GetDel(ctx, verifierKeyPrefix+sid)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
