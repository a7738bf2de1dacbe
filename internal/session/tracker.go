package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mealtap/internal/auth"
	"mealtap/internal/model"
)

// Refresher trades a refresh token for a new session.
type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*model.Session, error)
}

// Tracker resolves the current session of a browser and announces changes.
type Tracker struct {
	store     auth.SessionStoreInterface
	refresher Refresher
	publisher Publisher
	hub       *Hub
	log       *zap.Logger
	now       func() time.Time
}

// NewTracker creates a tracker. refresher may be nil when the backend is not configured.
func NewTracker(store auth.SessionStoreInterface, refresher Refresher, publisher Publisher, hub *Hub, log *zap.Logger) *Tracker {
	return &Tracker{
		store:     store,
		refresher: refresher,
		publisher: publisher,
		hub:       hub,
		log:       log,
		now:       time.Now,
	}
}

// Current returns the browser's session, refreshing an expired one. Any
// failure is reported as no session.
func (t *Tracker) Current(ctx context.Context, sid string) *model.Session {
	if sid == "" || t.refresher == nil {
		return nil
	}
	sess, err := t.store.LoadSession(ctx, sid)
	if err != nil {
		t.log.Warn("load session", zap.String("sid", sid), zap.Error(err))
		return nil
	}
	if sess == nil || !sess.Expired(t.now()) {
		return sess
	}
	if sess.RefreshToken == "" {
		t.forget(ctx, sid)
		return nil
	}

	fresh, err := t.refresher.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		// A concurrent request may have rotated the refresh token first.
		if latest, lerr := t.store.LoadSession(ctx, sid); lerr == nil && latest != nil &&
			latest.AccessToken != sess.AccessToken && !latest.Expired(t.now()) {
			return latest
		}
		t.log.Info("session refresh failed", zap.String("sid", sid), zap.Error(err))
		t.forget(ctx, sid)
		return nil
	}
	if err := t.store.SaveSession(ctx, sid, fresh); err != nil {
		t.log.Warn("save refreshed session", zap.String("sid", sid), zap.Error(err))
	}
	t.announce(ctx, sid, fresh)
	return fresh
}

// Establish binds sess to the browser and announces the sign-in.
func (t *Tracker) Establish(ctx context.Context, sid string, sess *model.Session) error {
	if err := t.store.SaveSession(ctx, sid, sess); err != nil {
		return err
	}
	t.announce(ctx, sid, sess)
	return nil
}

// End unbinds the browser's session and announces the sign-out.
func (t *Tracker) End(ctx context.Context, sid string) {
	t.forget(ctx, sid)
}

// Watch subscribes fn to session changes of sid. Every call must be paired
// with exactly one call of the returned unsubscribe function.
func (t *Tracker) Watch(sid string, fn func(Event)) (unsubscribe func()) {
	return t.hub.Subscribe(sid, fn)
}

func (t *Tracker) forget(ctx context.Context, sid string) {
	_ = t.store.DeleteSession(ctx, sid)
	t.announce(ctx, sid, nil)
}

func (t *Tracker) announce(ctx context.Context, sid string, sess *model.Session) {
	if err := t.publisher.Publish(ctx, EventFor(sid, sess)); err != nil {
		t.log.Warn("publish session event", zap.String("sid", sid), zap.Error(err))
	}
}
