// Package view holds the per-screen state and the HTML renderer.
package view

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"mealtap/internal/model"
	"mealtap/internal/service"
	"mealtap/internal/theme"
)

// Page is what every template receives.
type Page struct {
	Title      string
	Active     string
	Appearance theme.Appearance
	// Live enables the session status stream on the page.
	Live bool
	Data any
}

// Tab is one entry of the bottom navigation.
type Tab struct {
	Path  string
	Label string
}

// Tabs are the bottom navigation entries, in order.
var Tabs = []Tab{
	{"/", "Home"},
	{"/upload", "Upload"},
	{"/log", "Log"},
	{"/settings", "Settings"},
}

// HomeState drives the home screen.
type HomeState struct {
	Status  model.AuthStatus
	Session *model.Session
	// Email is the current input value. It is cleared only after a link was sent.
	Email  string
	SentTo string
	Error  string
}

// NewHomeState builds the initial home screen for sess.
func NewHomeState(sess *model.Session) HomeState {
	return HomeState{Status: model.StatusOf(sess), Session: sess}
}

// LinkSent records a successful send.
func (s *HomeState) LinkSent(email string) {
	s.SentTo = email
	s.Email = ""
	s.Error = ""
}

// LinkFailed records a failed send, keeping the typed address.
func (s *HomeState) LinkFailed(email string, err error) {
	s.SentTo = ""
	s.Email = email
	s.Error = err.Error()
}

// ConfirmState drives the confirm screen.
type ConfirmState struct {
	Status model.AuthStatus
	Email  string
	Error  string
}

// NewConfirmState builds the confirm screen for sess.
func NewConfirmState(sess *model.Session, err error) ConfirmState {
	st := ConfirmState{Status: model.StatusOf(sess)}
	if sess != nil {
		st.Email = sess.User.Email
	}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

// UploadState drives the upload screen.
type UploadState struct {
	SignedIn   bool
	Result     *service.CaptureResult
	FailedStep string
	Error      string
}

// CaptureDone records the outcome of a capture.
func (s *UploadState) CaptureDone(res *service.CaptureResult, err error) {
	s.Result = res
	if err == nil {
		return
	}
	s.Error = err.Error()
	var stepErr *service.StepError
	if errors.As(err, &stepErr) {
		s.FailedStep = string(stepErr.Step)
		s.Error = stepErr.Err.Error()
	}
}

// SettingsState drives the settings screen.
type SettingsState struct {
	SignedIn bool
	Email    string
	Defaults *model.UserDefaults
	Units    []string
	Notice   string
	Error    string
}

// NewSettingsState builds the settings screen for sess.
func NewSettingsState(sess *model.Session) SettingsState {
	return SettingsState{
		SignedIn: sess != nil,
		Email:    sess.Label(),
		Units:    []string{model.UnitMetric, model.UnitImperial},
	}
}

// LogState drives the meal log screen.
type LogState struct {
	Loading  bool
	SignedIn bool
	Entries  []model.MealEntry
	Error    string
}

// MealLister fetches the meal log.
type MealLister interface {
	ListRecent(ctx context.Context, sess *model.Session) ([]model.MealEntry, error)
}

// LoadLog fetches the log for sess. The request context is the view lifetime:
// if it ends before the fetch resolves, the result is dropped and the state
// stays loading.
func LoadLog(ctx context.Context, meals MealLister, sess *model.Session, log *zap.Logger) LogState {
	st := LogState{Loading: true, SignedIn: sess != nil, Entries: []model.MealEntry{}}

	live := NewLiveness(ctx)
	defer live.Release()

	entries, err := meals.ListRecent(ctx, sess)
	live.Apply(func() {
		st.Loading = false
		if err != nil {
			log.Error("load meal log", zap.Error(err))
			st.Error = err.Error()
		}
		if entries != nil {
			st.Entries = entries
		}
	})
	return st
}
