package view

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/service"
	"mealtap/internal/theme"
)

func TestLiveness_DropsUpdatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	live := NewLiveness(ctx)
	defer live.Release()

	assert.True(t, live.Apply(func() {}))
	cancel()
	assert.False(t, live.Alive())

	applied := false
	assert.False(t, live.Apply(func() { applied = true }))
	assert.False(t, applied)
}

func TestLiveness_ConcurrentUnmount(t *testing.T) {
	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		live := NewLiveness(ctx)

		var mu sync.Mutex
		state := 0
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			live.Apply(func() {
				mu.Lock()
				state++
				mu.Unlock()
			})
		}()
		go func() {
			defer wg.Done()
			cancel()
		}()
		wg.Wait()

		assert.Eventually(t, func() bool { return !live.Alive() }, time.Second, time.Millisecond)
		assert.False(t, live.Apply(func() { state++ }))
		assert.LessOrEqual(t, state, 1)
		live.Release()
	}
}

type stubLister struct {
	entries []model.MealEntry
	err     error
	before  func()
	calls   int
}

func (s *stubLister) ListRecent(context.Context, *model.Session) ([]model.MealEntry, error) {
	s.calls++
	if s.before != nil {
		s.before()
	}
	return s.entries, s.err
}

func TestLoadLog(t *testing.T) {
	sess := &model.Session{AccessToken: "tok", User: model.User{ID: "u1"}}
	entries := []model.MealEntry{{ID: "m1", CapturedAt: time.Now()}}

	t.Run("applies result while mounted", func(t *testing.T) {
		st := LoadLog(context.Background(), &stubLister{entries: entries}, sess, zap.NewNop())
		assert.False(t, st.Loading)
		assert.True(t, st.SignedIn)
		assert.Len(t, st.Entries, 1)
	})

	t.Run("error shown inline", func(t *testing.T) {
		st := LoadLog(context.Background(), &stubLister{err: errors.New("JWT expired")}, sess, zap.NewNop())
		assert.False(t, st.Loading)
		assert.Equal(t, "JWT expired", st.Error)
		assert.Empty(t, st.Entries)
	})

	t.Run("result after unmount is dropped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		lister := &stubLister{entries: entries, before: cancel}

		st := LoadLog(ctx, lister, sess, zap.NewNop())
		assert.Equal(t, 1, lister.calls)
		assert.True(t, st.Loading)
		assert.Empty(t, st.Entries)
	})
}

func TestHomeState_InputClearedOnlyOnSuccess(t *testing.T) {
	st := NewHomeState(nil)
	assert.Equal(t, model.StatusSignedOut, st.Status)

	st.LinkFailed("me@example.com", errors.New("Email rate limit exceeded"))
	assert.Equal(t, "me@example.com", st.Email)
	assert.Equal(t, "Email rate limit exceeded", st.Error)
	assert.Empty(t, st.SentTo)

	st.LinkSent("me@example.com")
	assert.Empty(t, st.Email)
	assert.Empty(t, st.Error)
	assert.Equal(t, "me@example.com", st.SentTo)
}

func TestUploadState_StepError(t *testing.T) {
	var st UploadState
	st.CaptureDone(nil, &service.StepError{Step: service.StepUpload, Err: apperrors.ErrPhotoExists})
	assert.Equal(t, "upload", st.FailedStep)
	assert.Equal(t, apperrors.ErrPhotoExists.Error(), st.Error)
}

func render(t *testing.T, screen string, page Page) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, screen, page, nil))
	return buf.String()
}

func TestRenderer_Theme(t *testing.T) {
	dark := render(t, ScreenHome, Page{Title: "Home", Active: "/", Appearance: theme.Appearance{Preference: theme.Dark}, Data: NewHomeState(nil)})
	assert.Contains(t, dark, `<html lang="en" data-theme="dark">`)

	system := render(t, ScreenHome, Page{Title: "Home", Active: "/", Appearance: theme.Appearance{Preference: theme.System}, Data: NewHomeState(nil)})
	assert.Contains(t, system, `<html lang="en">`)
	assert.NotContains(t, system, "data-theme=")
}

func TestRenderer_Navigation(t *testing.T) {
	out := render(t, ScreenLog, Page{Title: "Log", Active: "/log", Data: LogState{Entries: []model.MealEntry{}}})
	for _, tab := range Tabs {
		assert.Contains(t, out, `href="`+tab.Path+`"`)
	}
	assert.Contains(t, out, `class="tab active">Log<`)
	assert.Contains(t, out, "No meals yet.")
}

func TestRenderer_Screens(t *testing.T) {
	label := "toast"
	sess := &model.Session{User: model.User{ID: "u1", Email: "me@example.com"}}

	out := render(t, ScreenLog, Page{Data: LogState{SignedIn: true, Entries: []model.MealEntry{
		{ID: "m1", CapturedAt: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC), Label: &label, Calories: decimal.NewNullDecimal(decimal.NewFromInt(210))},
		{ID: "m2", CapturedAt: time.Date(2025, 4, 30, 9, 30, 0, 0, time.UTC)},
	}}})
	assert.Contains(t, out, "toast")
	assert.Contains(t, out, "210 kcal")
	assert.Contains(t, out, "<strong>meal</strong>")
	assert.Contains(t, out, "0 kcal")

	out = render(t, ScreenConfirm, Page{Live: true, Data: NewConfirmState(sess, nil)})
	assert.Contains(t, out, "Signed in as me@example.com")
	assert.Contains(t, out, "/static/session.js")

	out = render(t, ScreenUpload, Page{Data: UploadState{SignedIn: true, FailedStep: "upload", Error: "photo already exists at path"}})
	assert.Contains(t, out, "Error at upload: photo already exists at path")

	st := NewSettingsState(sess)
	st.Defaults = model.DefaultUserDefaults("u1")
	out = render(t, ScreenSettings, Page{Appearance: theme.Appearance{Preference: theme.Light}, Data: st})
	assert.Contains(t, out, `value="light" checked`)
	assert.Contains(t, out, `value="UTC"`)
	assert.Contains(t, out, `<option value="metric" selected>`)
}

func TestRenderer_UploadFormFields(t *testing.T) {
	out := render(t, ScreenUpload, Page{Data: UploadState{SignedIn: true}})
	for _, field := range []string{"photo", "label", "notes", "calories", "protein_g", "carbs_g", "fat_g"} {
		assert.Contains(t, out, `name="`+field+`"`, field)
	}
	assert.Contains(t, out, `<textarea name="notes"`)

	out = render(t, ScreenUpload, Page{Data: UploadState{}})
	assert.NotContains(t, out, `name="photo"`)
	assert.Contains(t, out, "Sign in on")
}
