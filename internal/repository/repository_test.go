package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

func newBackend(t *testing.T, h http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := supabase.New(srv.URL, "anon-key")
	require.NoError(t, err)
	return c
}

func TestMealRepository_ListRecent(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/meals", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "id,captured_at,label,calories", q.Get("select"))
		assert.Equal(t, "captured_at.desc", q.Get("order"))
		assert.Equal(t, "20", q.Get("limit"))
		_, _ = w.Write([]byte(`[
			{"id":"m2","captured_at":"2025-01-02T08:00:00Z","label":"lunch","calories":640.5},
			{"id":"m1","captured_at":"2025-01-01T08:00:00Z","label":null,"calories":null}
		]`))
	})

	entries, err := NewMealRepository(client).ListRecent(context.Background(), "user-token", 20)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lunch", entries[0].DisplayLabel())
	assert.Equal(t, "640.5", entries[0].Kcal())
	assert.Equal(t, "meal", entries[1].DisplayLabel())
	assert.Equal(t, "0", entries[1].Kcal())
}

func TestMealRepository_Create(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "id", r.URL.Query().Get("select"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "smoke-test", body["source"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"m9"}]`))
	})

	id, err := NewMealRepository(client).Create(context.Background(), "tok", &model.NewMeal{
		UserID:   "u1",
		Source:   model.MealSourceSmokeTest,
		Calories: decimal.NewNullDecimal(decimal.NewFromInt(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, "m9", id)
}

func TestMealRepository_AttachPhoto(t *testing.T) {
	var rows string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.m1", r.URL.Query().Get("id"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1/p.png", body["photo_path"])
		_, _ = w.Write([]byte(rows))
	})
	repo := NewMealRepository(client)

	rows = `[{"id":"m1"}]`
	require.NoError(t, repo.AttachPhoto(context.Background(), "tok", "m1", "u1/p.png"))

	rows = `[]`
	err := repo.AttachPhoto(context.Background(), "tok", "m1", "u1/p.png")
	assert.ErrorIs(t, err, apperrors.ErrMealNotFound)
}

func TestUserDefaultsRepository(t *testing.T) {
	var upserted map[string]any
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
			_, _ = w.Write([]byte(`[]`))
		case http.MethodPost:
			assert.Equal(t, "user_id", r.URL.Query().Get("on_conflict"))
			assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upserted))
			w.WriteHeader(http.StatusCreated)
		}
	})
	repo := NewUserDefaultsRepository(client)

	got, err := repo.Get(context.Background(), "tok", "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	target := 2100
	require.NoError(t, repo.Upsert(context.Background(), "tok", &model.UserDefaults{
		UserID: "u1", Timezone: "Europe/Paris", UnitSystem: model.UnitImperial, DailyCalorieTarget: &target,
	}))
	assert.Equal(t, "Europe/Paris", upserted["timezone"])
	assert.Equal(t, float64(2100), upserted["daily_calorie_target"])
}

func TestSupabasePhotoStore(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/storage/v1/object/meal-photos/u1/taken.png":
			assert.Equal(t, "false", r.Header.Get("x-upsert"))
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
		case "/storage/v1/object/meal-photos/u1/new.png":
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"Key":"meal-photos/u1/new.png"}`))
		case "/storage/v1/object/sign/meal-photos/u1/new.png":
			var body map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 60, body["expiresIn"])
			_, _ = w.Write([]byte(`{"signedURL":"/object/sign/meal-photos/u1/new.png?token=abc"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	store := NewSupabasePhotoStore(client, "meal-photos")

	err := store.Upload(context.Background(), "tok", "u1/taken.png", []byte{1}, "image/png")
	assert.ErrorIs(t, err, apperrors.ErrPhotoExists)

	require.NoError(t, store.Upload(context.Background(), "tok", "u1/new.png", []byte{1}, "image/png"))

	link, err := store.SignedURL(context.Background(), "tok", "u1/new.png", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, client.BaseURL()+"/storage/v1/object/sign/meal-photos/u1/new.png?token=abc", link)
}

func TestNopCaptureLogRepository(t *testing.T) {
	repo := NewNopCaptureLogRepository()
	require.NoError(t, repo.Create(context.Background(), &model.CaptureLog{UserID: "u1"}))
	logs, err := repo.ListByUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
