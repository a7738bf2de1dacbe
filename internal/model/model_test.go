package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.False(t, (*Session)(nil).Expired(now))
	assert.False(t, (&Session{}).Expired(now), "zero expiry never expires")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(5 * time.Second).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute).Unix()}).Expired(now))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSignedOut, StatusOf(nil))
	assert.Equal(t, StatusSignedIn, StatusOf(&Session{User: User{ID: "u1"}}))
}

func TestSession_Label(t *testing.T) {
	assert.Equal(t, "a@b.c", (&Session{User: User{ID: "u1", Email: "a@b.c"}}).Label())
	assert.Equal(t, "u1", (&Session{User: User{ID: "u1"}}).Label())
}

func TestMealEntry_DecodeAndDisplay(t *testing.T) {
	body := `[
		{"id":"1","captured_at":"2024-05-01T12:30:00.123456+00:00","label":"oats","calories":350.5},
		{"id":"2","captured_at":"2024-05-01T08:00:00+00:00","label":null,"calories":null}
	]`
	var entries []MealEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "oats", entries[0].DisplayLabel())
	assert.Equal(t, "350.5", entries[0].Kcal())
	assert.Equal(t, 12, entries[0].CapturedAt.UTC().Hour())

	assert.Equal(t, "meal", entries[1].DisplayLabel())
	assert.Equal(t, "0", entries[1].Kcal())
}
