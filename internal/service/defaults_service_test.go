package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
)

func intPtr(v int) *int { return &v }

func TestDefaultsService_GetFallsBack(t *testing.T) {
	sess := &model.Session{AccessToken: "tok", User: model.User{ID: "u1"}}
	repo := new(MockUserDefaultsRepository)
	repo.On("Get", mock.Anything, "tok", "u1").Return(nil, nil)

	got, err := NewDefaultsService(repo).Get(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, model.UnitMetric, got.UnitSystem)
	assert.Nil(t, got.DailyCalorieTarget)

	_, err = NewDefaultsService(repo).Get(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestDefaultsService_Save(t *testing.T) {
	sess := &model.Session{AccessToken: "tok", User: model.User{ID: "u1"}}

	tests := []struct {
		name    string
		in      DefaultsInput
		wantErr bool
	}{
		{"valid", DefaultsInput{Timezone: "America/New_York", UnitSystem: "imperial", DailyCalorieTarget: intPtr(2200)}, false},
		{"no target", DefaultsInput{Timezone: "UTC", UnitSystem: "metric"}, false},
		{"unknown timezone", DefaultsInput{Timezone: "Mars/Olympus", UnitSystem: "metric"}, true},
		{"server local zone", DefaultsInput{Timezone: "Local", UnitSystem: "metric"}, true},
		{"bad unit", DefaultsInput{Timezone: "UTC", UnitSystem: "furlongs"}, true},
		{"negative target", DefaultsInput{Timezone: "UTC", UnitSystem: "metric", DailyCalorieTarget: intPtr(-1)}, true},
		{"huge target", DefaultsInput{Timezone: "UTC", UnitSystem: "metric", DailyCalorieTarget: intPtr(20001)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserDefaultsRepository)
			if !tt.wantErr {
				repo.On("Upsert", mock.Anything, "tok", mock.MatchedBy(func(d *model.UserDefaults) bool {
					return d.UserID == "u1" && d.Timezone == tt.in.Timezone
				})).Return(nil).Once()
			}

			got, err := NewDefaultsService(repo).Save(context.Background(), sess, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidDefaults)
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in.UnitSystem, got.UnitSystem)
			repo.AssertExpectations(t)
		})
	}
}
