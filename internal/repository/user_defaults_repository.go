package repository

import (
	"context"

	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

const userDefaultsTable = "user_defaults"

// UserDefaultsRepository defines user defaults persistence operations.
type UserDefaultsRepository interface {
	// Get returns the user's row, or nil when none exists yet.
	Get(ctx context.Context, token, userID string) (*model.UserDefaults, error)
	Upsert(ctx context.Context, token string, defaults *model.UserDefaults) error
}

type userDefaultsRepository struct {
	client *supabase.Client
}

// NewUserDefaultsRepository creates a new user defaults repository.
func NewUserDefaultsRepository(client *supabase.Client) UserDefaultsRepository {
	return &userDefaultsRepository{client: client}
}

// Get finds the defaults row by user id.
func (r *userDefaultsRepository) Get(ctx context.Context, token, userID string) (*model.UserDefaults, error) {
	var rows []model.UserDefaults
	err := r.client.Select(ctx, token, userDefaultsTable, supabase.Query{
		Select:  "user_id,timezone,unit_system,daily_calorie_target",
		Filters: supabase.Eq("user_id", userID),
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Upsert writes the row keyed by user id.
func (r *userDefaultsRepository) Upsert(ctx context.Context, token string, defaults *model.UserDefaults) error {
	return r.client.Upsert(ctx, token, userDefaultsTable, "user_id", defaults)
}
