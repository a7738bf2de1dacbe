package repository

import (
	"context"
	"fmt"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

const mealsTable = "meals"

// MealRepository defines meal persistence operations. Every call runs with the
// caller's access token so the backend's row policies apply.
type MealRepository interface {
	Create(ctx context.Context, token string, meal *model.NewMeal) (string, error)
	ListRecent(ctx context.Context, token string, limit int) ([]model.MealEntry, error)
	AttachPhoto(ctx context.Context, token, mealID, photoPath string) error
}

type mealRepository struct {
	client *supabase.Client
}

// NewMealRepository creates a new meal repository.
func NewMealRepository(client *supabase.Client) MealRepository {
	return &mealRepository{client: client}
}

type idRow struct {
	ID string `json:"id"`
}

// Create inserts a meal and returns its id.
func (r *mealRepository) Create(ctx context.Context, token string, meal *model.NewMeal) (string, error) {
	var rows []idRow
	if err := r.client.Insert(ctx, token, mealsTable, meal, "id", &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("insert meal: no row returned")
	}
	return rows[0].ID, nil
}

// ListRecent returns the newest meals first.
func (r *mealRepository) ListRecent(ctx context.Context, token string, limit int) ([]model.MealEntry, error) {
	var entries []model.MealEntry
	err := r.client.Select(ctx, token, mealsTable, supabase.Query{
		Select: model.MealEntryColumns,
		Order:  "captured_at.desc",
		Limit:  limit,
	}, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AttachPhoto sets the photo path of a meal.
func (r *mealRepository) AttachPhoto(ctx context.Context, token, mealID, photoPath string) error {
	var rows []idRow
	err := r.client.Update(ctx, token, mealsTable, supabase.Eq("id", mealID),
		map[string]string{"photo_path": photoPath}, "id", &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperrors.ErrMealNotFound
	}
	return nil
}
