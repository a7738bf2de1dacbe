package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/repository"
)

// MaxLogEntries bounds the meal log.
const MaxLogEntries = 20

// LogMealInput is a manually entered meal.
type LogMealInput struct {
	Label    *string
	Notes    *string
	Calories decimal.NullDecimal
	ProteinG decimal.NullDecimal
	CarbsG   decimal.NullDecimal
	FatG     decimal.NullDecimal
}

// MealService handles meal operations.
type MealService interface {
	ListRecent(ctx context.Context, sess *model.Session) ([]model.MealEntry, error)
	Log(ctx context.Context, sess *model.Session, in LogMealInput) (string, error)
}

type mealService struct {
	meals repository.MealRepository
}

// NewMealService creates a new meal service.
func NewMealService(meals repository.MealRepository) MealService {
	return &mealService{meals: meals}
}

// ListRecent returns at most MaxLogEntries meals, newest first. Without a
// session the list is empty and nothing is fetched.
func (s *mealService) ListRecent(ctx context.Context, sess *model.Session) ([]model.MealEntry, error) {
	if sess == nil {
		return []model.MealEntry{}, nil
	}
	entries, err := s.meals.ListRecent(ctx, sess.AccessToken, MaxLogEntries)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CapturedAt.After(entries[j].CapturedAt)
	})
	if len(entries) > MaxLogEntries {
		entries = entries[:MaxLogEntries]
	}
	if entries == nil {
		entries = []model.MealEntry{}
	}
	return entries, nil
}

// Log records a manually entered meal and returns its id.
func (s *mealService) Log(ctx context.Context, sess *model.Session, in LogMealInput) (string, error) {
	if sess == nil {
		return "", apperrors.ErrUnauthenticated
	}
	id, err := s.meals.Create(ctx, sess.AccessToken, &model.NewMeal{
		UserID:   sess.User.ID,
		Label:    in.Label,
		Notes:    in.Notes,
		Calories: in.Calories,
		ProteinG: in.ProteinG,
		CarbsG:   in.CarbsG,
		FatG:     in.FatG,
		Source:   model.MealSourceManual,
	})
	if err != nil {
		return "", fmt.Errorf("log meal: %w", err)
	}
	return id, nil
}
