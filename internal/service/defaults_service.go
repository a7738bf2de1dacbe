package service

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"

	apperrors "mealtap/internal/errors"
	"mealtap/internal/model"
	"mealtap/internal/repository"
)

// DefaultsInput is a change to the caller's defaults.
type DefaultsInput struct {
	Timezone           string `json:"timezone" validate:"required"`
	UnitSystem         string `json:"unit_system" validate:"required,oneof=metric imperial"`
	DailyCalorieTarget *int   `json:"daily_calorie_target" validate:"omitempty,min=0,max=20000"`
}

// DefaultsService handles per-user defaults.
type DefaultsService interface {
	Get(ctx context.Context, sess *model.Session) (*model.UserDefaults, error)
	Save(ctx context.Context, sess *model.Session, in DefaultsInput) (*model.UserDefaults, error)
}

type defaultsService struct {
	repo     repository.UserDefaultsRepository
	validate *validator.Validate
}

// NewDefaultsService creates a new defaults service.
func NewDefaultsService(repo repository.UserDefaultsRepository) DefaultsService {
	return &defaultsService{repo: repo, validate: validator.New()}
}

// Get returns the caller's defaults, falling back to UTC/metric when no row exists.
func (s *defaultsService) Get(ctx context.Context, sess *model.Session) (*model.UserDefaults, error) {
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	d, err := s.repo.Get(ctx, sess.AccessToken, sess.User.ID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return model.DefaultUserDefaults(sess.User.ID), nil
	}
	return d, nil
}

// Save validates in and upserts the caller's row.
func (s *defaultsService) Save(ctx context.Context, sess *model.Session, in DefaultsInput) (*model.UserDefaults, error) {
	if sess == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDefaults, err)
	}
	// "Local" names the server's zone, not one the user can live in.
	if in.Timezone == "Local" {
		return nil, fmt.Errorf("%w: unknown timezone %q", apperrors.ErrInvalidDefaults, in.Timezone)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", apperrors.ErrInvalidDefaults, in.Timezone)
	}

	d := &model.UserDefaults{
		UserID:             sess.User.ID,
		Timezone:           in.Timezone,
		UnitSystem:         in.UnitSystem,
		DailyCalorieTarget: in.DailyCalorieTarget,
	}
	if err := s.repo.Upsert(ctx, sess.AccessToken, d); err != nil {
		return nil, err
	}
	return d, nil
}
