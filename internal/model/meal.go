package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Meal sources.
const (
	MealSourceManual    = "manual"
	MealSourceSmokeTest = "smoke-test"
)

// Meal represents a logged eating event as stored by the backend.
type Meal struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	CapturedAt time.Time           `json:"captured_at"`
	Label      *string             `json:"label"`
	Notes      *string             `json:"notes"`
	Calories   decimal.NullDecimal `json:"calories"`
	ProteinG   decimal.NullDecimal `json:"protein_g"`
	CarbsG     decimal.NullDecimal `json:"carbs_g"`
	FatG       decimal.NullDecimal `json:"fat_g"`
	Source     string              `json:"source"`
	PhotoPath  *string             `json:"photo_path"`
}

// NewMeal is the insert payload for a meal row.
type NewMeal struct {
	UserID   string              `json:"user_id"`
	Label    *string             `json:"label"`
	Notes    *string             `json:"notes"`
	Calories decimal.NullDecimal `json:"calories"`
	ProteinG decimal.NullDecimal `json:"protein_g"`
	CarbsG   decimal.NullDecimal `json:"carbs_g"`
	FatG     decimal.NullDecimal `json:"fat_g"`
	Source   string              `json:"source"`
}

// MealEntry is the projection rendered by the log.
type MealEntry struct {
	ID         string              `json:"id"`
	CapturedAt time.Time           `json:"captured_at"`
	Label      *string             `json:"label"`
	Calories   decimal.NullDecimal `json:"calories" swaggertype:"string"`
}

// MealEntryColumns lists the projected columns, in select syntax.
const MealEntryColumns = "id,captured_at,label,calories"

// DisplayLabel returns the label or "meal" when unset.
func (m MealEntry) DisplayLabel() string {
	if m.Label == nil || *m.Label == "" {
		return "meal"
	}
	return *m.Label
}

// Kcal returns calories as text, "0" when unset.
func (m MealEntry) Kcal() string {
	if !m.Calories.Valid {
		return "0"
	}
	return m.Calories.Decimal.String()
}
