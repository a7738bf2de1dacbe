package model

// Unit systems.
const (
	UnitMetric   = "metric"
	UnitImperial = "imperial"
)

// UserDefaults is per-user configuration, one row per user.
type UserDefaults struct {
	UserID             string `json:"user_id"`
	Timezone           string `json:"timezone"`
	UnitSystem         string `json:"unit_system"`
	DailyCalorieTarget *int   `json:"daily_calorie_target"`
}

// DefaultUserDefaults returns the values shown before a row exists.
func DefaultUserDefaults(userID string) *UserDefaults {
	return &UserDefaults{
		UserID:     userID,
		Timezone:   "UTC",
		UnitSystem: UnitMetric,
	}
}
