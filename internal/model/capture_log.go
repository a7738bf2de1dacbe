package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaptureStatus represents the outcome of a capture attempt.
type CaptureStatus string

const (
	CaptureStatusSucceeded CaptureStatus = "succeeded"
	CaptureStatusFailed    CaptureStatus = "failed"
)

// CaptureLog represents a log entry for a meal capture attempt.
// All capture attempts are logged regardless of success or failure.
type CaptureLog struct {
	ID           uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey" swaggertype:"string" format:"uuid"`
	UserID       string        `json:"user_id" gorm:"type:char(36);not null;index"`
	MealID       string        `json:"meal_id,omitempty" gorm:"type:varchar(64)"`
	PhotoPath    string        `json:"photo_path,omitempty" gorm:"type:varchar(255)"`
	Step         string        `json:"step" gorm:"type:varchar(20);not null"`
	Status       CaptureStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage string        `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time     `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (cl *CaptureLog) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	return nil
}
