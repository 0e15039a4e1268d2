package domain

import (
	"errors"
	"time"
)

var ErrInvalidSchedule = errors.New("session end must be after start")

// TrainingSession is a scheduled activity run by exactly one trainer.
type TrainingSession struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TrainerID   int64     `json:"trainer_id"`
}

// ValidateSchedule enforces that the session ends strictly after it starts.
func (s *TrainingSession) ValidateSchedule() error {
	if !s.EndTime.After(s.StartTime) {
		return ErrInvalidSchedule
	}
	return nil
}
