package domain

import (
	"time"

	"github.com/google/uuid"
)

// Habit is a recurring goal owned by exactly one user. The owner never changes.
type Habit struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Frequency   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HabitPatch carries a partial habit update. Nil fields keep the stored value.
type HabitPatch struct {
	Title       *string
	Description *string
	Frequency   *string
}

// Merge applies a patch on top of the current habit and returns the result.
// Identity, ownership and timestamps are untouched.
func (h Habit) Merge(p HabitPatch) Habit {
	out := h
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Frequency != nil {
		out.Frequency = *p.Frequency
	}
	return out
}

// HabitLog is one day's completion record. Unique per (habit, date).
type HabitLog struct {
	ID      uuid.UUID
	HabitID uuid.UUID
	Date    time.Time // calendar date, time part zero
	Status  bool
}

// Progress is the completion summary for a habit.
type Progress struct {
	HabitID              uuid.UUID
	CompletionPercentage float64
	TotalDays            int64
	CompletedDays        int64
}
