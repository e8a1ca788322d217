package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// LogDate parses a calendar date from JSON as "2006-01-02" and marshals back
// the same way. The time part is start of day UTC.
type LogDate struct{ t time.Time }

func (d *LogDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("date: use YYYY-MM-DD")
	}
	d.t = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d LogDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.t.Format(dateLayout))
}

// Time returns the parsed date for use in service/domain.
func (d LogDate) Time() time.Time { return d.t }

type CreateHabitRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"max=1000"`
	Frequency   string `json:"frequency" binding:"max=60"` // free-form: "daily", "weekly", ...
}

type UpdateHabitRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Frequency   *string `json:"frequency" binding:"omitempty,max=60"`
}

type CreateLogRequest struct {
	Date   LogDate `json:"date" binding:"required"`
	Status *bool   `json:"status" binding:"required"`
}

type HabitResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   string    `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HabitLogResponse struct {
	ID      uuid.UUID `json:"id"`
	HabitID uuid.UUID `json:"habit_id"`
	Date    string    `json:"date"` // YYYY-MM-DD
	Status  bool      `json:"status"`
}

type ProgressResponse struct {
	HabitID              uuid.UUID `json:"habit_id"`
	CompletionPercentage float64   `json:"completion_percentage"`
	TotalDays            int64     `json:"total_days"`
	CompletedDays        int64     `json:"completed_days"`
}
