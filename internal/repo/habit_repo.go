package repo

import (
	"context"
	"time"

	dom "Tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HabitRepo provides habit and habit-log persistence. Every read and write of
// a habit is scoped by the owning user id; a habit belonging to someone else
// behaves exactly like a missing row.
type HabitRepo interface {
	Create(ctx context.Context, h dom.Habit) (dom.Habit, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (dom.Habit, error)
	List(ctx context.Context, userID uuid.UUID) ([]dom.Habit, error)
	Update(ctx context.Context, userID, id uuid.UUID, h dom.Habit) (dom.Habit, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UpsertLog(ctx context.Context, habitID uuid.UUID, date time.Time, status bool) (dom.HabitLog, error)
	LogStats(ctx context.Context, habitID uuid.UUID) (total, completed int64, err error)
}

type PGHabitRepo struct {
	db *pgxpool.Pool
}

func NewPGHabitRepo(db *pgxpool.Pool) *PGHabitRepo {
	return &PGHabitRepo{db: db}
}

func (r *PGHabitRepo) Create(ctx context.Context, h dom.Habit) (dom.Habit, error) {
	query := `
		INSERT INTO habits (user_id, title, description, frequency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, description, frequency, created_at, updated_at`
	var out dom.Habit
	err := r.db.QueryRow(ctx, query, h.UserID, h.Title, h.Description, h.Frequency).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Frequency,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGHabitRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (dom.Habit, error) {
	query := `
		SELECT id, user_id, title, description, frequency, created_at, updated_at
		FROM habits WHERE id = $1 AND user_id = $2`
	var h dom.Habit
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency,
		&h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

func (r *PGHabitRepo) List(ctx context.Context, userID uuid.UUID) ([]dom.Habit, error) {
	query := `
		SELECT id, user_id, title, description, frequency, created_at, updated_at
		FROM habits WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Habit
	for rows.Next() {
		var h dom.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Frequency,
			&h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (r *PGHabitRepo) Update(ctx context.Context, userID, id uuid.UUID, h dom.Habit) (dom.Habit, error) {
	query := `
		UPDATE habits SET title = $3, description = $4, frequency = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, frequency, created_at, updated_at`
	var out dom.Habit
	err := r.db.QueryRow(ctx, query, id, userID, h.Title, h.Description, h.Frequency).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Frequency,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

// Delete removes the habit if owned by userID. Zero matched rows is not an
// error; logs go with the habit via ON DELETE CASCADE.
func (r *PGHabitRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// UpsertLog inserts the log row for (habitID, date) or overwrites its status.
// The unique constraint on (habit_id, log_date) makes this race-free.
func (r *PGHabitRepo) UpsertLog(ctx context.Context, habitID uuid.UUID, date time.Time, status bool) (dom.HabitLog, error) {
	query := `
		INSERT INTO habit_logs (habit_id, log_date, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, log_date) DO UPDATE SET status = EXCLUDED.status
		RETURNING id, habit_id, log_date, status`
	var l dom.HabitLog
	err := r.db.QueryRow(ctx, query, habitID, date, status).Scan(
		&l.ID, &l.HabitID, &l.Date, &l.Status,
	)
	return l, err
}

// LogStats returns the total and completed log counts for a habit.
func (r *PGHabitRepo) LogStats(ctx context.Context, habitID uuid.UUID) (total, completed int64, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status THEN 1 ELSE 0 END), 0)
		FROM habit_logs WHERE habit_id = $1`
	err = r.db.QueryRow(ctx, query, habitID).Scan(&total, &completed)
	return total, completed, err
}
