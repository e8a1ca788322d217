package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Tracker/internal/cache"
	dom "Tracker/internal/domain"
	"Tracker/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("not found")

const defaultFrequency = "daily"

// HabitService implements habit CRUD, daily logging and progress, all scoped
// to the authenticated user.
type HabitService struct {
	repo  repo.HabitRepo
	cache *cache.HabitCache
	sf    singleflight.Group
}

// NewHabitService creates a HabitService. If c is nil, caching is disabled.
func NewHabitService(r repo.HabitRepo, c *cache.HabitCache) *HabitService {
	return &HabitService{repo: r, cache: c}
}

func (s *HabitService) Create(ctx context.Context, userID uuid.UUID, title, desc, frequency string) (dom.Habit, error) {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	frequency = strings.TrimSpace(frequency)
	if frequency == "" {
		frequency = defaultFrequency
	}

	h, err := s.repo.Create(ctx, dom.Habit{
		UserID:      userID,
		Title:       title,
		Description: desc,
		Frequency:   frequency,
	})
	if err != nil {
		return dom.Habit{}, err
	}
	s.invalidateList(ctx, userID)
	return h, nil
}

func (s *HabitService) List(ctx context.Context, userID uuid.UUID) ([]dom.Habit, error) {
	if s.cache != nil {
		key := "list:" + userID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Habit), nil
	}
	return s.repo.List(ctx, userID)
}

// Update fetches the habit, merges the patch and writes the result back.
// A habit that does not exist or is owned by someone else is ErrNotFound.
func (s *HabitService) Update(ctx context.Context, userID, id uuid.UUID, patch dom.HabitPatch) (dom.Habit, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Habit{}, ErrNotFound
		}
		return dom.Habit{}, err
	}
	merged := existing.Merge(patch)
	merged.Title = strings.TrimSpace(merged.Title)
	merged.Description = strings.TrimSpace(merged.Description)
	merged.Frequency = strings.TrimSpace(merged.Frequency)

	h, err := s.repo.Update(ctx, userID, id, merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Habit{}, ErrNotFound
		}
		return dom.Habit{}, err
	}
	s.invalidateList(ctx, userID)
	return h, nil
}

// Delete removes the habit if owned by userID. Deleting a missing or foreign
// habit matches zero rows and still succeeds.
func (s *HabitService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateList(ctx, userID)
	s.invalidateProgress(ctx, id)
	return nil
}

// LogCompletion records the completion status for one calendar date. Logging
// the same date again overwrites the status instead of adding a row.
func (s *HabitService) LogCompletion(ctx context.Context, userID, habitID uuid.UUID, date time.Time, status bool) (dom.HabitLog, error) {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.HabitLog{}, ErrNotFound
		}
		return dom.HabitLog{}, err
	}
	l, err := s.repo.UpsertLog(ctx, habitID, date, status)
	if err != nil {
		return dom.HabitLog{}, err
	}
	s.invalidateProgress(ctx, habitID)
	return l, nil
}

// Progress returns the completion summary for an owned habit. With no logs the
// percentage is 0.0.
func (s *HabitService) Progress(ctx context.Context, userID, habitID uuid.UUID) (dom.Progress, error) {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Progress{}, ErrNotFound
		}
		return dom.Progress{}, err
	}
	if s.cache != nil {
		key := "progress:" + habitID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if p, err := s.cache.GetProgress(ctx, habitID); err == nil && p != nil {
				return *p, nil
			}
			p, err := s.computeProgress(ctx, habitID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetProgress(ctx, p)
			return p, nil
		})
		if err != nil {
			return dom.Progress{}, err
		}
		return v.(dom.Progress), nil
	}
	return s.computeProgress(ctx, habitID)
}

func (s *HabitService) computeProgress(ctx context.Context, habitID uuid.UUID) (dom.Progress, error) {
	total, completed, err := s.repo.LogStats(ctx, habitID)
	if err != nil {
		return dom.Progress{}, err
	}
	p := dom.Progress{
		HabitID:       habitID,
		TotalDays:     total,
		CompletedDays: completed,
	}
	if total > 0 {
		p.CompletionPercentage = float64(completed) / float64(total) * 100.0
	}
	return p, nil
}

func (s *HabitService) invalidateList(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateList(ctx, userID)
	}
}

func (s *HabitService) invalidateProgress(ctx context.Context, habitID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateProgress(ctx, habitID)
	}
}
