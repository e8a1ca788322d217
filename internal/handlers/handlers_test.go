package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/dto"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]dom.User
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	u, ok := r.users[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, username, email, passwordHash string) (dom.User, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := dom.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash}
	r.users[username] = u
	return u, nil
}

type fakeHabitRepo struct {
	habits []dom.Habit
	logs   []dom.HabitLog
}

func (r *fakeHabitRepo) Create(_ context.Context, h dom.Habit) (dom.Habit, error) {
	h.ID = uuid.New()
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now
	r.habits = append(r.habits, h)
	return h, nil
}

func (r *fakeHabitRepo) GetByID(_ context.Context, userID, id uuid.UUID) (dom.Habit, error) {
	for _, h := range r.habits {
		if h.ID == id && h.UserID == userID {
			return h, nil
		}
	}
	return dom.Habit{}, pgx.ErrNoRows
}

func (r *fakeHabitRepo) List(_ context.Context, userID uuid.UUID) ([]dom.Habit, error) {
	var out []dom.Habit
	for _, h := range r.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHabitRepo) Update(_ context.Context, userID, id uuid.UUID, h dom.Habit) (dom.Habit, error) {
	for i := range r.habits {
		if r.habits[i].ID == id && r.habits[i].UserID == userID {
			r.habits[i].Title = h.Title
			r.habits[i].Description = h.Description
			r.habits[i].Frequency = h.Frequency
			r.habits[i].UpdatedAt = time.Now().UTC()
			return r.habits[i], nil
		}
	}
	return dom.Habit{}, pgx.ErrNoRows
}

func (r *fakeHabitRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	for i := range r.habits {
		if r.habits[i].ID == id && r.habits[i].UserID == userID {
			r.habits = append(r.habits[:i], r.habits[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeHabitRepo) UpsertLog(_ context.Context, habitID uuid.UUID, date time.Time, status bool) (dom.HabitLog, error) {
	day := date.Format("2006-01-02")
	for i := range r.logs {
		if r.logs[i].HabitID == habitID && r.logs[i].Date.Format("2006-01-02") == day {
			r.logs[i].Status = status
			return r.logs[i], nil
		}
	}
	l := dom.HabitLog{ID: uuid.New(), HabitID: habitID, Date: date, Status: status}
	r.logs = append(r.logs, l)
	return l, nil
}

func (r *fakeHabitRepo) LogStats(_ context.Context, habitID uuid.UUID) (int64, int64, error) {
	var total, completed int64
	for _, l := range r.logs {
		if l.HabitID == habitID {
			total++
			if l.Status {
				completed++
			}
		}
	}
	return total, completed, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)

	userSvc := service.NewUserService(&fakeUserRepo{users: map[string]dom.User{}})
	authHandler := NewAuthHandler(tokens, userSvc)
	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)

	protected := r.Group("", auth.RequireAuth(tokens))
	habitSvc := service.NewHabitService(&fakeHabitRepo{}, nil)
	habitHandler := NewHabitHandler(habitSvc)
	protected.GET("/habits", habitHandler.List)
	protected.POST("/habits", habitHandler.Create)
	protected.PUT("/habits/:id", habitHandler.Update)
	protected.DELETE("/habits/:id", habitHandler.Delete)
	protected.POST("/habits/:id/log", habitHandler.Log)
	protected.GET("/habits/:id/progress", habitHandler.Progress)
	return r
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine, username, email, password string) dto.AuthResponse {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password)
	w := do(r, http.MethodPost, "/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEqual(t, uuid.Nil, resp.UserID)
	return resp
}

func createHabit(t *testing.T, r *gin.Engine, token, title, desc, freq string) dto.HabitResponse {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"description":%q,"frequency":%q}`, title, desc, freq)
	w := do(r, http.MethodPost, "/habits", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var h dto.HabitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	return h
}

func TestSignupLoginFlow(t *testing.T) {
	r := newTestRouter()

	created := signup(t, r, "alice", "a@x.com", "secret123")

	w := do(r, http.MethodPost, "/login", "", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/login", "", `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.UserID, resp.UserID)
	assert.NotEmpty(t, resp.Token)
}

func TestSignupConflict(t *testing.T) {
	r := newTestRouter()
	signup(t, r, "alice", "a@x.com", "secret123")

	w := do(r, http.MethodPost, "/signup", "", `{"username":"alice","email":"b@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/signup", "", `{"username":"bob","email":"a@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupRejectsBadBody(t *testing.T) {
	r := newTestRouter()

	w := do(r, http.MethodPost, "/signup", "", `{"username":"alice","email":"not-an-email","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/signup", "", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHabitEndpointsRequireToken(t *testing.T) {
	r := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/habits"},
		{http.MethodPost, "/habits"},
		{http.MethodPut, "/habits/" + uuid.NewString()},
		{http.MethodDelete, "/habits/" + uuid.NewString()},
		{http.MethodPost, "/habits/" + uuid.NewString() + "/log"},
		{http.MethodGet, "/habits/" + uuid.NewString() + "/progress"},
	} {
		w := do(r, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHabitLifecycle(t *testing.T) {
	r := newTestRouter()
	acct := signup(t, r, "alice", "a@x.com", "secret123")

	h := createHabit(t, r, acct.Token, "daily meditation", "10 min", "daily")
	assert.Equal(t, acct.UserID, h.UserID)

	// List includes the new habit.
	w := do(r, http.MethodGet, "/habits", acct.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.HabitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, h.ID, list[0].ID)

	// Partial update keeps unspecified fields.
	w = do(r, http.MethodPut, "/habits/"+h.ID.String(), acct.Token, `{"title":"evening meditation"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.HabitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "evening meditation", updated.Title)
	assert.Equal(t, "10 min", updated.Description)
	assert.Equal(t, "daily", updated.Frequency)

	// Log two days, one completed.
	w = do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", acct.Token, `{"date":"2024-01-01","status":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lg dto.HabitLogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lg))
	assert.Equal(t, "2024-01-01", lg.Date)
	assert.True(t, lg.Status)

	w = do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", acct.Token, `{"date":"2024-01-02","status":false}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/habits/"+h.ID.String()+"/progress", acct.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var p dto.ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, h.ID, p.HabitID)
	assert.Equal(t, int64(2), p.TotalDays)
	assert.Equal(t, int64(1), p.CompletedDays)
	assert.Equal(t, 50.0, p.CompletionPercentage)

	// Re-logging a date overwrites instead of adding a row.
	w = do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", acct.Token, `{"date":"2024-01-02","status":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodGet, "/habits/"+h.ID.String()+"/progress", acct.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, int64(2), p.TotalDays)
	assert.Equal(t, int64(2), p.CompletedDays)
	assert.Equal(t, 100.0, p.CompletionPercentage)

	// Delete, then everything about the habit is gone.
	w = do(r, http.MethodDelete, "/habits/"+h.ID.String(), acct.Token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodPut, "/habits/"+h.ID.String(), acct.Token, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/habits", acct.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestCrossOwnerAccess(t *testing.T) {
	r := newTestRouter()
	alice := signup(t, r, "alice", "a@x.com", "secret123")
	bob := signup(t, r, "bob", "b@x.com", "secret456")

	h := createHabit(t, r, alice.Token, "run", "5k", "weekly")

	// Bob gets the same 404 as for a habit that does not exist at all.
	w := do(r, http.MethodPut, "/habits/"+h.ID.String(), bob.Token, `{"title":"stolen"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", bob.Token, `{"date":"2024-01-01","status":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/habits/"+h.ID.String()+"/progress", bob.Token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Cross-owner delete reports success but deletes nothing.
	w = do(r, http.MethodDelete, "/habits/"+h.ID.String(), bob.Token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/habits", alice.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.HabitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestInvalidHabitID(t *testing.T) {
	r := newTestRouter()
	acct := signup(t, r, "alice", "a@x.com", "secret123")

	w := do(r, http.MethodPut, "/habits/not-a-uuid", acct.Token, `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/habits/42/log", acct.Token, `{"date":"2024-01-01","status":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogRejectsBadDate(t *testing.T) {
	r := newTestRouter()
	acct := signup(t, r, "alice", "a@x.com", "secret123")
	h := createHabit(t, r, acct.Token, "run", "", "daily")

	w := do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", acct.Token, `{"date":"January 1st","status":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/habits/"+h.ID.String()+"/log", acct.Token, `{"date":"2024-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
