package handlers

import (
	"errors"
	"net/http"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/dto"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HabitHandler struct {
	svc *service.HabitService
}

func NewHabitHandler(svc *service.HabitService) *HabitHandler {
	return &HabitHandler{svc: svc}
}

// Create godoc
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateHabitRequest  true  "Habit body"
// @Success      201   {object}  dto.HabitResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	habit, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Title, req.Description, req.Frequency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create habit"})
		return
	}
	c.JSON(http.StatusCreated, habitToResponse(habit))
}

// List godoc
// @Summary      List own habits
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.HabitResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list habits"})
		return
	}
	c.JSON(http.StatusOK, habitsToResponses(list))
}

// Update godoc
// @Summary      Update a habit (partial)
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Habit ID"
// @Param        body  body      dto.UpdateHabitRequest  true  "Fields to change"
// @Success      200   {object}  dto.HabitResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	habit, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, dom.HabitPatch{
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update habit"})
		return
	}
	c.JSON(http.StatusOK, habitToResponse(habit))
}

// Delete godoc
// @Summary      Delete a habit
// @Tags         habits
// @Security     BearerAuth
// @Param        id   path  string  true  "Habit ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// Deleting a missing or foreign habit matches zero rows and still returns 204.
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete habit"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Log godoc
// @Summary      Log completion for a date
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Habit ID"
// @Param        body  body      dto.CreateLogRequest  true  "Date and status"
// @Success      201   {object}  dto.HabitLogResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /habits/{id}/log [post]
func (h *HabitHandler) Log(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.svc.LogCompletion(c.Request.Context(), auth.UserIDFromContext(c), id, req.Date.Time(), *req.Status)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log habit"})
		return
	}
	c.JSON(http.StatusCreated, logToResponse(l))
}

// Progress godoc
// @Summary      Completion stats for a habit
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit ID"
// @Success      200  {object}  dto.ProgressResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /habits/{id}/progress [get]
func (h *HabitHandler) Progress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Progress(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute progress"})
		return
	}
	c.JSON(http.StatusOK, dto.ProgressResponse{
		HabitID:              p.HabitID,
		CompletionPercentage: p.CompletionPercentage,
		TotalDays:            p.TotalDays,
		CompletedDays:        p.CompletedDays,
	})
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func habitToResponse(h dom.Habit) dto.HabitResponse {
	return dto.HabitResponse{
		ID:          h.ID,
		UserID:      h.UserID,
		Title:       h.Title,
		Description: h.Description,
		Frequency:   h.Frequency,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func habitsToResponses(list []dom.Habit) []dto.HabitResponse {
	out := make([]dto.HabitResponse, len(list))
	for i := range list {
		out[i] = habitToResponse(list[i])
	}
	return out
}

func logToResponse(l dom.HabitLog) dto.HabitLogResponse {
	return dto.HabitLogResponse{
		ID:      l.ID,
		HabitID: l.HabitID,
		Date:    l.Date.Format("2006-01-02"),
		Status:  l.Status,
	}
}
