package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskhub/backend/internal/models"
	"taskhub/backend/internal/repositories"
	"taskhub/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// Malformed or non-positive identifiers get the same response as a
// missing row; the id namespace is opaque to callers.
func parseTaskID(idStr string) (uint, bool) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func taskNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(userID, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	filter := repositories.TaskFilter{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		DueBefore: c.Query("due_before"),
		DueAfter:  c.Query("due_after"),
	}
	if raw := c.Query("include_overdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "include_overdue must be a boolean"})
			return
		}
		filter.Overdue = overdue
	}
	if filter.Overdue {
		filter.Now = time.Now().UTC().Format(models.DueDateTimeLayout)
	}

	tasks, total, err := h.taskService.ListTasks(userID, services.ListTasksOptions{
		Filter: filter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}

	page := repositories.NewPage(limit, offset)
	c.JSON(http.StatusOK, gin.H{
		"data": tasks,
		"meta": gin.H{
			"total":  total,
			"limit":  page.Limit,
			"offset": page.Offset,
		},
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseTaskID(c.Param("id"))
	if !ok {
		taskNotFound(c)
		return
	}

	task, err := h.taskService.GetTask(userID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseTaskID(c.Param("id"))
	if !ok {
		taskNotFound(c)
		return
	}

	var doc services.UpdateDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	task, err := h.taskService.UpdateTask(userID, id, doc)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseTaskID(c.Param("id"))
	if !ok {
		taskNotFound(c)
		return
	}

	if err := h.taskService.DeleteTask(userID, id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(repositories.DefaultPageLimit))
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return 0, 0, false
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
		return 0, 0, false
	}
	return limit, offset, true
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		taskNotFound(c)
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
	}
}
