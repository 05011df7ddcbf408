package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"taskhub/backend/internal/models"
	"taskhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

// ErrInvalidInput marks caller-correctable validation failures. Wrapped
// errors carry the field-level detail.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type CreateTaskInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// UpdateDocument is the sparse body of a PATCH request. Presence of a
// key decides whether the field is touched; a present null clears a
// nullable field. A fixed struct cannot represent that distinction, a
// raw-message map can.
type UpdateDocument map[string]json.RawMessage

type ListTasksOptions struct {
	Filter repositories.TaskFilter
	Limit  int
	Offset int
}

type TaskService interface {
	CreateTask(owner uuid.UUID, input CreateTaskInput) (models.Task, error)
	GetTask(owner uuid.UUID, id uint) (models.Task, error)
	ListTasks(owner uuid.UUID, opts ListTasksOptions) ([]models.Task, int64, error)
	UpdateTask(owner uuid.UUID, id uint, doc UpdateDocument) (models.Task, error)
	DeleteTask(owner uuid.UUID, id uint) error
}

type TaskServiceImpl struct {
	repo *repositories.TaskRepository
}

func NewTaskService(repo *repositories.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo}
}

func (s *TaskServiceImpl) CreateTask(owner uuid.UUID, input CreateTaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, invalidInput("title cannot be empty")
	}

	status := input.Status
	if status == "" {
		status = models.StatusTodo
	}
	if err := models.CheckStatus(status); err != nil {
		return models.Task{}, invalidInput("%s", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if err := models.CheckPriority(priority); err != nil {
		return models.Task{}, invalidInput("%s", err)
	}

	if input.DueDate != nil {
		if err := models.CheckDueDate(*input.DueDate); err != nil {
			return models.Task{}, invalidInput("%s", err)
		}
	}

	task := models.Task{
		UserID:      owner,
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	if err := s.repo.Create(&task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTask(owner uuid.UUID, id uint) (models.Task, error) {
	return s.repo.GetByID(owner, id)
}

func (s *TaskServiceImpl) ListTasks(owner uuid.UUID, opts ListTasksOptions) ([]models.Task, int64, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, 0, invalidInput("%s", err)
	}
	page := repositories.NewPage(opts.Limit, opts.Offset)
	return s.repo.List(owner, opts.Filter, page)
}

func (s *TaskServiceImpl) UpdateTask(owner uuid.UUID, id uint, doc UpdateDocument) (models.Task, error) {
	assignments, err := buildAssignments(doc)
	if err != nil {
		return models.Task{}, err
	}
	return s.repo.Update(owner, id, assignments)
}

func (s *TaskServiceImpl) DeleteTask(owner uuid.UUID, id uint) error {
	return s.repo.Delete(owner, id)
}

// buildAssignments turns a sparse update document into the column
// assignment set. Every present field is validated before any
// assignment is emitted, so a failure can never leave a partial write
// behind. Unknown keys are ignored; a document with nothing assignable
// is rejected rather than issued as a no-op UPDATE.
func buildAssignments(doc UpdateDocument) (map[string]interface{}, error) {
	assignments := make(map[string]interface{})

	if raw, ok := doc["title"]; ok {
		title, err := decodeString(raw, "title")
		if err != nil {
			return nil, err
		}
		if title == nil {
			return nil, invalidInput("title cannot be null")
		}
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, invalidInput("title cannot be empty")
		}
		assignments["title"] = trimmed
	}

	if raw, ok := doc["description"]; ok {
		desc, err := decodeString(raw, "description")
		if err != nil {
			return nil, err
		}
		// nil clears the column
		assignments["description"] = desc
	}

	if raw, ok := doc["status"]; ok {
		status, err := decodeString(raw, "status")
		if err != nil {
			return nil, err
		}
		if status == nil {
			return nil, invalidInput("status cannot be null")
		}
		if err := models.CheckStatus(*status); err != nil {
			return nil, invalidInput("%s", err)
		}
		assignments["status"] = *status
	}

	if raw, ok := doc["priority"]; ok {
		priority, err := decodeString(raw, "priority")
		if err != nil {
			return nil, err
		}
		if priority == nil {
			return nil, invalidInput("priority cannot be null")
		}
		if err := models.CheckPriority(*priority); err != nil {
			return nil, invalidInput("%s", err)
		}
		assignments["priority"] = *priority
	}

	if raw, ok := doc["due_date"]; ok {
		due, err := decodeString(raw, "due_date")
		if err != nil {
			return nil, err
		}
		if due != nil {
			if err := models.CheckDueDate(*due); err != nil {
				return nil, invalidInput("%s", err)
			}
		}
		assignments["due_date"] = due
	}

	if len(assignments) == 0 {
		return nil, invalidInput("no updatable fields provided")
	}
	return assignments, nil
}

func decodeString(raw json.RawMessage, field string) (*string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalidInput("%s must be a string", field)
	}
	return s, nil
}
