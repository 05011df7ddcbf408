package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"taskhub/backend/internal/models"
	"taskhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTaskService(t *testing.T) *TaskServiceImpl {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return NewTaskService(repositories.NewTaskRepository(db))
}

func doc(t *testing.T, body string) UpdateDocument {
	t.Helper()
	var d UpdateDocument
	require.NoError(t, json.Unmarshal([]byte(body), &d))
	return d
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	task, err := svc.CreateTask(owner, CreateTaskInput{Title: "  trim me  "})
	require.NoError(t, err)
	assert.Equal(t, "trim me", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.NotZero(t, task.ID)
	assert.Equal(t, owner, task.UserID)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	due := "2030-13-45"
	inputs := []CreateTaskInput{
		{Title: ""},
		{Title: "   "},
		{Title: "ok", Status: "pending"},
		{Title: "ok", Priority: "severe"},
		{Title: "ok", DueDate: &due},
	}
	for _, input := range inputs {
		_, err := svc.CreateTask(owner, input)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", input)
	}

	_, total, err := svc.ListTasks(owner, ListTasksOptions{})
	require.NoError(t, err)
	assert.Zero(t, total, "failed creates must not persist anything")
}

func TestListTasksRejectsInvalidFilter(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	_, _, err := svc.ListTasks(owner, ListTasksOptions{
		Filter: repositories.TaskFilter{Status: "bogus"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateTaskAbsentVsNull(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	desc := "keep or clear"
	task, err := svc.CreateTask(owner, CreateTaskInput{Title: "subject", Description: &desc})
	require.NoError(t, err)

	// Absent description: untouched.
	updated, err := svc.UpdateTask(owner, task.ID, doc(t, `{"priority":"high"}`))
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
	assert.Equal(t, models.PriorityHigh, updated.Priority)

	// Present null description: cleared.
	updated, err = svc.UpdateTask(owner, task.ID, doc(t, `{"description":null}`))
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	// And back to a value.
	updated, err = svc.UpdateTask(owner, task.ID, doc(t, `{"description":"again"}`))
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "again", *updated.Description)
}

func TestUpdateTaskDueDateClear(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	due := "2030-01-01"
	task, err := svc.CreateTask(owner, CreateTaskInput{Title: "dated", DueDate: &due})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(owner, task.ID, doc(t, `{"due_date":null}`))
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	updated, err = svc.UpdateTask(owner, task.ID, doc(t, `{"due_date":"2031-06-15T08:00:00Z"}`))
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2031-06-15T08:00:00Z", *updated.DueDate)
}

func TestUpdateTaskValidationFailuresMutateNothing(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())

	task, err := svc.CreateTask(owner, CreateTaskInput{Title: "original"})
	require.NoError(t, err)

	docs := []string{
		`{}`,
		`{"unknown_field": 1}`,
		`{"title": null}`,
		`{"title": "   "}`,
		`{"title": 42}`,
		`{"status": null}`,
		`{"status": "archived"}`,
		`{"priority": "extreme"}`,
		`{"due_date": "not-a-date"}`,
		`{"title": "valid", "status": "archived"}`,
	}
	for _, body := range docs {
		_, err := svc.UpdateTask(owner, task.ID, doc(t, body))
		assert.ErrorIs(t, err, ErrInvalidInput, "doc %s", body)
	}

	current, err := svc.GetTask(owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", current.Title)
	assert.Equal(t, models.StatusTodo, current.Status)
	assert.Equal(t, task.UpdatedAt.Unix(), current.UpdatedAt.Unix())
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc := setupTaskService(t)
	owner := uuid.Must(uuid.NewV4())
	stranger := uuid.Must(uuid.NewV4())

	task, err := svc.CreateTask(owner, CreateTaskInput{Title: "hidden"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(stranger, task.ID, doc(t, `{"title":"mine now"}`))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.UpdateTask(owner, task.ID+100, doc(t, `{"title":"ghost"}`))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBuildAssignments(t *testing.T) {
	assignments, err := buildAssignments(doc(t, `{"title":" padded ","status":"done","due_date":null}`))
	require.NoError(t, err)
	assert.Equal(t, "padded", assignments["title"])
	assert.Equal(t, models.StatusDone, assignments["status"])

	due, present := assignments["due_date"]
	assert.True(t, present)
	assert.Nil(t, due)

	_, hasPriority := assignments["priority"]
	assert.False(t, hasPriority)
}
