package repositories

import (
	"taskhub/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Page holds clamped pagination bounds.
type Page struct {
	Limit  int
	Offset int
}

func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// TaskRepository executes owner-scoped task statements against the
// store. Every predicate it issues conjoins the caller's identity, so a
// row owned by someone else is indistinguishable from a missing row.
type TaskRepository struct {
	db         *gorm.DB
	statements *statementCache
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db, statements: newStatementCache()}
}

func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepository) GetByID(owner uuid.UUID, id uint) (models.Task, error) {
	var task models.Task
	err := r.db.Where("id = ? AND user_id = ?", id, owner).First(&task).Error
	return task, err
}

// List returns one page of the owner's tasks matching filter, newest
// first, plus the total count under the identical predicate. filter
// must already be validated.
func (r *TaskRepository) List(owner uuid.UUID, filter TaskFilter, page Page) ([]models.Task, int64, error) {
	where := r.statements.whereFor(filter.shape())
	args := filter.bindArgs(owner)

	var total int64
	if err := r.db.Model(&models.Task{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	err := r.db.Where(where, args...).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update applies the assignment set in a single owner-scoped UPDATE and
// re-reads the committed row inside the same transaction, so the
// returned updated_at is exactly what was persisted. Zero affected rows
// is reported as gorm.ErrRecordNotFound, covering both absence and
// ownership mismatch.
func (r *TaskRepository) Update(owner uuid.UUID, id uint, assignments map[string]interface{}) (models.Task, error) {
	var task models.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", id, owner).
			Updates(assignments)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ? AND user_id = ?", id, owner).First(&task).Error
	})
	return task, err
}

func (r *TaskRepository) Delete(owner uuid.UUID, id uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, owner).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StatementCacheSize reports how many distinct predicate shapes have
// been compiled so far.
func (r *TaskRepository) StatementCacheSize() int {
	return r.statements.size()
}
