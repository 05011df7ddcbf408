package repositories

import (
	"fmt"
	"strings"

	"taskhub/backend/internal/models"

	"github.com/gofrs/uuid"
)

// TaskFilter carries the optional list filters for one request. Empty
// string / false means the filter is not applied. Now is the caller's
// wall clock rendered as YYYY-MM-DDTHH:MM:SSZ; the store never reads a
// clock of its own, so every overdue comparison within one request uses
// the same instant.
type TaskFilter struct {
	Status    string
	Priority  string
	DueBefore string
	DueAfter  string
	Overdue   bool
	Now       string
}

// filterShape identifies which filter toggles are active, independent of
// their values. It is the statement cache key.
type filterShape uint8

const (
	shapeStatus filterShape = 1 << iota
	shapePriority
	shapeDueBefore
	shapeDueAfter
	shapeOverdue
)

func (f TaskFilter) shape() filterShape {
	var s filterShape
	if f.Status != "" {
		s |= shapeStatus
	}
	if f.Priority != "" {
		s |= shapePriority
	}
	if f.DueBefore != "" {
		s |= shapeDueBefore
	}
	if f.DueAfter != "" {
		s |= shapeDueAfter
	}
	if f.Overdue {
		s |= shapeOverdue
	}
	return s
}

// Validate checks every supplied filter value against its accepted set
// before any predicate is compiled.
func (f TaskFilter) Validate() error {
	if f.Status != "" {
		if err := models.CheckStatus(f.Status); err != nil {
			return err
		}
	}
	if f.Priority != "" {
		if err := models.CheckPriority(f.Priority); err != nil {
			return err
		}
	}
	if f.DueBefore != "" {
		if err := models.CheckDueDate(f.DueBefore); err != nil {
			return fmt.Errorf("due_before: %w", err)
		}
	}
	if f.DueAfter != "" {
		if err := models.CheckDueDate(f.DueAfter); err != nil {
			return fmt.Errorf("due_after: %w", err)
		}
	}
	if f.Overdue && f.Now == "" {
		return fmt.Errorf("overdue filter requires a reference time")
	}
	return nil
}

// compileWhere builds the WHERE clause text for a shape. Placeholder
// order must match bindArgs exactly: owner first, then the explicit
// filters in declaration order, then the overdue bound.
//
// When explicit filters are combined with the overdue toggle the two
// branches are joined with OR inside a single owner-scoped predicate:
// owner AND (filters OR overdue). A row matching both branches appears
// once, so no distinct/dedup step is needed.
func compileWhere(s filterShape) string {
	var conds []string
	if s&shapeStatus != 0 {
		conds = append(conds, "status = ?")
	}
	if s&shapePriority != 0 {
		conds = append(conds, "priority = ?")
	}
	if s&shapeDueBefore != 0 {
		conds = append(conds, "due_date IS NOT NULL AND due_date < ?")
	}
	if s&shapeDueAfter != 0 {
		conds = append(conds, "due_date IS NOT NULL AND due_date > ?")
	}

	const overdue = "(due_date IS NOT NULL AND due_date < ? AND status <> '" + models.StatusDone + "')"

	switch {
	case len(conds) == 0 && s&shapeOverdue == 0:
		return "user_id = ?"
	case len(conds) == 0:
		return "user_id = ? AND " + overdue
	case s&shapeOverdue == 0:
		return "user_id = ? AND " + strings.Join(conds, " AND ")
	default:
		return "user_id = ? AND ((" + strings.Join(conds, " AND ") + ") OR " + overdue + ")"
	}
}

// bindArgs produces the execution-time values in the same order as the
// placeholders emitted by compileWhere for this filter's shape.
func (f TaskFilter) bindArgs(owner uuid.UUID) []interface{} {
	args := []interface{}{owner}
	if f.Status != "" {
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
	}
	if f.DueBefore != "" {
		args = append(args, f.DueBefore)
	}
	if f.DueAfter != "" {
		args = append(args, f.DueAfter)
	}
	if f.Overdue {
		args = append(args, f.Now)
	}
	return args
}
