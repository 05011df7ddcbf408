package models

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusTodo, StatusInProgress, StatusDone} {
		if !ValidStatus(s) {
			t.Errorf("Expected %q to be a valid status", s)
		}
	}
	for _, s := range []string{"", "pending", "TODO", "Done", "in-progress"} {
		if ValidStatus(s) {
			t.Errorf("Expected %q to be rejected", s)
		}
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !ValidPriority(p) {
			t.Errorf("Expected %q to be a valid priority", p)
		}
	}
	for _, p := range []string{"", "critical", "HIGH", "normal"} {
		if ValidPriority(p) {
			t.Errorf("Expected %q to be rejected", p)
		}
	}
}

func TestValidDueDate(t *testing.T) {
	valid := []string{
		"2021-01-01",
		"1999-12-31",
		"2021-01-01T10:30:00Z",
		"2099-12-31T23:59:59Z",
	}
	for _, d := range valid {
		if !ValidDueDate(d) {
			t.Errorf("Expected %q to be a valid due date", d)
		}
	}

	invalid := []string{
		"",
		"2021-1-1",
		"01/01/2021",
		"2021-01-01T10:30:00",
		"2021-01-01 10:30:00",
		"2021-01-01T10:30:00+02:00",
		"2021-13-01",
		"2021-02-30",
		"tomorrow",
	}
	for _, d := range invalid {
		if ValidDueDate(d) {
			t.Errorf("Expected %q to be rejected", d)
		}
	}
}

func TestCheckErrorsAreDescriptive(t *testing.T) {
	if err := CheckStatus("bogus"); err == nil {
		t.Error("Expected error for invalid status")
	}
	if err := CheckPriority("bogus"); err == nil {
		t.Error("Expected error for invalid priority")
	}
	if err := CheckDueDate("bogus"); err == nil {
		t.Error("Expected error for invalid due date")
	}
	if err := CheckStatus(StatusTodo); err != nil {
		t.Errorf("Expected no error for valid status, got %v", err)
	}
}
