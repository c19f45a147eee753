package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil-date format used for issue due dates.
const DateLayout = "2006-01-02"

// IssueStatus represents the workflow state of an issue.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusInReview   IssueStatus = "in_review"
	IssueStatusDone       IssueStatus = "done"
)

// IssueStatuses lists every status in board column order.
var IssueStatuses = []IssueStatus{
	IssueStatusTodo,
	IssueStatusInProgress,
	IssueStatusInReview,
	IssueStatusDone,
}

// IssuePriority represents the urgency of an issue.
type IssuePriority string

const (
	IssuePriorityHighest IssuePriority = "highest"
	IssuePriorityHigh    IssuePriority = "high"
	IssuePriorityMedium  IssuePriority = "medium"
	IssuePriorityLow     IssuePriority = "low"
	IssuePriorityLowest  IssuePriority = "lowest"
)

// IssuePriorities lists every priority from most to least urgent.
var IssuePriorities = []IssuePriority{
	IssuePriorityHighest,
	IssuePriorityHigh,
	IssuePriorityMedium,
	IssuePriorityLow,
	IssuePriorityLowest,
}

// IssueType represents the kind of work an issue tracks.
type IssueType string

const (
	IssueTypeTask  IssueType = "task"
	IssueTypeBug   IssueType = "bug"
	IssueTypeStory IssueType = "story"
	IssueTypeEpic  IssueType = "epic"
)

// IssueTypes lists every issue type.
var IssueTypes = []IssueType{
	IssueTypeTask,
	IssueTypeBug,
	IssueTypeStory,
	IssueTypeEpic,
}

// Issue represents a trackable unit of work within a project.
type Issue struct {
	ID          string
	ProjectID   string
	Type        IssueType
	Summary     string
	Description string // markdown
	Status      IssueStatus
	Priority    IssuePriority
	Assignee    *Person
	Reporter    *Person
	Due         string // YYYY-MM-DD, empty when unset
}

// Clone returns a deep copy of the issue so callers never alias store state.
func (i *Issue) Clone() *Issue {
	if i == nil {
		return nil
	}
	c := *i
	c.Assignee = i.Assignee.Clone()
	c.Reporter = i.Reporter.Clone()
	return &c
}

// DueDate parses the due string. It returns nil when no due date is set.
func (i *Issue) DueDate() (*time.Time, error) {
	if i.Due == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, i.Due)
	if err != nil {
		return nil, fmt.Errorf("parse due date %q: %w", i.Due, err)
	}
	return &t, nil
}

// FormatDate renders a due date in DateLayout, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseIssueStatus validates s against the status enumeration.
func ParseIssueStatus(s string) (IssueStatus, error) {
	for _, st := range IssueStatuses {
		if string(st) == strings.ToLower(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (want one of %s)", s, joinValues(IssueStatuses))
}

// ParseIssuePriority validates s against the priority enumeration.
func ParseIssuePriority(s string) (IssuePriority, error) {
	for _, p := range IssuePriorities {
		if string(p) == strings.ToLower(s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q (want one of %s)", s, joinValues(IssuePriorities))
}

// ParseIssueType validates s against the issue type enumeration.
func ParseIssueType(s string) (IssueType, error) {
	for _, t := range IssueTypes {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid issue type %q (want one of %s)", s, joinValues(IssueTypes))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
