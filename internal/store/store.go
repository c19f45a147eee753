package store

import (
	"context"
	"errors"

	"github.com/joescharf/board/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no matching record.
var ErrNotFound = errors.New("not found")

// IssueListFilter specifies filters for listing issues.
type IssueListFilter struct {
	ProjectID  string
	Status     models.IssueStatus
	Priority   models.IssuePriority
	AssigneeID string
}

// Matches reports whether the issue passes every non-empty filter field.
func (f IssueListFilter) Matches(issue *models.Issue) bool {
	if f.ProjectID != "" && issue.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && issue.Status != f.Status {
		return false
	}
	if f.Priority != "" && issue.Priority != f.Priority {
		return false
	}
	if f.AssigneeID != "" && (issue.Assignee == nil || issue.Assignee.ID != f.AssigneeID) {
		return false
	}
	return true
}

// Store is the read-only data source behind the board. Implementations
// return copies, so callers may mutate results freely.
type Store interface {
	// Projects
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)

	// Issues
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	ListIssues(ctx context.Context, filter IssueListFilter) ([]*models.Issue, error)

	// People
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	ListPeople(ctx context.Context) ([]*models.Person, error)

	// Lifecycle
	Close() error
}
