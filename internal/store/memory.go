package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/sampledata"
)

// MemoryStore serves a dataset held in memory. It never mutates the
// dataset after construction, so it is safe for concurrent use.
type MemoryStore struct {
	projects []*models.Project
	people   []*models.Person
	issues   []*models.Issue
}

// NewMemoryStore wraps a validated dataset.
func NewMemoryStore(ds *sampledata.Dataset) *MemoryStore {
	return &MemoryStore{
		projects: ds.Projects,
		people:   ds.People,
		issues:   ds.Issues,
	}
}

func (s *MemoryStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	for _, p := range s.projects {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Project) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) GetIssue(_ context.Context, id string) (*models.Issue, error) {
	for _, i := range s.issues {
		if i.ID == id {
			return i.Clone(), nil
		}
	}
	return nil, fmt.Errorf("issue %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListIssues(_ context.Context, filter IssueListFilter) ([]*models.Issue, error) {
	var out []*models.Issue
	for _, i := range s.issues {
		if filter.Matches(i) {
			out = append(out, i.Clone())
		}
	}
	slices.SortFunc(out, compareIssues)
	return out, nil
}

// compareIssues orders issues like the board: status column, then
// priority, then id.
func compareIssues(a, b *models.Issue) int {
	return cmp.Or(
		cmp.Compare(slices.Index(models.IssueStatuses, a.Status), slices.Index(models.IssueStatuses, b.Status)),
		cmp.Compare(slices.Index(models.IssuePriorities, a.Priority), slices.Index(models.IssuePriorities, b.Priority)),
		cmp.Compare(a.ID, b.ID),
	)
}

func (s *MemoryStore) GetPerson(_ context.Context, id string) (*models.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListPeople(_ context.Context) ([]*models.Person, error) {
	out := make([]*models.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p.Clone())
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
