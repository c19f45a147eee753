// Package editsession holds the transient, unsaved copy of an issue while
// it is being edited. A session is seeded from the data source, updated
// field by field, and discarded when closed. Closing never writes back to
// the data source unless a Saver is installed.
package editsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joescharf/board/internal/models"
)

// DefaultPriority seeds the priority field of every new session.
const DefaultPriority = models.IssuePriorityMedium

// ErrClosed is returned by any operation on a session that was already
// saved or cancelled.
var ErrClosed = errors.New("edit session closed")

// Source is the data provider a session is seeded from.
type Source interface {
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	ListPeople(ctx context.Context) ([]*models.Person, error)
}

// Saver persists a saved draft. Sessions without a Saver treat save as a
// plain close.
type Saver interface {
	SaveIssue(ctx context.Context, draft *models.Issue) error
}

// Outcome tells the completion callback how a session ended.
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeSaved
)

func (o Outcome) String() string {
	if o == OutcomeSaved {
		return "saved"
	}
	return "cancelled"
}

// CloseFunc is invoked exactly once when a session closes.
type CloseFunc func(Outcome)

// Field names an editable session field.
type Field string

const (
	FieldSummary     Field = "summary"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldReporter    Field = "reporter"
	FieldAssignee    Field = "assignee"
	FieldDueDate     Field = "due"
)

// Description wraps the rich-text description body.
type Description struct {
	Text string
}

type fields struct {
	summary     string
	description Description
	status      models.IssueStatus
	priority    models.IssuePriority
	reporter    Selection
	assignee    Selection
	due         *time.Time
}

// Option configures Open.
type Option func(*Session)

// WithSaver installs a persistence hook that runs on Save.
func WithSaver(s Saver) Option {
	return func(sess *Session) { sess.saver = s }
}

// WithStoredPriority seeds priority from the issue instead of DefaultPriority.
func WithStoredPriority() Option {
	return func(sess *Session) { sess.storedPriority = true }
}

// Session is the editable state of one issue. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	issueID   string
	projectID string
	issueType models.IssueType
	people    []models.Person

	seed    fields
	current fields

	onClose        CloseFunc
	saver          Saver
	storedPriority bool
	saving         bool
	closed         bool
	outcome        Outcome
}

// Open looks up issueID in src and seeds a new session from it. The
// returned error wraps store.ErrNotFound when the issue does not exist.
// onClose may be nil.
func Open(ctx context.Context, src Source, issueID string, onClose CloseFunc, opts ...Option) (*Session, error) {
	issue, err := src.GetIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("open edit session: %w", err)
	}

	people, err := src.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}

	due, err := issue.DueDate()
	if err != nil {
		return nil, fmt.Errorf("open edit session: %w", err)
	}

	s := &Session{
		issueID:   issue.ID,
		projectID: issue.ProjectID,
		issueType: issue.Type,
		onClose:   onClose,
	}
	for _, p := range people {
		s.people = append(s.people, *p)
	}
	for _, opt := range opts {
		opt(s)
	}

	priority := DefaultPriority
	if s.storedPriority {
		priority = issue.Priority
	}

	s.seed = fields{
		summary:     issue.Summary,
		description: Description{Text: issue.Description},
		status:      issue.Status,
		priority:    priority,
		reporter:    seedSelection(issue.Reporter),
		assignee:    seedSelection(issue.Assignee),
		due:         due,
	}
	s.current = s.seed
	return s, nil
}

// IssueID returns the id of the issue being edited.
func (s *Session) IssueID() string { return s.issueID }

// ProjectID returns the project of the issue being edited.
func (s *Session) ProjectID() string { return s.projectID }

// IssueType returns the type of the issue being edited.
func (s *Session) IssueType() models.IssueType { return s.issueType }

// People returns the people available to the reporter and assignee selectors.
func (s *Session) People() []models.Person {
	out := make([]models.Person, len(s.people))
	copy(out, s.people)
	return out
}

// DefaultPerson is what a cleared selector falls back to: the first entry
// of the people list.
func (s *Session) DefaultPerson() *models.Person {
	if len(s.people) == 0 {
		return nil
	}
	p := s.people[0]
	return &p
}

func (s *Session) update(fn func(f *fields) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.saving {
		return ErrClosed
	}
	return fn(&s.current)
}

// SetSummary replaces the summary verbatim.
func (s *Session) SetSummary(v string) error {
	return s.update(func(f *fields) error {
		f.summary = v
		return nil
	})
}

// SetDescription replaces the description text verbatim.
func (s *Session) SetDescription(text string) error {
	return s.update(func(f *fields) error {
		f.description = Description{Text: text}
		return nil
	})
}

// SetStatus replaces the status. Values outside the enumeration are rejected.
func (s *Session) SetStatus(v models.IssueStatus) error {
	status, err := models.ParseIssueStatus(string(v))
	if err != nil {
		return err
	}
	return s.update(func(f *fields) error {
		f.status = status
		return nil
	})
}

// SetPriority replaces the priority. Values outside the enumeration are rejected.
func (s *Session) SetPriority(v models.IssuePriority) error {
	priority, err := models.ParseIssuePriority(string(v))
	if err != nil {
		return err
	}
	return s.update(func(f *fields) error {
		f.priority = priority
		return nil
	})
}

// SelectReporter sets the reporter; nil clears the selector.
func (s *Session) SelectReporter(p *models.Person) error {
	return s.update(func(f *fields) error {
		f.reporter = Select(p)
		return nil
	})
}

// ClearReporter explicitly clears the reporter selector.
func (s *Session) ClearReporter() error { return s.SelectReporter(nil) }

// SelectAssignee sets the assignee; nil clears the selector.
func (s *Session) SelectAssignee(p *models.Person) error {
	return s.update(func(f *fields) error {
		f.assignee = Select(p)
		return nil
	})
}

// ClearAssignee explicitly clears the assignee selector.
func (s *Session) ClearAssignee() error { return s.SelectAssignee(nil) }

// SetDueDate replaces the due date; nil removes it.
func (s *Session) SetDueDate(d *time.Time) error {
	return s.update(func(f *fields) error {
		if d == nil {
			f.due = nil
			return nil
		}
		v := *d
		f.due = &v
		return nil
	})
}

func (s *Session) snapshot() fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Summary returns the current summary.
func (s *Session) Summary() string { return s.snapshot().summary }

// Description returns the current description.
func (s *Session) Description() Description { return s.snapshot().description }

// Status returns the current status.
func (s *Session) Status() models.IssueStatus { return s.snapshot().status }

// Priority returns the current priority.
func (s *Session) Priority() models.IssuePriority { return s.snapshot().priority }

// Reporter returns the reporter selection.
func (s *Session) Reporter() Selection { return s.snapshot().reporter }

// Assignee returns the assignee selection.
func (s *Session) Assignee() Selection { return s.snapshot().assignee }

// ResolvedReporter returns the person the reporter selector displays.
func (s *Session) ResolvedReporter() *models.Person {
	return s.Reporter().Resolve(s.DefaultPerson())
}

// ResolvedAssignee returns the person the assignee selector displays.
func (s *Session) ResolvedAssignee() *models.Person {
	return s.Assignee().Resolve(s.DefaultPerson())
}

// DueDate returns a copy of the current due date, or nil.
func (s *Session) DueDate() *time.Time {
	due := s.snapshot().due
	if due == nil {
		return nil
	}
	v := *due
	return &v
}

// Changed lists the fields whose value differs from the seeded one.
func (s *Session) Changed() []Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Field
	if s.current.summary != s.seed.summary {
		out = append(out, FieldSummary)
	}
	if s.current.description != s.seed.description {
		out = append(out, FieldDescription)
	}
	if s.current.status != s.seed.status {
		out = append(out, FieldStatus)
	}
	if s.current.priority != s.seed.priority {
		out = append(out, FieldPriority)
	}
	if !s.current.reporter.equal(s.seed.reporter) {
		out = append(out, FieldReporter)
	}
	if !s.current.assignee.equal(s.seed.assignee) {
		out = append(out, FieldAssignee)
	}
	if !sameDate(s.current.due, s.seed.due) {
		out = append(out, FieldDueDate)
	}
	return out
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Draft returns the session's current values as a detached issue. Person
// fields hold what the selectors display.
func (s *Session) Draft() *models.Issue {
	f := s.snapshot()
	def := s.DefaultPerson()
	return &models.Issue{
		ID:          s.issueID,
		ProjectID:   s.projectID,
		Type:        s.issueType,
		Summary:     f.summary,
		Description: f.description.Text,
		Status:      f.status,
		Priority:    f.priority,
		Reporter:    f.reporter.Resolve(def),
		Assignee:    f.assignee.Resolve(def),
		Due:         models.FormatDate(f.due),
	}
}

// Closed reports whether the session has been saved or cancelled, and how.
func (s *Session) Closed() (bool, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed, s.outcome
}

// Cancel discards the session and invokes the completion callback.
func (s *Session) Cancel() error {
	return s.close(OutcomeCancelled)
}

// Save runs the Saver, if any, then closes the session like Cancel does.
// Only one Save runs the Saver; edits, Cancel and other Saves made while it
// runs get ErrClosed. A failing Saver leaves the session open.
func (s *Session) Save(ctx context.Context) error {
	if s.saver == nil {
		return s.close(OutcomeSaved)
	}

	s.mu.Lock()
	if s.closed || s.saving {
		s.mu.Unlock()
		return ErrClosed
	}
	s.saving = true
	s.mu.Unlock()

	if err := s.saver.SaveIssue(ctx, s.Draft()); err != nil {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
		return fmt.Errorf("save issue %s: %w", s.issueID, err)
	}
	return s.finish(OutcomeSaved, true)
}

func (s *Session) close(o Outcome) error {
	return s.finish(o, false)
}

// finish closes the session. Only the Save holding the saving mark may
// close a session that is mid-save.
func (s *Session) finish(o Outcome, saver bool) error {
	s.mu.Lock()
	if s.closed || (s.saving && !saver) {
		s.mu.Unlock()
		return ErrClosed
	}
	s.saving = false
	s.closed = true
	s.outcome = o
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose(o)
	}
	return nil
}
