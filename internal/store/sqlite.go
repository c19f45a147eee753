package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/sampledata"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
// Its contents are loaded with Import; the Store methods only read.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes access and avoids "database is locked"
	// errors under concurrent HTTP requests.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", strings.ToLower(pragma), err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Import replaces the database contents with the given dataset in a
// single transaction.
func (s *SQLiteStore) Import(ctx context.Context, ds *sampledata.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM issues", "DELETE FROM people", "DELETE FROM projects"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	for _, p := range ds.Projects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, key, name, description) VALUES (?, ?, ?, ?)`,
			p.ID, p.Key, p.Name, p.Description,
		); err != nil {
			return fmt.Errorf("import project %s: %w", p.ID, err)
		}
	}

	for pos, p := range ds.People {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO people (id, name, avatar_url, position) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.AvatarURL, pos,
		); err != nil {
			return fmt.Errorf("import person %s: %w", p.ID, err)
		}
	}

	for _, i := range ds.Issues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO issues (id, project_id, type, summary, description, status, priority, assignee_id, reporter_id, due)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.ID, i.ProjectID, string(i.Type), i.Summary, i.Description,
			string(i.Status), string(i.Priority), personID(i.Assignee), personID(i.Reporter), i.Due,
		); err != nil {
			return fmt.Errorf("import issue %s: %w", i.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func personID(p *models.Person) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.ID, Valid: true}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Projects ---

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, name, description FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Key, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, key, name, description FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// --- Issues ---

const issueSelect = `SELECT i.id, i.project_id, i.type, i.summary, i.description, i.status, i.priority, i.due,
	a.id, a.name, a.avatar_url, r.id, r.name, r.avatar_url
	FROM issues i
	LEFT JOIN people a ON a.id = i.assignee_id
	LEFT JOIN people r ON r.id = i.reporter_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	issue := &models.Issue{}
	var issueType, status, priority string
	var assigneeID, assigneeName, assigneeAvatar sql.NullString
	var reporterID, reporterName, reporterAvatar sql.NullString

	if err := row.Scan(&issue.ID, &issue.ProjectID, &issueType, &issue.Summary, &issue.Description,
		&status, &priority, &issue.Due,
		&assigneeID, &assigneeName, &assigneeAvatar,
		&reporterID, &reporterName, &reporterAvatar); err != nil {
		return nil, err
	}

	issue.Type = models.IssueType(issueType)
	issue.Status = models.IssueStatus(status)
	issue.Priority = models.IssuePriority(priority)
	if assigneeID.Valid {
		issue.Assignee = &models.Person{ID: assigneeID.String, Name: assigneeName.String, AvatarURL: assigneeAvatar.String}
	}
	if reporterID.Valid {
		issue.Reporter = &models.Person{ID: reporterID.String, Name: reporterName.String, AvatarURL: reporterAvatar.String}
	}
	return issue, nil
}

func (s *SQLiteStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := scanIssue(s.db.QueryRowContext(ctx, issueSelect+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return issue, nil
}

func (s *SQLiteStore) ListIssues(ctx context.Context, filter IssueListFilter) ([]*models.Issue, error) {
	query := issueSelect
	var conditions []string
	var args []any

	if filter.ProjectID != "" {
		conditions = append(conditions, "i.project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		conditions = append(conditions, "i.priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.AssigneeID != "" {
		conditions = append(conditions, "i.assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY
		CASE i.status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'in_review' THEN 2 WHEN 'done' THEN 3 ELSE 4 END,
		CASE i.priority WHEN 'highest' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 WHEN 'lowest' THEN 4 ELSE 5 END,
		i.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// --- People ---

func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	p := &models.Person{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, avatar_url FROM people WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// ListPeople returns people in dataset order, so the first entry matches
// the first person of the imported dataset.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, avatar_url FROM people ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var people []*models.Person
	for rows.Next() {
		p := &models.Person{}
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}
