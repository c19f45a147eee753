package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/sampledata"
)

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestImport_ReplacesContents(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ds := sampledata.Default()
	ds.Issues = ds.Issues[:1]
	require.NoError(t, s.Import(ctx, ds))

	issues, err := s.ListIssues(ctx, IssueListFilter{})
	require.NoError(t, err)
	assert.Len(t, issues, 1)

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, len(ds.People))
}
