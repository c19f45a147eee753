package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/sampledata"
	"github.com/joescharf/board/internal/store"
)

const sampleIssueID = "773096cf-9680-4a2a-9f4b-28e1db909392"

func setupTestServer(t *testing.T) (*Server, http.Handler, store.Store) {
	t.Helper()
	s := store.NewMemoryStore(sampledata.Default())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := NewServer(s, logger)
	require.NoError(t, err)
	router, err := srv.Router()
	require.NoError(t, err)
	return srv, router, s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListProjects(t *testing.T) {
	_, router, _ := setupTestServer(t)

	w := do(t, router, "GET", "/api/v1/projects", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var projects []*models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "project1", projects[0].ID)

	w = do(t, router, "GET", "/api/v1/projects/project1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, "GET", "/api/v1/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListIssues_Filters(t *testing.T) {
	_, router, _ := setupTestServer(t)

	w := do(t, router, "GET", "/api/v1/issues?status=todo", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var issues []*models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	assert.Len(t, issues, 1)

	w = do(t, router, "GET", "/api/v1/projects/project1/issues?priority=high", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, sampleIssueID, issues[0].ID)

	w = do(t, router, "GET", "/api/v1/issues?status=blocked", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "GET", "/api/v1/projects/missing/issues", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIssue(t *testing.T) {
	_, router, _ := setupTestServer(t)

	w := do(t, router, "GET", "/api/v1/issues/"+sampleIssueID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var issue models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, "2023-01-01", issue.Due)

	w = do(t, router, "GET", "/api/v1/issues/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestListPeople(t *testing.T) {
	_, router, _ := setupTestServer(t)
	w := do(t, router, "GET", "/api/v1/people", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var people []*models.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &people))
	assert.Len(t, people, 4)
}

func TestResolveRoute(t *testing.T) {
	_, router, _ := setupTestServer(t)

	w := do(t, router, "GET", "/api/v1/route?path=/projects/project1/issues/"+sampleIssueID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var rv routeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rv))
	assert.Equal(t, sampleIssueID, rv.IssueID)
	assert.Equal(t, "project1", rv.ProjectID)

	w = do(t, router, "GET", "/api/v1/route?path=/projects/project1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "route not recognized")
}

func TestCORSPreflight(t *testing.T) {
	_, router, _ := setupTestServer(t)
	w := do(t, router, "OPTIONS", "/api/v1/issues", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPages(t *testing.T) {
	_, router, _ := setupTestServer(t)

	w := do(t, router, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sample Project")

	w = do(t, router, "GET", "/projects/project1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Board columns should remember")

	w = do(t, router, "GET", "/projects/project1/issues/"+sampleIssueID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<li>keep the offset per column</li>")
	assert.Contains(t, w.Body.String(), "Mara Oyelaran")

	w = do(t, router, "GET", "/static/board.css", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPages_GracefulErrors(t *testing.T) {
	_, router, _ := setupTestServer(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"project not found", "/projects/missing", "Project not found"},
		{"malformed route", "/projects/project1/issues", "Route not recognized"},
		{"non uuid issue", "/projects/project1/issues/ISSUE-1", "Route not recognized"},
		{"unknown issue", "/projects/project1/issues/00000000-0000-4000-8000-000000000000", "Issue not found"},
		{"wrong project", "/projects/other/issues/" + sampleIssueID, "Issue not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "GET", tt.path, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}
