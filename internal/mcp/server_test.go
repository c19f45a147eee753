package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/sampledata"
	"github.com/joescharf/board/internal/store"
)

const sampleIssueID = "773096cf-9680-4a2a-9f4b-28e1db909392"

// failingStore wraps a store and injects errors.
type failingStore struct {
	store.Store
	listProjectsErr error
	listIssuesErr   error
	getIssueErr     error
}

func (f *failingStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if f.listProjectsErr != nil {
		return nil, f.listProjectsErr
	}
	return f.Store.ListProjects(ctx)
}

func (f *failingStore) ListIssues(ctx context.Context, filter store.IssueListFilter) ([]*models.Issue, error) {
	if f.listIssuesErr != nil {
		return nil, f.listIssuesErr
	}
	return f.Store.ListIssues(ctx, filter)
}

func (f *failingStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	if f.getIssueErr != nil {
		return nil, f.getIssueErr
	}
	return f.Store.GetIssue(ctx, id)
}

func newTestServer(t *testing.T) (*Server, *failingStore) {
	t.Helper()
	fs := &failingStore{Store: store.NewMemoryStore(sampledata.Default())}
	return NewServer(fs, "test"), fs
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	require.NoError(t, json.Unmarshal([]byte(text), target), "failed to parse result JSON: %s", text)
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t)
	require.NotNil(t, srv.MCPServer())
}

func TestHandleListProjects(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleListProjects(context.Background(), callToolReq("board_list_projects", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var projects []projectOut
	resultJSON(t, result, &projects)
	require.Len(t, projects, 1)
	assert.Equal(t, "project1", projects[0].ID)
	assert.Equal(t, "SP", projects[0].Key)
}

func TestHandleListProjects_StoreError(t *testing.T) {
	srv, fs := newTestServer(t)
	fs.listProjectsErr = fmt.Errorf("db connection failed")

	result, err := srv.handleListProjects(context.Background(), callToolReq("board_list_projects", nil))
	require.NoError(t, err, "handler should wrap errors in the result")
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "db connection failed")
}

func TestHandleListIssues(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"all", nil, 4},
		{"by project key", map[string]any{"project": "SP"}, 4},
		{"by status", map[string]any{"status": "in_progress"}, 1},
		{"by priority", map[string]any{"priority": "HIGHEST"}, 1},
		{"by assignee", map[string]any{"assignee": "2f6d7c1a-0e9b-4f55-9a3d-8c2b1e4f5a04"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.handleListIssues(ctx, callToolReq("board_list_issues", tt.args))
			require.NoError(t, err)
			require.False(t, result.IsError, resultText(t, result))

			var issues []issueOut
			resultJSON(t, result, &issues)
			assert.Len(t, issues, tt.want)
			for _, i := range issues {
				assert.Empty(t, i.Description)
				assert.Equal(t, "/projects/project1/issues/"+i.ID, i.Path)
			}
		})
	}
}

func TestHandleListIssues_Errors(t *testing.T) {
	srv, fs := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleListIssues(ctx, callToolReq("board_list_issues", map[string]any{"project": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "project not found")

	result, err = srv.handleListIssues(ctx, callToolReq("board_list_issues", map[string]any{"status": "open"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid status")

	fs.listIssuesErr = fmt.Errorf("disk full")
	result, err = srv.handleListIssues(ctx, callToolReq("board_list_issues", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "disk full")
}

func TestHandleGetIssue(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleGetIssue(context.Background(), callToolReq("board_get_issue", map[string]any{"issue_id": sampleIssueID}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var issue issueOut
	resultJSON(t, result, &issue)
	assert.Equal(t, "Board columns should remember their scroll position", issue.Summary)
	assert.Contains(t, issue.Description, "keep the offset per column")
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, "Mara Oyelaran", issue.Assignee.Name)
	assert.Equal(t, "2023-01-01", issue.Due)
}

func TestHandleGetIssue_Errors(t *testing.T) {
	srv, fs := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleGetIssue(ctx, callToolReq("board_get_issue", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter")

	result, err = srv.handleGetIssue(ctx, callToolReq("board_get_issue", map[string]any{"issue_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "issue not found: missing")

	fs.getIssueErr = fmt.Errorf("db locked")
	result, err = srv.handleGetIssue(ctx, callToolReq("board_get_issue", map[string]any{"issue_id": sampleIssueID}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "db locked")
}

func TestHandleListPeople(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleListPeople(context.Background(), callToolReq("board_list_people", nil))
	require.NoError(t, err)

	var people []personOut
	resultJSON(t, result, &people)
	require.Len(t, people, 4)
	assert.Equal(t, "Unassigned", people[0].Name)
}

func TestHandleResolveRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleResolveRoute(ctx, callToolReq("board_resolve_route", map[string]any{
		"path": "/projects/project1/issues/" + sampleIssueID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var got map[string]string
	resultJSON(t, result, &got)
	assert.Equal(t, "project1", got["projectId"])
	assert.Equal(t, sampleIssueID, got["issueId"])

	result, err = srv.handleResolveRoute(ctx, callToolReq("board_resolve_route", map[string]any{"path": "/projects/project1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
