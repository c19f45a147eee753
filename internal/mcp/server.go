package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/route"
	"github.com/joescharf/board/internal/store"
)

// Server exposes the board data provider as MCP tools.
type Server struct {
	store   store.Store
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, version string) *Server {
	return &Server{store: s, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("board", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listProjectsTool())
	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.getIssueTool())
	srv.AddTool(s.listPeopleTool())
	srv.AddTool(s.resolveRouteTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type projectOut struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type personOut struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type issueOut struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Type        string     `json:"type"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    *personOut `json:"assignee,omitempty"`
	Reporter    *personOut `json:"reporter,omitempty"`
	Due         string     `json:"due,omitempty"`
	Path        string     `json:"path"`
}

func toPersonOut(p *models.Person) *personOut {
	if p == nil {
		return nil
	}
	return &personOut{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
}

func toIssueOut(i *models.Issue, withDescription bool) issueOut {
	out := issueOut{
		ID:        i.ID,
		ProjectID: i.ProjectID,
		Type:      string(i.Type),
		Summary:   i.Summary,
		Status:    string(i.Status),
		Priority:  string(i.Priority),
		Assignee:  toPersonOut(i.Assignee),
		Reporter:  toPersonOut(i.Reporter),
		Due:       i.Due,
		Path:      route.IssuePath(i.ProjectID, i.ID),
	}
	if withDescription {
		out.Description = i.Description
	}
	return out
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal %s: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// board_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("board_list_projects",
		mcp.WithDescription("List all projects. Returns a JSON array of projects with id, key, name and description."),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}

	out := make([]projectOut, len(projects))
	for i, p := range projects {
		out[i] = projectOut{ID: p.ID, Key: p.Key, Name: p.Name, Description: p.Description}
	}
	return jsonResult(out, "projects")
}

// board_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("board_list_issues",
		mcp.WithDescription("List issues, optionally filtered by project, status, priority or assignee. Returns a JSON array without descriptions."),
		mcp.WithString("project", mcp.Description("Project id or key")),
		mcp.WithString("status", mcp.Description("Filter by status"), mcp.Enum(statusValues()...)),
		mcp.WithString("priority", mcp.Description("Filter by priority"), mcp.Enum(priorityValues()...)),
		mcp.WithString("assignee", mcp.Description("Filter by assignee person id")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter store.IssueListFilter

	if project := request.GetString("project", ""); project != "" {
		p, err := s.resolveProject(ctx, project)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", project)), nil
		}
		filter.ProjectID = p.ID
	}

	if status := request.GetString("status", ""); status != "" {
		st, err := models.ParseIssueStatus(status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter.Status = st
	}

	if priority := request.GetString("priority", ""); priority != "" {
		pr, err := models.ParseIssuePriority(priority)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter.Priority = pr
	}

	filter.AssigneeID = request.GetString("assignee", "")

	issues, err := s.store.ListIssues(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}

	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = toIssueOut(issue, false)
	}
	return jsonResult(out, "issues")
}

// board_get_issue
func (s *Server) getIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("board_get_issue",
		mcp.WithDescription("Get one issue by id, including its markdown description."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id (UUID)")),
	)
	return tool, s.handleGetIssue
}

func (s *Server) handleGetIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}

	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("issue not found: %s", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to get issue: %v", err)), nil
	}
	return jsonResult(toIssueOut(issue, true), "issue")
}

// board_list_people
func (s *Server) listPeopleTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("board_list_people",
		mcp.WithDescription("List the people that can be picked as reporter or assignee, in picker order."),
	)
	return tool, s.handleListPeople
}

func (s *Server) handleListPeople(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list people: %v", err)), nil
	}

	out := make([]personOut, len(people))
	for i, p := range people {
		out[i] = *toPersonOut(p)
	}
	return jsonResult(out, "people")
}

// board_resolve_route
func (s *Server) resolveRouteTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("board_resolve_route",
		mcp.WithDescription("Extract projectId and issueId from an issue detail path like /projects/{projectId}/issues/{issueId}."),
		mcp.WithString("path", mcp.Required(), mcp.Description("URL path to resolve")),
	)
	return tool, s.handleResolveRoute
}

func (s *Server) handleResolveRoute(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	params, err := route.IssueDetail.Match(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := struct {
		ProjectID string `json:"projectId"`
		IssueID   string `json:"issueId"`
	}{ProjectID: params["projectId"], IssueID: params["issueId"]}
	return jsonResult(out, "route")
}

// resolveProject looks a project up by id, then by key.
func (s *Server) resolveProject(ctx context.Context, idOrKey string) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, idOrKey)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	projects, lerr := s.store.ListProjects(ctx)
	if lerr != nil {
		return nil, lerr
	}
	for _, candidate := range projects {
		if candidate.Key == idOrKey {
			return candidate, nil
		}
	}
	return nil, err
}

func statusValues() []string {
	out := make([]string, len(models.IssueStatuses))
	for i, s := range models.IssueStatuses {
		out[i] = string(s)
	}
	return out
}

func priorityValues() []string {
	out := make([]string, len(models.IssuePriorities))
	for i, p := range models.IssuePriorities {
		out[i] = string(p)
	}
	return out
}
