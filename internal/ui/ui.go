// Package ui renders the board's HTML pages. Templates and static assets
// are embedded; every page is wrapped in the shared layout shell, which
// only knows that it renders a "content" block.
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joescharf/board/internal/models"
	"github.com/joescharf/board/internal/route"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		// Raw HTML in descriptions is dropped (goldmark's default).
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

// RenderMarkdown converts an issue description to HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Each page gets its own
// template set so every page can define "content".
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{"issuePath": route.IssuePath}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"home", "project", "issue", "notfound"} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *Renderer) render(w io.Writer, page string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// HomePage lists the projects.
type HomePage struct {
	Title    string
	Projects []*models.Project
}

// ProjectPage lists a project's issues.
type ProjectPage struct {
	Title   string
	Project *models.Project
	Issues  []*models.Issue
}

// IssuePage shows a single issue.
type IssuePage struct {
	Title       string
	Project     *models.Project
	Issue       *models.Issue
	Description template.HTML
}

// NotFoundPage explains why a page could not be shown.
type NotFoundPage struct {
	Title   string
	Message string
}

// Home renders the project list.
func (r *Renderer) Home(w io.Writer, projects []*models.Project) error {
	return r.render(w, "home", HomePage{Title: "Projects", Projects: projects})
}

// Project renders a project's issue table.
func (r *Renderer) Project(w io.Writer, project *models.Project, issues []*models.Issue) error {
	return r.render(w, "project", ProjectPage{Title: project.Name, Project: project, Issues: issues})
}

// IssueDetail renders the issue detail page.
func (r *Renderer) IssueDetail(w io.Writer, project *models.Project, issue *models.Issue) error {
	desc, err := RenderMarkdown(issue.Description)
	if err != nil {
		return err
	}
	return r.render(w, "issue", IssuePage{
		Title:       issue.Summary,
		Project:     project,
		Issue:       issue,
		Description: desc,
	})
}

// NotFound renders a graceful error page.
func (r *Renderer) NotFound(w io.Writer, title, message string) error {
	return r.render(w, "notfound", NotFoundPage{Title: title, Message: message})
}

// StaticHandler serves the embedded assets. Mount it under /static/.
func StaticHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub)), nil
}
