// Package sampledata loads the static projects, people, and issues that
// back a board session. Datasets are decoded from YAML, validated once,
// and treated as read-only afterwards.
package sampledata

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/board/internal/models"
)

//go:embed sample.yaml
var sampleYAML []byte

// Dataset is a complete, validated set of board data.
type Dataset struct {
	Projects []*models.Project
	People   []*models.Person
	Issues   []*models.Issue
}

type fileProject struct {
	ID          string `yaml:"id"`
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type filePerson struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	AvatarURL string `yaml:"avatar_url"`
}

type fileIssue struct {
	ID          string `yaml:"id"`
	ProjectID   string `yaml:"project_id"`
	Type        string `yaml:"type"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Priority    string `yaml:"priority"`
	Assignee    string `yaml:"assignee"`
	Reporter    string `yaml:"reporter"`
	Due         string `yaml:"due"`
}

type file struct {
	Projects []fileProject `yaml:"projects"`
	People   []filePerson  `yaml:"people"`
	Issues   []fileIssue   `yaml:"issues"`
}

// Default returns the embedded sample dataset. It panics if the embedded
// YAML is invalid, which is a build defect.
func Default() *Dataset {
	ds, err := Load(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded sample data: %v", err))
	}
	return ds
}

// LoadFile reads and validates a dataset from a YAML file.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Load decodes and validates a dataset. Person references on issues are
// resolved to value copies of the referenced people.
func Load(r io.Reader) (*Dataset, error) {
	var raw file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	ds := &Dataset{}
	for _, p := range raw.Projects {
		ds.Projects = append(ds.Projects, &models.Project{
			ID:          p.ID,
			Key:         p.Key,
			Name:        p.Name,
			Description: p.Description,
		})
	}

	people := make(map[string]*models.Person, len(raw.People))
	for _, p := range raw.People {
		person := &models.Person{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
		ds.People = append(ds.People, person)
		people[p.ID] = person
	}

	for _, fi := range raw.Issues {
		issue := &models.Issue{
			ID:          fi.ID,
			ProjectID:   fi.ProjectID,
			Summary:     fi.Summary,
			Description: fi.Description,
			Due:         fi.Due,
		}

		var err error
		if issue.Type, err = models.ParseIssueType(fi.Type); err != nil {
			return nil, fmt.Errorf("issue %s: %w", fi.ID, err)
		}
		if issue.Status, err = models.ParseIssueStatus(fi.Status); err != nil {
			return nil, fmt.Errorf("issue %s: %w", fi.ID, err)
		}
		if issue.Priority, err = models.ParseIssuePriority(fi.Priority); err != nil {
			return nil, fmt.Errorf("issue %s: %w", fi.ID, err)
		}
		if issue.Assignee, err = resolvePerson(people, fi.Assignee); err != nil {
			return nil, fmt.Errorf("issue %s assignee: %w", fi.ID, err)
		}
		if issue.Reporter, err = resolvePerson(people, fi.Reporter); err != nil {
			return nil, fmt.Errorf("issue %s reporter: %w", fi.ID, err)
		}
		ds.Issues = append(ds.Issues, issue)
	}

	if err := Validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func resolvePerson(people map[string]*models.Person, id string) (*models.Person, error) {
	if id == "" {
		return nil, nil
	}
	p, ok := people[id]
	if !ok {
		return nil, fmt.Errorf("unknown person %q", id)
	}
	return p.Clone(), nil
}

// Validate checks the dataset invariants: unique, well-formed ids,
// enumerated values, resolvable project references, and parseable due dates.
func Validate(ds *Dataset) error {
	if len(ds.People) == 0 {
		return fmt.Errorf("dataset has no people")
	}

	projects := make(map[string]bool, len(ds.Projects))
	for _, p := range ds.Projects {
		if p.ID == "" {
			return fmt.Errorf("project with empty id")
		}
		if projects[p.ID] {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		projects[p.ID] = true
	}

	people := make(map[string]bool, len(ds.People))
	for _, p := range ds.People {
		if _, err := uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("person %q: id is not a uuid", p.ID)
		}
		if people[p.ID] {
			return fmt.Errorf("duplicate person id %q", p.ID)
		}
		people[p.ID] = true
	}

	issues := make(map[string]bool, len(ds.Issues))
	for _, i := range ds.Issues {
		if _, err := uuid.Parse(i.ID); err != nil {
			return fmt.Errorf("issue %q: id is not a uuid", i.ID)
		}
		if issues[i.ID] {
			return fmt.Errorf("duplicate issue id %q", i.ID)
		}
		issues[i.ID] = true

		if !projects[i.ProjectID] {
			return fmt.Errorf("issue %s: unknown project %q", i.ID, i.ProjectID)
		}
		if _, err := models.ParseIssueStatus(string(i.Status)); err != nil {
			return fmt.Errorf("issue %s: %w", i.ID, err)
		}
		if _, err := models.ParseIssuePriority(string(i.Priority)); err != nil {
			return fmt.Errorf("issue %s: %w", i.ID, err)
		}
		if _, err := i.DueDate(); err != nil {
			return fmt.Errorf("issue %s: %w", i.ID, err)
		}
	}
	return nil
}
