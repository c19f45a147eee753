// Package route matches page paths against typed segment patterns such as
// "/projects/{projectId}/issues/{issueId:uuid}". Mismatches are reported
// as errors instead of yielding empty or misplaced values.
package route

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotRecognized is wrapped by every match failure.
var ErrNotRecognized = errors.New("route not recognized")

// IssueDetail is the route of the issue detail page.
var IssueDetail = MustCompile("/projects/{projectId}/issues/{issueId:uuid}")

type kind int

const (
	kindLiteral kind = iota
	kindParam
	kindUUID
)

type segment struct {
	kind  kind
	value string // literal text or parameter name
}

// Pattern is a compiled route pattern.
type Pattern struct {
	raw      string
	segments []segment
}

// Params holds the parameter values of a successful match.
type Params map[string]string

// MismatchError describes why a path did not match a pattern.
type MismatchError struct {
	Path    string
	Pattern string
	Reason  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %q does not match %s: %s", ErrNotRecognized, e.Path, e.Pattern, e.Reason)
}

func (e *MismatchError) Unwrap() error { return ErrNotRecognized }

// Compile parses a pattern. Segments are literals, "{name}" for any
// non-empty value, or "{name:uuid}" for a UUID.
func Compile(pattern string) (*Pattern, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	p := &Pattern{raw: pattern}
	seen := make(map[string]bool)
	for _, part := range splitPath(pattern) {
		if part == "" {
			return nil, fmt.Errorf("pattern %q has an empty segment", pattern)
		}
		if !strings.HasPrefix(part, "{") {
			p.segments = append(p.segments, segment{kind: kindLiteral, value: part})
			continue
		}
		if !strings.HasSuffix(part, "}") {
			return nil, fmt.Errorf("pattern %q: unterminated parameter %q", pattern, part)
		}

		name, typ, _ := strings.Cut(part[1:len(part)-1], ":")
		if name == "" {
			return nil, fmt.Errorf("pattern %q: unnamed parameter", pattern)
		}
		if seen[name] {
			return nil, fmt.Errorf("pattern %q: duplicate parameter %q", pattern, name)
		}
		seen[name] = true

		switch typ {
		case "":
			p.segments = append(p.segments, segment{kind: kindParam, value: name})
		case "uuid":
			p.segments = append(p.segments, segment{kind: kindUUID, value: name})
		default:
			return nil, fmt.Errorf("pattern %q: unknown parameter type %q", pattern, typ)
		}
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source pattern.
func (p *Pattern) String() string { return p.raw }

// Match checks path against the pattern. A single trailing slash is
// ignored. Any mismatch returns a *MismatchError.
func (p *Pattern) Match(path string) (Params, error) {
	fail := func(format string, a ...any) (Params, error) {
		return nil, &MismatchError{Path: path, Pattern: p.raw, Reason: fmt.Sprintf(format, a...)}
	}

	if !strings.HasPrefix(path, "/") {
		return fail("path must start with /")
	}
	parts := splitPath(strings.TrimSuffix(path, "/"))
	if len(parts) != len(p.segments) {
		return fail("want %d segments, got %d", len(p.segments), len(parts))
	}

	params := make(Params)
	for i, seg := range p.segments {
		part := parts[i]
		switch seg.kind {
		case kindLiteral:
			if part != seg.value {
				return fail("segment %d is %q, want %q", i+1, part, seg.value)
			}
		case kindParam:
			if part == "" {
				return fail("empty %s", seg.value)
			}
			params[seg.value] = part
		case kindUUID:
			// uuid.Parse also takes the urn, braced and unhyphenated forms.
			if _, err := uuid.Parse(part); err != nil || len(part) != 36 {
				return fail("%s %q is not a uuid", seg.value, part)
			}
			params[seg.value] = part
		}
	}
	return params, nil
}

// Build renders the pattern with the given parameter values.
func (p *Pattern) Build(params Params) (string, error) {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.kind == kindLiteral {
			b.WriteString(seg.value)
			continue
		}
		v, ok := params[seg.value]
		if !ok || v == "" {
			return "", fmt.Errorf("build %s: missing %s", p.raw, seg.value)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// IssueIDFromPath extracts the issue id from an issue detail page path.
func IssueIDFromPath(path string) (string, error) {
	params, err := IssueDetail.Match(path)
	if err != nil {
		return "", err
	}
	return params["issueId"], nil
}

// IssuePath returns the detail page path of an issue.
func IssuePath(projectID, issueID string) string {
	return "/projects/" + projectID + "/issues/" + issueID
}

func splitPath(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
