package editsession

import "github.com/joescharf/board/internal/models"

// SelectionState distinguishes a chosen person from an explicitly cleared
// selector and one that never had a value.
type SelectionState int

const (
	Unset SelectionState = iota
	Selected
	Cleared
)

func (s SelectionState) String() string {
	switch s {
	case Selected:
		return "selected"
	case Cleared:
		return "cleared"
	default:
		return "unset"
	}
}

// Selection is the value of a reporter or assignee selector.
type Selection struct {
	state  SelectionState
	person models.Person
}

// Select returns a selection holding a copy of p. A nil p yields a
// cleared selection.
func Select(p *models.Person) Selection {
	if p == nil {
		return Selection{state: Cleared}
	}
	return Selection{state: Selected, person: *p}
}

// Clear returns an explicitly cleared selection.
func Clear() Selection { return Selection{state: Cleared} }

// State reports which variant the selection holds.
func (s Selection) State() SelectionState { return s.state }

// Person returns the selected person, if any.
func (s Selection) Person() (models.Person, bool) {
	if s.state != Selected {
		return models.Person{}, false
	}
	return s.person, true
}

// Resolve returns the person a selector displays. A cleared selection
// falls back to def; an unset one displays nobody.
func (s Selection) Resolve(def *models.Person) *models.Person {
	switch s.state {
	case Selected:
		p := s.person
		return &p
	case Cleared:
		return def.Clone()
	default:
		return nil
	}
}

func seedSelection(p *models.Person) Selection {
	if p == nil {
		return Selection{}
	}
	return Selection{state: Selected, person: *p}
}

func (s Selection) equal(o Selection) bool {
	return s.state == o.state && s.person == o.person
}
