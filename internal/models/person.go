package models

// Person is a user that can be referenced as an issue's reporter or assignee.
type Person struct {
	ID        string
	Name      string
	AvatarURL string
}

// Clone returns a copy of p, or nil when p is nil.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
