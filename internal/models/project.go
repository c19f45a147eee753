package models

// Project groups issues under a short key (e.g. "SP").
type Project struct {
	ID          string
	Key         string
	Name        string
	Description string
}
