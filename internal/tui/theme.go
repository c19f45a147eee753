package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the edit modal.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard palette bound to renderer r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#0052CC", Dark: "#4C9AFF"},
		Secondary: lipgloss.AdaptiveColor{Light: "#5E6C84", Dark: "#B3BAC5"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#97A0AF", Dark: "#7A869A"},
		Error:     lipgloss.AdaptiveColor{Light: "#DE350B", Dark: "#FF5630"},
		Border:    lipgloss.AdaptiveColor{Light: "#DFE1E6", Dark: "#42526E"},
	}
}
