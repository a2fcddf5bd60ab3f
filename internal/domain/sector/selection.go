package sector

import (
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

// Connections maps each company id carrying category to the strength of that
// membership.  Primary is checked first, then secondary, then tertiary.
func Connections(companies []portfolio.Company, category string) map[int]portfolio.Strength {
	out := make(map[int]portfolio.Strength)
	for i := range companies {
		if s, ok := companies[i].StrengthFor(category); ok {
			out[companies[i].ID] = s
		}
	}
	return out
}

// Selection is the highlighted category.  The zero value selects nothing.
type Selection struct {
	Category    string                     `json:"category,omitempty"`
	Connections map[int]portfolio.Strength `json:"connections,omitempty"`
}

// Active reports whether a category is selected.
func (s Selection) Active() bool { return s.Category != "" }

// Strength returns the selected category's connection to company id.
func (s Selection) Strength(id int) (portfolio.Strength, bool) {
	st, ok := s.Connections[id]
	return st, ok
}

// Toggle selects category, or clears the selection when category is already
// selected.
func (s Selection) Toggle(companies []portfolio.Company, category string) Selection {
	if s.Category == category {
		return Selection{}
	}
	return Selection{Category: category, Connections: Connections(companies, category)}
}

// Clear deselects.
func (s Selection) Clear() Selection { return Selection{} }

// Legend returns the legend title for the selection.
func (s Selection) Legend() string {
	if !s.Active() {
		return "Click a sector to highlight"
	}
	return `"` + s.Category + `" connections`
}

//Personal.AI order the ending
