// Package portfolio holds the company records read from the portfolio feed
// and the small amount of behaviour that belongs to them: stage and strength
// enums, category listing, and the static city coordinate table.
package portfolio

import (
	"strings"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// Stage is a company's fundraising stage.
type Stage string

const (
	StageAngel  Stage = "Angel"
	StageEarly  Stage = "Early"
	StageGrowth Stage = "Growth"
	StagePublic Stage = "Public"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageAngel, StageEarly, StageGrowth, StagePublic}

// ParseStage maps feed text to a Stage.  Blank or unrecognised text yields
// StageEarly; matching ignores case and surrounding whitespace.
func ParseStage(s string) Stage {
	s = strings.TrimSpace(s)
	for _, st := range Stages {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StageEarly
}

// IsValid reports whether s is one of the four known stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageAngel, StageEarly, StageGrowth, StagePublic:
		return true
	}
	return false
}

// Strength is the relationship between a company and one of its categories.
type Strength string

const (
	StrengthPrimary   Strength = "primary"
	StrengthSecondary Strength = "secondary"
	StrengthTertiary  Strength = "tertiary"
)

// Weight returns the superposition weight of the strength: 0.5, 0.4 or 0.1.
func (s Strength) Weight() float64 {
	switch s {
	case StrengthPrimary:
		return 0.5
	case StrengthSecondary:
		return 0.4
	case StrengthTertiary:
		return 0.1
	}
	return 0
}

// CategoryRef is one (category, strength) pair of a company.
type CategoryRef struct {
	Name     string   `json:"name"`
	Strength Strength `json:"strength"`
}

// Company is one portfolio row.
//
// ID is the row's line position in the feed text, so it is unique within one
// fetch only and must not be persisted across reloads.  Secondary, Tertiary
// and Website are nil when the feed left them blank.
type Company struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Stage       Stage   `json:"stage"`
	Location    string  `json:"location"`
	Primary     string  `json:"primary"`
	Secondary   *string `json:"secondary,omitempty"`
	Tertiary    *string `json:"tertiary,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// Validate checks the invariants every accepted feed row satisfies.
func (c *Company) Validate() error {
	if c.Name == "" {
		return errors.InvalidParam("company name cannot be empty")
	}
	if c.Location == "" {
		return errors.InvalidParam("company location cannot be empty").WithDetail(c.Name)
	}
	if c.Primary == "" {
		return errors.InvalidParam("company primary category cannot be empty").WithDetail(c.Name)
	}
	if !c.Stage.IsValid() {
		return errors.InvalidParam("invalid stage: " + string(c.Stage))
	}
	for _, opt := range []*string{c.Secondary, c.Tertiary, c.Website} {
		if opt != nil && *opt == "" {
			return errors.InvalidParam("optional fields must be absent rather than empty").WithDetail(c.Name)
		}
	}
	return nil
}

// Categories returns the company's one to three categories in
// primary, secondary, tertiary order.
func (c *Company) Categories() []CategoryRef {
	refs := make([]CategoryRef, 0, 3)
	refs = append(refs, CategoryRef{Name: c.Primary, Strength: StrengthPrimary})
	if c.Secondary != nil {
		refs = append(refs, CategoryRef{Name: *c.Secondary, Strength: StrengthSecondary})
	}
	if c.Tertiary != nil {
		refs = append(refs, CategoryRef{Name: *c.Tertiary, Strength: StrengthTertiary})
	}
	return refs
}

// StrengthFor returns how strongly the company belongs to category, checking
// primary, then secondary, then tertiary.  The first match wins.
func (c *Company) StrengthFor(category string) (Strength, bool) {
	for _, ref := range c.Categories() {
		if ref.Name == category {
			return ref.Strength, true
		}
	}
	return "", false
}

// Initials returns the first two characters of the name, upper-cased.
func (c *Company) Initials() string {
	r := []rune(c.Name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// OptionalString returns a pointer to s, or nil when s is empty.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *p or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

//Personal.AI order the ending
