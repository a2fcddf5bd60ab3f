package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/pkg/errors"
)

func strp(s string) *string { return &s }

func newCompany(id int, name, primary string, secondary, tertiary *string) Company {
	return Company{
		ID:        id,
		Name:      name,
		Stage:     StageEarly,
		Location:  "New York, NY",
		Primary:   primary,
		Secondary: secondary,
		Tertiary:  tertiary,
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in   string
		want Stage
	}{
		{"Angel", StageAngel},
		{"growth", StageGrowth},
		{" Public ", StagePublic},
		{"Early", StageEarly},
		{"", StageEarly},
		{"Series B", StageEarly},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStage(tt.in))
		})
	}
}

func TestStrength_Weight(t *testing.T) {
	assert.Equal(t, 0.5, StrengthPrimary.Weight())
	assert.Equal(t, 0.4, StrengthSecondary.Weight())
	assert.Equal(t, 0.1, StrengthTertiary.Weight())
	assert.Equal(t, 0.0, Strength("other").Weight())
}

func TestCompany_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Company)
		wantErr bool
	}{
		{"valid", func(c *Company) {}, false},
		{"missing name", func(c *Company) { c.Name = "" }, true},
		{"missing location", func(c *Company) { c.Location = "" }, true},
		{"missing primary", func(c *Company) { c.Primary = "" }, true},
		{"bad stage", func(c *Company) { c.Stage = "Seed" }, true},
		{"empty optional", func(c *Company) { c.Website = strp("") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCompany(1, "Acme", "AI", nil, nil)
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompany_Categories(t *testing.T) {
	c := newCompany(1, "Acme", "AI", strp("Health"), strp("Fintech"))
	assert.Equal(t, []CategoryRef{
		{Name: "AI", Strength: StrengthPrimary},
		{Name: "Health", Strength: StrengthSecondary},
		{Name: "Fintech", Strength: StrengthTertiary},
	}, c.Categories())

	only := newCompany(2, "Solo", "AI", nil, strp("Fintech"))
	assert.Len(t, only.Categories(), 2)
}

func TestCompany_StrengthFor_FirstMatchWins(t *testing.T) {
	c := newCompany(1, "Acme", "AI", strp("AI"), nil)
	s, ok := c.StrengthFor("AI")
	assert.True(t, ok)
	assert.Equal(t, StrengthPrimary, s)

	_, ok = c.StrengthFor("Health")
	assert.False(t, ok)
}

func TestCompany_Initials(t *testing.T) {
	assert.Equal(t, "AC", (&Company{Name: "acme"}).Initials())
	assert.Equal(t, "X", (&Company{Name: "x"}).Initials())
	assert.Equal(t, "ÉT", (&Company{Name: "étoile"}).Initials())
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString(""))
	assert.Equal(t, "x", Deref(OptionalString("x")))
	assert.Equal(t, "", Deref(nil))
}

//Personal.AI order the ending
