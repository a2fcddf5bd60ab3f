package feed

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims fields", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted comma", `x,"a, b",y`, []string{"x", "a, b", "y"}},
		{"escaped quote", `"say ""hi""",z`, []string{`say "hi"`, "z"}},
		{"empty fields", "a,,", []string{"a", "", ""}},
		{"single", "only", []string{"only"}},
		{"unterminated quote", `a,"b,c`, []string{"a", "b,c"}},
		{"utf8", "Zoë,Café", []string{"Zoë", "Café"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitRow(tt.line))
		})
	}
}

func TestParse_QuotedRow(t *testing.T) {
	text := "Company,Description,Fundraising_Stage,Location,Primary_Category,Secondary_Category,Tertiary_Category,Website\n" +
		`"Acme, Inc.","Does ""stuff""",Growth,"New York, NY",FinTech,,, https://acme.test`

	companies, report := Parse(text)
	assert.Equal(t, ParseReport{Rows: 1, Accepted: 1}, report)
	require.Len(t, companies, 1)

	acme := companies[0]
	assert.Equal(t, 1, acme.ID)
	assert.Equal(t, "Acme, Inc.", acme.Name)
	assert.Equal(t, `Does "stuff"`, acme.Description)
	assert.Equal(t, portfolio.StageGrowth, acme.Stage)
	assert.Equal(t, "New York, NY", acme.Location)
	assert.Equal(t, "FinTech", acme.Primary)
	assert.Nil(t, acme.Secondary)
	assert.Nil(t, acme.Tertiary)
	assert.Equal(t, "https://acme.test", portfolio.Deref(acme.Website))
}

func TestSplitRow_QuotingRoundTrip(t *testing.T) {
	values := []string{`plain`, `a, b`, `say "hi"`, `"quoted", and, commas`, `""`}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	assert.Equal(t, values, SplitRow(strings.Join(quoted, ",")))
}

func TestParse_HeaderOnly(t *testing.T) {
	companies, report := Parse("Company,Description\n")
	assert.Empty(t, companies)
	assert.Equal(t, ParseReport{}, report)

	companies, _ = Parse("")
	assert.NotNil(t, companies)
	assert.Empty(t, companies)
}

func TestParse_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/portfolio.csv")
	require.NoError(t, err)

	companies, report := Parse(string(data))
	assert.Equal(t, ParseReport{Rows: 7, Accepted: 5, Skipped: 2}, report)
	require.Len(t, companies, 5)

	aurelia := companies[0]
	assert.Equal(t, 1, aurelia.ID)
	assert.Equal(t, "Aurelia Health", aurelia.Name)
	assert.Equal(t, "Clinical AI for maternal care, prenatal and postpartum", aurelia.Description)
	assert.Equal(t, portfolio.StageEarly, aurelia.Stage)
	assert.Equal(t, "AI", portfolio.Deref(aurelia.Secondary))
	assert.Nil(t, aurelia.Tertiary)
	assert.Equal(t, "https://aurelia.example", portfolio.Deref(aurelia.Website))

	cadence := companies[2]
	assert.Equal(t, `Payroll for "gig" workers`, cadence.Description)
	assert.Equal(t, portfolio.StageAngel, cadence.Stage)
	assert.Nil(t, cadence.Secondary)
	assert.Nil(t, cadence.Website)

	// The blank line before Delta still counts towards the id.
	delta := companies[3]
	assert.Equal(t, "Delta Learn", delta.Name)
	assert.Equal(t, 6, delta.ID)
	assert.Equal(t, portfolio.StageEarly, delta.Stage)

	fathom := companies[4]
	assert.Equal(t, portfolio.StagePublic, fathom.Stage)
	assert.Equal(t, "Unknown City", fathom.Location)

	for _, c := range companies {
		assert.NoError(t, c.Validate(), c.Name)
	}
}

func TestParse_CRLF(t *testing.T) {
	text := "h\r\nAcme,Widgets,Growth,Denver,Industrial,,,\r\n"
	companies, report := Parse(text)
	require.Len(t, companies, 1)
	assert.Equal(t, 1, report.Accepted)
	assert.Nil(t, companies[0].Website)
	assert.Equal(t, "Industrial", companies[0].Primary)
}

func TestParse_ShortRow(t *testing.T) {
	companies, report := Parse("h\nAcme,Widgets,Growth,Denver\n")
	assert.Empty(t, companies)
	assert.Equal(t, 1, report.Skipped)
}

func TestParse_UniqueIDs(t *testing.T) {
	text := "h\nA,,,X,P\nB,,,Y,Q\nC,,,Z,R\n"
	companies, _ := Parse(text)
	require.Len(t, companies, 3)
	seen := map[int]bool{}
	for _, c := range companies {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

//Personal.AI order the ending
