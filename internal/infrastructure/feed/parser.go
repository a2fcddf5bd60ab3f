// Package feed fetches the portfolio spreadsheet export and turns it into
// portfolio.Company records.
package feed

import (
	"strings"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

// Column positions in the spreadsheet export.  The header row is never
// inspected, so reordering columns upstream breaks the feed.
const (
	colCompany = iota
	colDescription
	colStage
	colLocation
	colPrimary
	colSecondary
	colTertiary
	colWebsite
)

// ParseReport summarises one parse.  Rows counts non-empty data lines.
type ParseReport struct {
	Rows     int `json:"rows"`
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Parse converts feed text into companies.
//
// Lines are split on '\n' and trimmed, blank lines are ignored and the first
// line is treated as the header.  A row without a name, location or primary
// category is dropped and counted in the report; it never fails the parse.
// Company.ID is the row's line index in text, so blank lines leave gaps.
func Parse(text string) ([]portfolio.Company, ParseReport) {
	var report ParseReport
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return []portfolio.Company{}, report
	}

	companies := make([]portfolio.Company, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		report.Rows++

		v := SplitRow(line)
		name := field(v, colCompany)
		location := field(v, colLocation)
		primary := field(v, colPrimary)
		if name == "" || location == "" || primary == "" {
			report.Skipped++
			continue
		}

		companies = append(companies, portfolio.Company{
			ID:          i,
			Name:        name,
			Description: field(v, colDescription),
			Stage:       portfolio.ParseStage(field(v, colStage)),
			Location:    location,
			Primary:     primary,
			Secondary:   portfolio.OptionalString(field(v, colSecondary)),
			Tertiary:    portfolio.OptionalString(field(v, colTertiary)),
			Website:     portfolio.OptionalString(field(v, colWebsite)),
		})
		report.Accepted++
	}
	return companies, report
}

// SplitRow tokenizes one CSV line.  Commas inside double quotes do not split,
// "" inside quotes is a literal quote, and every field is whitespace-trimmed.
// An unterminated quote runs to the end of the line.
func SplitRow(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(values, strings.TrimSpace(current.String()))
}

func field(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}
	return ""
}

//Personal.AI order the ending
