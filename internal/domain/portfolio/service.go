package portfolio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// Page is one window of a query result.
type Page struct {
	Items     []Company `json:"items"`
	Total     int       `json:"total"`
	Offset    int       `json:"offset"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
}

// StageCount is the number of companies at one stage.
type StageCount struct {
	Stage Stage `json:"stage"`
	Count int   `json:"count"`
}

// Query filters, optionally sorts, and paginates companies.  The input is
// never modified.  Without sorting, results keep feed order.
func Query(companies []Company, opts ...QueryOption) Page {
	o := ApplyOptions(opts...)

	matched := make([]Company, 0, len(companies))
	needle := strings.ToLower(o.NameQuery)
	for _, c := range companies {
		if o.Stage != "" && c.Stage != o.Stage {
			continue
		}
		if o.Category != "" {
			if _, ok := c.StrengthFor(o.Category); !ok {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		matched = append(matched, c)
	}
	if o.SortByName {
		SortByName(matched)
	}

	total := len(matched)
	if o.Limit == 0 {
		return Page{Items: matched, Total: total, Limit: total}
	}
	start := o.Offset
	if start > total {
		start = total
	}
	end := start + o.Limit
	if end > total {
		end = total
	}
	return Page{
		Items:     matched[start:end],
		Total:     total,
		Offset:    o.Offset,
		Limit:     o.Limit,
		Remaining: total - end,
	}
}

// SortByName sorts companies in place by case-folded name, then by raw name,
// then by id so the order is total.
func SortByName(companies []Company) {
	sort.SliceStable(companies, func(i, j int) bool {
		a, b := strings.ToLower(companies[i].Name), strings.ToLower(companies[j].Name)
		if a != b {
			return a < b
		}
		if companies[i].Name != companies[j].Name {
			return companies[i].Name < companies[j].Name
		}
		return companies[i].ID < companies[j].ID
	})
}

// NameView returns the first visible companies in name order, the way the
// "load more" list grows: visible is rounded up to a whole page and capped at
// the total.
func NameView(companies []Company, pages int) Page {
	if pages < 1 {
		pages = 1
	}
	sorted := make([]Company, len(companies))
	copy(sorted, companies)
	SortByName(sorted)

	visible := pages * DefaultPageSize
	if visible > len(sorted) {
		visible = len(sorted)
	}
	return Page{
		Items:     sorted[:visible],
		Total:     len(sorted),
		Limit:     visible,
		Remaining: len(sorted) - visible,
	}
}

// CountByStage returns a count for every stage in display order, including
// stages with no companies.
func CountByStage(companies []Company) []StageCount {
	counts := make(map[Stage]int, len(Stages))
	for _, c := range companies {
		counts[c.Stage]++
	}
	out := make([]StageCount, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, StageCount{Stage: s, Count: counts[s]})
	}
	return out
}

// FindByID returns the company with id.
func FindByID(companies []Company, id int) (*Company, error) {
	for i := range companies {
		if companies[i].ID == id {
			c := companies[i]
			return &c, nil
		}
	}
	return nil, errors.New(errors.ErrCodeCompanyNotFound, "company not found").WithDetail(fmt.Sprintf("id=%d", id))
}

// CategoryNames returns each distinct category in first-seen order, scanning
// companies in order and each company's categories primary first.
func CategoryNames(companies []Company) []string {
	seen := make(map[string]bool)
	var names []string
	for i := range companies {
		for _, ref := range companies[i].Categories() {
			if !seen[ref.Name] {
				seen[ref.Name] = true
				names = append(names, ref.Name)
			}
		}
	}
	return names
}

//Personal.AI order the ending
