package portfolio

import (
	"context"
)

// CompanyReader yields the current company snapshot.  Implementations return
// a slice the caller must treat as read-only.
type CompanyReader interface {
	Companies(ctx context.Context) ([]Company, error)
}

// DefaultPageSize is the name view's page length.
const DefaultPageSize = 20

// QueryOptions encapsulates query parameters.
type QueryOptions struct {
	Offset     int
	Limit      int
	SortByName bool
	Stage      Stage
	Category   string
	NameQuery  string
}

// QueryOption is a functional option for QueryOptions.
type QueryOption func(*QueryOptions)

// WithPagination sets pagination options.
func WithPagination(offset, limit int) QueryOption {
	return func(o *QueryOptions) {
		if offset < 0 {
			offset = 0
		}
		if limit < 1 {
			limit = DefaultPageSize
		}
		if limit > 100 {
			limit = 100
		}
		o.Offset = offset
		o.Limit = limit
	}
}

// WithNameSort orders results by name, case-insensitively.
func WithNameSort() QueryOption {
	return func(o *QueryOptions) { o.SortByName = true }
}

// WithStage keeps only companies at stage.  An empty stage or "all" keeps
// everything.
func WithStage(stage Stage) QueryOption {
	return func(o *QueryOptions) {
		if stage == "all" {
			stage = ""
		}
		o.Stage = stage
	}
}

// WithCategory keeps only companies that carry category at any strength.
func WithCategory(category string) QueryOption {
	return func(o *QueryOptions) { o.Category = category }
}

// WithNameFilter keeps companies whose name contains keyword, ignoring case.
func WithNameFilter(keyword string) QueryOption {
	return func(o *QueryOptions) { o.NameQuery = keyword }
}

// ApplyOptions applies the functional options to create QueryOptions.
// Without WithPagination every match is returned.
func ApplyOptions(opts ...QueryOption) QueryOptions {
	o := QueryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

//Personal.AI order the ending
