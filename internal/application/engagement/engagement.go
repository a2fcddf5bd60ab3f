// Package engagement records which companies and categories viewers
// interact with.  Sessions publish events; the worker counts them into
// Redis scoreboards that the API reads back.
package engagement

import (
	"context"
	"time"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// EventType names an engagement event.
type EventType string

const (
	// EventCompanySelected fires when a globe marker click selects a company.
	EventCompanySelected EventType = "company.selected"
	// EventCategorySelected fires when a sector node click highlights a
	// category.  Clearing a selection is not an event.
	EventCategorySelected EventType = "category.selected"
)

// Scoreboard names.
const (
	BoardCompanies  = "companies"
	BoardCategories = "categories"
)

// Event is one engagement record.
type Event struct {
	Type        EventType `json:"type"`
	View        string    `json:"view"`
	SessionID   string    `json:"session_id,omitempty"`
	CompanyID   int       `json:"company_id,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Category    string    `json:"category,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Validate checks that the event names the thing it counts.
func (e Event) Validate() error {
	switch e.Type {
	case EventCompanySelected:
		if e.CompanyName == "" {
			return errors.New(errors.ErrCodeEventInvalid, "company event without company name")
		}
	case EventCategorySelected:
		if e.Category == "" {
			return errors.New(errors.ErrCodeEventInvalid, "category event without category")
		}
	default:
		return errors.New(errors.ErrCodeEventInvalid, "unknown engagement event type").WithDetail(string(e.Type))
	}
	return nil
}

// Board returns the scoreboard and member the event counts towards.
func (e Event) Board() (board, member string) {
	if e.Type == EventCategorySelected {
		return BoardCategories, e.Category
	}
	return BoardCompanies, e.CompanyName
}

// Key is the partition key: events about one subject stay ordered.
func (e Event) Key() string {
	_, member := e.Board()
	return member
}

// Publisher sends engagement events.  Publishing is best-effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.  Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }

//Personal.AI order the ending
