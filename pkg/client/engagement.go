package client

import (
	"context"
	"net/url"
	"strconv"
)

// Engagement boards.
const (
	BoardCompanies  = "companies"
	BoardCategories = "categories"
)

// ScoreEntry is one member of an engagement board.
type ScoreEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// EngagementClient reads selection counts recorded by the worker.
type EngagementClient struct {
	client *Client
}

// Top returns the limit most selected members of board.  limit 0 uses the
// server default.
func (ec *EngagementClient) Top(ctx context.Context, board string, limit int) ([]ScoreEntry, error) {
	if board != BoardCompanies && board != BoardCategories {
		return nil, invalidArg("board must be companies or categories")
	}
	if limit < 0 {
		return nil, invalidArg("limit must not be negative")
	}
	v := url.Values{"board": {board}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Entries []ScoreEntry `json:"entries"`
	}
	if err := ec.client.get(ctx, "/api/v1/engagement?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

//Personal.AI order the ending
