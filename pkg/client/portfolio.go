package client

import (
	"context"
	"net/url"
	"strconv"
)

// Company is one portfolio company.  Optional fields are empty when the
// feed left them blank.
type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stage       string `json:"stage"`
	Location    string `json:"location"`
	Primary     string `json:"primary"`
	Secondary   string `json:"secondary,omitempty"`
	Tertiary    string `json:"tertiary,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Snapshot is the server's portfolio state.  Error is set when the feed
// failed to load.
type Snapshot struct {
	Data    []Company `json:"data"`
	Loading bool      `json:"loading"`
	Error   *string   `json:"error"`
}

// Page is one window of a company listing.
type Page struct {
	Items     []Company `json:"items"`
	Total     int       `json:"total"`
	Offset    int       `json:"offset"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
}

// StageCount is the number of companies at one stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// SectorScore is one category's weighted company count.
type SectorScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ListOptions filters a company listing.  Zero values mean no filter.
type ListOptions struct {
	Stage      string
	Category   string
	Query      string
	SortByName bool
	Offset     int
	Limit      int
}

func (o *ListOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.Stage != "" {
		v.Set("stage", o.Stage)
	}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.SortByName {
		v.Set("sort", "name")
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// PortfolioClient reads the loaded portfolio.
type PortfolioClient struct {
	client *Client
}

// Snapshot returns the portfolio state, including while it is loading.
func (pc *PortfolioClient) Snapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	if err := pc.client.get(ctx, "/api/v1/portfolio", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (pc *PortfolioClient) Companies(ctx context.Context, opts *ListOptions) (*Page, error) {
	if opts != nil && (opts.Offset < 0 || opts.Limit < 0) {
		return nil, invalidArg("offset and limit must not be negative")
	}
	path := "/api/v1/companies"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var p Page
	if err := pc.client.get(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Names returns the first pages pages of the alphabetical name list.
func (pc *PortfolioClient) Names(ctx context.Context, pages int) (*Page, error) {
	if pages <= 0 {
		return nil, invalidArg("pages must be positive")
	}
	var p Page
	if err := pc.client.get(ctx, "/api/v1/companies/names?pages="+strconv.Itoa(pages), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Company returns one company by its feed id.
func (pc *PortfolioClient) Company(ctx context.Context, id int) (*Company, error) {
	if id <= 0 {
		return nil, invalidArg("company id must be positive")
	}
	var c Company
	if err := pc.client.get(ctx, "/api/v1/companies/"+strconv.Itoa(id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (pc *PortfolioClient) Stages(ctx context.Context) ([]StageCount, error) {
	var resp struct {
		Stages []StageCount `json:"stages"`
	}
	if err := pc.client.get(ctx, "/api/v1/stages", &resp); err != nil {
		return nil, err
	}
	return resp.Stages, nil
}

// Sectors returns categories ranked by weighted score.
func (pc *PortfolioClient) Sectors(ctx context.Context) ([]SectorScore, error) {
	var resp struct {
		Sectors []SectorScore `json:"sectors"`
	}
	if err := pc.client.get(ctx, "/api/v1/sectors", &resp); err != nil {
		return nil, err
	}
	return resp.Sectors, nil
}

//Personal.AI order the ending
