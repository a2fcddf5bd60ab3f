package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// DefaultURL is the published CSV export of the portfolio spreadsheet.
const DefaultURL = config.DefaultFeedURL

const (
	defaultTimeout   = config.DefaultFeedTimeout
	defaultUserAgent = config.DefaultUserAgent
	maxBodySize      = 8 << 20
)

// Source returns the raw feed text.  Every transport failure is a FetchError
// (FEED_001 or FEED_002); Fetch never retries.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Name identifies the source in logs, metrics and cache keys.
	Name() string
}

// HTTPSource issues a single GET per Fetch.
type HTTPSource struct {
	url       string
	userAgent string
	client    *http.Client
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) { s.userAgent = ua }
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client = &http.Client{Timeout: d}
		}
	}
}

func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	s := &HTTPSource{
		url:       url,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "build feed request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "portfolio feed request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.New(errors.ErrCodeFeedBadStatus, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "read feed body")
	}
	return body, nil
}

// FileSource reads a local CSV export.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "feed read cancelled")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "read feed file").WithDetail(s.path)
	}
	return data, nil
}

// ObjectGetter is the slice of the object repository the feed needs.
type ObjectGetter interface {
	Get(ctx context.Context, objectKey string) ([]byte, error)
}

// ObjectSource reads the export from the configured bucket.
type ObjectSource struct {
	objects ObjectGetter
	key     string
}

func NewObjectSource(objects ObjectGetter, key string) *ObjectSource {
	return &ObjectSource{objects: objects, key: key}
}

func (s *ObjectSource) Name() string { return "minio" }

func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := s.objects.Get(ctx, s.key)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "read feed object").WithDetail(s.key)
	}
	return data, nil
}

//Personal.AI order the ending
