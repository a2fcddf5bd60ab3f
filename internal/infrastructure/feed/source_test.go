package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/config"
	apperrors "github.com/ben-daghir/hercap/pkg/errors"
)

func TestHTTPSource_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("h\nA,,,X,P\n"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, WithUserAgent("test-agent"))
	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h\nA,,,X,P\n", string(body))
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "http", src.Name())
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFeedBadStatus))
	assert.True(t, apperrors.IsFetchError(err))
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSource_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url, WithTimeout(time.Second)).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFeedFetchFailed))
}

func TestHTTPSource_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewHTTPSource("").url)
}

func TestFileSource(t *testing.T) {
	src := NewFileSource(filepath.Join("testdata", "portfolio.csv"))
	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), "Aurelia Health")

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.csv")).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
}

func TestFileSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource("testdata/portfolio.csv").Fetch(ctx)
	assert.True(t, apperrors.IsFetchError(err))
}

type stubObjects struct {
	data map[string][]byte
	key  string
}

func (s *stubObjects) Get(ctx context.Context, key string) ([]byte, error) {
	s.key = key
	if d, ok := s.data[key]; ok {
		return d, nil
	}
	return nil, errors.New("no such key")
}

func TestObjectSource(t *testing.T) {
	objs := &stubObjects{data: map[string][]byte{"feeds/portfolio.csv": []byte("h\n")}}
	src := NewObjectSource(objs, "feeds/portfolio.csv")

	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h\n", string(body))
	assert.Equal(t, "minio", src.Name())

	_, err = NewObjectSource(objs, "other").Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.FeedConfig{Source: "http", URL: "http://x"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	src, err = NewSource(config.FeedConfig{Source: "file", Path: "a.csv"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	_, err = NewSource(config.FeedConfig{Source: "file"}, nil)
	assert.Error(t, err)

	_, err = NewSource(config.FeedConfig{Source: "minio", Object: "k"}, nil)
	assert.Error(t, err)

	src, err = NewSource(config.FeedConfig{Source: "minio", Object: "k"}, &stubObjects{})
	require.NoError(t, err)
	assert.IsType(t, &ObjectSource{}, src)

	_, err = NewSource(config.FeedConfig{Source: "ftp"}, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
