package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/ben-daghir/hercap/pkg/errors"
)

func TestLoader_Load(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLoader(NewFileSource("testdata/portfolio.csv"), logging.NewLoggerFromCore(core))

	companies, report, err := l.LoadWithReport(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 5)
	assert.Equal(t, 2, report.Skipped)

	entries := logs.FilterMessage("portfolio feed loaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].ContextMap()["accepted"])
}

func TestLoader_FetchError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	inner := &countingSource{err: apperrors.New(apperrors.ErrCodeFeedBadStatus, "HTTP error! status: 503")}
	l := NewLoader(inner, logging.NewLoggerFromCore(core))

	companies, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, companies)
	assert.True(t, apperrors.IsFetchError(err))
	assert.Equal(t, 1, logs.FilterMessage("Error fetching portfolio data").Len())
}

//Personal.AI order the ending
