package handlers

import (
	"context"
	"net/http"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/infrastructure/database/redis"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// EngagementReader answers top-N queries over the engagement scoreboards.
// *engagement.Recorder implements it.
type EngagementReader interface {
	Top(ctx context.Context, board string, n int) ([]redis.ScoreEntry, error)
}

type EngagementHandler struct {
	reader EngagementReader
	logger logging.Logger
}

func NewEngagementHandler(reader EngagementReader, logger logging.Logger) *EngagementHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EngagementHandler{reader: reader, logger: logger.Named("http.engagement")}
}

type EngagementResponse struct {
	Board   string             `json:"board"`
	Entries []redis.ScoreEntry `json:"entries"`
}

// Top handles GET /engagement?board=companies|categories&limit=N.
func (h *EngagementHandler) Top(w http.ResponseWriter, r *http.Request) {
	board := r.URL.Query().Get("board")
	if board == "" {
		board = engagement.BoardCompanies
	}
	n, err := queryInt(r, "limit", defaultTopN)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	switch {
	case n == 0:
		n = defaultTopN
	case n > maxTopN:
		n = maxTopN
	}
	entries, err := h.reader.Top(r.Context(), board, n)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []redis.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, EngagementResponse{Board: board, Entries: entries})
}

var _ EngagementReader = (*engagement.Recorder)(nil)

//Personal.AI order the ending
