package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// ScoreEntry is one ranked member of a scoreboard.
type ScoreEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// Scoreboard keeps per-board counters in sorted sets so the highest counts
// can be read back in rank order.
type Scoreboard struct {
	client *Client
}

func NewScoreboard(client *Client) *Scoreboard {
	return &Scoreboard{client: client}
}

func (s *Scoreboard) key(board string) string {
	return s.client.Key("scores", board)
}

// Incr adds delta to member on board and returns the new score.
func (s *Scoreboard) Incr(ctx context.Context, board, member string, delta float64) (float64, error) {
	if board == "" || member == "" {
		return 0, errors.InvalidParam("scoreboard: board and member are required")
	}
	v, err := s.client.ZIncrBy(ctx, s.key(board), delta, member).Result()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, fmt.Sprintf("scoreboard incr %s", board))
	}
	return v, nil
}

// Top returns up to n members by descending score. Redis orders equal scores
// by descending member name.
func (s *Scoreboard) Top(ctx context.Context, board string, n int) ([]ScoreEntry, error) {
	if n <= 0 {
		return []ScoreEntry{}, nil
	}
	vals, err := s.client.ZRevRangeWithScores(ctx, s.key(board), 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, fmt.Sprintf("scoreboard top %s", board))
	}
	out := make([]ScoreEntry, 0, len(vals))
	for _, v := range vals {
		out = append(out, ScoreEntry{Member: fmt.Sprint(v.Member), Score: v.Score})
	}
	return out, nil
}

// Score returns member's score, or 0 when it has never been counted.
func (s *Scoreboard) Score(ctx context.Context, board, member string) (float64, error) {
	v, err := s.client.ZScore(ctx, s.key(board), member).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeCacheError, "scoreboard score")
	}
	return v, nil
}

//Personal.AI order the ending
