package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ben-daghir/hercap/pkg/errors"
)

func TestScoreboard_IncrAndTop(t *testing.T) {
	client, _ := newMiniClient(t)
	board := NewScoreboard(client)
	ctx := context.Background()

	for _, m := range []string{"Fintech", "AI", "Fintech", "Climate", "Fintech", "AI"} {
		_, err := board.Incr(ctx, "category_selected", m, 1)
		require.NoError(t, err)
	}

	top, err := board.Top(ctx, "category_selected", 2)
	require.NoError(t, err)
	assert.Equal(t, []ScoreEntry{{Member: "Fintech", Score: 3}, {Member: "AI", Score: 2}}, top)

	score, err := board.Score(ctx, "category_selected", "Climate")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestScoreboard_MissingMemberScoresZero(t *testing.T) {
	client, _ := newMiniClient(t)
	score, err := NewScoreboard(client).Score(context.Background(), "marker_clicked", "Nobody")
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScoreboard_TopNonPositive(t *testing.T) {
	client, _ := newMiniClient(t)
	top, err := NewScoreboard(client).Top(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestScoreboard_IncrValidates(t *testing.T) {
	client, _ := newMiniClient(t)
	_, err := NewScoreboard(client).Incr(context.Background(), "", "m", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))
}

//Personal.AI order the ending
