package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions_Defaults(t *testing.T) {
	o := ApplyOptions()
	assert.Equal(t, 0, o.Offset)
	assert.Equal(t, 0, o.Limit)
	assert.False(t, o.SortByName)
	assert.Equal(t, Stage(""), o.Stage)
}

func TestWithPagination_Clamps(t *testing.T) {
	tests := []struct {
		name                  string
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{"normal", 20, 20, 20, 20},
		{"negative offset", -5, 10, 0, 10},
		{"zero limit", 0, 0, 0, DefaultPageSize},
		{"huge limit", 0, 1000, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ApplyOptions(WithPagination(tt.offset, tt.limit))
			assert.Equal(t, tt.wantOffset, o.Offset)
			assert.Equal(t, tt.wantLimit, o.Limit)
		})
	}
}

func TestWithStage_All(t *testing.T) {
	assert.Equal(t, Stage(""), ApplyOptions(WithStage("all")).Stage)
	assert.Equal(t, StageGrowth, ApplyOptions(WithStage(StageGrowth)).Stage)
}

func TestOptions_Compose(t *testing.T) {
	o := ApplyOptions(WithNameSort(), WithCategory("AI"), WithNameFilter("ac"))
	assert.True(t, o.SortByName)
	assert.Equal(t, "AI", o.Category)
	assert.Equal(t, "ac", o.NameQuery)
}

//Personal.AI order the ending
