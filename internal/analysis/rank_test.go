package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/expcalc/internal/analysis"
	"github.com/cory-johannsen/expcalc/internal/game/encounter"
)

func TestRank_ByMethod(t *testing.T) {
	results, err := newAnalyzer(t).Analyze(context.Background(), loadDataset(t), false)
	require.NoError(t, err)

	old := analysis.Rank(results, encounter.MethodOldRod, 15)
	require.Len(t, old, 2)
	// Route 102 at rate 30 beats Dewford Town at rate 10.
	assert.Equal(t, "route102_ruby", old[0].Location.ID)
	assert.GreaterOrEqual(t, old[0].Efficiency, old[1].Efficiency)

	assert.Len(t, analysis.Rank(results, encounter.MethodOldRod, 1), 1)
	assert.Empty(t, analysis.Rank(results, encounter.MethodRockSmash, 15))
}

func TestRankAll_MergesMethods(t *testing.T) {
	results, err := newAnalyzer(t).Analyze(context.Background(), loadDataset(t), false)
	require.NoError(t, err)

	all := analysis.RankAll(results, 0)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Efficiency, all[i].Efficiency)
	}
	assert.Equal(t, encounter.MethodSuperRod, all[0].Method)

	assert.Len(t, analysis.RankAll(results, 3), 3)
}
