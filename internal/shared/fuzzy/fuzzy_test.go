package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("portal", "portal"))
	assert.InDelta(t, 66.666, Ratio("ab", "abcd"), 0.01)
	assert.InDelta(t, 33.333, Ratio("hades", "celeste"), 0.01)
	assert.Equal(t, 100.0, Ratio("", ""))
}

func TestRatioCountsCharactersNotBytes(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("原神", "崩坏"))
	assert.InDelta(t, 60.0, Ratio("艾尔登法环", "艾尔登物语"), 0.01)
	assert.InDelta(t, 60.0, TokenSortRatio("艾尔登法环", "艾尔登物语"), 0.01)
	assert.Less(t, TokenSortRatio("艾尔登法环", "艾尔登物语"), 70.0)
	assert.Equal(t, 100.0, TokenSetRatio("艾尔登法环", "艾尔登法环 黄金树幽影"))
}

func TestTokenSortRatioIgnoresOrderAndCase(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("Counter-Strike", "strike COUNTER"))
	assert.Equal(t, 0.0, TokenSortRatio("", "anything"))
}

func TestTokenSetRatio(t *testing.T) {
	t.Run("subset scores full", func(t *testing.T) {
		assert.Equal(t, 100.0, TokenSetRatio("Portal", "Portal 2"))
		assert.Equal(t, 100.0, TokenSetRatio("the witcher 3 wild hunt", "Witcher 3"))
	})

	t.Run("unrelated names stay low", func(t *testing.T) {
		assert.Less(t, TokenSetRatio("hades", "celeste"), 70.0)
	})

	t.Run("partial overlap", func(t *testing.T) {
		score := TokenSetRatio("dark souls remastered", "dark souls iii")
		assert.Greater(t, score, 70.0)
		assert.Less(t, score, 100.0)
	})
}

func TestExtractOne(t *testing.T) {
	choices := []string{"Hades", "Hades II", "Celeste"}

	m, ok := ExtractOne("hades", choices, Ratio)
	require.True(t, ok)
	assert.Equal(t, "Hades", m.Choice)
	assert.Equal(t, 0, m.Index)

	t.Run("ties keep earliest", func(t *testing.T) {
		constant := func(a, b string) float64 { return 50 }
		m, ok := ExtractOne("x", choices, constant)
		require.True(t, ok)
		assert.Equal(t, "Hades", m.Choice)
	})

	t.Run("no choices", func(t *testing.T) {
		_, ok := ExtractOne("x", nil, Ratio)
		assert.False(t, ok)
	})
}
