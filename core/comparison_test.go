package core

import (
	"testing"

	"github.com/huangsam/pokestats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	rows := Unlabeled(sampleTable(t))

	result, err := Compare(rows, "pikachu", "Onix", false)
	require.NoError(t, err)

	assert.Equal(t, "Pikachu", result.Left.Name)
	assert.Equal(t, "Onix", result.Right.Name)
	require.Len(t, result.Stats, schema.NumStats)

	// Pikachu 35/55/40/50/50/90 vs Onix 35/45/160/30/45/70
	hp := result.Stats[0]
	assert.Equal(t, schema.ColHP, hp.Stat)
	assert.Equal(t, 0, hp.Delta)
	assert.Empty(t, hp.Winner)

	def := result.Stats[2]
	assert.Equal(t, -120, def.Delta)
	assert.Equal(t, "Onix", def.Winner)

	assert.Equal(t, 4, result.Summary.LeftWins)
	assert.Equal(t, 1, result.Summary.RightWins)
	assert.Equal(t, 1, result.Summary.Ties)
	assert.Equal(t, 320, result.Summary.LeftTotal)
	assert.Equal(t, 385, result.Summary.RightTotal)
	assert.Equal(t, "Onix", result.Summary.Overall)
	assert.False(t, result.Labeled)
}

func TestCompareSameEntity(t *testing.T) {
	rows := Unlabeled(sampleTable(t))
	result, err := Compare(rows, "Mewtwo", "Mewtwo", false)
	require.NoError(t, err)
	assert.Equal(t, schema.NumStats, result.Summary.Ties)
	assert.Empty(t, result.Summary.Overall)
}

func TestCompareUnknownName(t *testing.T) {
	rows := Unlabeled(sampleTable(t))

	_, err := Compare(rows, "Pikachoo", "Onix", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no entity named "Pikachoo"`)
	assert.Contains(t, err.Error(), "Pikachu")

	_, err = Compare(rows, "Onix", "zzzzzzzzzzzz", false)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestNearMatches(t *testing.T) {
	rows := []schema.LabeledRow{
		{Pokemon: schema.Pokemon{Name: "Charmander"}},
		{Pokemon: schema.Pokemon{Name: "Charmeleon"}},
		{Pokemon: schema.Pokemon{Name: "Charizard"}},
		{Pokemon: schema.Pokemon{Name: "Squirtle"}},
	}
	assert.Equal(t, []string{"Charizard", "Charmander", "Charmeleon"}, nearMatches(rows, "char"))
	assert.Equal(t, []string{"Squirtle"}, nearMatches(rows, "squirtel"))
	assert.Nil(t, nearMatches(rows, ""))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("onix", "onix"))
	assert.Equal(t, 1, levenshtein("onix", "onyx"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 4, levenshtein("", "mew!"))
}
