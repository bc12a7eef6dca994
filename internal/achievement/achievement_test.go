package achievement

import (
	"slices"
	"testing"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defs = []catalog.Achievement{
	{ID: "first_hunt", Requirement: catalog.Requirement{Kind: catalog.ReqActivityCount, Activity: "hunt", Count: 1}},
	{ID: "level_10", Requirement: catalog.Requirement{Kind: catalog.ReqLevel, Count: 10}},
	{ID: "dragon_slayer", Requirement: catalog.Requirement{Kind: catalog.ReqItemCount, Item: "dragon", Count: 1}},
	{ID: "millionaire", Requirement: catalog.Requirement{Kind: catalog.ReqNetWorth, Count: 1_000_000}},
	{ID: "collector", Requirement: catalog.Requirement{Kind: catalog.ReqAchievements, Count: 2}},
}

func unlockedSet(ids ...string) func(string) bool {
	return func(id string) bool { return slices.Contains(ids, id) }
}

func TestEvaluate_EachKind(t *testing.T) {
	e := SnapshotEvaluator{S: Snapshot{
		Level:       12,
		TotalEarned: 500,
		TotalSpent:  40,
		NetWorth:    2_000_000,
		Activity:    map[string]int64{"hunt": 3},
		Items:       map[string]int{"dragon": 1},
		Unlocked:    1,
	}}

	cases := []struct {
		req  catalog.Requirement
		want Progress
	}{
		{catalog.Requirement{Kind: catalog.ReqActivityCount, Activity: "hunt", Count: 5}, Progress{3, 5, false}},
		{catalog.Requirement{Kind: catalog.ReqActivityCount, Activity: "fish", Count: 1}, Progress{0, 1, false}},
		{catalog.Requirement{Kind: catalog.ReqLevel, Count: 10}, Progress{12, 10, true}},
		{catalog.Requirement{Kind: catalog.ReqTotalEarned, Count: 500}, Progress{500, 500, true}},
		{catalog.Requirement{Kind: catalog.ReqTotalSpent, Count: 50}, Progress{40, 50, false}},
		{catalog.Requirement{Kind: catalog.ReqNetWorth, Count: 1_000_000}, Progress{2_000_000, 1_000_000, true}},
		{catalog.Requirement{Kind: catalog.ReqItemCount, Item: "dragon", Count: 1}, Progress{1, 1, true}},
		{catalog.Requirement{Kind: catalog.ReqAchievements, Count: 2}, Progress{1, 2, false}},
	}
	for _, tc := range cases {
		got, err := e.Evaluate(tc.req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "kind %s", tc.req.Kind)
	}
}

func TestEvaluate_UnknownKind(t *testing.T) {
	_, err := SnapshotEvaluator{}.Evaluate(catalog.Requirement{Kind: "vibes"})
	assert.Error(t, err)
}

func TestNewly_SkipsAlreadyUnlocked(t *testing.T) {
	e := SnapshotEvaluator{S: Snapshot{Level: 10, Activity: map[string]int64{"hunt": 1}}}

	got, err := Newly(defs, unlockedSet(), e)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first_hunt", got[0].ID)
	assert.Equal(t, "level_10", got[1].ID)

	got, err = Newly(defs, unlockedSet("first_hunt"), e)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "level_10", got[0].ID)
}

func TestBoard_UnlockedShowsComplete(t *testing.T) {
	e := SnapshotEvaluator{S: Snapshot{Level: 2}}
	board, err := Board(defs, unlockedSet("level_10"), e)
	require.NoError(t, err)
	require.Len(t, board, len(defs))

	assert.False(t, board[0].Unlocked)
	assert.Equal(t, Progress{0, 1, false}, board[0].Progress)

	assert.True(t, board[1].Unlocked)
	assert.Equal(t, Progress{10, 10, true}, board[1].Progress)
}
