package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotsWithLevels(levels ...int) []*PlayerSnapshot {
	players := make([]*PlayerSnapshot, 0, len(levels))
	for i, level := range levels {
		players = append(players, &PlayerSnapshot{
			DiscordID: int64(i + 1),
			Level:     level,
		})
	}
	return players
}

func teamLevels(t *Team) []int {
	levels := make([]int, 0, len(t.Players))
	for _, p := range t.Players {
		levels = append(levels, p.Level)
	}
	return levels
}

func TestBalanceTeams_ParitySplit(t *testing.T) {
	teamA, teamB := BalanceTeams(snapshotsWithLevels(9, 8, 7, 6, 5, 4, 3, 2, 1, 0))

	assert.Equal(t, []int{9, 7, 5, 3, 1}, teamLevels(teamA))
	assert.Equal(t, []int{8, 6, 4, 2, 0}, teamLevels(teamB))
}

func TestBalanceTeams_InputOrderIrrelevantForLevels(t *testing.T) {
	teamA, teamB := BalanceTeams(snapshotsWithLevels(0, 9, 2, 7, 4, 5, 6, 3, 8, 1))

	assert.Equal(t, []int{9, 7, 5, 3, 1}, teamLevels(teamA))
	assert.Equal(t, []int{8, 6, 4, 2, 0}, teamLevels(teamB))
}

func TestBalanceTeams_OddCount(t *testing.T) {
	teamA, teamB := BalanceTeams(snapshotsWithLevels(5, 4, 3, 2, 1))

	assert.Len(t, teamA.Players, 3)
	assert.Len(t, teamB.Players, 2)
	assert.Equal(t, []int{5, 3, 1}, teamLevels(teamA))
	assert.Equal(t, []int{4, 2}, teamLevels(teamB))
}

func TestBalanceTeams_TiesKeepInputOrder(t *testing.T) {
	candidates := snapshotsWithLevels(3, 3, 3, 3)

	teamA, teamB := BalanceTeams(candidates)

	// Stable sort leaves equal levels in input order, so the parity split
	// is reproducible for a fixed candidate order.
	require.Len(t, teamA.Players, 2)
	require.Len(t, teamB.Players, 2)
	assert.Equal(t, int64(1), teamA.Players[0].DiscordID)
	assert.Equal(t, int64(3), teamA.Players[1].DiscordID)
	assert.Equal(t, int64(2), teamB.Players[0].DiscordID)
	assert.Equal(t, int64(4), teamB.Players[1].DiscordID)
}

func TestBalanceTeams_DoesNotMutateInput(t *testing.T) {
	candidates := snapshotsWithLevels(1, 2, 3)

	BalanceTeams(candidates)

	assert.Equal(t, []int{1, 2, 3}, []int{
		candidates[0].Level, candidates[1].Level, candidates[2].Level,
	})
}

func TestBalanceTeams_Empty(t *testing.T) {
	teamA, teamB := BalanceTeams(nil)

	assert.Empty(t, teamA.Players)
	assert.Empty(t, teamB.Players)
	assert.Equal(t, TeamLabelA, teamA.Label)
	assert.Equal(t, TeamLabelB, teamB.Label)
}

func TestTeam_Contains(t *testing.T) {
	team := &Team{
		Label:   TeamLabelA,
		Players: snapshotsWithLevels(1, 2),
	}

	assert.True(t, team.Contains(1))
	assert.True(t, team.Contains(2))
	assert.False(t, team.Contains(3))
}
