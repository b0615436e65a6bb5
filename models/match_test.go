package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_StatePredicates(t *testing.T) {
	tests := []struct {
		state     MatchState
		open      bool
		finalized bool
		cancelled bool
	}{
		{MatchStateForming, true, false, false},
		{MatchStateAwaitingFinalization, true, false, false},
		{MatchStateFinalized, false, true, false},
		{MatchStateCancelled, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			match := &Match{State: tt.state}
			assert.Equal(t, tt.open, match.IsOpen())
			assert.Equal(t, tt.finalized, match.IsFinalized())
			assert.Equal(t, tt.cancelled, match.IsCancelled())
		})
	}
}

func TestMatch_TeamLookup(t *testing.T) {
	teamA := &Team{Label: TeamLabelA}
	teamB := &Team{Label: TeamLabelB}
	match := &Match{TeamA: teamA, TeamB: teamB}

	assert.Same(t, teamA, match.Team(TeamLabelA))
	assert.Same(t, teamB, match.Team(TeamLabelB))
	assert.Nil(t, match.Team("C"))

	assert.Same(t, teamB, match.Opponent(TeamLabelA))
	assert.Same(t, teamA, match.Opponent(TeamLabelB))
	assert.Nil(t, match.Opponent(""))
}
