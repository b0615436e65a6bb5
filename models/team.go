package models

import (
	"sort"
)

// TeamLabel identifies one of the two sides of a mix
type TeamLabel string

const (
	TeamLabelA TeamLabel = "A"
	TeamLabelB TeamLabel = "B"
)

// Team is an ordered sequence of candidate snapshots assigned to one side
type Team struct {
	Label   TeamLabel
	Players []*PlayerSnapshot
}

// Contains reports whether the given player is on this team
func (t *Team) Contains(discordID int64) bool {
	for _, p := range t.Players {
		if p.DiscordID == discordID {
			return true
		}
	}
	return false
}

// BalanceTeams splits candidates into two teams: stable-sort by level
// descending (ties keep input order, so the split is deterministic for a
// fixed input order), then assign alternately by sorted-rank parity, even
// ranks to A and odd ranks to B. Teams end up near-equal in aggregate skill
// only in expectation; this is not a snake draft. With an odd candidate
// count team sizes differ by one.
func BalanceTeams(candidates []*PlayerSnapshot) (*Team, *Team) {
	sorted := make([]*PlayerSnapshot, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})

	teamA := &Team{Label: TeamLabelA}
	teamB := &Team{Label: TeamLabelB}
	for i, player := range sorted {
		if i%2 == 0 {
			teamA.Players = append(teamA.Players, player)
		} else {
			teamB.Players = append(teamB.Players, player)
		}
	}

	return teamA, teamB
}
