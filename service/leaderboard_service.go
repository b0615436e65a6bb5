package service

import (
	"context"
	"fmt"
)

// leaderboardService implements the LeaderboardService interface
type leaderboardService struct {
	playerService PlayerService
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(playerService PlayerService) LeaderboardService {
	return &leaderboardService{
		playerService: playerService,
	}
}

// GetStandings returns ranked entries ordered by points descending. Ties
// keep the ledger's natural iteration order. Reading standings never
// mutates the ledger.
func (s *leaderboardService) GetStandings(ctx context.Context) ([]*StandingsEntry, error) {
	players, err := s.playerService.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	entries := make([]*StandingsEntry, 0, len(players))
	for i, player := range players {
		entries = append(entries, &StandingsEntry{
			Rank:   i + 1,
			Player: player,
		})
	}

	return entries, nil
}
