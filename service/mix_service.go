package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mixbot/config"
	"mixbot/events"
	"mixbot/models"

	log "github.com/sirupsen/logrus"
)

// mixService implements the MixService interface. Match state is transient:
// it lives here for the duration of one balancing/finalization cycle and
// only the resulting ledger updates are persisted.
type mixService struct {
	playerService PlayerService
	eventBus      *events.Bus
	config        *config.Config

	mu      sync.Mutex
	open    map[int64]*models.Match // one open match per guild
	byID    map[int64]*models.Match
	matchID int64
}

// NewMixService creates a new mix service
func NewMixService(playerService PlayerService, eventBus *events.Bus, cfg *config.Config) MixService {
	return &mixService{
		playerService: playerService,
		eventBus:      eventBus,
		config:        cfg,
		open:          make(map[int64]*models.Match),
		byID:          make(map[int64]*models.Match),
	}
}

// StartMix evaluates readiness for the given candidate snapshots and, at
// quorum, balances teams and opens a forming match. The candidate list is
// re-derived by the caller on every check; nothing is cached here.
func (s *mixService) StartMix(ctx context.Context, guildID int64, candidates []*models.PlayerSnapshot) (*MixCheck, error) {
	check := &MixCheck{
		Count:  len(candidates),
		Quorum: s.config.MixQuorum,
	}

	if len(candidates) < s.config.MixQuorum {
		return check, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.open[guildID]; ok && current.IsOpen() {
		return nil, fmt.Errorf("guild %d already has match %d (%s): %w",
			guildID, current.ID, current.State, ErrMatchInProgress)
	}

	teamA, teamB := models.BalanceTeams(candidates)

	s.matchID++
	match := &models.Match{
		ID:        s.matchID,
		GuildID:   guildID,
		TeamA:     teamA,
		TeamB:     teamB,
		State:     models.MatchStateForming,
		CreatedAt: time.Now(),
	}
	s.open[guildID] = match
	s.byID[match.ID] = match

	log.WithFields(log.Fields{
		"matchID": match.ID,
		"guildID": guildID,
		"players": len(candidates),
	}).Info("Match formed")

	check.Ready = true
	check.Match = match
	return check, nil
}

// ConfirmTeamsAnnounced moves a forming match to awaiting finalization
func (s *mixService) ConfirmTeamsAnnounced(matchID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.byID[matchID]
	if !ok {
		return ErrMatchNotFound
	}

	switch match.State {
	case models.MatchStateForming:
		match.State = models.MatchStateAwaitingFinalization
		return nil
	case models.MatchStateFinalized:
		return ErrAlreadyFinalized
	default:
		return fmt.Errorf("match %d is %s: %w", matchID, match.State, ErrMatchNotFound)
	}
}

// Finalize applies the match outcome exactly once. The match flips to
// finalized under the lock before any ledger write, so a concurrent
// duplicate call observes the new state and is rejected; ledger updates are
// then applied one player at a time, each in its own transaction, so a
// single unknown player cannot abort the batch.
func (s *mixService) Finalize(ctx context.Context, matchID int64, outcome models.MatchOutcome, authorized bool) (*models.FinalizeResult, error) {
	if !authorized {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	match, ok := s.byID[matchID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrMatchNotFound
	}

	switch match.State {
	case models.MatchStateAwaitingFinalization:
		// proceed
	case models.MatchStateFinalized:
		s.mu.Unlock()
		return nil, ErrAlreadyFinalized
	case models.MatchStateForming:
		s.mu.Unlock()
		return nil, ErrTeamsNotAnnounced
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("match %d is %s: %w", matchID, match.State, ErrMatchNotFound)
	}

	winners := match.Team(outcome.WinningTeam)
	losers := match.Opponent(outcome.WinningTeam)
	if winners == nil || losers == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("invalid winning team label %q", outcome.WinningTeam)
	}

	now := time.Now()
	match.State = models.MatchStateFinalized
	match.FinalizedAt = &now
	delete(s.open, match.GuildID)
	s.mu.Unlock()

	result := &models.FinalizeResult{Match: match}

	for _, player := range winners.Players {
		delta := models.MatchOutcomeDelta{
			Points:  s.config.WinPoints,
			Matches: 1,
			Wins:    1,
		}
		if outcome.MVPDiscordID != nil && *outcome.MVPDiscordID == player.DiscordID {
			delta.Points += s.config.MVPBonus
			delta.MVPs = 1
		}
		s.applyOutcome(ctx, player.DiscordID, delta, result)
	}

	for _, player := range losers.Players {
		delta := models.MatchOutcomeDelta{
			Points:  s.config.LossPoints,
			Matches: 1,
			Losses:  1,
		}
		s.applyOutcome(ctx, player.DiscordID, delta, result)
	}

	log.WithFields(log.Fields{
		"matchID":     match.ID,
		"winningTeam": outcome.WinningTeam,
		"applied":     len(result.Applied),
		"failed":      len(result.Failed),
	}).Info("Match finalized")

	s.eventBus.Emit(ctx, events.MatchFinalizedEvent{
		MatchID:       match.ID,
		GuildID:       match.GuildID,
		WinningTeam:   outcome.WinningTeam,
		MVPDiscordID:  outcome.MVPDiscordID,
		FailedPlayers: result.Failed,
	})

	return result, nil
}

func (s *mixService) applyOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta, result *models.FinalizeResult) {
	if _, err := s.playerService.RecordMatchOutcome(ctx, discordID, delta); err != nil {
		log.WithFields(log.Fields{
			"discordID": discordID,
			"error":     err,
		}).Warn("Failed to apply match outcome for player")
		result.Failed = append(result.Failed, discordID)
		return
	}
	result.Applied = append(result.Applied, discordID)
}

// Cancel abandons a forming or awaiting match. No ledger mutation happens.
func (s *mixService) Cancel(ctx context.Context, matchID int64) error {
	s.mu.Lock()

	match, ok := s.byID[matchID]
	if !ok {
		s.mu.Unlock()
		return ErrMatchNotFound
	}
	if match.State == models.MatchStateFinalized {
		s.mu.Unlock()
		return ErrAlreadyFinalized
	}
	if match.State == models.MatchStateCancelled {
		s.mu.Unlock()
		return nil
	}

	match.State = models.MatchStateCancelled
	delete(s.open, match.GuildID)
	s.mu.Unlock()

	log.WithField("matchID", matchID).Info("Match cancelled")

	s.eventBus.Emit(ctx, events.MatchCancelledEvent{
		MatchID: match.ID,
		GuildID: match.GuildID,
	})

	return nil
}

// CurrentMatch returns the guild's open match, or nil
func (s *mixService) CurrentMatch(guildID int64) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match, ok := s.open[guildID]; ok && match.IsOpen() {
		return match
	}
	return nil
}

// ExpireStale cancels open matches older than maxAge so an admission area
// cannot stall in forming indefinitely. Returns the matches it cancelled.
func (s *mixService) ExpireStale(ctx context.Context, maxAge time.Duration) []*models.Match {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	var stale []*models.Match
	for _, match := range s.open {
		if match.IsOpen() && match.CreatedAt.Before(cutoff) {
			stale = append(stale, match)
		}
	}
	s.mu.Unlock()

	for _, match := range stale {
		if err := s.Cancel(ctx, match.ID); err != nil {
			log.WithFields(log.Fields{
				"matchID": match.ID,
				"error":   err,
			}).Warn("Failed to cancel stale match")
		}
	}

	return stale
}
