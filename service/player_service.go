package service

import (
	"context"
	"fmt"

	"mixbot/config"
	"mixbot/events"
	"mixbot/models"
)

// playerService implements the PlayerService interface
type playerService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewPlayerService creates a new player service
func NewPlayerService(uowFactory UnitOfWorkFactory, cfg *config.Config) PlayerService {
	return &playerService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// Register inserts a player record if absent. Calling it twice leaves
// exactly one record; the second call reports created=false.
func (s *playerService) Register(ctx context.Context, discordID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	created, err := uow.PlayerRepository().Create(ctx, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to register player: %w", err)
	}

	if created {
		uow.EventBus().Publish(events.PlayerRegisteredEvent{DiscordID: discordID})
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// GetProfile returns a player's record or ErrUnknownPlayer
func (s *playerService) GetProfile(ctx context.Context, discordID int64) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	return player, nil
}

// AdjustPoints atomically adds delta to a player's points. The configured
// floor, when present, clamps the result inside the same update.
func (s *playerService) AdjustPoints(ctx context.Context, discordID int64, delta int, reason string) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, oldPoints, err := uow.PlayerRepository().AddPoints(ctx, discordID, delta, s.config.PointFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust points: %w", err)
	}
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	uow.EventBus().Publish(events.PointsChangedEvent{
		DiscordID: discordID,
		OldPoints: oldPoints,
		NewPoints: player.Points,
		Delta:     delta,
		Reason:    reason,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return player, nil
}

// RecordMatchOutcome applies one player's match deltas in its own
// transaction so a failure here cannot taint other players' updates.
func (s *playerService) RecordMatchOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().RecordMatchOutcome(ctx, discordID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to record match outcome: %w", err)
	}
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	uow.EventBus().Publish(events.PointsChangedEvent{
		DiscordID: discordID,
		OldPoints: player.Points - delta.Points,
		NewPoints: player.Points,
		Delta:     delta.Points,
		Reason:    "match_outcome",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return player, nil
}

// ListAll returns every player ordered by points descending
func (s *playerService) ListAll(ctx context.Context) ([]*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().GetAllByPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}
