package service

import (
	"context"
	"time"

	"mixbot/events"
	"mixbot/models"
)

// PlayerRepository defines the interface for player ledger data access
type PlayerRepository interface {
	// Create inserts a default-valued record if absent; reports whether a
	// new record was created
	Create(ctx context.Context, discordID int64) (bool, error)

	// GetByDiscordID retrieves a player; nil without error when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error)

	// Exists reports whether a record exists for the given Discord ID
	Exists(ctx context.Context, discordID int64) (bool, error)

	// AddPoints atomically adds delta to a player's points, clamped from
	// below when floor is non-nil. Also returns the stored pre-update
	// total; nil without error when absent
	AddPoints(ctx context.Context, discordID int64, delta int, floor *int) (*models.Player, int, error)

	// RecordMatchOutcome applies a match's stat deltas in one update; nil
	// without error when absent
	RecordMatchOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta) (*models.Player, error)

	// GetAllByPoints returns all players ordered by points descending
	GetAllByPoints(ctx context.Context) ([]*models.Player, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// PlayerRepository returns the player repository bound to this transaction
	PlayerRepository() PlayerRepository

	// EventBus returns the transactional event bus
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PlayerService defines the stats ledger operations
type PlayerService interface {
	// Register inserts a player record if absent; idempotent, reports
	// whether a new record was created
	Register(ctx context.Context, discordID int64) (created bool, err error)

	// GetProfile returns a player's record or ErrUnknownPlayer
	GetProfile(ctx context.Context, discordID int64) (*models.Player, error)

	// AdjustPoints atomically adds delta (possibly negative) to a player's
	// points and returns the updated record, or ErrUnknownPlayer
	AdjustPoints(ctx context.Context, discordID int64, delta int, reason string) (*models.Player, error)

	// RecordMatchOutcome applies a finalized match's deltas to one player
	// in its own transaction, or ErrUnknownPlayer
	RecordMatchOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta) (*models.Player, error)

	// ListAll returns every player ordered by points descending
	ListAll(ctx context.Context) ([]*models.Player, error)
}

// MixCheck is the outcome of an admission readiness check
type MixCheck struct {
	Ready  bool
	Count  int
	Quorum int
	Match  *models.Match // set when Ready
}

// MixService drives the waiting pool check and the match state machine
type MixService interface {
	// StartMix evaluates readiness for the given candidate snapshots.
	// Below quorum it returns a not-ready check; at quorum it balances
	// teams and opens a forming match. Returns ErrMatchInProgress while
	// the guild already has an open match.
	StartMix(ctx context.Context, guildID int64, candidates []*models.PlayerSnapshot) (*MixCheck, error)

	// ConfirmTeamsAnnounced moves a forming match to awaiting finalization
	// once the gateway has announced and moved the teams
	ConfirmTeamsAnnounced(matchID int64) error

	// Finalize applies the match outcome exactly once. The authorized flag
	// is the caller's role check; the service itself knows nothing about
	// platform roles. Player updates that fail do not abort the batch.
	Finalize(ctx context.Context, matchID int64, outcome models.MatchOutcome, authorized bool) (*models.FinalizeResult, error)

	// Cancel abandons a forming or awaiting match without any ledger mutation
	Cancel(ctx context.Context, matchID int64) error

	// CurrentMatch returns the guild's open match, or nil
	CurrentMatch(guildID int64) *models.Match

	// ExpireStale cancels open matches older than maxAge and returns them
	ExpireStale(ctx context.Context, maxAge time.Duration) []*models.Match
}

// TierService reconciles point-threshold tier roles
type TierService interface {
	// TargetRoles returns the tier roles a player with the given points
	// should hold under the configured policy
	TargetRoles(points int) []string

	// SyncTierRoles computes the role changes needed to reconcile the
	// externally-reported current roles with the target set. Protected
	// roles are never requested for removal.
	SyncTierRoles(points int, currentRoleIDs []string, protectedRoleIDs []string) *models.TierSync
}

// StandingsEntry is one row of the ranking board
type StandingsEntry struct {
	Rank   int
	Player *models.Player
}

// LeaderboardService produces ranking board data; it never mutates the ledger
type LeaderboardService interface {
	// GetStandings returns ranked entries ordered by points descending
	GetStandings(ctx context.Context) ([]*StandingsEntry, error)
}
