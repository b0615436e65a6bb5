package repository

import (
	"context"
	"fmt"
	"math"

	"mixbot/database"
	"mixbot/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over the pool and a transaction so repositories work
// inside and outside a unit of work.
type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const playerColumns = `discord_id, points, level, mvp_count, matches_played, wins, losses, created_at, updated_at`

// PlayerRepository implements the service.PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository backed by the pool
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository bound to a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

// Create inserts a default-valued player record if absent. It reports
// whether a new record was created and never errors on duplicates.
func (r *PlayerRepository) Create(ctx context.Context, discordID int64) (bool, error) {
	query := `
		INSERT INTO players (discord_id)
		VALUES ($1)
		ON CONFLICT (discord_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to create player %d: %w", discordID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByDiscordID retrieves a player by their Discord ID. Returns nil without
// error when no record exists.
func (r *PlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE discord_id = $1`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", discordID, err)
	}

	return player, nil
}

// Exists reports whether a player record exists for the given Discord ID
func (r *PlayerRepository) Exists(ctx context.Context, discordID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE discord_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, discordID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check player %d: %w", discordID, err)
	}

	return exists, nil
}

// AddPoints atomically adds delta (which may be negative) to a player's
// points and returns the updated record together with the pre-update point
// total. The increment happens inside the UPDATE so concurrent grants
// cannot lose updates. A non-nil floor clamps the result from below; the
// returned old total is the stored value, not a derived one, so clamping
// cannot distort it. Returns nil without error when no record exists.
func (r *PlayerRepository) AddPoints(ctx context.Context, discordID int64, delta int, floor *int) (*models.Player, int, error) {
	// GREATEST with MinInt32 degenerates to plain addition when no floor
	// is configured.
	effectiveFloor := math.MinInt32
	if floor != nil {
		effectiveFloor = *floor
	}

	// RETURNING sees the new row; the locked self-join carries the old
	// point total out of the same statement.
	query := `
		UPDATE players p
		SET points = GREATEST(p.points + $1, $2), updated_at = NOW()
		FROM (SELECT discord_id, points FROM players WHERE discord_id = $3 FOR UPDATE) prev
		WHERE p.discord_id = prev.discord_id
		RETURNING p.discord_id, p.points, p.level, p.mvp_count, p.matches_played, p.wins, p.losses, p.created_at, p.updated_at, prev.points`

	var player models.Player
	var oldPoints int
	err := r.q.QueryRow(ctx, query, delta, effectiveFloor, discordID).Scan(
		&player.DiscordID,
		&player.Points,
		&player.Level,
		&player.MVPCount,
		&player.MatchesPlayed,
		&player.Wins,
		&player.Losses,
		&player.CreatedAt,
		&player.UpdatedAt,
		&oldPoints,
	)
	if err == pgx.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to add points for player %d: %w", discordID, err)
	}

	return &player, oldPoints, nil
}

// RecordMatchOutcome applies a match's stat deltas to one player in a single
// UPDATE, so points and win/loss counters can never diverge. Returns nil
// without error when no record exists.
func (r *PlayerRepository) RecordMatchOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta) (*models.Player, error) {
	query := `
		UPDATE players
		SET points = points + $1,
		    mvp_count = mvp_count + $2,
		    matches_played = matches_played + $3,
		    wins = wins + $4,
		    losses = losses + $5,
		    updated_at = NOW()
		WHERE discord_id = $6
		RETURNING ` + playerColumns

	player, err := scanPlayer(r.q.QueryRow(ctx, query,
		delta.Points, delta.MVPs, delta.Matches, delta.Wins, delta.Losses, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record match outcome for player %d: %w", discordID, err)
	}

	return player, nil
}

// GetAllByPoints returns all players ordered by points descending. Ties keep
// registration order, which is the ledger's natural iteration order.
func (r *PlayerRepository) GetAllByPoints(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY points DESC, created_at ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var player models.Player
	err := row.Scan(
		&player.DiscordID,
		&player.Points,
		&player.Level,
		&player.MVPCount,
		&player.MatchesPlayed,
		&player.Wins,
		&player.Losses,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &player, nil
}
