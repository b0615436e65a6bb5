package models

import (
	"time"
)

// Player represents a registered player's persistent standing
type Player struct {
	DiscordID     int64     `db:"discord_id"`
	Points        int       `db:"points"`
	Level         int       `db:"level"`
	MVPCount      int       `db:"mvp_count"`
	MatchesPlayed int       `db:"matches_played"`
	Wins          int       `db:"wins"`
	Losses        int       `db:"losses"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// PlayerSnapshot is a candidate's ledger state captured at admission-check
// time, annotated with the display name from the gateway.
type PlayerSnapshot struct {
	DiscordID int64
	Username  string
	Points    int
	Level     int
}

// MatchOutcomeDelta bundles the stat adjustments applied to one player when
// a match finalizes. All fields are applied in a single ledger update so a
// crash cannot leave points changed but win/loss counters stale.
type MatchOutcomeDelta struct {
	Points  int
	MVPs    int
	Matches int
	Wins    int
	Losses  int
}
