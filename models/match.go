package models

import (
	"time"
)

// MatchState represents the lifecycle state of a mix match
type MatchState string

const (
	MatchStateForming              MatchState = "forming"
	MatchStateAwaitingFinalization MatchState = "awaiting_finalization"
	MatchStateFinalized            MatchState = "finalized"
	MatchStateCancelled            MatchState = "cancelled"
)

// Match is one active balancing/finalization cycle. Matches are transient,
// owned in memory by the mix service for their lifetime; only the resulting
// ledger updates are persisted.
type Match struct {
	ID          int64
	GuildID     int64
	TeamA       *Team
	TeamB       *Team
	State       MatchState
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// MatchOutcome carries the finalize payload: which side won and, optionally,
// the designated MVP.
type MatchOutcome struct {
	WinningTeam  TeamLabel
	MVPDiscordID *int64
}

// FinalizeResult summarizes a finalization batch. Failed lists players whose
// ledger update did not apply; the match still finalized for the rest.
type FinalizeResult struct {
	Match   *Match
	Applied []int64
	Failed  []int64
}

// IsOpen reports whether the match still occupies its guild's single open
// match slot.
func (m *Match) IsOpen() bool {
	return m.State == MatchStateForming || m.State == MatchStateAwaitingFinalization
}

// IsFinalized reports whether the match outcome has been applied
func (m *Match) IsFinalized() bool {
	return m.State == MatchStateFinalized
}

// IsCancelled reports whether the match was abandoned
func (m *Match) IsCancelled() bool {
	return m.State == MatchStateCancelled
}

// Team returns the team with the given label, or nil
func (m *Match) Team(label TeamLabel) *Team {
	switch label {
	case TeamLabelA:
		return m.TeamA
	case TeamLabelB:
		return m.TeamB
	}
	return nil
}

// Opponent returns the team opposing the given label, or nil
func (m *Match) Opponent(label TeamLabel) *Team {
	switch label {
	case TeamLabelA:
		return m.TeamB
	case TeamLabelB:
		return m.TeamA
	}
	return nil
}
