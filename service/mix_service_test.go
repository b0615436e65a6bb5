package service

import (
	"context"
	"testing"
	"time"

	"mixbot/events"
	"mixbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlayerService is a mock implementation of PlayerService
type MockPlayerService struct {
	mock.Mock
}

func (m *MockPlayerService) Register(ctx context.Context, discordID int64) (bool, error) {
	args := m.Called(ctx, discordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlayerService) GetProfile(ctx context.Context, discordID int64) (*models.Player, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) AdjustPoints(ctx context.Context, discordID int64, delta int, reason string) (*models.Player, error) {
	args := m.Called(ctx, discordID, delta, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) RecordMatchOutcome(ctx context.Context, discordID int64, delta models.MatchOutcomeDelta) (*models.Player, error) {
	args := m.Called(ctx, discordID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) ListAll(ctx context.Context) ([]*models.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func makeCandidates(n int) []*models.PlayerSnapshot {
	candidates := make([]*models.PlayerSnapshot, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, &models.PlayerSnapshot{
			DiscordID: int64(i + 1),
			Level:     n - 1 - i, // levels n-1 .. 0
		})
	}
	return candidates
}

func newMixService(players PlayerService) MixService {
	return NewMixService(players, events.NewBus(), testConfig())
}

// readyMatch forms a match and moves it to awaiting finalization
func readyMatch(t *testing.T, svc MixService, guildID int64, n int) *models.Match {
	t.Helper()
	check, err := svc.StartMix(context.Background(), guildID, makeCandidates(n))
	require.NoError(t, err)
	require.True(t, check.Ready)
	require.NoError(t, svc.ConfirmTeamsAnnounced(check.Match.ID))
	return check.Match
}

func TestMixService_StartMix_BelowQuorum(t *testing.T) {
	svc := newMixService(new(MockPlayerService))

	check, err := svc.StartMix(context.Background(), 1, makeCandidates(9))

	require.NoError(t, err)
	assert.False(t, check.Ready)
	assert.Equal(t, 9, check.Count)
	assert.Equal(t, 10, check.Quorum)
	assert.Nil(t, check.Match)
	assert.Nil(t, svc.CurrentMatch(1))
}

func TestMixService_StartMix_AtQuorum(t *testing.T) {
	svc := newMixService(new(MockPlayerService))

	check, err := svc.StartMix(context.Background(), 1, makeCandidates(10))

	require.NoError(t, err)
	assert.True(t, check.Ready)
	require.NotNil(t, check.Match)
	assert.Equal(t, models.MatchStateForming, check.Match.State)
	assert.Len(t, check.Match.TeamA.Players, 5)
	assert.Len(t, check.Match.TeamB.Players, 5)

	// Even sorted ranks go to team A: levels 9,7,5,3,1
	levelsA := make([]int, 0, 5)
	for _, p := range check.Match.TeamA.Players {
		levelsA = append(levelsA, p.Level)
	}
	assert.Equal(t, []int{9, 7, 5, 3, 1}, levelsA)

	assert.Same(t, check.Match, svc.CurrentMatch(1))
}

func TestMixService_StartMix_RejectsSecondMatch(t *testing.T) {
	svc := newMixService(new(MockPlayerService))

	_, err := svc.StartMix(context.Background(), 1, makeCandidates(10))
	require.NoError(t, err)

	_, err = svc.StartMix(context.Background(), 1, makeCandidates(10))
	assert.ErrorIs(t, err, ErrMatchInProgress)

	// A different guild is unaffected
	check, err := svc.StartMix(context.Background(), 2, makeCandidates(10))
	require.NoError(t, err)
	assert.True(t, check.Ready)
}

func TestMixService_Finalize_Unauthorized(t *testing.T) {
	svc := newMixService(new(MockPlayerService))
	match := readyMatch(t, svc, 1, 10)

	_, err := svc.Finalize(context.Background(), match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelA}, false)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, models.MatchStateAwaitingFinalization, match.State)
}

func TestMixService_Finalize_BeforeAnnouncement(t *testing.T) {
	svc := newMixService(new(MockPlayerService))

	check, err := svc.StartMix(context.Background(), 1, makeCandidates(10))
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), check.Match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelA}, true)
	assert.ErrorIs(t, err, ErrTeamsNotAnnounced)
}

func TestMixService_Finalize_AppliesOutcomeOnce(t *testing.T) {
	ctx := context.Background()
	mockPlayers := new(MockPlayerService)
	svc := newMixService(mockPlayers)
	match := readyMatch(t, svc, 1, 10)

	mvpID := match.TeamA.Players[1].DiscordID

	winDelta := models.MatchOutcomeDelta{Points: 10, Matches: 1, Wins: 1}
	mvpDelta := models.MatchOutcomeDelta{Points: 25, MVPs: 1, Matches: 1, Wins: 1}
	lossDelta := models.MatchOutcomeDelta{Points: -10, Matches: 1, Losses: 1}

	for _, p := range match.TeamA.Players {
		delta := winDelta
		if p.DiscordID == mvpID {
			delta = mvpDelta
		}
		mockPlayers.On("RecordMatchOutcome", ctx, p.DiscordID, delta).
			Return(&models.Player{DiscordID: p.DiscordID}, nil).Once()
	}
	for _, p := range match.TeamB.Players {
		mockPlayers.On("RecordMatchOutcome", ctx, p.DiscordID, lossDelta).
			Return(&models.Player{DiscordID: p.DiscordID}, nil).Once()
	}

	result, err := svc.Finalize(ctx, match.ID, models.MatchOutcome{
		WinningTeam:  models.TeamLabelA,
		MVPDiscordID: &mvpID,
	}, true)

	require.NoError(t, err)
	assert.Len(t, result.Applied, 10)
	assert.Empty(t, result.Failed)
	assert.Equal(t, models.MatchStateFinalized, match.State)
	assert.NotNil(t, match.FinalizedAt)
	mockPlayers.AssertExpectations(t)

	// The open slot is freed
	assert.Nil(t, svc.CurrentMatch(1))

	// A replay is a rejected no-op
	_, err = svc.Finalize(ctx, match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelA}, true)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	mockPlayers.AssertNumberOfCalls(t, "RecordMatchOutcome", 10)
}

func TestMixService_Finalize_PartialFailure(t *testing.T) {
	ctx := context.Background()
	mockPlayers := new(MockPlayerService)
	svc := newMixService(mockPlayers)
	match := readyMatch(t, svc, 1, 10)

	// One winner is missing from the ledger; the rest must still apply
	missing := match.TeamA.Players[0].DiscordID
	mockPlayers.On("RecordMatchOutcome", ctx, missing, mock.Anything).
		Return(nil, ErrUnknownPlayer)
	mockPlayers.On("RecordMatchOutcome", ctx, mock.Anything, mock.Anything).
		Return(&models.Player{}, nil)

	result, err := svc.Finalize(ctx, match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelA}, true)

	require.NoError(t, err)
	assert.Equal(t, []int64{missing}, result.Failed)
	assert.Len(t, result.Applied, 9)
	assert.Equal(t, models.MatchStateFinalized, match.State)
}

func TestMixService_Cancel_NoLedgerMutation(t *testing.T) {
	ctx := context.Background()
	mockPlayers := new(MockPlayerService)
	svc := newMixService(mockPlayers)
	match := readyMatch(t, svc, 1, 10)

	require.NoError(t, svc.Cancel(ctx, match.ID))

	assert.Equal(t, models.MatchStateCancelled, match.State)
	assert.Nil(t, svc.CurrentMatch(1))
	mockPlayers.AssertNotCalled(t, "RecordMatchOutcome", mock.Anything, mock.Anything, mock.Anything)

	// Cancelled matches cannot be finalized
	_, err := svc.Finalize(ctx, match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelA}, true)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// The slot is free for a new mix
	check, err := svc.StartMix(ctx, 1, makeCandidates(10))
	require.NoError(t, err)
	assert.True(t, check.Ready)
}

func TestMixService_Cancel_FinalizedMatch(t *testing.T) {
	ctx := context.Background()
	mockPlayers := new(MockPlayerService)
	mockPlayers.On("RecordMatchOutcome", ctx, mock.Anything, mock.Anything).
		Return(&models.Player{}, nil)

	svc := newMixService(mockPlayers)
	match := readyMatch(t, svc, 1, 10)

	_, err := svc.Finalize(ctx, match.ID, models.MatchOutcome{WinningTeam: models.TeamLabelB}, true)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, match.ID), ErrAlreadyFinalized)
}

func TestMixService_ExpireStale(t *testing.T) {
	ctx := context.Background()
	mockPlayers := new(MockPlayerService)
	svc := newMixService(mockPlayers)

	check, err := svc.StartMix(ctx, 1, makeCandidates(10))
	require.NoError(t, err)
	match := check.Match

	// Fresh matches are untouched
	assert.Empty(t, svc.ExpireStale(ctx, time.Hour))
	assert.Equal(t, models.MatchStateForming, match.State)

	// Backdate the match past the TTL
	match.CreatedAt = time.Now().Add(-2 * time.Hour)

	expired := svc.ExpireStale(ctx, time.Hour)
	require.Len(t, expired, 1)
	assert.Equal(t, match.ID, expired[0].ID)
	assert.Equal(t, models.MatchStateCancelled, match.State)
	assert.Nil(t, svc.CurrentMatch(1))
	mockPlayers.AssertNotCalled(t, "RecordMatchOutcome", mock.Anything, mock.Anything, mock.Anything)
}

func TestMixService_ConfirmTeamsAnnounced_UnknownMatch(t *testing.T) {
	svc := newMixService(new(MockPlayerService))

	assert.ErrorIs(t, svc.ConfirmTeamsAnnounced(42), ErrMatchNotFound)
}
