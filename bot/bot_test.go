package bot

import (
	"context"
	"testing"
	"time"

	"mixbot/models"
	"mixbot/service"

	"github.com/stretchr/testify/mock"
)

// MockMixService is a mock implementation of service.MixService
type MockMixService struct {
	mock.Mock
}

func (m *MockMixService) StartMix(ctx context.Context, guildID int64, candidates []*models.PlayerSnapshot) (*service.MixCheck, error) {
	args := m.Called(ctx, guildID, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MixCheck), args.Error(1)
}

func (m *MockMixService) ConfirmTeamsAnnounced(matchID int64) error {
	return m.Called(matchID).Error(0)
}

func (m *MockMixService) Finalize(ctx context.Context, matchID int64, outcome models.MatchOutcome, authorized bool) (*models.FinalizeResult, error) {
	args := m.Called(ctx, matchID, outcome, authorized)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinalizeResult), args.Error(1)
}

func (m *MockMixService) Cancel(ctx context.Context, matchID int64) error {
	return m.Called(ctx, matchID).Error(0)
}

func (m *MockMixService) CurrentMatch(guildID int64) *models.Match {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Match)
}

func (m *MockMixService) ExpireStale(ctx context.Context, maxAge time.Duration) []*models.Match {
	args := m.Called(ctx, maxAge)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Match)
}

// The janitor goroutine must exit when the bot shuts down instead of
// blocking on its ticker forever.
func TestMatchJanitor_StopsOnShutdown(t *testing.T) {
	b := &Bot{
		config:     Config{MatchTTL: time.Hour},
		mixService: new(MockMixService),
		done:       make(chan struct{}),
	}

	stopped := make(chan struct{})
	go func() {
		b.startMatchJanitor()
		close(stopped)
	}()

	close(b.done)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop on shutdown")
	}
}

func TestMatchJanitor_DisabledWithoutTTL(t *testing.T) {
	b := &Bot{
		config:     Config{MatchTTL: 0},
		mixService: new(MockMixService),
		done:       make(chan struct{}),
	}

	stopped := make(chan struct{})
	go func() {
		b.startMatchJanitor()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor should return immediately with no TTL configured")
	}
}
