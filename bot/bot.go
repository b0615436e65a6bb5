package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"mixbot/events"
	"mixbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token                string
	GuildID              string
	WaitingChannelID     string
	RegisterChannelID    string
	LeaderboardChannelID string
	FinalizerRoleID      string
	MatchTTL             time.Duration
}

type Bot struct {
	config             Config
	session            *discordgo.Session
	playerService      service.PlayerService
	mixService         service.MixService
	tierService        service.TierService
	leaderboardService service.LeaderboardService
	eventBus           *events.Bus

	board     boardState
	done      chan struct{}
	closeOnce sync.Once
}

func New(config Config, playerService service.PlayerService, mixService service.MixService, tierService service.TierService, leaderboardService service.LeaderboardService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:             config,
		session:            dg,
		playerService:      playerService,
		mixService:         mixService,
		tierService:        tierService,
		leaderboardService: leaderboardService,
		eventBus:           eventBus,
		done:               make(chan struct{}),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start periodic cancellation of matches stuck in an open state
	go bot.startMatchJanitor()

	// Subscribe to point changes for tier role reconciliation
	eventBus.Subscribe(events.EventTypePointsChanged, func(ctx context.Context, event events.Event) {
		if changed, ok := event.(events.PointsChangedEvent); ok {
			if err := bot.syncTierRoles(ctx, changed.DiscordID, changed.NewPoints); err != nil {
				log.Errorf("Failed to sync tier roles for %d: %v", changed.DiscordID, err)
			}
		}
	})

	// Refresh the ranking board after each finalized match
	eventBus.Subscribe(events.EventTypeMatchFinalized, func(ctx context.Context, event events.Event) {
		if err := bot.refreshLeaderboard(ctx); err != nil {
			log.Errorf("Failed to refresh leaderboard: %v", err)
		}
	})

	// Initial board render once the connection settles
	go func() {
		select {
		case <-time.After(2 * time.Second):
		case <-bot.done:
			return
		}
		if err := bot.refreshLeaderboard(context.Background()); err != nil {
			log.Errorf("Failed to render leaderboard on startup: %v", err)
		} else {
			log.Info("Leaderboard rendered on startup")
		}
	}()

	return bot, nil
}

// Close stops the background goroutines and closes the gateway session
func (b *Bot) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	return b.session.Close()
}

// syncTierRoles reconciles a member's tier roles with their current points.
// The finalizer role is never touched even if it appears in the tier table.
func (b *Bot) syncTierRoles(ctx context.Context, discordID int64, points int) error {
	memberID := strconv.FormatInt(discordID, 10)

	member, err := b.session.GuildMember(b.config.GuildID, memberID)
	if err != nil {
		return fmt.Errorf("failed to get guild member %s: %w", memberID, err)
	}

	var protected []string
	if b.config.FinalizerRoleID != "" {
		protected = append(protected, b.config.FinalizerRoleID)
	}

	sync := b.tierService.SyncTierRoles(points, member.Roles, protected)

	for _, roleID := range sync.ToAdd {
		if err := b.session.GuildMemberRoleAdd(b.config.GuildID, memberID, roleID); err != nil {
			log.Errorf("Failed to add tier role %s to user %s: %v", roleID, memberID, err)
		} else {
			log.Infof("Added tier role %s to user %s (points: %d)", roleID, memberID, points)
		}
	}
	for _, roleID := range sync.ToRemove {
		if err := b.session.GuildMemberRoleRemove(b.config.GuildID, memberID, roleID); err != nil {
			log.Errorf("Failed to remove tier role %s from user %s: %v", roleID, memberID, err)
		} else {
			log.Infof("Removed tier role %s from user %s (points: %d)", roleID, memberID, points)
		}
	}

	return nil
}

// startMatchJanitor cancels matches that have sat open past the TTL. It
// runs until Close.
func (b *Bot) startMatchJanitor() {
	if b.config.MatchTTL <= 0 {
		return
	}

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired := b.mixService.ExpireStale(context.Background(), b.config.MatchTTL)
			for _, match := range expired {
				log.Infof("Cancelled stale match %d in guild %d", match.ID, match.GuildID)
			}
		case <-b.done:
			return
		}
	}
}
