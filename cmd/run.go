package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"mixbot/bot"
	"mixbot/config"
	"mixbot/database"
	"mixbot/events"
	"mixbot/repository"
	"mixbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting mix bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	playerService := service.NewPlayerService(uowFactory, cfg)
	mixService := service.NewMixService(playerService, eventBus, cfg)
	tierService := service.NewTierService(cfg)
	leaderboardService := service.NewLeaderboardService(playerService)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:                cfg.DiscordToken,
		GuildID:              cfg.DiscordGuildID,
		WaitingChannelID:     cfg.WaitingChannelID,
		RegisterChannelID:    cfg.RegisterChannelID,
		LeaderboardChannelID: cfg.LeaderboardChannelID,
		FinalizerRoleID:      cfg.FinalizerRoleID,
		MatchTTL:             time.Duration(cfg.MatchTTLMinutes) * time.Minute,
	}
	discordBot, err := bot.New(botConfig, playerService, mixService, tierService, leaderboardService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
