package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"mixbot/models"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Channel configuration
	WaitingChannelID     string // voice channel players gather in before a mix
	RegisterChannelID    string // only channel where /register is accepted
	LeaderboardChannelID string // channel the ranking board is posted to

	// Mix configuration
	MixQuorum       int   // players required before teams are formed
	WinPoints       int   // points granted to each winner
	LossPoints      int   // points granted to each loser (negative)
	MVPBonus        int   // extra points for the designated MVP
	PointFloor      *int  // optional lower bound on points; nil = unbounded
	MatchTTLMinutes int   // open matches older than this are cancelled

	// Tier role configuration
	TierRoles      []models.RoleTier // ascending by MinPoints
	TierCumulative bool              // grant every met tier, not just the highest

	// Finalization authorization
	FinalizerRoleID string // role required to finalize a mix

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Channels
		WaitingChannelID:     os.Getenv("WAITING_CHANNEL_ID"),
		RegisterChannelID:    os.Getenv("REGISTER_CHANNEL_ID"),
		LeaderboardChannelID: os.Getenv("LEADERBOARD_CHANNEL_ID"),

		// Mix settings with defaults
		MixQuorum:       10,
		WinPoints:       10,
		LossPoints:      -10,
		MVPBonus:        15,
		MatchTTLMinutes: 60,

		// Tier roles
		TierCumulative: true,

		// Finalization
		FinalizerRoleID: os.Getenv("FINALIZER_ROLE_ID"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if quorum := os.Getenv("MIX_QUORUM"); quorum != "" {
		if parsed, err := strconv.Atoi(quorum); err == nil && parsed > 0 {
			config.MixQuorum = parsed
		}
	}
	if points := os.Getenv("WIN_POINTS"); points != "" {
		if parsed, err := strconv.Atoi(points); err == nil {
			config.WinPoints = parsed
		}
	}
	if points := os.Getenv("LOSS_POINTS"); points != "" {
		if parsed, err := strconv.Atoi(points); err == nil {
			config.LossPoints = parsed
		}
	}
	if bonus := os.Getenv("MVP_BONUS"); bonus != "" {
		if parsed, err := strconv.Atoi(bonus); err == nil {
			config.MVPBonus = parsed
		}
	}
	if floor := os.Getenv("POINT_FLOOR"); floor != "" {
		if parsed, err := strconv.Atoi(floor); err == nil {
			config.PointFloor = &parsed
		}
	}
	if ttl := os.Getenv("MATCH_TTL_MINUTES"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil && parsed > 0 {
			config.MatchTTLMinutes = parsed
		}
	}
	if cumulative := os.Getenv("TIER_CUMULATIVE"); cumulative != "" {
		config.TierCumulative = cumulative == "true"
	}

	// Parse tier roles ("50:roleID,100:roleID,150:roleID")
	if tierSpec := os.Getenv("TIER_ROLES"); tierSpec != "" {
		tiers, err := parseTierRoles(tierSpec)
		if err != nil {
			return nil, fmt.Errorf("invalid TIER_ROLES: %w", err)
		}
		config.TierRoles = tiers
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// parseTierRoles parses a comma-separated list of threshold:roleID pairs
// into an ascending tier table.
func parseTierRoles(spec string) ([]models.RoleTier, error) {
	var tiers []models.RoleTier
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed tier entry %q", pair)
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed tier threshold %q: %w", parts[0], err)
		}
		roleID := strings.TrimSpace(parts[1])
		if roleID == "" {
			return nil, fmt.Errorf("empty role ID in tier entry %q", pair)
		}
		tiers = append(tiers, models.RoleTier{MinPoints: threshold, RoleID: roleID})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinPoints < tiers[j].MinPoints
	})

	return tiers, nil
}
