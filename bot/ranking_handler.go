package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"mixbot/service"
)

// boardState tracks the persistent ranking board message so refreshes edit
// it in place instead of flooding the channel.
type boardState struct {
	mu        sync.Mutex
	messageID string
}

// handleRanking replies with the current standings
func (b *Bot) handleRanking(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	entries, err := b.leaderboardService.GetStandings(ctx)
	if err != nil {
		log.Printf("Error getting standings: %v", err)
		b.respondWithError(s, i, "Unable to retrieve the ranking. Please try again.")
		return
	}

	embed := buildStandingsEmbed(entries, func(discordID int64) string {
		return GetDisplayNameInt64(s, i.GuildID, discordID)
	})

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error responding to ranking command: %v", err)
	}
}

// refreshLeaderboard upserts the standings message in the leaderboard
// channel: the first refresh posts it, later ones edit it in place.
func (b *Bot) refreshLeaderboard(ctx context.Context) error {
	if b.config.LeaderboardChannelID == "" {
		return nil
	}

	entries, err := b.leaderboardService.GetStandings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get standings: %w", err)
	}

	embed := buildStandingsEmbed(entries, func(discordID int64) string {
		return GetDisplayNameInt64(b.session, b.config.GuildID, discordID)
	})

	b.board.mu.Lock()
	defer b.board.mu.Unlock()

	if b.board.messageID != "" {
		_, err := b.session.ChannelMessageEditEmbed(b.config.LeaderboardChannelID, b.board.messageID, embed)
		if err == nil {
			return nil
		}
		// The message may have been deleted; fall through and repost
		log.Warnf("Failed to edit leaderboard message %s, reposting: %v", b.board.messageID, err)
		b.board.messageID = ""
	}

	msg, err := b.session.ChannelMessageSendEmbed(b.config.LeaderboardChannelID, embed)
	if err != nil {
		return fmt.Errorf("failed to post leaderboard message: %w", err)
	}
	b.board.messageID = msg.ID

	return nil
}

// buildStandingsEmbed renders the standings as an embed
func buildStandingsEmbed(entries []*service.StandingsEntry, nameOf func(int64) string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Mix Ranking",
		Color: 0x00ff00,
	}

	if len(entries) == 0 {
		embed.Description = "No registered players yet."
		return embed
	}

	embed.Description = BuildStandingsText(entries, nameOf)
	return embed
}

// BuildStandingsText renders standings as a fixed-width table, points
// descending, with medals for the top three. Each line carries the full
// ledger record: points, level, MVPs, matches played and win/loss counts.
// nameOf resolves a player's display name.
func BuildStandingsText(entries []*service.StandingsEntry, nameOf func(int64) string) string {
	var table strings.Builder

	table.WriteString("```\n")
	table.WriteString(fmt.Sprintf("%-4s %-16s %-8s %-4s %-4s %-8s %s\n",
		"Rank", "Player", "Points", "Lvl", "MVP", "Matches", "W/L"))
	table.WriteString(strings.Repeat("-", 52) + "\n")

	for _, entry := range entries {
		rankStr := fmt.Sprintf("#%d", entry.Rank)
		switch entry.Rank {
		case 1:
			rankStr = "🥇"
		case 2:
			rankStr = "🥈"
		case 3:
			rankStr = "🥉"
		}

		name := nameOf(entry.Player.DiscordID)
		if len(name) > 16 {
			name = name[:13] + "..."
		}

		table.WriteString(fmt.Sprintf("%-4s %-16s %-8s %-4d %-4d %-8d %d/%d\n",
			rankStr, name, FormatPoints(entry.Player.Points),
			entry.Player.Level, entry.Player.MVPCount, entry.Player.MatchesPlayed,
			entry.Player.Wins, entry.Player.Losses))
	}

	table.WriteString("```")
	return table.String()
}
