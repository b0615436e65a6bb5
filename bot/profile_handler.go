package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"mixbot/service"
)

// handleRegister enrolls the calling member in the points ledger. The
// command is only accepted in the configured registration channel.
func (b *Bot) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if b.config.RegisterChannelID != "" && i.ChannelID != b.config.RegisterChannelID {
		b.respondWithError(s, i, fmt.Sprintf("Registration only works in <#%s>.", b.config.RegisterChannelID))
		return
	}

	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	created, err := b.playerService.Register(ctx, discordID)
	if err != nil {
		log.Printf("Error registering player %d: %v", discordID, err)
		b.respondWithError(s, i, "Unable to register. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if !created {
		b.respondWithError(s, i, fmt.Sprintf("%s, you are already registered.", displayName))
		return
	}

	b.respondWithMessage(s, i, fmt.Sprintf("✅ **%s** is now registered for mixes!", displayName))
}

// handleProfile shows a player's ledger record
func (b *Bot) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	// Default to the command issuer
	targetUser := i.Member.User
	if options := i.ApplicationCommandData().Options; len(options) > 0 && options[0].Name == "user" {
		targetUser = options[0].UserValue(s)
	}

	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", targetUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	player, err := b.playerService.GetProfile(ctx, targetID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlayer) {
			b.respondWithError(s, i, "That player is not registered yet. Use /register first.")
			return
		}
		log.Printf("Error getting profile for %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to retrieve profile. Please try again.")
		return
	}

	displayName := GetDisplayNameInt64(s, i.GuildID, targetID)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Profile for %s", displayName),
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🏅 Points",
				Value:  fmt.Sprintf("**%s**", FormatPoints(player.Points)),
				Inline: true,
			},
			{
				Name:   "⭐ Level",
				Value:  strconv.Itoa(player.Level),
				Inline: true,
			},
			{
				Name:   "👑 MVPs",
				Value:  strconv.Itoa(player.MVPCount),
				Inline: true,
			},
			{
				Name: "⚔️ Matches",
				Value: fmt.Sprintf("Played: **%d**\nWins: **%d**\nLosses: **%d**",
					player.MatchesPlayed, player.Wins, player.Losses),
				Inline: false,
			},
		},
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error responding to profile command: %v", err)
	}
}

// handleAddPoints applies a manual point adjustment. Restricted to members
// with the Manage Server permission.
func (b *Bot) handleAddPoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if i.Member.Permissions&discordgo.PermissionManageGuild == 0 {
		b.respondWithError(s, i, "You need the Manage Server permission to adjust points.")
		return
	}

	var amount int
	var targetUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = int(opt.IntValue())
		case "user":
			targetUser = opt.UserValue(s)
		}
	}

	if targetUser == nil {
		b.respondWithError(s, i, "Invalid target user.")
		return
	}
	if amount == 0 {
		b.respondWithError(s, i, "Amount must be non-zero.")
		return
	}

	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", targetUser.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	player, err := b.playerService.AdjustPoints(ctx, targetID, amount, "admin_adjustment")
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlayer) {
			b.respondWithError(s, i, "That player is not registered yet. Use /register first.")
			return
		}
		log.Printf("Error adjusting points for %d: %v", targetID, err)
		b.respondWithError(s, i, "Unable to adjust points. Please try again.")
		return
	}

	displayName := GetDisplayNameInt64(s, i.GuildID, targetID)
	verb := "added to"
	if amount < 0 {
		verb = "removed from"
		amount = -amount
	}
	b.respondWithMessage(s, i, fmt.Sprintf("✅ **%s points** %s **%s**. New total: **%s**",
		FormatPoints(amount), verb, displayName, FormatPoints(player.Points)))
}
