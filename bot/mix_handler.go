package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"mixbot/models"
	"mixbot/service"
)

// handleMixCommand handles the /mix command with subcommands
func (b *Bot) handleMixCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Please specify a subcommand: start, finalize or cancel")
		return
	}

	switch options[0].Name {
	case "start":
		b.handleMixStart(s, i)
	case "finalize":
		b.handleMixFinalize(s, i, options[0].Options)
	case "cancel":
		b.handleMixCancel(s, i)
	default:
		b.respondWithError(s, i, "Unknown subcommand")
	}
}

// handleMixStart snapshots the waiting voice channel, balances teams at
// quorum and moves players into freshly created team channels.
func (b *Bot) handleMixStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Printf("Error parsing guild ID %s: %v", i.GuildID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Channel creation and member moves take a while; defer the response
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Error deferring mix start response: %v", err)
		return
	}

	candidates, unregistered, err := b.collectWaitingPlayers(ctx, s, i.GuildID)
	if err != nil {
		log.Printf("Error collecting waiting players: %v", err)
		b.followUpWithError(s, i, "Unable to read the waiting channel. Please try again.")
		return
	}

	check, err := b.mixService.StartMix(ctx, guildID, candidates)
	if err != nil {
		if errors.Is(err, service.ErrMatchInProgress) {
			b.followUpWithError(s, i, "A match is already in progress. Finalize or cancel it first.")
			return
		}
		log.Printf("Error starting mix in guild %d: %v", guildID, err)
		b.followUpWithError(s, i, "Unable to start the mix. Please try again.")
		return
	}

	if !check.Ready {
		msg := fmt.Sprintf("Not enough players in the waiting channel: **%d/%d**.", check.Count, check.Quorum)
		if len(unregistered) > 0 {
			msg += fmt.Sprintf(" Unregistered members were skipped: %s.", strings.Join(unregistered, ", "))
		}
		_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{Content: msg})
		if err != nil {
			log.Printf("Error sending mix readiness follow-up: %v", err)
		}
		return
	}

	match := check.Match

	// Move everyone into per-team voice channels; failures here are logged
	// and the match proceeds, players can move themselves.
	if err := b.moveTeamsToChannels(s, i.GuildID, match); err != nil {
		log.Errorf("Failed to set up team channels for match %d: %v", match.ID, err)
	}

	if err := b.mixService.ConfirmTeamsAnnounced(match.ID); err != nil {
		log.Errorf("Failed to confirm team announcement for match %d: %v", match.ID, err)
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{buildTeamsEmbed(match)},
	})
	if err != nil {
		log.Printf("Error announcing teams: %v", err)
	}
}

// collectWaitingPlayers snapshots the registered players currently sitting
// in the waiting voice channel. Unregistered occupants are skipped and
// reported back by display name.
func (b *Bot) collectWaitingPlayers(ctx context.Context, s *discordgo.Session, guildID string) ([]*models.PlayerSnapshot, []string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get guild state: %w", err)
	}

	var candidates []*models.PlayerSnapshot
	var unregistered []string

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != b.config.WaitingChannelID {
			continue
		}

		discordID, err := strconv.ParseInt(vs.UserID, 10, 64)
		if err != nil {
			log.Printf("Error parsing Discord ID %s: %v", vs.UserID, err)
			continue
		}

		player, err := b.playerService.GetProfile(ctx, discordID)
		if err != nil {
			if errors.Is(err, service.ErrUnknownPlayer) {
				unregistered = append(unregistered, GetDisplayName(s, guildID, vs.UserID))
				continue
			}
			return nil, nil, err
		}

		candidates = append(candidates, &models.PlayerSnapshot{
			DiscordID: player.DiscordID,
			Username:  GetDisplayName(s, guildID, vs.UserID),
			Points:    player.Points,
			Level:     player.Level,
		})
	}

	return candidates, unregistered, nil
}

// moveTeamsToChannels creates a voice channel per team next to the waiting
// channel and moves each player into their team's channel.
func (b *Bot) moveTeamsToChannels(s *discordgo.Session, guildID string, match *models.Match) error {
	waiting, err := s.Channel(b.config.WaitingChannelID)
	if err != nil {
		return fmt.Errorf("failed to get waiting channel: %w", err)
	}

	for _, team := range []*models.Team{match.TeamA, match.TeamB} {
		channel, err := s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
			Name:     fmt.Sprintf("Team %s - Mix %d", team.Label, match.ID),
			Type:     discordgo.ChannelTypeGuildVoice,
			ParentID: waiting.ParentID,
		})
		if err != nil {
			return fmt.Errorf("failed to create channel for team %s: %w", team.Label, err)
		}

		for _, player := range team.Players {
			memberID := strconv.FormatInt(player.DiscordID, 10)
			if err := s.GuildMemberMove(guildID, memberID, &channel.ID); err != nil {
				log.Errorf("Failed to move player %s to team %s channel: %v", memberID, team.Label, err)
			}
		}
	}

	return nil
}

// handleMixFinalize records the match result and applies point changes
func (b *Bot) handleMixFinalize(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Printf("Error parsing guild ID %s: %v", i.GuildID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	match := b.mixService.CurrentMatch(guildID)
	if match == nil {
		b.respondWithError(s, i, "There is no active match to finalize.")
		return
	}

	var winner models.TeamLabel
	var mvpUser *discordgo.User
	for _, opt := range options {
		switch opt.Name {
		case "winner":
			winner = models.TeamLabel(opt.StringValue())
		case "mvp":
			mvpUser = opt.UserValue(s)
		}
	}

	outcome := models.MatchOutcome{WinningTeam: winner}
	if mvpUser != nil {
		mvpID, err := strconv.ParseInt(mvpUser.ID, 10, 64)
		if err != nil {
			log.Printf("Error parsing MVP Discord ID %s: %v", mvpUser.ID, err)
			b.respondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		winningTeam := match.Team(winner)
		if winningTeam == nil || !winningTeam.Contains(mvpID) {
			b.respondWithError(s, i, "The MVP must be on the winning team.")
			return
		}
		outcome.MVPDiscordID = &mvpID
	}

	result, err := b.mixService.Finalize(ctx, match.ID, outcome, b.isFinalizer(i.Member))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			b.respondWithError(s, i, "You are not allowed to finalize matches.")
		case errors.Is(err, service.ErrAlreadyFinalized):
			b.respondWithError(s, i, "This match has already been finalized.")
		case errors.Is(err, service.ErrTeamsNotAnnounced):
			b.respondWithError(s, i, "Teams have not been announced yet.")
		default:
			log.Printf("Error finalizing match %d: %v", match.ID, err)
			b.respondWithError(s, i, "Unable to finalize the match. Please try again.")
		}
		return
	}

	msg := fmt.Sprintf("🏆 **Team %s wins!** Points have been recorded for %d players.",
		winner, len(result.Applied))
	if outcome.MVPDiscordID != nil {
		msg += fmt.Sprintf(" MVP: **%s** 👑", GetDisplayNameInt64(s, i.GuildID, *outcome.MVPDiscordID))
	}
	if len(result.Failed) > 0 {
		names := make([]string, 0, len(result.Failed))
		for _, discordID := range result.Failed {
			names = append(names, GetDisplayNameInt64(s, i.GuildID, discordID))
		}
		msg += fmt.Sprintf("\n⚠️ Could not record points for: %s.", strings.Join(names, ", "))
	}

	b.respondWithMessage(s, i, msg)
}

// handleMixCancel abandons the current match without touching the ledger
func (b *Bot) handleMixCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Printf("Error parsing guild ID %s: %v", i.GuildID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	match := b.mixService.CurrentMatch(guildID)
	if match == nil {
		b.respondWithError(s, i, "There is no active match to cancel.")
		return
	}

	if err := b.mixService.Cancel(ctx, match.ID); err != nil {
		if errors.Is(err, service.ErrAlreadyFinalized) {
			b.respondWithError(s, i, "This match has already been finalized.")
			return
		}
		log.Printf("Error cancelling match %d: %v", match.ID, err)
		b.respondWithError(s, i, "Unable to cancel the match. Please try again.")
		return
	}

	b.respondWithMessage(s, i, fmt.Sprintf("🚫 Match %d cancelled. No points were changed.", match.ID))
}

// isFinalizer reports whether the member may finalize matches. With no
// finalizer role configured, Manage Server members qualify.
func (b *Bot) isFinalizer(member *discordgo.Member) bool {
	if b.config.FinalizerRoleID == "" {
		return member.Permissions&discordgo.PermissionManageGuild != 0
	}

	for _, roleID := range member.Roles {
		if roleID == b.config.FinalizerRoleID {
			return true
		}
	}
	return false
}
