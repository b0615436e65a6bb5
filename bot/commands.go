package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Register yourself as a mix player",
		},
		{
			Name:        "profile",
			Description: "View a player's profile",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to look up (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "addpoints",
			Description: "Adjust a player's points (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player to adjust",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Points to add (negative to subtract)",
					Required:    true,
				},
			},
		},
		{
			Name:        "ranking",
			Description: "Show the points ranking",
		},
		{
			Name:        "mix",
			Description: "Run a mix match",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Balance the waiting channel into two teams",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "finalize",
					Description: "Record the match result (finalizers only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "winner",
							Description: "Winning team",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Team A", Value: "A"},
								{Name: "Team B", Value: "B"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "mvp",
							Description: "Match MVP",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Cancel the current match without scoring it",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "register":
		b.handleRegister(s, i)
	case "profile":
		b.handleProfile(s, i)
	case "addpoints":
		b.handleAddPoints(s, i)
	case "ranking":
		b.handleRanking(s, i)
	case "mix":
		b.handleMixCommand(s, i)
	}
}
