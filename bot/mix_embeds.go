package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"mixbot/models"
)

// buildTeamsEmbed renders the team announcement for a freshly balanced match
func buildTeamsEmbed(match *models.Match) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚔️ Mix %d - Teams", match.ID),
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🔵 Team A",
				Value:  formatTeamRoster(match.TeamA),
				Inline: true,
			},
			{
				Name:   "🔴 Team B",
				Value:  formatTeamRoster(match.TeamB),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Finalize with /mix finalize when the match ends",
		},
	}
}

func formatTeamRoster(team *models.Team) string {
	if len(team.Players) == 0 {
		return "-"
	}

	var roster strings.Builder
	for _, player := range team.Players {
		fmt.Fprintf(&roster, "**%s** (lvl %d)\n", player.Username, player.Level)
	}
	return roster.String()
}
