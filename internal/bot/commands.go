package bot

import "github.com/bwmarrin/discordgo"

func queryOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "query",
		Description: "Song name or artist",
		Required:    true,
	}
}

func (b *Bot) registerCommands() error {
	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        "search",
			Description: "Search songs, pick one from the dropdown and get the audio file",
			Options:     []*discordgo.ApplicationCommandOption{queryOption()},
		},
		{
			Name:        "play",
			Description: "Search songs, pick one from the dropdown, then play in your voice channel",
			Options:     []*discordgo.ApplicationCommandOption{queryOption()},
		},
	}

	appID := b.dg.State.User.ID
	for _, c := range cmds {
		// An empty guild registers globally.
		if _, err := b.dg.ApplicationCommandCreate(appID, b.cfg.GuildID, c); err != nil {
			return err
		}
	}
	return nil
}
