package bot

import "github.com/bwmarrin/discordgo"

func replyText(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: msg},
	})
}

func editReplyText(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &msg,
	})
}

func followupText(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: msg,
	})
}

// followupStatus posts a temporary message and returns a func that removes it.
func followupStatus(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) func() {
	m, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: msg})
	if err != nil || m == nil {
		return func() {}
	}
	return func() { _ = s.FollowupMessageDelete(i.Interaction, m.ID) }
}

func truncate(in string, max int) string {
	r := []rune(in)
	if len(r) <= max {
		return in
	}
	return string(r[:max-1]) + "…"
}
