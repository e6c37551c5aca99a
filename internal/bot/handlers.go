package bot

import (
	"bytes"
	"context"
	"strings"
	"time"

	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"

	"github.com/bwmarrin/discordgo"
)

const (
	searchSelectID = "search_select_song"
	playSelectID   = "play_select_song"

	ctrlPauseID  = "ctrl_pause"
	ctrlResumeID = "ctrl_resume"
	ctrlStopID   = "ctrl_stop"
	ctrlLeaveID  = "ctrl_leave"
)

const (
	msgTooLarge = "Filesize too large, can't download"
	msgNoResult = "No results found."

	interactionTimeout = 3 * time.Minute
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {

	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "search":
			b.handleSearch(s, i, searchSelectID, "Pick a track to download…")
		case "play":
			b.handleSearch(s, i, playSelectID, "Pick a track to play…")
		}

	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case searchSelectID:
			b.handlePickDeliver(s, i)
		case playSelectID:
			b.handlePickPlay(s, i)
		case ctrlPauseID:
			b.handleControl(s, i, "pause")
		case ctrlResumeID:
			b.handleControl(s, i, "resume")
		case ctrlStopID:
			b.handleControl(s, i, "stop")
		case ctrlLeaveID:
			b.handleControl(s, i, "leave")
		}
	}
}

func (b *Bot) handleSearch(s *discordgo.Session, i *discordgo.InteractionCreate, selectID, placeholder string) {
	opts := i.ApplicationCommandData().Options
	query := ""
	if len(opts) > 0 {
		query = strings.TrimSpace(opts[0].StringValue())
	}
	if query == "" {
		replyText(s, i, "Give me a song name or artist.")
		return
	}

	// Ack quickly
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	results, err := b.api.SearchSongs(ctx, query)
	if err != nil {
		logger.Error("search failed", logger.String("query", query), logger.Err(err))
		editReplyText(s, i, "ERROR: "+err.Error())
		return
	}

	menuOpts := resultOptions(results, b.cfg.MaxDuration)
	logger.Info("search",
		logger.String("query", query),
		logger.Int("results", len(results)),
		logger.Int("shown", len(menuOpts)),
	)
	if len(menuOpts) == 0 {
		editReplyText(s, i, msgNoResult)
		return
	}

	menu := discordgo.SelectMenu{
		CustomID:    selectID,
		Placeholder: placeholder,
		Options:     menuOpts,
	}

	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{ResultsEmbed(query, len(menuOpts))},
		Components: &[]discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
		},
	})
}

func pickedID(i *discordgo.InteractionCreate) string {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (b *Bot) handlePickDeliver(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := pickedID(i)
	if id == "" {
		replyText(s, i, "No song selected.")
		return
	}

	// Keep the menu so more tracks can be picked, with this one marked.
	data := &discordgo.InteractionResponseData{}
	if i.Message != nil {
		data.Embeds = i.Message.Embeds
		data.Components = markPicked(i.Message.Components, id)
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})

	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	b.deliver(ctx, s, i, id)
}

// deliver uploads the track's audio, or re-sends the earlier upload of it.
func (b *Bot) deliver(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, id string) {
	cached, ok, err := b.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("delivered cache lookup", logger.String("id", id), logger.Err(err))
	}
	if ok {
		logger.Debug("re-sending cached upload", logger.String("id", id))
		_, _ = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{Content: cached})
		return
	}

	clearStatus := followupStatus(s, i, "Downloading…")
	defer clearStatus()

	song, data, err := b.api.DownloadSong(ctx, id, b.cfg.SizeLimitMB)
	switch {
	case musicapi.IsUndownloadable(err):
		logger.Info("not downloadable", logger.String("id", id), logger.Err(err))
		followupText(s, i, msgTooLarge)
		return
	case err != nil:
		logger.Error("download failed", logger.String("id", id), logger.Err(err))
		followupText(s, i, "ERROR: "+err.Error())
		return
	}

	msg, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{DeliveryEmbed(song)},
		Files: []*discordgo.File{{
			Name:        audioFileName(song),
			ContentType: "audio/mp4",
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		logger.Error("upload failed", logger.String("id", id), logger.Err(err))
		followupText(s, i, "ERROR: "+err.Error())
		return
	}
	logger.Info("delivered",
		logger.String("id", id),
		logger.Float64("size_mb", float64(len(data))/(1<<20)),
	)
	if msg == nil || len(msg.Attachments) == 0 {
		return
	}
	if err := b.cache.Set(ctx, id, msg.Attachments[0].URL); err != nil {
		logger.Warn("delivered cache store", logger.String("id", id), logger.Err(err))
	}
}

// audioFileName builds "Performer - Title.m4a" without path separators or
// characters Discord rejects.
func audioFileName(s *musicapi.Song) string {
	name := songPerformer(s) + " - " + songTitle(s)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < ' ' {
			return -1
		}
		return r
	}, name)
	return truncate(strings.TrimSpace(name), 120) + ".m4a"
}

func requester(i *discordgo.InteractionCreate) (userID, display string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, "@" + i.Member.User.Username
	}
	return "", ""
}

func (b *Bot) handlePickPlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := pickedID(i)
	if id == "" {
		replyText(s, i, "No song selected.")
		return
	}

	// Remove dropdown immediately (clean)
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{Title: "Loading…", Description: "Fetching audio…", Color: uiColor},
			},
			Components: []discordgo.MessageComponent{},
		},
	})

	guildID := i.GuildID
	userID, requestedBy := requester(i)
	if guildID == "" || userID == "" {
		followupText(s, i, "Playback only works inside a server.")
		return
	}

	vcID, err := b.userVoiceChannelID(guildID, userID)
	if err != nil || vcID == "" {
		followupText(s, i, "Join a **voice channel** first, then use `/play` again.")
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()

	// Playback streams locally, so any size will do.
	song, audio, err := b.api.DownloadSong(ctx, id, 0)
	switch {
	case musicapi.IsUndownloadable(err):
		followupText(s, i, "No playable audio found for this track.")
		return
	case err != nil:
		logger.Error("download for playback failed", logger.String("id", id), logger.Err(err))
		followupText(s, i, "ERROR: "+err.Error())
		return
	}

	// Start playback FIRST (so controls actually work)
	if err := b.pm.Start(guildID, vcID, audio, song, requestedBy); err != nil {
		logger.Error("playback failed", logger.String("guild", guildID), logger.Err(err))
		followupText(s, i, "Playback error: "+err.Error())
		return
	}

	embed := NowPlayingEmbed(song, UIState{
		Status:      "Playing",
		VoiceChanID: vcID,
		RequestedBy: requestedBy,
	})

	_, _ = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: PlayerControls(false),
	})
}

func (b *Bot) handleControl(s *discordgo.Session, i *discordgo.InteractionCreate, action string) {
	// Ack fast
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})

	guildID := i.GuildID

	switch action {
	case "pause":
		b.pm.Pause(guildID)
	case "resume":
		b.pm.Resume(guildID)
	case "stop":
		b.pm.Stop(guildID)
	case "leave":
		b.pm.Stop(guildID)
		b.pm.Leave(guildID)
	}

	track, requestedBy, vcID, ok := b.pm.TrackInfo(guildID)
	if !ok {
		stopped := &discordgo.MessageEmbed{
			Title:       "Player",
			Description: "**Status:** `Stopped`",
			Color:       uiColor,
		}
		_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &[]*discordgo.MessageEmbed{stopped},
			Components: &[]discordgo.MessageComponent{},
		})
		return
	}

	paused := b.pm.IsPaused(guildID)
	status := "Playing"
	if paused {
		status = "Paused"
	}

	embed := NowPlayingEmbed(track, UIState{
		Status:      status,
		VoiceChanID: vcID,
		RequestedBy: requestedBy,
	})
	comps := PlayerControls(paused)

	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &comps,
	})
}
