package bot

import (
	"fmt"
	"strings"
	"time"

	"musicsearcher/internal/musicapi"

	"github.com/bwmarrin/discordgo"
)

// Modern UI color (Discord blurple)
const uiColor = 0x5865F2

const (
	maxMenuOptions = 25
	maxLabelLen    = 100
	pickedMark     = "✅ "
)

type UIState struct {
	Status      string
	VoiceChanID string
	RequestedBy string
}

func songTitle(s *musicapi.Song) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return "Unknown Title"
}

func songPerformer(s *musicapi.Song) string {
	if p := strings.TrimSpace(s.Performer()); p != "" {
		return p
	}
	return "Unknown Artist"
}

func songLink(s *musicapi.Song) string {
	return "https://music.youtube.com/watch?v=" + s.ID
}

// songLabel renders "Title by Performer (duration)".
func songLabel(s *musicapi.Song) string {
	label := songTitle(s) + " by " + songPerformer(s)
	if d := s.FormattedDuration(); d != "" {
		label += " (" + d + ")"
	}
	return label
}

func songDetail(s *musicapi.Song) string {
	switch {
	case s.Album != "":
		return s.Album
	case s.Views != "":
		return s.Views
	default:
		return s.Date
	}
}

// resultOptions builds the select menu entries, keeping only tracks shorter
// than maxDuration and skipping repeated ids. Tracks with unknown length are
// kept.
func resultOptions(songs []*musicapi.Song, maxDuration time.Duration) []discordgo.SelectMenuOption {
	limit := int(maxDuration / time.Second)
	seen := make(map[string]bool, len(songs))
	opts := make([]discordgo.SelectMenuOption, 0, min(len(songs), maxMenuOptions))

	for _, s := range songs {
		if len(opts) == maxMenuOptions {
			break
		}
		if seen[s.ID] {
			continue
		}
		if limit > 0 && s.TotalSeconds() >= limit {
			continue
		}
		seen[s.ID] = true
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       truncate(songLabel(s), maxLabelLen),
			Description: truncate(songDetail(s), maxLabelLen),
			Value:       s.ID,
		})
	}
	return opts
}

// markPicked returns a copy of a message's components with the chosen
// option labelled as picked. Earlier picks keep their mark.
func markPicked(components []discordgo.MessageComponent, value string) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, c := range components {
		var row discordgo.ActionsRow
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = *r
		case discordgo.ActionsRow:
			row = r
		default:
			out = append(out, c)
			continue
		}

		inner := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, ic := range row.Components {
			var menu discordgo.SelectMenu
			switch m := ic.(type) {
			case *discordgo.SelectMenu:
				menu = *m
			case discordgo.SelectMenu:
				menu = m
			default:
				inner = append(inner, ic)
				continue
			}

			opts := make([]discordgo.SelectMenuOption, len(menu.Options))
			copy(opts, menu.Options)
			for k := range opts {
				if opts[k].Value == value && !strings.HasPrefix(opts[k].Label, pickedMark) {
					opts[k].Label = truncate(pickedMark+opts[k].Label, maxLabelLen)
				}
			}
			menu.Options = opts
			inner = append(inner, menu)
		}
		out = append(out, discordgo.ActionsRow{Components: inner})
	}
	return out
}

func ResultsEmbed(query string, shown int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Search Results",
		Description: fmt.Sprintf("Query: **%s**\n%d tracks. Select one below.", query, shown),
		Color:       uiColor,
	}
}

// DeliveryEmbed accompanies an uploaded audio file.
func DeliveryEmbed(s *musicapi.Song) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       songTitle(s),
		Description: "**" + songPerformer(s) + "**",
		URL:         songLink(s),
		Color:       uiColor,
	}
	if thumb := s.Thumbnail(); thumb != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumb}
	}
	if d := s.FormattedDuration(); d != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Duration", Value: d, Inline: true})
	}
	if s.Album != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Album", Value: s.Album, Inline: true})
	}
	return embed
}

func NowPlayingEmbed(s *musicapi.Song, ui UIState) *discordgo.MessageEmbed {
	status := strings.TrimSpace(ui.Status)
	if status == "" {
		status = "Playing"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎶 Now Playing",
		Description: fmt.Sprintf("**%s**\n\n**Status:** `%s`", songPerformer(s), status),
		Color:       uiColor,
		URL:         songLink(s),
	}

	if thumb := s.Thumbnail(); thumb != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumb}
	}

	req := strings.TrimSpace(ui.RequestedBy)
	if req == "" {
		req = "`unknown`"
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Track", Value: fmt.Sprintf("**%s**", songTitle(s))},
		{Name: "Voice", Value: mentionChannel(ui.VoiceChanID), Inline: true},
		{Name: "Requested by", Value: req, Inline: true},
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: "Pause/Resume toggles • Stop ends playback • Leave disconnects",
	}

	return embed
}

// PlayerControls returns the toggle and stop buttons on the first row and
// leave on the second.
func PlayerControls(isPaused bool) []discordgo.MessageComponent {
	toggle := discordgo.Button{
		CustomID: ctrlPauseID,
		Label:    "Pause",
		Style:    discordgo.PrimaryButton,
		Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
	}
	if isPaused {
		toggle = discordgo.Button{
			CustomID: ctrlResumeID,
			Label:    "Resume",
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "▶️"},
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			toggle,
			discordgo.Button{
				CustomID: ctrlStopID,
				Label:    "Stop",
				Style:    discordgo.DangerButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: ctrlLeaveID,
				Label:    "Leave",
				Style:    discordgo.SecondaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "🚪"},
			},
		}},
	}
}

func mentionChannel(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "`unknown`"
	}
	return "<#" + id + ">"
}
