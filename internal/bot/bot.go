package bot

import (
	"context"

	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"

	"github.com/bwmarrin/discordgo"
)

// MusicClient is the part of the music client the bot needs.
type MusicClient interface {
	SearchSongs(ctx context.Context, query string) ([]*musicapi.Song, error)
	DownloadSong(ctx context.Context, id string, sizeLimitMB float64) (*musicapi.Song, []byte, error)
}

type Bot struct {
	cfg   Config
	dg    *discordgo.Session
	api   MusicClient
	cache DeliveredCache

	pm *PlaybackManager

	ctx        context.Context
	cancel     context.CancelFunc
	closeCache func() error
}

func New(cfg Config, api MusicClient) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cache, closeCache, err := newCache(ctx, cfg.RedisURL)
	if err != nil {
		cancel()
		return nil, err
	}

	b := &Bot{
		cfg:        cfg,
		dg:         dg,
		api:        api,
		cache:      cache,
		ctx:        ctx,
		cancel:     cancel,
		closeCache: closeCache,
	}
	b.pm = NewPlaybackManager(b)

	return b, nil
}

func (b *Bot) Start() error {
	// Need VoiceStates to know which VC the user is in
	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close() error {
	b.cancel()
	b.pm.StopAll()
	if err := b.closeCache(); err != nil {
		logger.Warn("close cache", logger.Err(err))
	}
	return b.dg.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info("logged in", logger.String("user", s.State.User.String()))
}
