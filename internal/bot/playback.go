package bot

import (
	"context"
	"errors"
	"sync"

	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"

	"github.com/bwmarrin/discordgo"
)

var errStopped = errors.New("stopped")

type PlaybackManager struct {
	bot *Bot

	mu      sync.Mutex
	players map[string]*Player // guildID -> player
}

func NewPlaybackManager(b *Bot) *PlaybackManager {
	return &PlaybackManager{
		bot:     b,
		players: make(map[string]*Player),
	}
}

type Player struct {
	guildID string
	vcID    string
	vc      *discordgo.VoiceConnection

	track       *musicapi.Song
	requestedBy string

	cancel context.CancelFunc

	mu     sync.Mutex
	paused bool
	cond   *sync.Cond
}

func newPlayer(guildID, vcID string, track *musicapi.Song, requestedBy string, cancel context.CancelFunc) *Player {
	p := &Player{
		guildID:     guildID,
		vcID:        vcID,
		track:       track,
		requestedBy: requestedBy,
		cancel:      cancel,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start replaces whatever the guild is playing with audio, which may be in
// any container ffmpeg can read.
func (pm *PlaybackManager) Start(guildID, vcID string, audio []byte, track *musicapi.Song, requestedBy string) error {
	pm.Stop(guildID)

	vc, err := pm.bot.dg.ChannelVoiceJoin(guildID, vcID, false, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(pm.bot.ctx)
	p := newPlayer(guildID, vcID, track, requestedBy, cancel)
	p.vc = vc

	pm.mu.Lock()
	pm.players[guildID] = p
	pm.mu.Unlock()

	go func() {
		err := pm.bot.playAudio(ctx, p, audio)
		if err != nil && !errors.Is(err, errStopped) {
			logger.Warn("playback ended", logger.String("guild", guildID), logger.Err(err))
		}
		_ = vc.Disconnect()
		pm.remove(guildID, p)
	}()

	return nil
}

func (pm *PlaybackManager) Pause(guildID string) {
	if p := pm.get(guildID); p != nil {
		p.setPaused(true)
	}
}

func (pm *PlaybackManager) Resume(guildID string) {
	if p := pm.get(guildID); p != nil {
		p.setPaused(false)
	}
}

// Stop cancels playback and forgets the guild's player at once, so the UI
// shows it stopped without waiting for the audio loop to exit.
func (pm *PlaybackManager) Stop(guildID string) {
	pm.mu.Lock()
	p := pm.players[guildID]
	delete(pm.players, guildID)
	pm.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

// Leave disconnects from voice in the guild, playing or not.
func (pm *PlaybackManager) Leave(guildID string) {
	pm.bot.dg.RLock()
	vc := pm.bot.dg.VoiceConnections[guildID]
	pm.bot.dg.RUnlock()
	if vc != nil {
		_ = vc.Disconnect()
	}
}

func (pm *PlaybackManager) StopAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.players {
		p.stop()
		if p.vc != nil {
			_ = p.vc.Disconnect()
		}
	}
	pm.players = make(map[string]*Player)
}

func (pm *PlaybackManager) IsPaused(guildID string) bool {
	if p := pm.get(guildID); p != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.paused
	}
	return false
}

func (pm *PlaybackManager) TrackInfo(guildID string) (track *musicapi.Song, requestedBy string, vcID string, ok bool) {
	if p := pm.get(guildID); p != nil {
		return p.track, p.requestedBy, p.vcID, p.track != nil
	}
	return nil, "", "", false
}

func (pm *PlaybackManager) get(guildID string) *Player {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.players[guildID]
}

func (pm *PlaybackManager) remove(guildID string, p *Player) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.players[guildID] == p {
		delete(pm.players, guildID)
	}
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
	p.cond.Broadcast()
}

// stop cancels playback and wakes a paused loop so it can see it.
func (p *Player) stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *Player) waitIfPaused(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.paused {
		if ctx.Err() != nil {
			return errStopped
		}
		p.cond.Wait()
	}
	return nil
}
