package bot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate   = 48000
	channels     = 2
	frameSize    = 960  // 20ms @ 48kHz
	maxOpusBytes = 4000 // max packet size
)

func (b *Bot) userVoiceChannelID(guildID, userID string) (string, error) {
	// Try cache first
	if g, err := b.dg.State.Guild(guildID); err == nil {
		if id := voiceChannelOf(g.VoiceStates, userID); id != "" {
			return id, nil
		}
	}

	g, err := b.dg.Guild(guildID)
	if err != nil {
		return "", err
	}
	if id := voiceChannelOf(g.VoiceStates, userID); id != "" {
		return id, nil
	}
	return "", errors.New("user not in a voice channel")
}

func voiceChannelOf(states []*discordgo.VoiceState, userID string) string {
	for _, vs := range states {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID
		}
	}
	return ""
}

// pcmCommand decodes whatever is written to stdin into raw s16le stereo PCM
// at 48kHz on stdout.
func pcmCommand(ctx context.Context, ffmpeg string, audio []byte) *exec.Cmd {
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stderr = io.Discard
	return cmd
}

func (b *Bot) playAudio(ctx context.Context, p *Player, audio []byte) error {
	// Give discord voice connection a moment to be ready
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return errStopped
	}

	ff := pcmCommand(ctx, b.cfg.FFmpegPath, audio)
	stdout, err := ff.StdoutPipe()
	if err != nil {
		return err
	}
	if err := ff.Start(); err != nil {
		return err
	}
	defer func() {
		_ = ff.Process.Kill()
		_ = ff.Wait()
	}()

	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("opus encoder: %w", err)
	}

	vc := p.vc
	_ = vc.Speaking(true)
	defer func() { _ = vc.Speaking(false) }()

	reader := bufio.NewReaderSize(stdout, 1<<16)
	pcmFrame := make([]int16, frameSize*channels)
	buf := make([]byte, len(pcmFrame)*2)

	for {
		if ctx.Err() != nil {
			return errStopped
		}

		// Blocks here while paused
		if err := p.waitIfPaused(ctx); err != nil {
			return err
		}

		if err := readInt16Frame(reader, buf, pcmFrame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read pcm: %w", err)
		}

		packet, err := enc.Encode(pcmFrame, frameSize, maxOpusBytes)
		if err != nil {
			return fmt.Errorf("opus encode: %w", err)
		}

		select {
		case vc.OpusSend <- packet:
		case <-ctx.Done():
			return errStopped
		case <-time.After(2 * time.Second):
			return errors.New("opus send timeout (voice not ready)")
		}
	}
}

// readInt16Frame fills dst with little-endian samples, using buf as scratch.
// buf must hold len(dst)*2 bytes.
func readInt16Frame(r io.Reader, buf []byte, dst []int16) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return nil
}
