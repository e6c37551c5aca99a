package musicapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"musicsearcher/internal/logger"
)

// Config tunes the client. Zero fields fall back to DefaultConfig values.
type Config struct {
	SearchURL string
	PlayerURL string

	SearchClient ClientIdentity
	PlayerClient ClientIdentity

	// Timeout bounds every single request, including each chunk fetch.
	Timeout time.Duration

	ChunkSize        int64
	MaxChunkRequests int
	MaxRedirects     int

	// RequestsPerSecond paces outbound calls. Zero means unlimited.
	RequestsPerSecond float64
}

func DefaultConfig() Config {
	return Config{
		SearchURL:        DefaultSearchURL,
		PlayerURL:        DefaultPlayerURL,
		SearchClient:     WebRemix,
		PlayerClient:     AndroidMusic,
		Timeout:          10 * time.Second,
		ChunkSize:        8 << 20,
		MaxChunkRequests: 1024,
		MaxRedirects:     10,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.SearchURL == "" {
		cfg.SearchURL = def.SearchURL
	}
	if cfg.PlayerURL == "" {
		cfg.PlayerURL = def.PlayerURL
	}
	if cfg.SearchClient.Name == "" {
		cfg.SearchClient = def.SearchClient
	}
	if cfg.PlayerClient.Name == "" {
		cfg.PlayerClient = def.PlayerClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.MaxChunkRequests <= 0 {
		cfg.MaxChunkRequests = def.MaxChunkRequests
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	return cfg
}

// Client talks to the music backend. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter

	resolving singleflight.Group
}

func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    newHTTPClient(cfg.Timeout),
		limiter: newLimiter(cfg.RequestsPerSecond),
	}
}

// SearchSongs queries the songs and videos sections concurrently and
// interleaves the results: songs[0], videos[0], songs[1], videos[1], ...
// The longer list's tail is dropped.
func (c *Client) SearchSongs(ctx context.Context, query string) ([]*Song, error) {
	var songs, videos []*Song

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		songs, err = c.searchSection(gctx, query, SectionSongs)
		return err
	})
	g.Go(func() error {
		var err error
		videos, err = c.searchSection(gctx, query, SectionVideos)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := interleave(songs, videos)
	logger.Debug("search finished",
		logger.String("query", query),
		logger.Int("songs", len(songs)),
		logger.Int("videos", len(videos)),
		logger.Int("results", len(out)),
	)
	return out, nil
}

func (c *Client) searchSection(ctx context.Context, query, section string) ([]*Song, error) {
	raw, err := c.post(ctx, c.cfg.SearchURL, map[string]any{
		"context": c.cfg.SearchClient.context(),
		"query":   query,
		"params":  section,
	})
	if err != nil {
		return nil, err
	}
	return c.extractSongs(raw), nil
}

func interleave(a, b []*Song) []*Song {
	n := min(len(a), len(b))
	out := make([]*Song, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, a[i], b[i])
	}
	return out
}

// GetSong fetches playback details for id, including its download
// candidates. A track without known audio formats comes back with an empty
// candidate list, not an error.
func (c *Client) GetSong(ctx context.Context, id string) (*Song, error) {
	raw, err := c.post(ctx, c.cfg.PlayerURL, map[string]any{
		"context": c.cfg.PlayerClient.context(),
		"videoId": id,
	})
	if err != nil {
		return nil, err
	}
	return c.parsePlayer(raw)
}

// DownloadSong resolves id and downloads it under sizeLimitMB (zero means no
// limit). The resolved song is returned even when the download is refused.
func (c *Client) DownloadSong(ctx context.Context, id string, sizeLimitMB float64) (*Song, []byte, error) {
	song, err := c.GetSong(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := song.Download(ctx, sizeLimitMB)
	return song, data, err
}

// resolve shares one player request between concurrent callers asking for
// the same id. The shared request outlives any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (c *Client) resolve(ctx context.Context, id string) (*Song, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.resolving.DoChan(id, func() (any, error) {
		return c.GetSong(shared, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Song), nil
	}
}
