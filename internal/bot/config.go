package bot

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"
)

type Config struct {
	Token      string
	GuildID    string
	FFmpegPath string

	// SizeLimitMB is the largest audio file the bot will upload.
	SizeLimitMB float64
	// MaxDuration hides longer results from search menus.
	MaxDuration time.Duration

	// RedisURL selects the delivered-file cache. Empty keeps it in memory.
	RedisURL   string
	HealthPort string

	API musicapi.Config
	Log logger.Config
}

// LoadConfigFromEnv reads the process environment. Load a .env file before
// calling it if you want one.
func LoadConfigFromEnv() (Config, error) {
	cfg, err := LoadClientConfigFromEnv()
	if err != nil {
		return Config{}, err
	}

	cfg.Token = strings.TrimSpace(os.Getenv("DISCORD_TOKEN"))
	if cfg.Token == "" {
		return Config{}, errors.New("DISCORD_TOKEN missing")
	}
	return cfg, nil
}

// LoadClientConfigFromEnv reads everything except the Discord credentials,
// for the terminal commands.
func LoadClientConfigFromEnv() (Config, error) {
	cfg := Config{
		GuildID:    strings.TrimSpace(os.Getenv("GUILD_ID")),
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
		HealthPort: getEnv("PORT", "10000"),
		API:        musicapi.DefaultConfig(),
		Log: logger.Config{
			Level:      logger.Level(getEnv("LOG_LEVEL", string(logger.InfoLevel))),
			OutputPath: strings.TrimSpace(os.Getenv("LOG_FILE")),
			Compress:   true,
		},
	}

	var err error
	if cfg.SizeLimitMB, err = getEnvFloat("SIZE_LIMIT_MB", 10); err != nil {
		return Config{}, err
	}
	if cfg.MaxDuration, err = getEnvDuration("MAX_DURATION", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.Log.MaxSize, err = getEnvInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return Config{}, err
	}
	if cfg.Log.MaxBackups, err = getEnvInt("LOG_MAX_BACKUPS", 3); err != nil {
		return Config{}, err
	}
	if cfg.Log.MaxAge, err = getEnvInt("LOG_MAX_AGE_DAYS", 28); err != nil {
		return Config{}, err
	}

	api := &cfg.API
	api.SearchURL = getEnv("MUSIC_SEARCH_URL", api.SearchURL)
	api.PlayerURL = getEnv("MUSIC_PLAYER_URL", api.PlayerURL)
	if api.Timeout, err = getEnvDuration("HTTP_TIMEOUT", api.Timeout); err != nil {
		return Config{}, err
	}
	chunk, err := getEnvInt("CHUNK_SIZE", int(api.ChunkSize))
	if err != nil {
		return Config{}, err
	}
	api.ChunkSize = int64(chunk)
	if api.MaxChunkRequests, err = getEnvInt("MAX_CHUNK_REQUESTS", api.MaxChunkRequests); err != nil {
		return Config{}, err
	}
	if api.MaxRedirects, err = getEnvInt("MAX_REDIRECTS", api.MaxRedirects); err != nil {
		return Config{}, err
	}
	if api.RequestsPerSecond, err = getEnvFloat("REQUESTS_PER_SECOND", 0); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("1800").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
