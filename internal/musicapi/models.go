package musicapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrNoFormats means the track offers no stream with a known audio tag.
	ErrNoFormats = errors.New("musicapi: no playable audio format")
	// ErrTooLarge means every candidate is at or above the size limit.
	ErrTooLarge = errors.New("musicapi: no audio format under size limit")
	// ErrTrackNotFound means the player response carried no video details.
	ErrTrackNotFound = errors.New("musicapi: track not found")
	// ErrDownloadStalled means the chunk loop gave up after too many
	// requests or redirects.
	ErrDownloadStalled = errors.New("musicapi: download stalled")
)

// IsUndownloadable reports whether err is an expected "can't download this"
// outcome rather than a failure.
func IsUndownloadable(err error) bool {
	return errors.Is(err, ErrNoFormats) || errors.Is(err, ErrTooLarge)
}

type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Candidate is a directly fetchable audio stream.
type Candidate struct {
	URL    string
	SizeMB float64 // 0 when the backend gave no content length
}

// Song is a track as returned by search or by a player lookup. Search results
// carry no candidates; they are fetched on the first Download.
type Song struct {
	ID              string
	Title           string
	Authors         []string
	Album           string
	Views           string
	Duration        string // "H:MM:SS" or "MM:SS" as shown by the backend
	DurationSeconds int
	Date            string
	Thumbnails      []Thumbnail

	client *Client

	mu         sync.Mutex
	resolved   bool
	candidates []Candidate
}

// Performer joins the authors for display.
func (s *Song) Performer() string {
	return strings.Join(s.Authors, ", ")
}

// Thumbnail returns the default thumbnail URL, or "" when there is none.
func (s *Song) Thumbnail() string {
	if len(s.Thumbnails) == 0 {
		return ""
	}
	return s.Thumbnails[0].URL
}

// TotalSeconds returns the duration in seconds, parsing the display string
// when the numeric value is unknown. Unknown durations are 0.
func (s *Song) TotalSeconds() int {
	if s.DurationSeconds > 0 {
		return s.DurationSeconds
	}
	return ParseDuration(s.Duration)
}

// FormattedDuration returns the display string, formatting the numeric
// value when the backend gave none.
func (s *Song) FormattedDuration() string {
	if s.Duration != "" {
		return s.Duration
	}
	if s.DurationSeconds <= 0 {
		return ""
	}
	return FormatDuration(s.DurationSeconds)
}

// ParseDuration turns "1:02:03" or "3:45" into seconds. A malformed string
// yields 0.
func ParseDuration(d string) int {
	if d == "" {
		return 0
	}
	parts := strings.Split(d, ":")
	seconds, mult := 0, 1
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 {
			return 0
		}
		seconds += n * mult
		mult *= 60
	}
	return seconds
}

// FormatDuration renders seconds as H:M:S without zero padding, so 3723
// becomes "1:2:3".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%d:%d", seconds/3600, seconds%3600/60, seconds%60)
}

// Candidates returns the download candidates, fetching them on first use.
// Later calls never refetch, even if the track had no playable format.
func (s *Song) Candidates(ctx context.Context) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.candidates, nil
	}
	if s.client == nil {
		return nil, errors.New("musicapi: song is not attached to a client")
	}
	detail, err := s.client.resolve(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", s.ID, err)
	}
	s.candidates = detail.candidates
	s.resolved = true
	return s.candidates, nil
}

// Download fetches the first candidate smaller than sizeLimitMB, or the
// first candidate at all when sizeLimitMB is zero.
func (s *Song) Download(ctx context.Context, sizeLimitMB float64) ([]byte, error) {
	cands, err := s.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, ErrNoFormats
	}

	c, ok := pickCandidate(cands, sizeLimitMB)
	if !ok {
		return nil, fmt.Errorf("%s (smallest known %.2f MB, limit %.2f MB): %w",
			s.ID, smallestSize(cands), sizeLimitMB, ErrTooLarge)
	}
	return s.client.download(ctx, s.ID, c.URL)
}

// pickCandidate returns the first candidate under the limit. A candidate of
// unknown size only qualifies when there is no limit.
func pickCandidate(cands []Candidate, sizeLimitMB float64) (Candidate, bool) {
	for _, c := range cands {
		if sizeLimitMB <= 0 || (c.SizeMB > 0 && c.SizeMB < sizeLimitMB) {
			return c, true
		}
	}
	return Candidate{}, false
}

// smallestSize returns the smallest known candidate size, or 0 when none is
// known.
func smallestSize(cands []Candidate) float64 {
	var least float64
	for _, c := range cands {
		if c.SizeMB > 0 && (least == 0 || c.SizeMB < least) {
			least = c.SizeMB
		}
	}
	return least
}
