package musicapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerResponse = `{
	"videoDetails": {
		"videoId": "abc",
		"title": "Song One",
		"author": "Artist A",
		"viewCount": "12345",
		"lengthSeconds": "225",
		"thumbnail": {"thumbnails": [{"url": "https://img/abc", "width": 60, "height": 60}]}
	},
	"streamingData": {
		"adaptiveFormats": [
			{"itag": 137, "url": "https://media/video", "contentLength": "99999999"},
			{"itag": 141, "url": "https://media/141", "contentLength": "8388608"},
			{"itag": 140, "url": "https://media/140", "contentLength": "4194304"},
			{"itag": 251, "url": "https://media/opus", "contentLength": "3000000"},
			{"itag": 139, "url": "https://media/139", "contentLength": "1572864"},
			{"itag": 140, "signatureCipher": "s=...", "contentLength": "4194304"}
		]
	}
}`

func TestParsePlayer(t *testing.T) {
	c := New(Config{})
	s, err := c.parsePlayer([]byte(playerResponse))
	require.NoError(t, err)

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "Song One", s.Title)
	assert.Equal(t, []string{"Artist A"}, s.Authors)
	assert.Equal(t, "12345", s.Views)
	assert.Equal(t, 225, s.DurationSeconds)
	assert.Equal(t, "0:3:45", s.FormattedDuration())
	assert.Equal(t, "https://img/abc", s.Thumbnail())

	cands, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{URL: "https://media/139", SizeMB: 1.5},
		{URL: "https://media/140", SizeMB: 4},
		{URL: "https://media/141", SizeMB: 8},
	}, cands)
}

func TestParsePlayer_NoAudioFormats(t *testing.T) {
	c := New(Config{})
	s, err := c.parsePlayer([]byte(`{
		"videoDetails": {"videoId": "abc", "title": "T", "author": "A", "lengthSeconds": "10"},
		"streamingData": {"adaptiveFormats": [{"itag": 137, "url": "https://media/video", "contentLength": "1"}]}
	}`))
	require.NoError(t, err)

	cands, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cands)

	_, err = s.Download(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNoFormats)
}

func TestParsePlayer_FormatWithoutSize(t *testing.T) {
	c := New(Config{})
	s, err := c.parsePlayer([]byte(`{
		"videoDetails": {"videoId": "abc"},
		"streamingData": {"adaptiveFormats": [{"itag": 140, "url": "https://media/big"}]}
	}`))
	require.NoError(t, err)

	cands, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{URL: "https://media/big"}}, cands)

	// Without a known size it cannot be shown to fit the limit.
	_, err = s.Download(context.Background(), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParsePlayer_NoStreamingData(t *testing.T) {
	c := New(Config{})
	s, err := c.parsePlayer([]byte(`{"videoDetails": {"videoId": "abc"}}`))
	require.NoError(t, err)

	cands, err := s.Candidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestParsePlayer_NotFound(t *testing.T) {
	c := New(Config{})

	for _, doc := range []string{`{}`, `{"playabilityStatus": {"status": "ERROR"}}`, `nope`} {
		_, err := c.parsePlayer([]byte(doc))
		assert.ErrorIs(t, err, ErrTrackNotFound, doc)
	}
}
