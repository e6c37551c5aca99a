package musicapi

import (
	"slices"

	"github.com/tidwall/gjson"
)

const bytesPerMB = 1024 * 1024

// parsePlayer builds a resolved Song from a player response. Formats are
// kept only when their tag is a known audio-only one, and reversed so the
// smallest stream is tried first.
func (c *Client) parsePlayer(doc []byte) (*Song, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrTrackNotFound
	}
	root := gjson.ParseBytes(doc)

	id := root.Get(playerPaths.VideoID).String()
	if id == "" {
		return nil, ErrTrackNotFound
	}

	s := &Song{
		ID:              id,
		Title:           root.Get(playerPaths.Title).String(),
		Views:           root.Get(playerPaths.Views).String(),
		DurationSeconds: int(root.Get(playerPaths.Length).Int()),
		Thumbnails:      parseThumbnails(root.Get(playerPaths.Thumbnails)),
		client:          c,
		resolved:        true,
		candidates:      []Candidate{},
	}
	if author := root.Get(playerPaths.Author).String(); author != "" {
		s.Authors = []string{author}
	}

	root.Get(playerPaths.Formats).ForEach(func(_, f gjson.Result) bool {
		if !audioFormatTags[f.Get(playerPaths.Tag).Int()] {
			return true
		}
		// Ciphered formats have no plain URL and can't be fetched.
		u := f.Get(playerPaths.URL).String()
		if u == "" {
			return true
		}
		s.candidates = append(s.candidates, Candidate{
			URL:    u,
			SizeMB: float64(f.Get(playerPaths.Size).Int()) / bytesPerMB,
		})
		return true
	})

	slices.Reverse(s.candidates)
	return s, nil
}
