package musicapi

import (
	"strings"

	"github.com/tidwall/gjson"

	"musicsearcher/internal/logger"
)

type rowKind int

const (
	songRow rowKind = iota
	videoRow
)

// classifyRow tells song rows from video rows by how many info fragments
// they carry.
func classifyRow(info []string) rowKind {
	if len(info) > songRowThreshold {
		return songRow
	}
	return videoRow
}

// extractSongs pulls the playable rows out of one search response. A missing
// key anywhere along the way means no results, never an error.
func (c *Client) extractSongs(doc []byte) []*Song {
	if !gjson.ValidBytes(doc) {
		logger.Warn("search response is not JSON", logger.Int("bytes", len(doc)))
		return nil
	}

	rows, ok := firstShelf(gjson.GetBytes(doc, searchPaths.Sections))
	if !ok {
		return nil
	}

	var songs []*Song
	rows.ForEach(func(_, row gjson.Result) bool {
		if s := c.songFromRow(row.Get(searchPaths.Row)); s != nil {
			songs = append(songs, s)
		}
		return true
	})
	return songs
}

func firstShelf(sections gjson.Result) (gjson.Result, bool) {
	if !sections.IsArray() {
		return gjson.Result{}, false
	}
	for _, section := range sections.Array() {
		if rows := section.Get(searchPaths.Shelf); rows.IsArray() {
			return rows, true
		}
	}
	return gjson.Result{}, false
}

func (c *Client) songFromRow(row gjson.Result) *Song {
	// Rows without item data are headers and other decoration.
	if !row.Get(searchPaths.ItemData).Exists() {
		return nil
	}
	id := row.Get(searchPaths.VideoID).String()
	if id == "" {
		return nil
	}

	s := &Song{
		ID:         id,
		Title:      row.Get(searchPaths.Title).String(),
		Thumbnails: parseThumbnails(row.Get(searchPaths.Thumbnails)),
		client:     c,
	}

	info := stringsOf(row.Get(searchPaths.Info))
	switch classifyRow(info) {
	case songRow:
		applySongInfo(s, info)
	case videoRow:
		applyVideoInfo(s, info)
	}
	return s
}

// applySongInfo reads [author, sep, author, ..., sep, views|album, sep, duration].
func applySongInfo(s *Song, info []string) {
	n := len(info)
	for i := 0; i < n-3; i += 2 {
		s.Authors = append(s.Authors, info[i])
	}
	if third := info[n-3]; strings.Contains(third, viewsMarker) {
		s.Views = third
	} else {
		s.Album = third
	}
	s.Duration = info[n-1]
}

// applyVideoInfo reads [date, ..., author].
func applyVideoInfo(s *Song, info []string) {
	if len(info) == 0 {
		return
	}
	s.Authors = []string{info[len(info)-1]}
	s.Date = info[0]
}

func parseThumbnails(r gjson.Result) []Thumbnail {
	var out []Thumbnail
	r.ForEach(func(_, t gjson.Result) bool {
		if u := t.Get("url").String(); u != "" {
			out = append(out, Thumbnail{
				URL:    u,
				Width:  int(t.Get("width").Int()),
				Height: int(t.Get("height").Int()),
			})
		}
		return true
	})
	return out
}

func stringsOf(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}
