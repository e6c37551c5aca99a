package musicapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runs(texts ...string) []any {
	out := make([]any, 0, len(texts))
	for _, t := range texts {
		out = append(out, map[string]any{"text": t})
	}
	return out
}

func flexColumn(texts ...string) map[string]any {
	return map[string]any{
		"musicResponsiveListItemFlexColumnRenderer": map[string]any{
			"text": map[string]any{"runs": runs(texts...)},
		},
	}
}

func itemRow(id, title string, info ...string) map[string]any {
	return map[string]any{
		"musicResponsiveListItemRenderer": map[string]any{
			"playlistItemData": map[string]any{"videoId": id},
			"flexColumns":      []any{flexColumn(title), flexColumn(info...)},
			"thumbnail": map[string]any{
				"musicThumbnailRenderer": map[string]any{
					"thumbnail": map[string]any{
						"thumbnails": []any{
							map[string]any{"url": "https://img/" + id + "/60", "width": 60, "height": 60},
							map[string]any{"url": "https://img/" + id + "/120", "width": 120, "height": 120},
						},
					},
				},
			},
		},
	}
}

func headerRow() map[string]any {
	return map[string]any{
		"musicResponsiveListItemRenderer": map[string]any{
			"flexColumns": []any{flexColumn("Top result")},
		},
	}
}

func searchDoc(t *testing.T, sections ...any) []byte {
	t.Helper()
	doc := map[string]any{
		"contents": map[string]any{
			"tabbedSearchResultsRenderer": map[string]any{
				"tabs": []any{
					map[string]any{
						"tabRenderer": map[string]any{
							"content": map[string]any{
								"sectionListRenderer": map[string]any{"contents": sections},
							},
						},
					},
				},
			},
		},
	}
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return b
}

func shelf(rows ...any) map[string]any {
	return map[string]any{"musicShelfRenderer": map[string]any{"contents": rows}}
}

func TestClassifyRow(t *testing.T) {
	assert.Equal(t, videoRow, classifyRow(nil))
	assert.Equal(t, videoRow, classifyRow([]string{"2021", " • ", "Artist"}))
	assert.Equal(t, songRow, classifyRow([]string{"A", " • ", "Album", "3:00"}))
}

func TestExtractSongs_SongRows(t *testing.T) {
	c := New(Config{})
	doc := searchDoc(t, shelf(
		itemRow("abc", "Song One", "Artist A", " & ", "Artist B", " • ", "Great Album", " • ", "3:45"),
		itemRow("def", "Song Two", "Artist C", " • ", "1.2M views", " • ", "1:02:03"),
	))

	songs := c.extractSongs(doc)
	require.Len(t, songs, 2)

	first := songs[0]
	assert.Equal(t, "abc", first.ID)
	assert.Equal(t, "Song One", first.Title)
	assert.Equal(t, []string{"Artist A", "Artist B"}, first.Authors)
	assert.Equal(t, "Great Album", first.Album)
	assert.Empty(t, first.Views)
	assert.Equal(t, "3:45", first.Duration)
	assert.Equal(t, "https://img/abc/60", first.Thumbnail())
	assert.Equal(t, Thumbnail{URL: "https://img/abc/120", Width: 120, Height: 120}, first.Thumbnails[1])

	second := songs[1]
	assert.Equal(t, []string{"Artist C"}, second.Authors)
	assert.Equal(t, "1.2M views", second.Views)
	assert.Empty(t, second.Album)
	assert.Equal(t, 3723, second.TotalSeconds())
}

func TestExtractSongs_VideoRows(t *testing.T) {
	c := New(Config{})
	doc := searchDoc(t, shelf(
		itemRow("vid", "Live Video", "2019", " • ", "Some Channel"),
		itemRow("solo", "Lonely", "Only Fragment"),
	))

	songs := c.extractSongs(doc)
	require.Len(t, songs, 2)

	assert.Equal(t, []string{"Some Channel"}, songs[0].Authors)
	assert.Equal(t, "2019", songs[0].Date)
	assert.Empty(t, songs[0].Duration)

	assert.Equal(t, []string{"Only Fragment"}, songs[1].Authors)
	assert.Equal(t, "Only Fragment", songs[1].Date)
}

func TestExtractSongs_SkipsDecorativeRows(t *testing.T) {
	c := New(Config{})
	doc := searchDoc(t, shelf(
		headerRow(),
		itemRow("abc", "Song", "A", " • ", "Album", " • ", "2:00"),
	))

	songs := c.extractSongs(doc)
	require.Len(t, songs, 1)
	assert.Equal(t, "abc", songs[0].ID)
}

func TestExtractSongs_UsesFirstShelf(t *testing.T) {
	c := New(Config{})
	doc := searchDoc(t,
		map[string]any{"itemSectionRenderer": map[string]any{}},
		shelf(itemRow("first", "First", "A", " • ", "Album", " • ", "2:00")),
		shelf(itemRow("second", "Second", "B", " • ", "Album", " • ", "2:00")),
	)

	songs := c.extractSongs(doc)
	require.Len(t, songs, 1)
	assert.Equal(t, "first", songs[0].ID)
}

func TestExtractSongs_ShapeDrift(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name string
		doc  string
	}{
		{"empty object", `{}`},
		{"not json", `<html>`},
		{"no tabs", `{"contents":{"tabbedSearchResultsRenderer":{}}}`},
		{"tabs not array", `{"contents":{"tabbedSearchResultsRenderer":{"tabs":{}}}}`},
		{"no shelf", string(searchDoc(t, map[string]any{"messageRenderer": map[string]any{}}))},
		{"empty shelf", string(searchDoc(t, shelf()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, c.extractSongs([]byte(tt.doc)))
		})
	}
}

func TestExtractSongs_RecordsClient(t *testing.T) {
	c := New(Config{})
	songs := c.extractSongs(searchDoc(t, shelf(itemRow("abc", "Song", "A", " • ", "Album", " • ", "2:00"))))
	require.Len(t, songs, 1)
	assert.Same(t, c, songs[0].client)
}
