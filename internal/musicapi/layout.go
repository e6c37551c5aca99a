package musicapi

// Everything in this file was read off live backend responses. None of it is
// a published contract; when results go quiet, check these first.

const (
	DefaultSearchURL = "https://music.youtube.com/youtubei/v1/search?prettyPrint=false"
	DefaultPlayerURL = "https://music.youtube.com/youtubei/v1/player?prettyPrint=false"
)

// Section tokens select a result category on the search endpoint.
const (
	SectionSongs  = "EgWKAQIIAWoKEAoQAxAEEAkQBQ=="
	SectionVideos = "EgWKAQIQAWoKEAoQAxAEEAkQBQ=="
)

// ClientIdentity is the client block sent with every backend request. The
// backend decides which stream formats to offer based on it.
type ClientIdentity struct {
	Name    string
	Version string
}

var (
	// WebRemix is used for search requests.
	WebRemix = ClientIdentity{Name: "WEB_REMIX", Version: "1.20240529.01.00"}
	// AndroidMusic is used for player requests. Search identities get no
	// downloadable formats back.
	AndroidMusic = ClientIdentity{Name: "ANDROID_MUSIC", Version: "6.42.52"}
)

func (ci ClientIdentity) context() map[string]any {
	return map[string]any{
		"client": map[string]any{
			"clientName":    ci.Name,
			"clientVersion": ci.Version,
		},
	}
}

// gjson paths into a search response.
var searchPaths = struct {
	Sections   string // list of content sections
	Shelf      string // rows of a section, relative to the section
	Row        string // playable item, relative to a row
	ItemData   string // present only on playable rows
	VideoID    string
	Title      string
	Thumbnails string
	Info       string // texts of the secondary info runs
}{
	Sections:   "contents.tabbedSearchResultsRenderer.tabs.0.tabRenderer.content.sectionListRenderer.contents",
	Shelf:      "musicShelfRenderer.contents",
	Row:        "musicResponsiveListItemRenderer",
	ItemData:   "playlistItemData",
	VideoID:    "playlistItemData.videoId",
	Title:      "flexColumns.0.musicResponsiveListItemFlexColumnRenderer.text.runs.0.text",
	Thumbnails: "thumbnail.musicThumbnailRenderer.thumbnail.thumbnails",
	Info:       "flexColumns.1.musicResponsiveListItemFlexColumnRenderer.text.runs.#.text",
}

const (
	// Rows with more info fragments than this are songs, the rest videos.
	songRowThreshold = 3
	viewsMarker      = "views"
)

// gjson paths into a player response.
var playerPaths = struct {
	VideoID    string
	Title      string
	Author     string
	Views      string
	Length     string
	Thumbnails string
	Formats    string
	Tag        string // relative to a format
	URL        string
	Size       string
}{
	VideoID:    "videoDetails.videoId",
	Title:      "videoDetails.title",
	Author:     "videoDetails.author",
	Views:      "videoDetails.viewCount",
	Length:     "videoDetails.lengthSeconds",
	Thumbnails: "videoDetails.thumbnail.thumbnails",
	Formats:    "streamingData.adaptiveFormats",
	Tag:        "itag",
	URL:        "url",
	Size:       "contentLength",
}

// Audio-only MP4 format tags. The backend lists them highest bitrate first.
var audioFormatTags = map[int64]bool{
	139: true,
	140: true,
	141: true,
}
