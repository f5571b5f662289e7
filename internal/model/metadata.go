package model

// Playlist detection constants
const (
	TypePlaylist = "playlist"
)

// Metadata is the engine's single-JSON dump for one extracted URL. Only
// the fields the bot acts on are mapped; the rest of the dump is ignored.
type Metadata struct {
	ID                 string              `json:"id"`
	Type               string              `json:"_type"`
	Fulltitle          string              `json:"fulltitle"`
	Entries            []PlaylistEntry     `json:"entries"`
	RequestedDownloads []RequestedDownload `json:"requested_downloads"`
	Formats            []RawFormat         `json:"formats"`
}

// PlaylistEntry is one flat-probe playlist item. Entries are only counted,
// never resolved individually.
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RequestedDownload describes one file the engine produced on disk
type RequestedDownload struct {
	Filepath string `json:"filepath"`
}

// RawFormat is one encoding option exactly as the engine reports it.
// Pointer fields distinguish absent values from zero values.
type RawFormat struct {
	FormatID   string   `json:"format_id"`
	Filesize   *int64   `json:"filesize"`
	Width      *int     `json:"width"`
	Height     *int     `json:"height"`
	FPS        *float64 `json:"fps"`
	VCodec     string   `json:"vcodec"`
	ACodec     string   `json:"acodec"`
	SampleRate *int     `json:"asr"`
	ABR        *float64 `json:"abr"`
	TBR        *float64 `json:"tbr"`
	VBR        *float64 `json:"vbr"`
}

// IsPlaylist reports whether a flat probe resolved to a playlist rather
// than a single media item
func (m *Metadata) IsPlaylist() bool {
	return len(m.Entries) > 0 || m.Type == TypePlaylist
}
