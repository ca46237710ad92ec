package models

// PlaylistExport is a playlist with its song list fully resolved, the unit
// the export formatters and the bulk exporter work on.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Songs    []Song   `json:"songs"`
}
