package model

import "time"

// MusicRecord is the persisted metadata for one generated piece of music.
// Records live in the JSON sidecar next to the WAV files. A record is valid
// only while its file exists on disk; records whose file is gone are pruned
// lazily on read. Records are never mutated in place.
type MusicRecord struct {
	Filename       string  `json:"filename"`
	Prompt         string  `json:"prompt"`
	Timestamp      string  `json:"timestamp"` // creation order key, 20060102_150405
	Filepath       string  `json:"filepath"`
	FileSize       int64   `json:"file_size"`
	Style          string  `json:"style,omitempty"`
	Duration       int     `json:"duration,omitempty"` // requested duration in seconds
	Temperature    float64 `json:"temperature,omitempty"`
	TopK           int     `json:"top_k,omitempty"`
	Model          string  `json:"model,omitempty"`
	GenerationTime float64 `json:"generation_time,omitempty"` // seconds
}

// PlaylistManifest is written as playlist.json inside an exported
// playlist directory.
type PlaylistManifest struct {
	Name    string        `json:"name"`
	Created time.Time     `json:"created"`
	Files   []MusicRecord `json:"files"`
}
