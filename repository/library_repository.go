package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"MuseFM/core/audio"
	"MuseFM/logger"
	"MuseFM/model"
)

// MetadataFilename is the JSON sidecar holding every MusicRecord.
const MetadataFilename = "music_metadata.json"

// LibraryRepository defines the interface for generated-music persistence.
type LibraryRepository interface {
	Save(sample *audio.Sample, prompt string, meta model.MusicRecord) (string, error)
	List() ([]model.MusicRecord, error)
	Recent(limit int) ([]model.MusicRecord, error)
	Delete(filepath string) bool
	ExportPlaylist(records []model.MusicRecord, name string) (string, error)
	MusicDir() string
}

// jsonLibraryRepository persists WAV files under a music directory with a
// single JSON-array sidecar of metadata records. All sidecar mutations are
// serialized behind one mutex and written through a temp-file rename, so
// concurrent saves and deletes cannot lose or truncate records. Reads stay
// lazy-pruning: a record whose file vanished is filtered out of listings but
// only a Delete persists that pruning back to the sidecar.
type jsonLibraryRepository struct {
	dir          string
	metadataPath string

	mu  sync.Mutex
	now func() time.Time
}

// NewLibraryRepository creates a library store rooted at dir, creating the
// directory if needed.
func NewLibraryRepository(dir string) (LibraryRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create music directory %s: %w", dir, err)
	}
	return &jsonLibraryRepository{
		dir:          dir,
		metadataPath: filepath.Join(dir, MetadataFilename),
		now:          time.Now,
	}, nil
}

// MusicDir returns the library root directory.
func (r *jsonLibraryRepository) MusicDir() string {
	return r.dir
}

// Save writes the sample as music_<timestamp>.wav and appends a MusicRecord
// to the sidecar. The two writes are not transactional: a successful audio
// write followed by a metadata failure leaves an orphaned WAV on disk, which
// is accepted rather than compensated.
func (r *jsonLibraryRepository) Save(sample *audio.Sample, prompt string, meta model.MusicRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("music_%s.wav", timestamp)
	path := filepath.Join(r.dir, filename)
	// Same-second saves get a numeric suffix instead of clobbering.
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		filename = fmt.Sprintf("music_%s_%d.wav", timestamp, n)
		path = filepath.Join(r.dir, filename)
	}

	if err := audio.WriteWAV(sample, path); err != nil {
		return "", fmt.Errorf("save audio: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat saved audio: %w", err)
	}

	record := meta
	record.Filename = filename
	record.Prompt = prompt
	record.Timestamp = timestamp
	record.Filepath = path
	record.FileSize = info.Size()

	records, err := r.readSidecar()
	if err != nil {
		return "", fmt.Errorf("read metadata: %w", err)
	}
	records = append(records, record)
	if err := r.writeSidecar(records); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	logger.Info("music saved",
		logger.String("file", filename),
		logger.Int64("bytes", record.FileSize))
	return path, nil
}

// List returns every record whose file still exists on disk. Pruned entries
// are not written back; the corrected list is a transient read result.
func (r *jsonLibraryRepository) List() ([]model.MusicRecord, error) {
	r.mu.Lock()
	records, err := r.readSidecar()
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	valid := make([]model.MusicRecord, 0, len(records))
	for _, rec := range records {
		if _, err := os.Stat(rec.Filepath); err == nil {
			valid = append(valid, rec)
		}
	}
	return valid, nil
}

// Recent returns the newest records first, at most limit of them.
func (r *jsonLibraryRepository) Recent(limit int) ([]model.MusicRecord, error) {
	records, err := r.List()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		// Same-second saves share a timestamp; their collision suffixes
		// (_1, _2, ...) sort the later save first.
		return records[i].Filename > records[j].Filename
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes the audio file and rewrites the sidecar without that
// filepath's record. The file-removal step is idempotent: an already-absent
// file still counts as success. Only a metadata rewrite failure yields false.
func (r *jsonLibraryRepository) Delete(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("delete audio file failed", logger.String("path", path), logger.ErrorField(err))
	}

	records, err := r.readSidecar()
	if err != nil {
		logger.Error("delete: read metadata failed", logger.ErrorField(err))
		return false
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Filepath != path {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		// Nothing referenced that path; the sidecar stays untouched.
		return true
	}

	if err := r.writeSidecar(kept); err != nil {
		logger.Error("delete: write metadata failed", logger.ErrorField(err))
		return false
	}
	return true
}

var unsafePlaylistChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// ExportPlaylist copies each record's file into playlist_<name>/ under the
// music directory and writes a playlist.json manifest. Partial copies are
// left in place on failure, not rolled back.
func (r *jsonLibraryRepository) ExportPlaylist(records []model.MusicRecord, name string) (string, error) {
	safe := unsafePlaylistChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if safe == "" {
		return "", fmt.Errorf("playlist name must not be empty")
	}

	dir := filepath.Join(r.dir, "playlist_"+safe)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create playlist directory: %w", err)
	}

	for _, rec := range records {
		if err := copyFile(rec.Filepath, filepath.Join(dir, rec.Filename)); err != nil {
			return "", fmt.Errorf("copy %s: %w", rec.Filename, err)
		}
	}

	manifest := model.PlaylistManifest{
		Name:    name,
		Created: r.now(),
		Files:   records,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal playlist manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "playlist.json"), data, 0644); err != nil {
		return "", fmt.Errorf("write playlist manifest: %w", err)
	}

	logger.Info("playlist exported",
		logger.String("name", name),
		logger.Int("tracks", len(records)))
	return dir, nil
}

// readSidecar loads the full record list; a missing sidecar is an empty library.
func (r *jsonLibraryRepository) readSidecar() ([]model.MusicRecord, error) {
	data, err := os.ReadFile(r.metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []model.MusicRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corrupt metadata file: %w", err)
	}
	return records, nil
}

// writeSidecar rewrites the whole sidecar through a temp-file rename so a
// crashed write cannot leave a truncated file behind.
func (r *jsonLibraryRepository) writeSidecar(records []model.MusicRecord) error {
	if records == nil {
		records = []model.MusicRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.metadataPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.metadataPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
