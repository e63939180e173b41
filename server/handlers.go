package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"MuseFM/cache"
	"MuseFM/config"
	"MuseFM/core/audio"
	"MuseFM/core/generate"
	"MuseFM/core/styles"
	"MuseFM/logger"
	"MuseFM/model"
	"MuseFM/repository"
	"MuseFM/storage"

	"github.com/gorilla/mux"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	repo      repository.LibraryRepository
	generator *generate.Generator
	converter audio.Converter
	cfg       *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	repo repository.LibraryRepository,
	generator *generate.Generator,
	converter audio.Converter,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		repo:      repo,
		generator: generator,
		converter: converter,
		cfg:       cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// GetStylesHandler 返回目录顺序的全部风格描述
func (h *APIHandler) GetStylesHandler(w http.ResponseWriter, r *http.Request) {
	ids := styles.AllStyles()
	out := make([]model.StyleDescriptor, 0, len(ids))
	for _, id := range ids {
		desc, _ := styles.Info(id)
		out = append(out, desc)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetStyleHandler 返回单个风格的详细信息
func (h *APIHandler) GetStyleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	desc, ok := styles.Info(id)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown style %q", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// GetSuggestionsHandler 返回情绪和乐器快捷提示词
func (h *APIHandler) GetSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]styles.Suggestion{
		"moods":       styles.MoodSuggestions(),
		"instruments": styles.InstrumentSuggestions(),
	})
}

// PreviewPromptHandler 返回风格增强后的提示词预览
func (h *APIHandler) PreviewPromptHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
		Style  string `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"enhanced_prompt": styles.EnhancePrompt(req.Prompt, req.Style),
	})
}

// generatePayload is the /api/generate request body: generation parameters
// plus the audio-effect knobs from the compose form.
type generatePayload struct {
	model.GenerationRequest
	Fade    *bool    `json:"fade,omitempty"`     // default true
	FadeIn  float64  `json:"fade_in,omitempty"`  // seconds, default 1.0
	FadeOut float64  `json:"fade_out,omitempty"` // seconds, default 2.0
	Volume  *float64 `json:"volume,omitempty"`   // default 1.0, 0 mutes
}

// GenerateHandler 执行一次完整的生成流程：校验、生成、音效处理、入库
func (h *APIHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, summary, stats, status, err := h.runGeneration(r.Context(), payload, nil)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":  record,
		"summary": summary,
		"message": stats.Message(),
	})
}

// runGeneration is the shared generation pipeline behind the HTTP and
// websocket entry points. progress may be nil. On error it returns the HTTP
// status the failure maps to.
func (h *APIHandler) runGeneration(ctx context.Context, payload generatePayload, progress func(stage string)) (*model.MusicRecord, *audio.Summary, generate.Stats, int, error) {
	req := payload.GenerationRequest
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, nil, generate.Stats{}, http.StatusBadRequest, err
	}

	report := func(stage string) {
		if progress != nil {
			progress(stage)
		}
	}

	if h.generator.State() != generate.StateReady {
		report("loading")
	}
	report("generating")

	sample, stats, err := h.generator.GenerateWithStyle(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, generate.ErrModelLoad):
			return nil, nil, stats, http.StatusServiceUnavailable, errors.New("Failed to load model")
		case errors.Is(err, generate.ErrGeneration):
			return nil, nil, stats, http.StatusBadGateway, err
		default:
			return nil, nil, stats, http.StatusInternalServerError, err
		}
	}

	report("processing")
	if payload.Fade == nil || *payload.Fade {
		fadeIn, fadeOut := payload.FadeIn, payload.FadeOut
		if fadeIn == 0 {
			fadeIn = 1.0
		}
		if fadeOut == 0 {
			fadeOut = 2.0
		}
		audio.ApplyFades(sample, fadeIn, fadeOut)
	}
	if payload.Volume != nil && *payload.Volume != 1.0 {
		audio.AdjustVolume(sample, *payload.Volume)
	}
	summary := audio.Summarize(sample)

	path, err := h.repo.Save(sample, req.Prompt, model.MusicRecord{
		Style:          req.Style,
		Duration:       req.Duration,
		Temperature:    req.Temperature,
		TopK:           req.TopK,
		Model:          req.Model,
		GenerationTime: stats.Elapsed.Seconds(),
	})
	if err != nil {
		logger.Error("failed to save generated music", logger.ErrorField(err))
		return nil, nil, stats, http.StatusInternalServerError, fmt.Errorf("failed to save music: %w", err)
	}

	cache.InvalidateLibrary(ctx)
	if storage.Enabled() {
		if err := storage.ArchiveWAV(ctx, h.cfg, path, filepath.Base(path)); err != nil {
			logger.Warn("archive upload failed", logger.ErrorField(err))
		}
	}

	records, err := h.repo.List()
	if err != nil {
		return nil, nil, stats, http.StatusInternalServerError, err
	}
	for i := range records {
		if records[i].Filepath == path {
			return &records[i], &summary, stats, http.StatusOK, nil
		}
	}
	return nil, nil, stats, http.StatusInternalServerError, errors.New("saved record not found")
}

// GetLibraryHandler 返回音乐库全部有效记录，优先走Redis缓存
func (h *APIHandler) GetLibraryHandler(w http.ResponseWriter, r *http.Request) {
	if records, ok := cache.GetLibrary(r.Context()); ok {
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := h.repo.List()
	if err != nil {
		logger.Error("failed to list library", logger.ErrorField(err))
		http.Error(w, "failed to load music library", http.StatusInternalServerError)
		return
	}
	cache.SetLibrary(r.Context(), records)
	writeJSON(w, http.StatusOK, records)
}

// GetRecentHandler 返回最近生成的记录
func (h *APIHandler) GetRecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.repo.Recent(limit)
	if err != nil {
		logger.Error("failed to list recent music", logger.ErrorField(err))
		http.Error(w, "failed to load music library", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// DeleteRecordHandler 删除音频文件及其元数据记录
func (h *APIHandler) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("filepath")
	if path == "" {
		http.Error(w, "filepath query parameter required", http.StatusBadRequest)
		return
	}

	// 只允许删除音乐目录内的文件
	if !h.insideMusicDir(path) {
		http.Error(w, "filepath outside music library", http.StatusBadRequest)
		return
	}

	filename := filepath.Base(path)
	if !h.repo.Delete(path) {
		http.Error(w, "failed to delete record", http.StatusInternalServerError)
		return
	}

	cache.InvalidateLibrary(r.Context())
	if storage.Enabled() {
		if err := storage.RemoveArchived(r.Context(), h.cfg, filename); err != nil {
			logger.Warn("archive removal failed", logger.ErrorField(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// DownloadHandler 下载WAV原始文件或转码后的MP3
func (h *APIHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".wav") {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}

	wavPath := filepath.Join(h.repo.MusicDir(), filename)
	if _, err := os.Stat(wavPath); err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "mp3" {
		mp3Path := filepath.Join(os.TempDir(), strings.TrimSuffix(filename, ".wav")+".mp3")
		if !h.converter.ConvertToMP3(wavPath, mp3Path) {
			http.Error(w, "mp3 conversion failed", http.StatusInternalServerError)
			return
		}
		defer os.Remove(mp3Path)

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(mp3Path)))
		w.Header().Set("Content-Type", "audio/mpeg")
		http.ServeFile(w, r, mp3Path)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, wavPath)
}

// ExportPlaylistHandler 将选中的曲目导出为播放列表目录
func (h *APIHandler) ExportPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name"`
		Filepaths []string `json:"filepaths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name and filepaths required", http.StatusBadRequest)
		return
	}

	all, err := h.repo.List()
	if err != nil {
		http.Error(w, "failed to load music library", http.StatusInternalServerError)
		return
	}

	wanted := make(map[string]bool, len(req.Filepaths))
	for _, p := range req.Filepaths {
		wanted[p] = true
	}
	var selected []model.MusicRecord
	for _, rec := range all {
		if wanted[rec.Filepath] {
			selected = append(selected, rec)
		}
	}
	if len(selected) == 0 {
		http.Error(w, "no matching records in library", http.StatusBadRequest)
		return
	}

	dir, err := h.repo.ExportPlaylist(selected, req.Name)
	if err != nil {
		logger.Error("playlist export failed", logger.ErrorField(err))
		http.Error(w, "playlist export failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"directory": dir,
		"tracks":    len(selected),
	})
}

// insideMusicDir reports whether path resolves inside the music directory.
func (h *APIHandler) insideMusicDir(path string) bool {
	absDir, err := filepath.Abs(h.repo.MusicDir())
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator))
}
