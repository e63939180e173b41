package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"MuseFM/model"
)

// fakeBackend is a minimal MusicGen inference backend for handler-level tests.
type fakeBackend struct {
	loadCalls     atomic.Int32
	generateCalls atomic.Int32
	failLoad      bool
	failGenerate  bool

	lastGenerate generateRequest
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/device", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"device": "cpu"})
	})
	mux.HandleFunc("/v1/load", func(w http.ResponseWriter, r *http.Request) {
		b.loadCalls.Add(1)
		if b.failLoad {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "out of memory"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		b.generateCalls.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&b.lastGenerate); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if b.failGenerate {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "inference crashed"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sample_rate": 32000,
			"audio":       encodePCM([]float32{0.1, -0.2, 0.3, -0.4}),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() model.GenerationRequest {
	return model.GenerationRequest{
		Prompt:      "a quiet piano melody",
		Duration:    30,
		Temperature: 1.0,
		TopK:        250,
		Model:       "small",
	}
}

func TestGenerateLazyLoad(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	if g.State() != StateUnloaded {
		t.Fatalf("initial state = %v, want unloaded", g.State())
	}

	sample, stats, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.State() != StateReady {
		t.Errorf("state after generate = %v, want ready", g.State())
	}
	if len(sample.Data) != 4 {
		t.Errorf("sample length = %d, want 4", len(sample.Data))
	}
	if stats.Message() == "" {
		t.Error("empty timing message")
	}
	if backend.loadCalls.Load() != 1 {
		t.Errorf("load calls = %d, want 1", backend.loadCalls.Load())
	}

	// Ready adapter is reused: second generation must not reload.
	if _, _, err := g.Generate(context.Background(), testRequest()); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if backend.loadCalls.Load() != 1 {
		t.Errorf("load calls after reuse = %d, want 1", backend.loadCalls.Load())
	}
}

func TestGenerateTokenBudget(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	req := testRequest()
	req.Duration = 45
	if _, _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if backend.lastGenerate.MaxNewTokens != 45*50 {
		t.Errorf("max_new_tokens = %d, want %d", backend.lastGenerate.MaxNewTokens, 45*50)
	}
}

func TestLoadFailureIsTypedAndSticky(t *testing.T) {
	backend := &fakeBackend{failLoad: true}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	_, _, err := g.Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrModelLoad) {
		t.Fatalf("error = %v, want ErrModelLoad", err)
	}
	if g.State() != StateFailed {
		t.Errorf("state = %v, want failed", g.State())
	}

	// Failed state short-circuits: no automatic retry on the next request.
	_, _, err = g.Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrModelLoad) {
		t.Fatalf("second error = %v, want ErrModelLoad", err)
	}
	if backend.loadCalls.Load() != 1 {
		t.Errorf("load calls = %d, want 1 (no automatic retry)", backend.loadCalls.Load())
	}

	// Explicit Load clears the sticky failure.
	backend.failLoad = false
	if err := g.Load(context.Background(), "small"); err != nil {
		t.Fatalf("explicit Load: %v", err)
	}
	if g.State() != StateReady {
		t.Errorf("state after explicit load = %v, want ready", g.State())
	}
}

func TestGenerateFailureIsTyped(t *testing.T) {
	backend := &fakeBackend{failGenerate: true}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	_, _, err := g.Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("error = %v, want ErrGeneration", err)
	}
	// A generation failure does not poison the loaded model.
	if g.State() != StateReady {
		t.Errorf("state = %v, want ready", g.State())
	}
}

func TestGenerateWithStyleEnhancesPrompt(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	req := testRequest()
	req.Style = "jazz"
	if _, _, err := g.GenerateWithStyle(context.Background(), req); err != nil {
		t.Fatalf("GenerateWithStyle: %v", err)
	}
	want := "a quiet piano melody, jazz, swing, blues, sophisticated"
	if backend.lastGenerate.Prompt != want {
		t.Errorf("prompt on the wire = %q, want %q", backend.lastGenerate.Prompt, want)
	}
}

func TestGenerateWithUnknownStylePassThrough(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	req := testRequest()
	req.Style = "vaporwave"
	if _, _, err := g.GenerateWithStyle(context.Background(), req); err != nil {
		t.Fatalf("GenerateWithStyle: %v", err)
	}
	if backend.lastGenerate.Prompt != req.Prompt {
		t.Errorf("prompt on the wire = %q, want unchanged %q", backend.lastGenerate.Prompt, req.Prompt)
	}
}

func TestGenerateVariationsSkipsFailures(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "cpu")

	takes := g.GenerateVariations(context.Background(), testRequest(), 3)
	if len(takes) != 3 {
		t.Errorf("variations = %d, want 3", len(takes))
	}
}

func TestDeviceAutoDetection(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.server(t)
	g := NewGenerator(context.Background(), NewClient(srv.URL, ""), "auto")
	if g.Device() != "cpu" {
		t.Errorf("device = %q, want cpu from backend", g.Device())
	}
}

func TestPCMRoundTrip(t *testing.T) {
	original := []float32{0, 0.5, -0.5, 1, -1, 0.123}
	decoded, err := decodePCM(encodePCM(original))
	if err != nil {
		t.Fatalf("decodePCM: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("length = %d, want %d", len(decoded), len(original))
	}
	for i, v := range original {
		if decoded[i] != v {
			t.Errorf("sample %d: %v != %v", i, decoded[i], v)
		}
	}
}
