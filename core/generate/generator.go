package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MuseFM/core/audio"
	"MuseFM/core/styles"
	"MuseFM/logger"
	"MuseFM/model"
)

// tokensPerSecond is the MusicGen token budget heuristic: roughly 50 new
// tokens per second of audio.
const tokensPerSecond = 50

// Failure taxonomy. Callers branch on these with errors.Is; the wrapped
// message carries the backend detail.
var (
	ErrModelLoad  = errors.New("failed to load model")
	ErrGeneration = errors.New("music generation failed")
)

// State is the adapter lifecycle state.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats describes a successful generation.
type Stats struct {
	Elapsed time.Duration
}

// Message returns the human-readable timing message shown in the UI.
func (s Stats) Message() string {
	return fmt.Sprintf("Generated in %.2f seconds", s.Elapsed.Seconds())
}

// Generator wraps the inference backend with model lifecycle management.
// The model is loaded lazily on first use and the ready instance is reused
// for all subsequent requests. A load failure is sticky: it is logged, not
// retried automatically, and only an explicit Load attempt clears it.
type Generator struct {
	client *Client
	device string

	mu          sync.Mutex
	state       State
	loadedModel string
}

// NewGenerator creates a Generator bound to a backend client. The compute
// device is decided here, once, and is not reconfigurable per request:
// "auto" asks the backend which device it has.
func NewGenerator(ctx context.Context, client *Client, device string) *Generator {
	if device == "" || device == "auto" {
		device = client.DetectDevice(ctx)
	}
	logger.Info("generation adapter created", logger.String("device", device))
	return &Generator{client: client, device: device}
}

// Device returns the compute device chosen at construction.
func (g *Generator) Device() string {
	return g.device
}

// State returns the current lifecycle state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Load loads a model checkpoint explicitly and reports failure as a typed
// error. It also clears a previous sticky failure.
func (g *Generator) Load(ctx context.Context, modelName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadLocked(ctx, modelName)
}

// loadLocked is the load path; g.mu must be held.
func (g *Generator) loadLocked(ctx context.Context, modelName string) error {
	if g.state == StateReady && g.loadedModel == modelName {
		return nil
	}

	g.state = StateLoading
	logger.Info("loading model",
		logger.String("model", "facebook/musicgen-"+modelName),
		logger.String("device", g.device))

	if err := g.client.LoadModel(ctx, modelName, g.device); err != nil {
		g.state = StateFailed
		logger.Error("model load failed", logger.String("model", modelName), logger.ErrorField(err))
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	g.state = StateReady
	g.loadedModel = modelName
	logger.Info("model loaded", logger.String("model", modelName))
	return nil
}

// Generate turns a text prompt into a waveform. If the requested model is
// not loaded yet it is loaded first; a sticky load failure short-circuits
// without retrying. All failures come back as wrapped ErrModelLoad or
// ErrGeneration, never as a panic past this boundary.
func (g *Generator) Generate(ctx context.Context, req model.GenerationRequest) (*audio.Sample, Stats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateFailed {
		return nil, Stats{}, ErrModelLoad
	}
	if g.state != StateReady || g.loadedModel != req.Model {
		if err := g.loadLocked(ctx, req.Model); err != nil {
			return nil, Stats{}, err
		}
	}

	start := time.Now()
	samples, err := g.client.Generate(ctx, generateRequest{
		Model:        req.Model,
		Prompt:       req.Prompt,
		Temperature:  req.Temperature,
		TopK:         req.TopK,
		MaxNewTokens: req.Duration * tokensPerSecond,
	})
	if err != nil {
		logger.Error("generation failed", logger.String("prompt", req.Prompt), logger.ErrorField(err))
		return nil, Stats{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	stats := Stats{Elapsed: time.Since(start)}
	logger.Info("generation finished",
		logger.Int("samples", len(samples)),
		logger.Duration("elapsed", stats.Elapsed))
	return audio.NewSample(samples), stats, nil
}

// GenerateWithStyle enhances the prompt through the style catalog before
// generating. The catalog is the single authority for style enhancement;
// an unknown style leaves the prompt untouched.
func (g *Generator) GenerateWithStyle(ctx context.Context, req model.GenerationRequest) (*audio.Sample, Stats, error) {
	if req.Style != "" {
		req.Prompt = styles.EnhancePrompt(req.Prompt, req.Style)
	}
	return g.Generate(ctx, req)
}

// GenerateVariations produces up to n takes of the same prompt, skipping
// failed attempts.
func (g *Generator) GenerateVariations(ctx context.Context, req model.GenerationRequest, n int) []*audio.Sample {
	var results []*audio.Sample
	for i := 0; i < n; i++ {
		sample, _, err := g.GenerateWithStyle(ctx, req)
		if err != nil {
			logger.Warn("variation failed", logger.Int("take", i+1), logger.ErrorField(err))
			continue
		}
		results = append(results, sample)
	}
	return results
}
