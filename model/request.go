package model

import "fmt"

// Generation parameter bounds. Requests outside these ranges are rejected
// before they reach the backend.
const (
	MinDuration = 10
	MaxDuration = 120

	MinTemperature = 0.1
	MaxTemperature = 2.0

	MinTopK = 50
	MaxTopK = 500
)

// AvailableModels lists the MusicGen model variants the backend can load.
var AvailableModels = []string{"small", "medium", "large"}

// GenerationRequest carries the parameters for one generation call.
// Constructed per user action, never persisted.
type GenerationRequest struct {
	Prompt      string  `json:"prompt"`
	Style       string  `json:"style,omitempty"`
	Duration    int     `json:"duration"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	Model       string  `json:"model"`
}

// ApplyDefaults fills zero-valued fields with the standard defaults.
func (r *GenerationRequest) ApplyDefaults() {
	if r.Duration == 0 {
		r.Duration = 30
	}
	if r.Temperature == 0 {
		r.Temperature = 1.0
	}
	if r.TopK == 0 {
		r.TopK = 250
	}
	if r.Model == "" {
		r.Model = "small"
	}
}

// Validate checks the request against the parameter bounds.
func (r *GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if r.Duration < MinDuration || r.Duration > MaxDuration {
		return fmt.Errorf("duration must be between %d and %d seconds, got %d", MinDuration, MaxDuration, r.Duration)
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be between %.1f and %.1f, got %.2f", MinTemperature, MaxTemperature, r.Temperature)
	}
	if r.TopK < MinTopK || r.TopK > MaxTopK {
		return fmt.Errorf("top_k must be between %d and %d, got %d", MinTopK, MaxTopK, r.TopK)
	}
	valid := false
	for _, m := range AvailableModels {
		if r.Model == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown model %q", r.Model)
	}
	return nil
}
