package styles

import (
	"strings"

	"MuseFM/model"
)

// styleOrder fixes the enumeration order of the catalog.
var styleOrder = []string{"jazz", "classical", "electronic", "rock", "ambient", "pop"}

// catalog is the static style table. Keywords are ordered; the first three
// are the ones folded into enhanced prompts.
var catalog = map[string]model.StyleDescriptor{
	"jazz": {
		ID:          "jazz",
		Name:        "Jazz",
		Description: "Smooth, sophisticated, improvisational",
		Keywords:    []string{"jazz", "swing", "blues", "piano", "saxophone", "smooth"},
		Tempo:       "medium",
		Mood:        "sophisticated",
	},
	"classical": {
		ID:          "classical",
		Name:        "Classical",
		Description: "Orchestral, elegant, timeless",
		Keywords:    []string{"classical", "orchestral", "symphony", "piano", "violin", "elegant"},
		Tempo:       "varied",
		Mood:        "elegant",
	},
	"electronic": {
		ID:          "electronic",
		Name:        "Electronic",
		Description: "Synthesized, modern, digital",
		Keywords:    []string{"electronic", "synth", "digital", "beats", "modern", "futuristic"},
		Tempo:       "fast",
		Mood:        "energetic",
	},
	"rock": {
		ID:          "rock",
		Name:        "Rock",
		Description: "Guitar-driven, energetic, powerful",
		Keywords:    []string{"rock", "guitar", "drums", "electric", "powerful", "energetic"},
		Tempo:       "fast",
		Mood:        "energetic",
	},
	"ambient": {
		ID:          "ambient",
		Name:        "Ambient",
		Description: "Atmospheric, peaceful, meditative",
		Keywords:    []string{"ambient", "atmospheric", "peaceful", "ethereal", "calm", "meditative"},
		Tempo:       "slow",
		Mood:        "peaceful",
	},
	"pop": {
		ID:          "pop",
		Name:        "Pop",
		Description: "Catchy, melodic, mainstream",
		Keywords:    []string{"pop", "catchy", "melodic", "upbeat", "mainstream", "radio-friendly"},
		Tempo:       "medium-fast",
		Mood:        "upbeat",
	},
}

// AllStyles returns every style id in catalog order.
func AllStyles() []string {
	out := make([]string, len(styleOrder))
	copy(out, styleOrder)
	return out
}

// Info returns the descriptor for a style id. The second return value is
// false for an unknown id; lookups never fail.
func Info(id string) (model.StyleDescriptor, bool) {
	desc, ok := catalog[id]
	return desc, ok
}

// EnhancePrompt folds a style's first three keywords and its mood into the
// base prompt. An unknown style id returns the base prompt unchanged.
func EnhancePrompt(base, id string) string {
	desc, ok := catalog[id]
	if !ok {
		return base
	}

	keywords := strings.Join(desc.Keywords[:3], ", ")
	return base + ", " + keywords + ", " + desc.Mood
}
