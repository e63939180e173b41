package styles

// Suggestion is a named prompt fragment shown as a quick-prompt button in the UI.
type Suggestion struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// MoodSuggestions returns mood-based prompt fragments in display order.
func MoodSuggestions() []Suggestion {
	return []Suggestion{
		{Label: "Happy", Prompt: "upbeat, joyful, cheerful, bright, positive"},
		{Label: "Sad", Prompt: "melancholic, emotional, slow, minor key, touching"},
		{Label: "Energetic", Prompt: "fast, powerful, driving, intense, dynamic"},
		{Label: "Calm", Prompt: "peaceful, relaxing, gentle, soft, soothing"},
		{Label: "Mysterious", Prompt: "dark, enigmatic, suspenseful, atmospheric"},
		{Label: "Romantic", Prompt: "tender, passionate, intimate, warm, loving"},
	}
}

// InstrumentSuggestions returns instrument-based prompt fragments in display order.
func InstrumentSuggestions() []Suggestion {
	return []Suggestion{
		{Label: "Piano", Prompt: "piano solo, keys, melodic, expressive"},
		{Label: "Guitar", Prompt: "guitar, strings, acoustic or electric"},
		{Label: "Orchestra", Prompt: "orchestral, symphony, full ensemble"},
		{Label: "Electronic", Prompt: "synthesizer, electronic beats, digital"},
		{Label: "Drums", Prompt: "percussion, rhythmic, beats, dynamic"},
	}
}
