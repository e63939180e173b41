package model

// StyleDescriptor describes one entry in the static style catalog.
// Descriptors are immutable and loaded once at process start.
type StyleDescriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Tempo       string   `json:"tempo"`
	Mood        string   `json:"mood"`
}
